//go:build linux

package mpris

import (
	"os"
	"path/filepath"

	"github.com/llehouerou/wavesplay/internal/player"
)

// coverNames lists common album art filenames in priority order.
var coverNames = []string{
	"cover.jpg", "cover.png", "cover.jpeg",
	"folder.jpg", "folder.png", "folder.jpeg",
	"front.jpg", "front.png",
}

// FindAlbumArt looks for album art next to a local track. Remote sources
// never have any.
func FindAlbumArt(source string) string {
	if source == "" || player.IsRemote(source) {
		return ""
	}
	dir := filepath.Dir(source)
	for _, name := range coverNames {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}
