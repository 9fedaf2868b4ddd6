//go:build !linux

package mpris

import "github.com/llehouerou/wavesplay/internal/playback"

// Adapter has nothing to publish to outside Linux; it exists so callers
// need no build tags of their own.
type Adapter struct{}

func New(playback.Service) (*Adapter, error) { return &Adapter{}, nil }

func (*Adapter) Close() error { return nil }
