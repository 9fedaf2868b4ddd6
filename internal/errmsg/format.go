// Package errmsg provides consistent error formatting for user-facing messages.
package errmsg

import (
	"errors"
	"fmt"

	"github.com/llehouerou/wavesplay/internal/player"
)

// Op represents an operation that can fail.
type Op string

// Operation constants - grouped by domain.
const (
	// Playback operations
	OpPlaybackLoad  Op = "load track"
	OpPlaybackStart Op = "start playback"
	OpPlaybackPause Op = "pause playback"
	OpPlaybackSeek  Op = "seek"
	OpPlaybackSkip  Op = "skip track"
	OpPlaybackStop  Op = "stop playback"

	// Account operations
	OpLogin  Op = "log in"
	OpLogout Op = "log out"
	OpStatus Op = "read account status"

	// Integrations
	OpLastfmLink   Op = "link Last.fm"
	OpLastfmUnlink Op = "unlink Last.fm"
	OpLastfmRetry  Op = "resubmit scrobbles"

	// Initialization
	OpConfigLoad Op = "load configuration"
	OpStateOpen  Op = "open state database"
)

// backendReasons maps backend failures to wording a listener understands.
var backendReasons = []struct {
	err    error
	reason string
}{
	{player.ErrUnsupportedFormat, "this file format is not supported"},
	{player.ErrSourceTooLarge, "the track is too large to stream"},
	{player.ErrUnreachable, "the track could not be reached"},
	{player.ErrBackendLost, "the audio backend stopped responding"},
	{player.ErrNoNext, "no next track"},
	{player.ErrNoPrevious, "no previous track"},
	{player.ErrNotReady, "the track is still buffering"},
	{player.ErrNoTrack, "nothing is loaded"},
}

// Reason returns a short description of err, translating known backend
// failures.
func Reason(err error) string {
	for _, r := range backendReasons {
		if errors.Is(err, r.err) {
			return r.reason
		}
	}
	return err.Error()
}

// Format creates a user-friendly error message.
func Format(op Op, err error) string {
	if err == nil {
		return ""
	}
	return fmt.Sprintf("Failed to %s: %s", op, Reason(err))
}

// FormatWith creates an error message with additional context.
func FormatWith(op Op, context string, err error) string {
	if err == nil {
		return ""
	}
	if context == "" {
		return Format(op, err)
	}
	return fmt.Sprintf("Failed to %s '%s': %s", op, context, Reason(err))
}
