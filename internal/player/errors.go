package player

import (
	"errors"
	"fmt"
)

// Op names a backend control operation.
type Op string

const (
	OpLoad         Op = "load"
	OpPlay         Op = "play"
	OpPause        Op = "pause"
	OpSeek         Op = "seek"
	OpSkipNext     Op = "skip next"
	OpSkipPrevious Op = "skip previous"
	OpStop         Op = "stop"
)

var (
	ErrNoTrack           = errors.New("no track loaded")
	ErrNotReady          = errors.New("stream not ready")
	ErrNoNext            = errors.New("no next track")
	ErrNoPrevious        = errors.New("no previous track")
	ErrUnsupportedFormat = errors.New("unsupported format")
	ErrUnreachable       = errors.New("source unreachable")
	ErrSourceTooLarge    = errors.New("source too large")

	// ErrBackendLost is wrapped by Query when the backend can no longer
	// report on the loaded track. It is not recoverable for that track.
	ErrBackendLost = errors.New("playback backend lost")
)

// ControlError is a recoverable failure of a control operation.
// The engine reports it to the caller and never retries.
type ControlError struct {
	Op  Op
	Err error
}

func (e *ControlError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *ControlError) Unwrap() error { return e.Err }

func controlErr(op Op, err error) error {
	return &ControlError{Op: op, Err: err}
}
