package player

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/flac"
	"github.com/gopxl/beep/v2/mp3"
	"github.com/gopxl/beep/v2/vorbis"
	"github.com/gopxl/beep/v2/wav"

	"github.com/llehouerou/wavesplay/internal/playlist"
)

const (
	extMP3  = ".mp3"
	extFLAC = ".flac"
	extWAV  = ".wav"
	extOGG  = ".ogg"
)

// maxRemoteSize bounds in-memory downloads of remote sources.
const maxRemoteSize int64 = 512 << 20

// resampleQuality is passed to beep.Resample.
const resampleQuality = 4

// IsRemote reports whether source is an http(s) URL.
func IsRemote(source string) bool {
	u, err := url.Parse(source)
	if err != nil {
		return false
	}
	return u.Scheme == "http" || u.Scheme == "https"
}

// IsSupported reports whether the backend can decode source, judged by
// its extension.
func IsSupported(source string) bool {
	switch sourceExt(source) {
	case extMP3, extFLAC, extWAV, extOGG:
		return true
	default:
		return false
	}
}

func sourceExt(source string) string {
	if IsRemote(source) {
		if u, err := url.Parse(source); err == nil {
			source = u.Path
		}
	}
	return strings.ToLower(filepath.Ext(source))
}

// openLocked releases the current stream and starts loading t. Local files
// are decoded synchronously; remote sources are fetched in the background
// and the engine reports Buffering until they are ready.
func (p *Player) openLocked(t playlist.Track) error {
	p.releaseLocked()
	p.loadSeq++
	p.fault = nil

	if !IsSupported(t.Source) {
		p.state = engineEmpty
		return controlErr(OpLoad, fmt.Errorf("%w: %s", ErrUnsupportedFormat, sourceExt(t.Source)))
	}

	if IsRemote(t.Source) {
		ctx, cancel := context.WithCancel(context.Background())
		p.cancelFetch = cancel
		p.state = engineFetching
		go p.fetch(ctx, p.loadSeq, t)
		return nil
	}

	p.state = engineOpening
	f, err := os.Open(t.Source)
	if err != nil {
		p.state = engineEmpty
		return controlErr(OpLoad, fmt.Errorf("%w: %w", ErrUnreachable, err))
	}
	if meta, err := readTags(f); err == nil {
		meta.Source = t.Source
		p.queue.UpdateCurrent(meta)
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		f.Close()
		p.state = engineEmpty
		return controlErr(OpLoad, err)
	}
	if err := p.decodeLocked(t, f); err != nil {
		p.state = engineEmpty
		return controlErr(OpLoad, err)
	}
	return nil
}

// fetch downloads a remote source and hands it to the decoder, unless a
// newer load superseded it meanwhile.
func (p *Player) fetch(ctx context.Context, seq uint64, t playlist.Track) {
	data, err := download(ctx, p.client, t.Source, maxRemoteSize)

	p.mu.Lock()
	defer p.mu.Unlock()

	if seq != p.loadSeq || ctx.Err() != nil {
		return
	}
	p.cancelFetch = nil
	switch {
	case errors.Is(err, ErrSourceTooLarge):
		p.faultLocked(err)
		return
	case err != nil:
		p.faultLocked(fmt.Errorf("%w: %w", ErrUnreachable, err))
		return
	}
	if meta, err := readTags(bytes.NewReader(data)); err == nil {
		meta.Source = t.Source
		p.queue.UpdateCurrent(meta)
	}
	if err := p.decodeLocked(t, memFile{bytes.NewReader(data)}); err != nil {
		p.faultLocked(err)
		return
	}
	if p.wantPlay {
		p.startLocked()
	}
}

// download reads source into memory. Bodies over limit bytes fail with
// ErrSourceTooLarge rather than being cut short.
func download(ctx context.Context, client *http.Client, source string, limit int64) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, source, nil)
	if err != nil {
		return nil, err
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("GET %s: %s", source, resp.Status)
	}
	if resp.ContentLength > limit {
		return nil, fmt.Errorf("%w: %d bytes", ErrSourceTooLarge, resp.ContentLength)
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, limit+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > limit {
		return nil, fmt.Errorf("%w: over %d bytes", ErrSourceTooLarge, limit)
	}
	return data, nil
}

// memFile adapts an in-memory download to the decoders' ReadCloser needs
// while keeping it seekable.
type memFile struct {
	*bytes.Reader
}

func (memFile) Close() error { return nil }

// decodeLocked decodes rc and prepares the control chain. The engine is
// left ready, not playing.
func (p *Player) decodeLocked(t playlist.Track, rc io.ReadCloser) error {
	var (
		streamer beep.StreamSeekCloser
		format   beep.Format
		err      error
	)
	switch sourceExt(t.Source) {
	case extMP3:
		streamer, format, err = mp3.Decode(rc)
	case extFLAC:
		streamer, format, err = flac.Decode(rc)
	case extWAV:
		streamer, format, err = wav.Decode(rc)
	case extOGG:
		streamer, format, err = vorbis.Decode(rc)
	default:
		err = ErrUnsupportedFormat
	}
	if err != nil {
		rc.Close()
		return fmt.Errorf("decode %s: %w", t.Source, err)
	}

	var out beep.Streamer = streamer
	if format.SampleRate != outputRate {
		out = beep.Resample(resampleQuality, format.SampleRate, outputRate, streamer)
	}

	p.streamer = streamer
	p.format = format
	p.ctrl = &beep.Ctrl{Streamer: out, Paused: false}
	p.duration = format.SampleRate.D(streamer.Len())
	p.state = engineReady
	p.queue.UpdateCurrent(playlist.Track{Source: t.Source, Duration: p.duration})
	return nil
}

// startLocked hands the control chain to the output, or unpauses it if it
// is already there.
func (p *Player) startLocked() {
	p.wantPlay = false
	if p.ctrl == nil {
		return
	}
	if !p.queued {
		done := new(atomic.Bool)
		p.drained = done
		p.ctrl.Paused = false
		p.out.Play(beep.Seq(p.ctrl, beep.Callback(func() {
			done.Store(true)
		})))
		p.queued = true
	} else {
		p.out.Lock()
		p.ctrl.Paused = false
		p.out.Unlock()
	}
	p.state = engineRunning
}

// releaseLocked stops output and closes the decoder. State is left to the
// caller.
func (p *Player) releaseLocked() {
	if p.cancelFetch != nil {
		p.cancelFetch()
		p.cancelFetch = nil
	}
	if p.queued {
		p.out.Clear()
		p.queued = false
	}
	if p.streamer != nil {
		p.streamer.Close()
		p.streamer = nil
	}
	p.ctrl = nil
	p.duration = 0
	p.wantPlay = false
	p.drained = new(atomic.Bool)
}
