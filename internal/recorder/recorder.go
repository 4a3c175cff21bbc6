// Package recorder captures a live stream to a local file.
package recorder

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog/log"
)

const (
	chunkSize     = 8192
	dialTimeout   = 10 * time.Second
	headerTimeout = 10 * time.Second
	userAgent     = "RadioBrowse/1.0"
)

var ErrAlreadyRecording = errors.New("a recording is already in progress")

// Recorder streams one URL at a time into a file. Start is asynchronous; the
// capture runs until the stream ends, the context is cancelled, or Stop is
// called.
type Recorder struct {
	client *http.Client

	mu        sync.Mutex
	cancel    context.CancelFunc
	done      chan struct{}
	recording bool

	bytesWritten atomic.Int64
}

func New() *Recorder {
	return &Recorder{
		client: &http.Client{
			Timeout: 0, // No overall timeout — streams are long-lived
			Transport: &http.Transport{
				DialContext: (&net.Dialer{
					Timeout: dialTimeout,
				}).DialContext,
				TLSHandshakeTimeout:   dialTimeout,
				ResponseHeaderTimeout: headerTimeout,
				DisableCompression:    true,
			},
		},
	}
}

// Start connects to the stream and begins writing it to path, creating
// parent directories as needed. It returns once the connection is
// established; the capture continues in the background.
func (r *Recorder) Start(ctx context.Context, url, path string) error {
	r.mu.Lock()
	if r.recording {
		r.mu.Unlock()
		return ErrAlreadyRecording
	}
	r.recording = true
	r.mu.Unlock()

	rctx, cancel := context.WithCancel(ctx)

	fail := func(err error) error {
		cancel()
		r.mu.Lock()
		r.recording = false
		r.mu.Unlock()
		return err
	}

	req, err := http.NewRequestWithContext(rctx, http.MethodGet, url, nil)
	if err != nil {
		return fail(fmt.Errorf("failed to create request: %w", err))
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := r.client.Do(req)
	if err != nil {
		return fail(fmt.Errorf("failed to connect to stream: %w", err))
	}

	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return fail(fmt.Errorf("stream returned status %d: %s", resp.StatusCode, resp.Status))
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			resp.Body.Close()
			return fail(fmt.Errorf("failed to create output directory: %w", err))
		}
	}

	file, err := os.Create(path)
	if err != nil {
		resp.Body.Close()
		return fail(fmt.Errorf("failed to create output file: %w", err))
	}

	done := make(chan struct{})

	r.mu.Lock()
	r.cancel = cancel
	r.done = done
	r.mu.Unlock()

	r.bytesWritten.Store(0)

	log.Debug().Str("url", url).Str("file", path).Msg("Recording started")
	go r.capture(rctx, resp.Body, file, done)

	return nil
}

func (r *Recorder) capture(ctx context.Context, body io.ReadCloser, file *os.File, done chan struct{}) {
	defer func() {
		body.Close()
		if err := file.Close(); err != nil {
			log.Warn().Err(err).Msg("Failed to close recording file")
		}

		r.mu.Lock()
		r.recording = false
		r.cancel = nil
		r.mu.Unlock()

		close(done)
		log.Debug().Int64("bytes", r.bytesWritten.Load()).Msg("Recording stopped")
	}()

	buf := make([]byte, chunkSize)
	for {
		n, err := body.Read(buf)
		if n > 0 {
			if _, werr := file.Write(buf[:n]); werr != nil {
				log.Error().Err(werr).Msg("Failed to write recording chunk")
				return
			}
			r.bytesWritten.Add(int64(n))
		}
		if err != nil {
			if err != io.EOF && ctx.Err() == nil {
				log.Error().Err(err).Msg("Recording read error")
			}
			return
		}
	}
}

// Stop cancels the capture and waits for the file to be closed. Calling
// Stop when nothing is recording is a no-op.
func (r *Recorder) Stop() {
	r.mu.Lock()
	cancel := r.cancel
	done := r.done
	r.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if done != nil {
		<-done
	}
}

// Wait blocks until the current capture finishes on its own.
func (r *Recorder) Wait() {
	r.mu.Lock()
	done := r.done
	r.mu.Unlock()

	if done != nil {
		<-done
	}
}

// Recording reports whether a capture is currently in progress.
func (r *Recorder) Recording() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.recording
}

// BytesWritten returns how many bytes the current or last capture wrote.
func (r *Recorder) BytesWritten() int64 {
	return r.bytesWritten.Load()
}
