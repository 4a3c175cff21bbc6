// Package probe classifies URLs as playable media streams.
//
// The check is a layered, fail-fast heuristic: a cheap HEAD probe first, then
// a GET probe with a bounded read of the body to distinguish a live stream
// from an HTML error page served with a 200. Every outcome — including
// timeouts and transport failures — is reported as a Result, never as an
// error; the probe gates a UI action, so nothing here is fatal to the caller.
package probe

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

const (
	DefaultTimeout      = 10 * time.Second
	DefaultMaxRedirects = 5
	DefaultSniffBytes   = 1024
	DefaultConcurrency  = 5

	// Sniff reads get their own short deadline, independent of the request
	// timeout: connection establishment and data liveness are separate
	// timing contracts. A server that accepts the connection but never
	// delivers bytes must not hold the probe for the full request budget.
	defaultSniffTimeout = 5 * time.Second

	// Markup detection only inspects the leading bytes of the body.
	markupSniffWindow = 200

	userAgent = "Mozilla/5.0 (compatible; RadioBrowse/1.0)"
)

var errTooManyRedirects = errors.New("too many redirects")

// Checker probes URLs for stream validity. The underlying HTTP client is
// reused across calls for connection pooling only; Checker holds no semantic
// state and is safe for concurrent use.
type Checker struct {
	timeout          time.Duration
	maxRedirects     int
	sniffBytes       int
	sniffTimeout     time.Duration
	concurrency      int
	checkPlayability bool
	client           *http.Client
}

// Option configures a Checker.
type Option func(*Checker)

// WithTimeout sets the per-request timeout for the HEAD and GET probes.
func WithTimeout(d time.Duration) Option {
	return func(c *Checker) { c.timeout = d }
}

// WithMaxRedirects sets how many redirects a probe request may follow.
func WithMaxRedirects(n int) Option {
	return func(c *Checker) { c.maxRedirects = n }
}

// WithSniffBytes sets the maximum number of body bytes read during the
// data sniff.
func WithSniffBytes(n int) Option {
	return func(c *Checker) { c.sniffBytes = n }
}

// WithSniffTimeout bounds the wait for the first body read during the
// data sniff.
func WithSniffTimeout(d time.Duration) Option {
	return func(c *Checker) { c.sniffTimeout = d }
}

// WithConcurrency limits how many probes CheckMany runs in flight at once.
func WithConcurrency(n int) Option {
	return func(c *Checker) { c.concurrency = n }
}

// WithPlayabilityCheck controls whether the GET phase reads body data to
// verify the stream is actually delivering bytes. Enabled by default;
// disabling it accepts a recognized Content-Type alone.
func WithPlayabilityCheck(enabled bool) Option {
	return func(c *Checker) { c.checkPlayability = enabled }
}

// New creates a Checker with the given options applied over the defaults.
func New(opts ...Option) *Checker {
	c := &Checker{
		timeout:          DefaultTimeout,
		maxRedirects:     DefaultMaxRedirects,
		sniffBytes:       DefaultSniffBytes,
		sniffTimeout:     defaultSniffTimeout,
		concurrency:      DefaultConcurrency,
		checkPlayability: true,
	}

	for _, opt := range opts {
		opt(c)
	}

	c.client = &http.Client{
		Timeout: c.timeout,
		Transport: &http.Transport{
			DialContext: (&net.Dialer{
				Timeout: c.timeout,
			}).DialContext,
			TLSHandshakeTimeout: c.timeout,
			DisableCompression:  true,
		},
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) >= c.maxRedirects {
				return errTooManyRedirects
			}
			return nil
		},
	}

	return c
}

// Check classifies a single URL. The sequence is a single pass: URL shape
// validation, HEAD probe, then GET probe with an optional data sniff. There
// are no retries; the caller re-invokes Check to retry.
func (c *Checker) Check(ctx context.Context, rawURL string) Result {
	u, err := url.Parse(rawURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return Result{Reason: "Invalid URL format"}
	}

	hint := extensionKind(u.Path)

	ok, res := c.headProbe(ctx, rawURL, hint)
	if ok {
		res.Valid = true
		return res
	}
	log.Debug().Str("url", rawURL).Str("reason", res.Reason).Msg("HEAD probe inconclusive, trying GET")

	ok, res = c.getProbe(ctx, rawURL, hint)
	res.Valid = ok
	return res
}

// headProbe inspects response headers only; no content is fetched. A false
// return means the phase was inconclusive and the GET probe should run.
func (c *Checker) headProbe(ctx context.Context, rawURL string, hint StreamKind) (bool, Result) {
	res := Result{Kind: hint}

	req, err := http.NewRequestWithContext(ctx, http.MethodHead, rawURL, nil)
	if err != nil {
		res.Reason = fmt.Sprintf("Request error: %v", err)
		return false, res
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.client.Do(req)
	if err != nil {
		res.Reason = transportReason(err)
		return false, res
	}
	defer resp.Body.Close()

	res.StatusCode = resp.StatusCode
	if resp.StatusCode != http.StatusOK {
		res.Reason = fmt.Sprintf("HTTP %d", resp.StatusCode)
		return false, res
	}

	res.ContentType = strings.ToLower(resp.Header.Get("Content-Type"))

	// Shoutcast/Icecast servers identify themselves through ICY headers and
	// often carry a misleading or absent Content-Type.
	if hasICYHeaders(resp.Header) {
		res.Reason = "Valid ICY stream"
		res.Kind = KindICY
		return true, res
	}

	if isStreamContentType(res.ContentType) {
		res.Reason = "Valid stream (HEAD check)"
		res.Kind = contentTypeKind(res.ContentType)
		return true, res
	}

	res.Reason = "Content type not recognized as stream"
	return false, res
}

// getProbe opens the response body as a stream and, when playability
// checking is on, sniffs the first bytes to confirm the server is delivering
// data that doesn't look like an HTML error page.
func (c *Checker) getProbe(ctx context.Context, rawURL string, hint StreamKind) (bool, Result) {
	res := Result{Kind: hint}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		res.Reason = fmt.Sprintf("Request error: %v", err)
		return false, res
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.client.Do(req)
	if err != nil {
		res.Reason = transportReason(err)
		return false, res
	}
	defer resp.Body.Close()

	res.StatusCode = resp.StatusCode
	if resp.StatusCode != http.StatusOK {
		res.Reason = fmt.Sprintf("HTTP %d", resp.StatusCode)
		return false, res
	}

	res.ContentType = strings.ToLower(resp.Header.Get("Content-Type"))

	if hasICYHeaders(resp.Header) {
		res.Reason = "Valid ICY stream"
		res.Kind = KindICY
		return true, res
	}

	if isStreamContentType(res.ContentType) {
		res.Kind = contentTypeKind(res.ContentType)

		if !c.checkPlayability {
			res.Reason = "Valid stream (content type)"
			return true, res
		}
		if c.sniffStreamData(resp.Body) {
			res.Reason = "Valid and active stream"
			return true, res
		}
		// StatusCode and ContentType stay populated from the headers stage:
		// a failed sniff still reports what the server claimed.
		res.Reason = "Stream not providing data"
		return false, res
	}

	// Some valid streams omit or mis-set Content-Type; the sniff gets the
	// final word when playability checking is on.
	if c.checkPlayability && c.sniffStreamData(resp.Body) {
		res.Reason = "Active stream (unrecognized type)"
		res.Kind = KindUnknown
		return true, res
	}

	res.Reason = "Not recognized as a valid stream"
	return false, res
}

// sniffStreamData performs one bounded read of the body. The read runs in
// its own goroutine with a timer so a connection that opens but never
// delivers bytes fails the sniff instead of stalling the probe. The body is
// closed on every exit path, which also unblocks a timed-out read.
func (c *Checker) sniffStreamData(body io.ReadCloser) bool {
	defer body.Close()

	type readResult struct {
		n   int
		err error
	}
	done := make(chan readResult, 1)
	buf := make([]byte, c.sniffBytes)

	go func() {
		n, err := body.Read(buf)
		done <- readResult{n, err}
	}()

	timer := time.NewTimer(c.sniffTimeout)
	defer timer.Stop()

	select {
	case r := <-done:
		if r.n == 0 {
			return false
		}
		return !looksLikeMarkup(buf[:r.n])
	case <-timer.C:
		log.Debug().Dur("timeout", c.sniffTimeout).Msg("Data sniff timed out")
		return false
	}
}

// looksLikeMarkup reports whether the leading bytes of a body resemble an
// HTML/markup document rather than media payload.
func looksLikeMarkup(chunk []byte) bool {
	trimmed := bytes.TrimLeft(chunk, " \t\r\n")
	if len(trimmed) > 0 && trimmed[0] == '<' {
		return true
	}

	head := chunk
	if len(head) > markupSniffWindow {
		head = head[:markupSniffWindow]
	}
	head = bytes.ToLower(head)

	return bytes.Contains(head, []byte("<!doctype html")) || bytes.Contains(head, []byte("html"))
}

func hasICYHeaders(h http.Header) bool {
	return h.Get("icy-name") != "" || h.Get("icy-metaint") != ""
}

// transportReason maps a transport-level error onto a stable reason string.
func transportReason(err error) string {
	if errors.Is(err, errTooManyRedirects) {
		return "Too many redirects"
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return "Request timeout"
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return "Request timeout"
	}

	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return "Connection error"
	}

	return fmt.Sprintf("Request error: %v", err)
}
