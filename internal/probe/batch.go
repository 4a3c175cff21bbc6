package probe

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// Each URL in a batch gets the request timeout plus this much slack before
// its result is synthesized as a failure. The probe goroutine is left to
// finish on its own; its late result is discarded.
const batchGrace = 5 * time.Second

// CheckMany probes every URL concurrently, bounded by the configured
// concurrency limit. The returned map always contains exactly the input URLs
// as keys: a URL that exceeds its deadline maps to a synthetic failing
// Result, and one slow or failing URL never affects its siblings.
func (c *Checker) CheckMany(ctx context.Context, urls []string) map[string]Result {
	results := make(map[string]Result, len(urls))
	if len(urls) == 0 {
		return results
	}

	type entry struct {
		url string
		res Result
	}

	out := make(chan entry)
	sem := make(chan struct{}, c.concurrency)
	var wg sync.WaitGroup

	for _, u := range urls {
		wg.Add(1)
		go func(u string) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()
			out <- entry{url: u, res: c.checkWithDeadline(ctx, u)}
		}(u)
	}

	go func() {
		wg.Wait()
		close(out)
	}()

	for e := range out {
		results[e.url] = e.res
	}

	log.Debug().Int("urls", len(urls)).Int("results", len(results)).Msg("Batch probe finished")
	return results
}

func (c *Checker) checkWithDeadline(ctx context.Context, rawURL string) Result {
	deadline := c.timeout + batchGrace
	cctx, cancel := context.WithTimeout(ctx, deadline)
	defer cancel()

	done := make(chan Result, 1)
	go func() {
		done <- c.Check(cctx, rawURL)
	}()

	select {
	case res := <-done:
		return res
	case <-cctx.Done():
		if cctx.Err() == context.Canceled {
			return Result{Reason: "Check cancelled"}
		}
		return Result{Reason: fmt.Sprintf("Check timed out after %s", deadline)}
	}
}
