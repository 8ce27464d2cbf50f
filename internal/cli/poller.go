package cli

import (
	"context"
	"fmt"
	"time"

	"k8s.io/utils/clock"

	"cloudctl/pkg/logging"
)

// Clock is the subset of k8s.io/utils/clock.Clock the poller relies on.
type Clock interface {
	Now() time.Time
	After(d time.Duration) <-chan time.Time
}

// PollOptions bounds a Poll call.
type PollOptions struct {
	// Timeout is the total time budget. Probes are only started strictly
	// before the deadline, so at most ceil(Timeout/Interval) probes run.
	Timeout time.Duration
	// Interval is the time between the starts of consecutive probes.
	Interval time.Duration
	// Clock defaults to the real clock.
	Clock Clock
}

// PollResult reports how a Poll call ended.
type PollResult[S any] struct {
	Succeeded    bool
	Elapsed      time.Duration
	LastObserved S
	Probes       int
}

// Poll calls probe every interval until done reports true for the observed
// status or the timeout elapses. It blocks the calling goroutine and starts
// none of its own.
//
// On timeout it returns a Timeout-category *Error along with the last
// observed status, once the full timeout has elapsed. A timeout does not mean the remote operation failed: the
// resource may still reach the target state later. If ctx is cancelled the
// context error is returned before the next sleep completes.
func Poll[S any](ctx context.Context, opts PollOptions, probe func(context.Context) (S, error), done func(S) bool) (PollResult[S], error) {
	clk := opts.Clock
	if clk == nil {
		clk = clock.RealClock{}
	}
	var res PollResult[S]

	if opts.Interval <= 0 {
		return res, InternalError(fmt.Errorf("poll interval must be positive, got %s", opts.Interval))
	}

	start := clk.Now()
	for attempt := 0; time.Duration(attempt)*opts.Interval < opts.Timeout; attempt++ {
		if err := ctx.Err(); err != nil {
			return res, err
		}

		status, err := probe(ctx)
		res.Probes++
		res.Elapsed = clk.Now().Sub(start)
		if err != nil {
			return res, err
		}
		res.LastObserved = status
		logging.Debug("poller", "probe %d observed %v after %s", res.Probes, status, res.Elapsed)

		if done(status) {
			res.Succeeded = true
			return res, nil
		}

		next := time.Duration(attempt+1) * opts.Interval
		if next >= opts.Timeout {
			break
		}

		if err := ctx.Err(); err != nil {
			return res, err
		}
		wait := start.Add(next).Sub(clk.Now())
		if wait < 0 {
			wait = 0
		}
		select {
		case <-ctx.Done():
			return res, ctx.Err()
		case <-clk.After(wait):
		}
	}

	// no further probe fits; wait for the deadline
	if remaining := start.Add(opts.Timeout).Sub(clk.Now()); remaining > 0 {
		select {
		case <-ctx.Done():
			res.Elapsed = clk.Now().Sub(start)
			return res, ctx.Err()
		case <-clk.After(remaining):
		}
	}

	res.Elapsed = clk.Now().Sub(start)
	return res, &Error{
		Category: CategoryTimeout,
		Message: fmt.Sprintf("Timed out after %s waiting for the operation to complete (last observed status: %v). The operation may still complete; this command stopped waiting for it.",
			opts.Timeout, res.LastObserved),
	}
}
