package script

import (
	"context"
	"fmt"
	"time"

	"github.com/chazu/ifcgeom/pkg/record"
)

type loadResult struct {
	model  *record.Model
	errors []EvalError
	err    error
}

// waitWithTimeout waits for a result from ch until the timeout expires or
// ctx is done. The evaluating goroutine may still be running afterwards;
// its result is dropped into the buffered channel and discarded.
func waitWithTimeout(ctx context.Context, ch <-chan loadResult, timeout time.Duration) (*record.Model, []EvalError, error) {
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case res := <-ch:
		return res.model, res.errors, res.err
	case <-timer.C:
		return nil, nil, fmt.Errorf("evaluation timed out after %s", timeout)
	case <-ctx.Done():
		return nil, nil, fmt.Errorf("evaluation cancelled: %w", ctx.Err())
	}
}
