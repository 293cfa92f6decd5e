package retry

import (
	"context"
	"time"

	"github.com/vvka-141/prodmig/pkg/prodmig"
)

// Executor repeats an operation while it fails with transient errors.
// Execute is safe for concurrent use; WithOnRetry returns a copy.
type Executor struct {
	classifier prodmig.ErrorClassifier
	strategy   prodmig.BackoffStrategy
	onRetry    func(attempt int, err error, delay time.Duration)
}

// NewExecutor creates a new retry executor.
// Panics if classifier or strategy is nil.
func NewExecutor(classifier prodmig.ErrorClassifier, strategy prodmig.BackoffStrategy) *Executor {
	if classifier == nil {
		panic("classifier cannot be nil")
	}
	if strategy == nil {
		panic("strategy cannot be nil")
	}
	return &Executor{
		classifier: classifier,
		strategy:   strategy,
	}
}

// NewConnectExecutor returns the executor connectors use: the store error
// classifier with the default backoff.
func NewConnectExecutor() *Executor {
	return NewExecutor(
		NewStoreErrorClassifier(),
		NewExponentialBackoff(prodmig.DefaultRetryMaxAttempts,
			WithInitialDelay(prodmig.DefaultRetryInitialDelay),
			WithMaxDelay(prodmig.DefaultRetryMaxDelay),
		),
	)
}

// WithOnRetry returns a copy of e that calls callback before each wait.
func (e *Executor) WithOnRetry(callback func(attempt int, err error, delay time.Duration)) *Executor {
	clone := *e
	clone.onRetry = callback
	return &clone
}

// Execute runs operation until it succeeds, fails with a non-transient
// error, the retry budget is spent, or ctx is done. The last error is returned.
func (e *Executor) Execute(ctx context.Context, operation func(ctx context.Context) error) error {
	err := operation(ctx)
	maxAttempts := e.strategy.MaxAttempts()

	for attempt := 0; err != nil && e.classifier.IsTransient(err); attempt++ {
		if maxAttempts >= 0 && attempt >= maxAttempts {
			return err
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}

		delay := e.strategy.NextDelay(attempt)
		if e.onRetry != nil {
			e.onRetry(attempt, err, delay)
		}

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}

		err = operation(ctx)
	}
	return err
}
