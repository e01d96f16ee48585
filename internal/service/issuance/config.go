package issuance

import (
	"context"
	"errors"
	"math"
	"time"

	"github.com/cenkalti/backoff/v4"
)

const (
	defaultConfirmationTimeout = 2 * time.Minute
	defaultTaskLease           = 5 * time.Minute
	defaultPollInterval        = 15 * time.Second
	defaultWorkerCount         = 8
	defaultBatchSize           = 100
)

// RetryPolicy bounds retries of transient infrastructure failures.
type RetryPolicy struct {
	MaxAttempts    int
	InitialBackoff time.Duration
	MaxBackoff     time.Duration
	Multiplier     float64
}

func (p RetryPolicy) validate(name string) error {
	if p.MaxAttempts < 1 {
		return errors.New(name + ": max attempts must be at least 1")
	}
	if p.InitialBackoff <= 0 || p.MaxBackoff < p.InitialBackoff {
		return errors.New(name + ": backoff bounds are invalid")
	}
	if p.Multiplier < 1 {
		return errors.New(name + ": multiplier must be at least 1")
	}
	return nil
}

func (p RetryPolicy) backOff(ctx context.Context) backoff.BackOffContext {
	exp := backoff.NewExponentialBackOff()
	exp.InitialInterval = p.InitialBackoff
	exp.MaxInterval = p.MaxBackoff
	exp.Multiplier = p.Multiplier
	exp.MaxElapsedTime = 0
	exp.Reset()
	return backoff.WithContext(backoff.WithMaxRetries(exp, uint64(p.MaxAttempts-1)), ctx)
}

// Delay returns the wait before the attempt following the given number of failed attempts.
func (p RetryPolicy) Delay(attempts int) time.Duration {
	d := float64(p.InitialBackoff) * math.Pow(p.Multiplier, float64(attempts))
	if d > float64(p.MaxBackoff) || math.IsInf(d, 0) {
		return p.MaxBackoff
	}
	return time.Duration(d)
}

// Config holds the reconciler settings.
type Config struct {
	// ContentRetry bounds content store uploads during a request.
	ContentRetry RetryPolicy
	// SubmitRetry bounds ledger submissions within one attempt.
	SubmitRetry RetryPolicy
	// TaskRetry schedules background attempts. Once a task has been rescheduled
	// TaskRetry.MaxAttempts times, the next round fails it if the ledger lookup
	// that opens the round finds no entry.
	TaskRetry           RetryPolicy
	ConfirmationTimeout time.Duration
	// TaskLease is how long a claimed task is hidden from other workers.
	TaskLease    time.Duration
	PollInterval time.Duration
	WorkerCount  int
	BatchSize    int
}

// DefaultConfig returns production defaults.
func DefaultConfig() Config {
	return Config{
		ContentRetry:        RetryPolicy{MaxAttempts: 4, InitialBackoff: 500 * time.Millisecond, MaxBackoff: 5 * time.Second, Multiplier: 2},
		SubmitRetry:         RetryPolicy{MaxAttempts: 3, InitialBackoff: time.Second, MaxBackoff: 10 * time.Second, Multiplier: 2},
		TaskRetry:           RetryPolicy{MaxAttempts: 20, InitialBackoff: 30 * time.Second, MaxBackoff: 30 * time.Minute, Multiplier: 2},
		ConfirmationTimeout: defaultConfirmationTimeout,
		TaskLease:           defaultTaskLease,
		PollInterval:        defaultPollInterval,
		WorkerCount:         defaultWorkerCount,
		BatchSize:           defaultBatchSize,
	}
}

func (c Config) validate() error {
	if err := c.ContentRetry.validate("content retry"); err != nil {
		return err
	}
	if err := c.SubmitRetry.validate("submit retry"); err != nil {
		return err
	}
	if err := c.TaskRetry.validate("task retry"); err != nil {
		return err
	}
	if c.ConfirmationTimeout <= 0 {
		return errors.New("confirmation timeout must be positive")
	}
	if c.TaskLease <= c.ConfirmationTimeout {
		return errors.New("task lease must exceed the confirmation timeout")
	}
	if c.PollInterval <= 0 || c.WorkerCount <= 0 || c.BatchSize <= 0 {
		return errors.New("worker poll interval, count and batch size must be positive")
	}
	return nil
}
