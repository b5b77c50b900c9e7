package tasks

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
)

type TaskType string

const (
	TaskTypeProbeSource        TaskType = "probe_source"
	TaskTypeCompactPreferences TaskType = "compact_preferences"
)

const (
	DefaultMaxRetries = 3
	maxRetryDelay     = 30 * time.Second
)

type TaskInterface interface {
	Execute(ctx context.Context) error
	GetID() string
	GetType() TaskType
	GetSubject() string
	GetRetryCount() int
	GetMaxRetries() int
	IncrementRetryCount()
	CanRetry() bool
	NextRetryDelay() time.Duration
	Start()
	GetDuration() time.Duration
}

type Task struct {
	ID         string
	Type       TaskType
	Subject    string // source name, or "*" for store-wide tasks
	RetryCount int
	MaxRetries int
	StartedAt  *time.Time

	retryBackOff backoff.BackOff
}

func (t *Task) GetID() string {
	return t.ID
}

func (t *Task) GetType() TaskType {
	return t.Type
}

func (t *Task) GetSubject() string {
	return t.Subject
}

func (t *Task) GetRetryCount() int {
	return t.RetryCount
}

func (t *Task) GetMaxRetries() int {
	return t.MaxRetries
}

func (t *Task) IncrementRetryCount() {
	t.RetryCount++
}

func (t *Task) CanRetry() bool {
	return t.RetryCount < t.MaxRetries
}

// NextRetryDelay grows exponentially from one second up to maxRetryDelay.
func (t *Task) NextRetryDelay() time.Duration {
	if t.retryBackOff == nil {
		t.retryBackOff = newRetryBackOff()
	}

	delay := t.retryBackOff.NextBackOff()
	if delay == backoff.Stop || delay > maxRetryDelay {
		return maxRetryDelay
	}
	return delay
}

func (t *Task) Start() {
	now := time.Now()
	t.StartedAt = &now
}

func (t *Task) GetDuration() time.Duration {
	if t.StartedAt == nil {
		return 0
	}
	return time.Since(*t.StartedAt)
}

func NewTask(taskType TaskType, subject string) Task {
	return Task{
		ID:           uuid.NewString(),
		Type:         taskType,
		Subject:      subject,
		RetryCount:   0,
		MaxRetries:   DefaultMaxRetries,
		retryBackOff: newRetryBackOff(),
	}
}

func newRetryBackOff() backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = time.Second
	b.Multiplier = 2
	b.RandomizationFactor = 0.1
	b.MaxInterval = maxRetryDelay
	b.MaxElapsedTime = 0
	b.Reset()
	return b
}
