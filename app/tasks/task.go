package tasks

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/jonboulle/clockwork"
)

type TaskType string

const (
	TaskTypeRefreshZone TaskType = "refresh_zone"
)

type TaskInterface interface {
	Execute(ctx context.Context) error
	GetID() string
	GetType() TaskType
	GetZoneName() string
	Start()
	GetDuration() time.Duration
}

type Task struct {
	ID        string
	Type      TaskType
	ZoneName  string
	StartedAt *time.Time
	clock     clockwork.Clock
}

func (t *Task) GetID() string {
	return t.ID
}

func (t *Task) GetType() TaskType {
	return t.Type
}

func (t *Task) GetZoneName() string {
	return t.ZoneName
}

func (t *Task) Start() {
	now := t.clock.Now()
	t.StartedAt = &now
}

func (t *Task) GetDuration() time.Duration {
	if t.StartedAt == nil {
		return 0
	}
	return t.clock.Since(*t.StartedAt)
}

func NewTask(taskType TaskType, zoneName string, clock clockwork.Clock) Task {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	uniqueID := fmt.Sprintf("%d-%d", clock.Now().UnixNano(), rand.Intn(10000))

	return Task{
		ID:       uniqueID,
		Type:     taskType,
		ZoneName: zoneName,
		clock:    clock,
	}
}
