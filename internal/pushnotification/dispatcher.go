package pushnotification

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/triageworks/sentinel/internal/eventbus"
	"github.com/triageworks/sentinel/internal/task"
)

// Dispatcher bridges the event bus to web push: new tasks arriving from the
// intake pipeline become browser notifications for the triage dashboard.
type Dispatcher struct {
	eventBus *eventbus.Bus
	taskRepo task.Repository
	sender   *Sender
}

func NewDispatcher(eventBus *eventbus.Bus, taskRepo task.Repository, sender *Sender) *Dispatcher {
	return &Dispatcher{
		eventBus: eventBus,
		taskRepo: taskRepo,
		sender:   sender,
	}
}

func (d *Dispatcher) Start(ctx context.Context) {
	subID, ch := d.eventBus.Subscribe(256)
	defer d.eventBus.Unsubscribe(subID)

	slog.Info("push notification dispatcher started")
	for {
		select {
		case <-ctx.Done():
			slog.Info("push notification dispatcher stopped")
			return
		case event, ok := <-ch:
			if !ok {
				return
			}
			if event.Type == eventbus.TypeTaskCreated {
				d.handleTaskCreated(ctx, event)
			}
		}
	}
}

func (d *Dispatcher) handleTaskCreated(ctx context.Context, event *eventbus.Event) {
	id, err := strconv.Atoi(event.ResourceID)
	if err != nil {
		slog.Error("push dispatcher: invalid task id", "id", event.ResourceID, "error", err)
		return
	}
	t, err := d.taskRepo.Get(ctx, id)
	if err != nil {
		slog.Error("push dispatcher: failed to get task", "id", id, "error", err)
		return
	}

	d.sender.SendToAll(ctx, &NotificationPayload{
		Title: "New task pending triage",
		Body:  t.Summary,
		URL:   fmt.Sprintf("/tasks/%d", t.ID),
		Tag:   event.ID,
	})
}
