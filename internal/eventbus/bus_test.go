package eventbus

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublishReachesAllSubscribers(t *testing.T) {
	bus := New()
	_, ch1 := bus.Subscribe(4)
	_, ch2 := bus.Subscribe(4)

	bus.PublishNew(TypeTaskCreated, "1", "summary", map[string]string{"project_id": "P1"})

	for _, ch := range []<-chan *Event{ch1, ch2} {
		select {
		case ev := <-ch:
			assert.Equal(t, TypeTaskCreated, ev.Type)
			assert.Equal(t, "1", ev.ResourceID)
			assert.Equal(t, "summary", ev.Payload)
			assert.Equal(t, "P1", ev.Metadata["project_id"])
			assert.NotEmpty(t, ev.ID)
			assert.False(t, ev.CreatedAt.IsZero())
		default:
			t.Fatal("subscriber did not receive the event")
		}
	}
}

func TestPublishDropsWhenBufferFull(t *testing.T) {
	bus := New()
	_, ch := bus.Subscribe(1)

	bus.PublishNew(TypeTaskCreated, "1", "", nil)
	bus.PublishNew(TypeTaskUpdated, "1", "", nil)

	ev := <-ch
	assert.Equal(t, TypeTaskCreated, ev.Type)

	select {
	case extra := <-ch:
		t.Fatalf("expected overflow event to be dropped, got %s", extra.Type)
	default:
	}
}

func TestUnsubscribeClosesChannel(t *testing.T) {
	bus := New()
	id, ch := bus.Subscribe(1)
	bus.Unsubscribe(id)

	_, open := <-ch
	require.False(t, open)

	// Publishing after unsubscribe must not panic.
	bus.PublishNew(TypeTaskDeleted, "1", "", nil)
}
