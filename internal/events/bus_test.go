package events

import (
	"testing"
	"time"
)

func TestBusPublishSubscribe(t *testing.T) {
	bus := New()
	received := make(chan JobFinishedEvent, 1)

	unsub := bus.Subscribe(func(e JobFinishedEvent) {
		received <- e
	})
	defer unsub()

	bus.Publish(JobFinishedEvent{JobID: 3, PID: 1234, ExitCode: 7, Command: "sh -c 'exit 7'"})

	select {
	case got := <-received:
		if got.JobID != 3 || got.ExitCode != 7 {
			t.Errorf("unexpected event: %+v", got)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for event")
	}
}

func TestBusMultipleSubscribers(t *testing.T) {
	bus := New()
	received1 := make(chan JobStartedEvent, 1)
	received2 := make(chan JobStartedEvent, 1)

	unsub1 := bus.Subscribe(func(e JobStartedEvent) { received1 <- e })
	defer unsub1()
	unsub2 := bus.Subscribe(func(e JobStartedEvent) { received2 <- e })
	defer unsub2()

	bus.Publish(JobStartedEvent{JobID: 1, PID: 99, Command: "echo hi"})

	for i, ch := range []chan JobStartedEvent{received1, received2} {
		select {
		case <-ch:
		case <-time.After(2 * time.Second):
			t.Fatalf("subscriber %d never received the event", i+1)
		}
	}
}

func TestBusTypeSelectivity(t *testing.T) {
	bus := New()
	started := make(chan JobStartedEvent, 1)

	unsub := bus.Subscribe(func(e JobStartedEvent) { started <- e })
	defer unsub()

	bus.Publish(JobFailedEvent{JobID: 1, Command: "nope", Error: "not found"})

	select {
	case <-started:
		t.Error("JobStartedEvent subscriber received a JobFailedEvent")
	case <-time.After(200 * time.Millisecond):
	}
}

func TestBusUnknownHandler(t *testing.T) {
	bus := New()
	// Wrong handler shape gets a no-op unsubscribe, not a panic.
	unsub := bus.Subscribe(func(int) {})
	unsub()
}
