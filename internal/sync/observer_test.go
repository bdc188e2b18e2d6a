package sync

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type recordingObserver struct {
	name  string
	calls *[]string
}

func TestObserverRegistry_NotifyOrder(t *testing.T) {
	t.Parallel()

	var calls []string
	a := &recordingObserver{name: "a", calls: &calls}
	b := &recordingObserver{name: "b", calls: &calls}
	c := &recordingObserver{name: "c", calls: &calls}

	registry := NewObserverRegistry[*recordingObserver]()
	registry.Register(a)
	registry.Register(b)
	registry.Register(c)
	registry.Register(a)

	assert.Equal(t, 3, registry.Len())

	registry.Notify(func(o *recordingObserver) { *o.calls = append(*o.calls, o.name) })
	assert.Equal(t, []string{"a", "b", "c"}, calls)

	registry.Unregister(b)
	calls = nil
	registry.Notify(func(o *recordingObserver) { *o.calls = append(*o.calls, o.name) })
	assert.Equal(t, []string{"a", "c"}, calls)
}

func TestObserverRegistry_PanicIsolated(t *testing.T) {
	t.Parallel()

	var calls []string
	registry := NewObserverRegistry[*recordingObserver]()
	registry.Register(&recordingObserver{name: "first", calls: &calls})
	registry.Register(&recordingObserver{name: "panics", calls: &calls})
	registry.Register(&recordingObserver{name: "last", calls: &calls})

	assert.NotPanics(t, func() {
		registry.Notify(func(o *recordingObserver) {
			if o.name == "panics" {
				panic("observer failure")
			}
			*o.calls = append(*o.calls, o.name)
		})
	})
	assert.Equal(t, []string{"first", "last"}, calls)
}

func TestObserverRegistry_SnapshotDuringNotify(t *testing.T) {
	t.Parallel()

	var calls []string
	registry := NewObserverRegistry[*recordingObserver]()
	late := &recordingObserver{name: "late", calls: &calls}
	registry.Register(&recordingObserver{name: "early", calls: &calls})

	// Registering from inside a notification does not affect the ongoing pass
	registry.Notify(func(o *recordingObserver) {
		*o.calls = append(*o.calls, o.name)
		registry.Register(late)
	})
	assert.Equal(t, []string{"early"}, calls)
	assert.Equal(t, 2, registry.Len())
}

func TestReason_RoundTrip(t *testing.T) {
	t.Parallel()

	tests := []struct {
		reason Reason
		str    string
	}{
		{ReasonStartup, "startup"},
		{ReasonUser, "user"},
		{ReasonEngineChange, "engine_change"},
		{ReasonFirstSync, "first_sync"},
		{ReasonScheduled, "periodic"},
	}

	for _, tt := range tests {
		t.Run(tt.str, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.str, tt.reason.String())
			parsed, err := ParseReason(tt.str)
			assert.NoError(t, err)
			assert.Equal(t, tt.reason, parsed)
		})
	}

	_, err := ParseReason("bogus")
	assert.ErrorIs(t, err, ErrUnknownReason)
}

func TestParseEngine(t *testing.T) {
	t.Parallel()

	e, err := ParseEngine("passwords")
	assert.NoError(t, err)
	assert.Equal(t, EnginePasswords, e)

	_, err = ParseEngine("forms")
	assert.ErrorIs(t, err, ErrUnknownEngine)

	_, err = ParseEngine("addresses")
	assert.ErrorIs(t, err, ErrUnknownEngine)
}
