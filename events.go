package dynamis

import (
	"fmt"

	"github.com/akmonengine/dynamis/contact"
)

// Manifold is the contact manifold type events and the cache carry.
type Manifold = contact.Manifold

// EventKind is the lifecycle stage of a colliding pair.
type EventKind uint8

const (
	// Enter fires the first frame a pair collides.
	Enter EventKind = iota
	// Stay fires every subsequent frame the pair keeps colliding.
	Stay
	// Exit fires the first frame a previously colliding pair no longer
	// does; its event carries the last manifold seen.
	Exit
)

func (k EventKind) String() string {
	switch k {
	case Enter:
		return "enter"
	case Stay:
		return "stay"
	case Exit:
		return "exit"
	}
	return fmt.Sprintf("eventkind(%d)", uint8(k))
}

// Event is one pair lifecycle notification for one frame.
type Event[T comparable] struct {
	Pair            Pair[T]
	Kind            EventKind
	ResponseEnabled bool
	Manifold        Manifold
}

// EventListener receives events subscribed through World.OnEvent. The
// event slice returned by Update remains the source of truth; listeners
// are a convenience surface on top of it.
type EventListener[T comparable] func(event Event[T])

// diffEvents compares this frame's colliding set against the previous
// frame's and produces the event list: all Enters, then all Stays, then
// all Exits, each group in its set's insertion order. Exit events reuse
// the pair's last recorded manifold and response flag.
func diffEvents[T comparable](prev, curr *pairSet[T]) []Event[T] {
	events := make([]Event[T], 0, curr.len())

	for _, key := range curr.order {
		record := curr.entries[key]
		if prev.has(key) {
			continue
		}
		events = append(events, Event[T]{
			Pair:            record.pair,
			Kind:            Enter,
			ResponseEnabled: record.responseEnabled,
			Manifold:        record.manifold,
		})
	}

	for _, key := range curr.order {
		record := curr.entries[key]
		if !prev.has(key) {
			continue
		}
		events = append(events, Event[T]{
			Pair:            record.pair,
			Kind:            Stay,
			ResponseEnabled: record.responseEnabled,
			Manifold:        record.manifold,
		})
	}

	for _, key := range prev.order {
		if curr.has(key) {
			continue
		}
		record := prev.entries[key]
		events = append(events, Event[T]{
			Pair:            record.pair,
			Kind:            Exit,
			ResponseEnabled: record.responseEnabled,
			Manifold:        record.manifold,
		})
	}

	return events
}
