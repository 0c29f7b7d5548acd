package dynamis

import (
	"sort"

	"github.com/akmonengine/dynamis/constraint"
)

// sortEventsByPair orders events by the canonical identity key of their
// pair, making the response visit order a pure function of the inputs.
func sortEventsByPair[T comparable](events []Event[T], identity func(T) string) {
	sort.SliceStable(events, func(a, b int) bool {
		keyA := makePairKey(identity, events[a].Pair.First, events[a].Pair.Second)
		keyB := makePairKey(identity, events[b].Pair.First, events[b].Pair.Second)
		return keyA.sortKey(identity) < keyB.sortKey(identity)
	})
}

// contactSolver is the built-in responder: iterative positional correction
// followed by iterative sequential impulses, with warm starting from the
// manifold cache. It treats bodies as translating point masses through the
// constraint.Body adapter.
type contactSolver[T comparable] struct {
	iterations int
	percent    float64
	slop       float64
}

// resolve applies the physical response for one frame's response-enabled
// Enter and Stay events. Exit events carry no live overlap and are not
// solved.
//
// The visit order is a pure function of the pair identities, so frames
// with identical inputs resolve identically. Warm-start impulses are read
// from the cache before the first velocity iteration and the accumulated
// results are written back after the last.
func (s *contactSolver[T]) resolve(
	adapter constraint.Body[T],
	events []Event[T],
	cache *ManifoldCache[T],
	identity func(T) string,
) {
	type workingContact struct {
		pair    Pair[T]
		key     string
		contact constraint.Contact[T]
	}

	working := make([]*workingContact, 0, len(events))
	for _, event := range events {
		if !event.ResponseEnabled || event.Kind == Exit {
			continue
		}
		key := makePairKey(identity, event.Pair.First, event.Pair.Second)
		working = append(working, &workingContact{
			pair: event.Pair,
			key:  key.sortKey(identity),
			contact: constraint.Contact[T]{
				A:      event.Pair.First,
				B:      event.Pair.Second,
				Normal: event.Manifold.Normal,
				Depth:  event.Manifold.Depth,
			},
		})
	}
	if len(working) == 0 {
		return
	}

	sort.SliceStable(working, func(a, b int) bool {
		return working[a].key < working[b].key
	})

	for i := 0; i < s.iterations; i++ {
		for _, w := range working {
			w.contact.SolvePosition(adapter, s.percent, s.slop)
		}
	}

	for _, w := range working {
		w.contact.WarmStart(adapter, cache.WarmStart(w.pair))
	}

	for i := 0; i < s.iterations; i++ {
		for _, w := range working {
			w.contact.SolveVelocity(adapter)
		}
	}

	for _, w := range working {
		cache.SetWarmStart(w.pair, w.contact.Accumulated)
	}
}
