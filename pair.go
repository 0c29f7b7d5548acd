package dynamis

import "fmt"

// Pair is an unordered pair of items. First and Second preserve the order
// in which the pair was discovered, for iteration; identity is symmetric,
// so {a, b} and {b, a} name the same pair everywhere the engine keys by
// pairs.
type Pair[T comparable] struct {
	First  T
	Second T
}

// pairKey is the canonical map key for a pair: the ends are ordered by the
// identity function so both argument orders collide on the same entry.
type pairKey[T comparable] struct {
	a, b T
}

// makePairKey canonicalizes a pair. Ties on identity keep the given order,
// so two distinct items that share an identity string produce different
// keys for the two argument orders.
func makePairKey[T comparable](identity func(T) string, first, second T) pairKey[T] {
	if identity(second) < identity(first) {
		first, second = second, first
	}
	return pairKey[T]{a: first, b: second}
}

// sortKey is the deterministic ordering key for response events: a pure
// function of the pair's member identities.
func (k pairKey[T]) sortKey(identity func(T) string) string {
	return identity(k.a) + "\x00" + identity(k.b)
}

// defaultIdentity derives a textual identity from the item's value with
// fmt.Sprint. It is only as stable and as distinct as that printed form: a
// pointer to a struct prints the struct's fields, so its identity changes
// when they do. Hosts with cheaper or more meaningful identities override
// it with WithIdentity.
func defaultIdentity[T comparable](item T) string {
	return fmt.Sprint(item)
}

// pairRecord is what a frame knows about one colliding pair.
type pairRecord[T comparable] struct {
	pair            Pair[T]
	responseEnabled bool
	manifold        Manifold
}

// pairSet is a set of pair records that iterates in insertion order. Go
// map iteration is randomized, so every structure feeding the event stream
// or the solver goes through one of these to keep frames deterministic.
type pairSet[T comparable] struct {
	identity func(T) string
	entries  map[pairKey[T]]*pairRecord[T]
	order    []pairKey[T]
}

func newPairSet[T comparable](identity func(T) string) *pairSet[T] {
	return &pairSet[T]{
		identity: identity,
		entries:  make(map[pairKey[T]]*pairRecord[T]),
	}
}

// add inserts a record, keeping the first occurrence on duplicates.
func (s *pairSet[T]) add(record pairRecord[T]) {
	key := makePairKey(s.identity, record.pair.First, record.pair.Second)
	if _, ok := s.entries[key]; ok {
		return
	}
	s.entries[key] = &record
	s.order = append(s.order, key)
}

func (s *pairSet[T]) has(key pairKey[T]) bool {
	_, ok := s.entries[key]
	return ok
}

func (s *pairSet[T]) get(key pairKey[T]) (*pairRecord[T], bool) {
	record, ok := s.entries[key]
	return record, ok
}

func (s *pairSet[T]) len() int {
	return len(s.order)
}
