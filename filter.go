package dynamis

import "fmt"

// Kind separates physically responding pairs from sensor overlaps.
type Kind uint8

const (
	// KindSolid collisions get events and a physical response.
	KindSolid Kind = iota
	// KindTrigger collisions get events only; the solver leaves both
	// bodies untouched.
	KindTrigger
)

func (k Kind) String() string {
	switch k {
	case KindSolid:
		return "solid"
	case KindTrigger:
		return "trigger"
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}

// Filter decides which pairs collide at all. Layer says what an item is,
// Mask says what it collides with; a pair survives only when each side's
// layer intersects the other side's mask.
type Filter struct {
	Layer uint32
	Mask  uint32
	Kind  Kind
}

// DefaultFilter matches everything and responds physically. Items whose
// filter provider returns nil get this.
func DefaultFilter() Filter {
	return Filter{Layer: ^uint32(0), Mask: ^uint32(0), Kind: KindSolid}
}

// Matches applies the mutual layer/mask test.
func (f Filter) Matches(other Filter) bool {
	return f.Layer&other.Mask != 0 && other.Layer&f.Mask != 0
}

// FilterFunc maps an item to its collision filter. Returning nil means the
// default filter.
type FilterFunc[T comparable] func(item T) *Filter

// Candidate is a broad-phase pair that survived filtering, annotated with
// whether the solver may respond to it (false as soon as either side is a
// trigger).
type Candidate[T comparable] struct {
	Pair            Pair[T]
	ResponseEnabled bool
}

// Classify filters candidate pairs. Nil entries in the input are silently
// skipped; a nil collection or provider is a caller bug and is rejected.
func Classify[T comparable](pairs []*Pair[T], filterOf FilterFunc[T]) ([]Candidate[T], error) {
	if pairs == nil {
		return nil, fmt.Errorf("classify: nil candidate collection")
	}
	if filterOf == nil {
		return nil, fmt.Errorf("classify: nil filter provider")
	}

	out := make([]Candidate[T], 0, len(pairs))
	for _, pair := range pairs {
		if pair == nil {
			continue
		}
		if candidate, ok := classifyPair(*pair, filterOf); ok {
			out = append(out, candidate)
		}
	}
	return out, nil
}

// classifyPair is the per-pair core shared with the world's frame loop.
func classifyPair[T comparable](pair Pair[T], filterOf FilterFunc[T]) (Candidate[T], bool) {
	filterA := resolveFilter(pair.First, filterOf)
	filterB := resolveFilter(pair.Second, filterOf)
	if !filterA.Matches(filterB) {
		return Candidate[T]{}, false
	}
	return Candidate[T]{
		Pair:            pair,
		ResponseEnabled: filterA.Kind == KindSolid && filterB.Kind == KindSolid,
	}, true
}

func resolveFilter[T comparable](item T, filterOf FilterFunc[T]) Filter {
	if filterOf == nil {
		return DefaultFilter()
	}
	if f := filterOf(item); f != nil {
		return *f
	}
	return DefaultFilter()
}
