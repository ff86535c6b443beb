package types

import "golang.org/x/exp/slices"

// NewUnion builds a canonical Union type from members: flattened (nested
// unions are spliced in), deduplicated by structural equality, and
// ordered for stable caching keys and diagnostic rendering. `Union[T]`
// degenerates to T; an empty member list degenerates to Unknown, since a
// union of nothing carries no information. None (the literal `NoneType`
// instance, represented by callers as an Object of the `NoneType` class)
// is a first-class element and is never special-cased here — per §3
// "None is a first-class element" it sorts and dedups like any other
// member.
func NewUnion(members ...*Type) *Type {
	flat := make([]*Type, 0, len(members))
	for _, m := range members {
		if m == nil {
			continue
		}
		if m.Kind == KindUnion {
			flat = append(flat, m.Members...)
			continue
		}
		flat = append(flat, m)
	}

	deduped := make([]*Type, 0, len(flat))
	for _, m := range flat {
		seen := false
		for _, d := range deduped {
			if Equal(m, d) {
				seen = true
				break
			}
		}
		if !seen {
			deduped = append(deduped, m)
		}
	}

	switch len(deduped) {
	case 0:
		return Unknown()
	case 1:
		return deduped[0]
	}

	slices.SortFunc(deduped, func(a, b *Type) int {
		ka, kb := Key(a), Key(b)
		switch {
		case ka < kb:
			return -1
		case ka > kb:
			return 1
		default:
			return 0
		}
	})
	return &Type{Kind: KindUnion, Members: deduped}
}
