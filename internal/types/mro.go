package types

import "golang.org/x/exp/slices"

// Linearize computes c's method resolution order by C3 linearisation
// over its Bases, caches it on c, and returns it. If no consistent
// linearisation exists (an inconsistent base ordering), the evaluator is
// expected to emit a diagnostic and Linearize falls back to [c, object]
// per §8 "if none exists ... MRO is set to the class itself followed by
// object", leaving InconsistentMRO true so the caller can tell the
// fallback path was taken.
func Linearize(c *Class) []*Class {
	if c.MRO != nil {
		return c.MRO
	}
	if len(c.Bases) == 0 {
		c.MRO = []*Class{c}
		return c.MRO
	}

	sequences := make([][]*Class, 0, len(c.Bases)+1)
	var baseClasses []*Class
	for _, base := range c.Bases {
		if base == nil || base.Kind != KindClass || base.Class == nil {
			continue
		}
		baseClasses = append(baseClasses, base.Class)
		sequences = append(sequences, Linearize(base.Class))
	}
	sequences = append(sequences, append([]*Class{}, baseClasses...))

	merged, ok := c3Merge(sequences)
	if !ok {
		c.MRO = []*Class{c, objectClass}
		c.InconsistentMRO = true
		return c.MRO
	}
	c.MRO = append([]*Class{c}, merged...)
	return c.MRO
}

// objectClass is the root of every MRO fallback; it has no further bases
// of its own.
var objectClass = &Class{Name: "object", ModulePath: "builtins", members: map[string]*Member{}}

// ObjectClass returns the canonical `object` class every MRO eventually
// reaches.
func ObjectClass() *Class { return objectClass }

// c3Merge merges C3 linearisation sequences: repeatedly take the head of
// the first sequence that does not appear in the tail of any other
// sequence, per the standard algorithm. Returns ok=false if no such head
// exists while sequences remain non-empty (an inconsistent hierarchy).
func c3Merge(sequences [][]*Class) ([]*Class, bool) {
	var result []*Class
	seqs := make([][]*Class, 0, len(sequences))
	for _, s := range sequences {
		if len(s) > 0 {
			seqs = append(seqs, append([]*Class{}, s...))
		}
	}

	for len(seqs) > 0 {
		var head *Class
		for _, s := range seqs {
			candidate := s[0]
			if inAnyTail(candidate, seqs) {
				continue
			}
			head = candidate
			break
		}
		if head == nil {
			return nil, false
		}
		result = append(result, head)
		for i := range seqs {
			seqs[i] = removeHeadIfEqual(seqs[i], head)
		}
		seqs = compactEmpty(seqs)
	}
	return result, true
}

func inAnyTail(c *Class, seqs [][]*Class) bool {
	for _, s := range seqs {
		if slices.Contains(s[1:], c) {
			return true
		}
	}
	return false
}

func removeHeadIfEqual(s []*Class, head *Class) []*Class {
	if len(s) > 0 && s[0] == head {
		return s[1:]
	}
	return s
}

func compactEmpty(seqs [][]*Class) [][]*Class {
	out := seqs[:0]
	for _, s := range seqs {
		if len(s) > 0 {
			out = append(out, s)
		}
	}
	return out
}
