package evaluator

import "github.com/shivasurya/pathfinder-pytype/internal/types"

// protocolKey memoizes a structural-compatibility check by the candidate
// class's and protocol's identity, per §4.5 "structural Protocol
// matching (memoised by candidate-class-id/protocol-id pair)". Classes
// are canonical per the Interner, so pointer identity is a valid cache
// key.
type protocolKey struct {
	candidate *types.Class
	protocol  *types.Class
}

// SatisfiesProtocol reports whether candidate structurally satisfies
// protocol: every member protocol declares must be present on candidate
// (via its own MRO) with a compatible type. Compatibility is an equal
// parameter count for callables (parameter and return types are not
// compared) and plain Equal for data members, or any candidate type when
// the protocol's member type is Unknown.
func (e *Evaluator) SatisfiesProtocol(candidate, protocol *types.Class) bool {
	if candidate == protocol {
		return true
	}
	key := protocolKey{candidate, protocol}
	if ok, cached := e.protocolCache[key]; cached {
		return ok
	}
	// Break self-referential protocol checks (a protocol method whose
	// signature mentions the protocol itself) optimistically: assume
	// satisfaction while still computing it, matching the evaluator's
	// general re-entrant-call convention.
	e.protocolCache[key] = true

	ok := true
	for _, name := range protocol.MemberNames() {
		want, _ := protocol.Member(name)
		got, _, found := candidate.ResolveMember(name)
		if !found {
			ok = false
			break
		}
		if !membersCompatible(want, got) {
			ok = false
			break
		}
	}
	e.protocolCache[key] = ok
	return ok
}

func membersCompatible(want, got *types.Member) bool {
	if want.Type.Kind == types.KindFunction && got.Type.Kind == types.KindFunction {
		wf, gf := want.Type.Function, got.Type.Function
		if len(wf.Parameters) != len(gf.Parameters) {
			return false
		}
		return true // parameter/return type compatibility left to a fuller solver
	}
	return types.Equal(want.Type, got.Type) || want.Type.Kind == types.KindUnknown
}
