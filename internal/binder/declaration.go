package binder

import "github.com/shivasurya/pathfinder-pytype/internal/pyast"

// DeclKind enumerates the declaration variants named in §3 "Declaration".
type DeclKind int

const (
	DeclVariable DeclKind = iota
	DeclParameter
	DeclFunction
	DeclClass
	DeclSpecialBuiltIn
	DeclAlias
	DeclIntrinsic
)

func (k DeclKind) String() string {
	switch k {
	case DeclVariable:
		return "Variable"
	case DeclParameter:
		return "Parameter"
	case DeclFunction:
		return "Function"
	case DeclClass:
		return "Class"
	case DeclSpecialBuiltIn:
		return "SpecialBuiltIn"
	case DeclAlias:
		return "Alias"
	case DeclIntrinsic:
		return "Intrinsic"
	default:
		return "Unknown"
	}
}

// Declaration is one binding site for a Symbol. Every variant carries the
// common defining-node/file/range fields; variant-specific fields are
// populated according to Kind and otherwise left zero.
type Declaration struct {
	Kind  DeclKind
	Node  pyast.NodeID
	File  string
	Start int
	End   int

	// Variable
	IsConstant bool
	IsFinal    bool
	Annotation pyast.NodeID // InvalidNodeID if unannotated

	// Parameter
	ParamKind pyast.ParameterKind

	// Function
	IsMethod bool

	// Alias (import)
	ImportPath     string
	SubmoduleChain []string
}
