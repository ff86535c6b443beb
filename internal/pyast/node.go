// Package pyast defines the immutable Python parse tree: an arena of
// nodes addressed by integer id, each carrying a byte range and a parent
// back-reference, plus a kind-specific payload. The arena owns node
// storage for exactly one file's lifetime (§9 "Cyclic parse-tree
// parent/child links").
package pyast

// Kind discriminates a Node, mirroring the grammar productions named in
// §3 "Parse node".
type Kind int

const (
	KindInvalid Kind = iota
	KindModule
	KindError // error-recovery placeholder; preserves context for completions

	// Statements
	KindClassDef
	KindFunctionDef
	KindLambda
	KindAssign
	KindAugAssign
	KindAnnAssign
	KindIf
	KindWhile
	KindFor
	KindTry
	KindExceptHandler
	KindWith
	KindWithItem
	KindReturn
	KindRaise
	KindYield
	KindYieldFrom
	KindGlobal
	KindNonlocal
	KindImport
	KindImportFrom
	KindPass
	KindBreak
	KindContinue
	KindAssert
	KindDel
	KindExprStmt
	KindDecorator

	// Expressions
	KindName
	KindNumberLit
	KindStringLit
	KindFString
	KindFStringExpr
	KindTuple
	KindListExpr
	KindSetExpr
	KindDictExpr
	KindComprehension
	KindComprehensionClause // one `for target in iter [if cond]*` clause
	KindCall
	KindArgument
	KindAttribute
	KindSubscript
	KindSlice
	KindUnaryOp
	KindBinOp
	KindBoolOp
	KindCompare
	KindTernary
	KindAwait
	KindStarred
	KindNamedExpr // walrus
	KindParameter
	KindParameters
	KindKeywordArg
)

var kindNames = map[Kind]string{
	KindInvalid: "Invalid", KindModule: "Module", KindError: "Error",
	KindClassDef: "ClassDef", KindFunctionDef: "FunctionDef", KindLambda: "Lambda",
	KindAssign: "Assign", KindAugAssign: "AugAssign", KindAnnAssign: "AnnAssign",
	KindIf: "If", KindWhile: "While", KindFor: "For", KindTry: "Try",
	KindExceptHandler: "ExceptHandler", KindWith: "With", KindWithItem: "WithItem",
	KindReturn: "Return", KindRaise: "Raise", KindYield: "Yield", KindYieldFrom: "YieldFrom",
	KindGlobal: "Global", KindNonlocal: "Nonlocal", KindImport: "Import",
	KindImportFrom: "ImportFrom", KindPass: "Pass", KindBreak: "Break",
	KindContinue: "Continue", KindAssert: "Assert", KindDel: "Del",
	KindExprStmt: "ExprStmt", KindDecorator: "Decorator",
	KindName: "Name", KindNumberLit: "NumberLit", KindStringLit: "StringLit",
	KindFString: "FString", KindFStringExpr: "FStringExpr", KindTuple: "Tuple",
	KindListExpr: "ListExpr", KindSetExpr: "SetExpr", KindDictExpr: "DictExpr",
	KindComprehension: "Comprehension", KindComprehensionClause: "ComprehensionClause",
	KindCall: "Call", KindArgument: "Argument",
	KindAttribute: "Attribute", KindSubscript: "Subscript", KindSlice: "Slice",
	KindUnaryOp: "UnaryOp", KindBinOp: "BinOp", KindBoolOp: "BoolOp",
	KindCompare: "Compare", KindTernary: "Ternary", KindAwait: "Await",
	KindStarred: "Starred", KindNamedExpr: "NamedExpr", KindParameter: "Parameter",
	KindParameters: "Parameters", KindKeywordArg: "KeywordArg",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return "Unknown"
}

// NodeID addresses a Node within one File's arena. InvalidNodeID (-1)
// means "no node"; 0 is the first allocated node.
type NodeID int32

const InvalidNodeID NodeID = -1

// Node is one immutable parse-tree entry. Kind-specific fields are
// populated according to Kind; Children is ordered and non-overlapping by
// construction (enforced by the parser, checked by the consistency walker
// in tests — §4.2, §8).
type Node struct {
	Kind     Kind
	Start    int
	End      int
	Parent   NodeID
	Children []NodeID

	Name       string // Name/Attribute/keyword-arg identifier, def/class name
	Operator   string // BinOp/UnaryOp/BoolOp/Compare/AugAssign operator spelling
	IsAsync    bool   // FunctionDef/For/With/ComprehensionClause
	// PrimaryBodyLen records how many of this node's statement children
	// belong to the primary suite, before any elif/else (If), else
	// (While/For), or except-handlers (Try, counting only the non-handler
	// children) that were appended after it with no other delimiter.
	// Zero means "no trailing clause was parsed".
	PrimaryBodyLen int
	// SecondaryBodyLen records the length of a Try node's `else` suite,
	// appended among its non-handler children directly after the primary
	// (try) suite; anything past it is the `finally` suite.
	SecondaryBodyLen int
	IsStarred  bool   // Argument/Parameter (*args), DoubleStar for **kwargs tracked via ParamKind
	ParamKind  ParameterKind
	Decorators []NodeID

	// Literal payloads
	NumberText  string
	StringKind  StringFlags
	StringValue string // decoded value (escapes resolved, unless Raw); concatenation-joined

	// Import payloads
	ImportModule string // dotted path as written
	ImportAlias  string
	ImportLevel  int // leading-dot count for relative imports
	IsWildcard   bool

	Errors []string // diagnostics attached directly to an Error node
}

// ParameterKind enumerates a parameter's binding kind, per §3 "Function".
type ParameterKind int

const (
	ParamPositionalOrKeyword ParameterKind = iota
	ParamPositionalOnly
	ParamVararg
	ParamKeywordOnly
	ParamVarKwarg
)

// StringFlags mirrors pytoken.StringFlags without importing that package,
// keeping pyast dependency-free of the lexer's internal representation.
type StringFlags struct {
	Raw, Bytes, FString, Unicode bool
}

// File is one source file's complete, immutable parse tree: a flat arena
// of Nodes plus the root Module node's id.
type File struct {
	Path  string
	Nodes []Node
	Root  NodeID
}

func NewFile(path string) *File {
	return &File{Path: path, Root: InvalidNodeID}
}

// Alloc appends a new node and returns its id. Parent links are fixed up
// by the builder (File.Attach), not by Alloc itself, matching the
// two-pass "build then fix parent links" shape of §4.2.
func (f *File) Alloc(n Node) NodeID {
	n.Parent = InvalidNodeID
	f.Nodes = append(f.Nodes, n)
	return NodeID(len(f.Nodes) - 1)
}

func (f *File) Get(id NodeID) *Node {
	if id < 0 || int(id) >= len(f.Nodes) {
		return nil
	}
	return &f.Nodes[id]
}

// Attach records parent<-child and child<-parent links and widens the
// parent's range to include every child already attached, satisfying the
// §8 invariant child.range ⊆ parent.range.
func (f *File) Attach(parent, child NodeID) {
	f.Nodes[child].Parent = parent
	f.Nodes[parent].Children = append(f.Nodes[parent].Children, child)
	c, p := &f.Nodes[child], &f.Nodes[parent]
	if c.Start < p.Start {
		p.Start = c.Start
	}
	if c.End > p.End {
		p.End = c.End
	}
}

// ParentOf returns the parent node id, or InvalidNodeID for the root.
func (f *File) ParentOf(id NodeID) NodeID {
	if n := f.Get(id); n != nil {
		return n.Parent
	}
	return InvalidNodeID
}

// Walk performs a pre-order traversal starting at id, calling visit for
// every node including id itself. Returning false from visit stops
// descent into that node's children (but continues with siblings).
func (f *File) Walk(id NodeID, visit func(NodeID, *Node) bool) {
	if id == InvalidNodeID {
		return
	}
	n := f.Get(id)
	if n == nil {
		return
	}
	if !visit(id, n) {
		return
	}
	for _, c := range n.Children {
		f.Walk(c, visit)
	}
}

// NodeAt returns the innermost node whose range contains offset, walking
// from the root. Used by editor providers (hover, completion, definition)
// to map a cursor position to a parse node.
func (f *File) NodeAt(offset int) NodeID {
	best := f.Root
	f.Walk(f.Root, func(id NodeID, n *Node) bool {
		if n.Start <= offset && offset <= n.End {
			best = id
			return true
		}
		return false
	})
	return best
}
