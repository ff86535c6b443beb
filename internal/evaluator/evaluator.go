// Package evaluator implements type_of, the evaluator named in §4.5: a
// memoised function from parse node to Type, consulting the binder's
// scopes/declarations/flow graph for names and the import resolver for
// cross-file lookups.
package evaluator

import (
	"github.com/shivasurya/pathfinder-pytype/internal/binder"
	"github.com/shivasurya/pathfinder-pytype/internal/pyast"
	"github.com/shivasurya/pathfinder-pytype/internal/pyimport"
	"github.com/shivasurya/pathfinder-pytype/internal/types"
)

// FileProvider is the evaluator's view of the rest of the program: given a
// resolved file path it returns that file's bound form, and given an
// import reference it returns the resolver's answer. program.Program
// implements this; tests supply a map-backed stub.
type FileProvider interface {
	BoundFileAt(path string) (*binder.BoundFile, bool)
	ResolveImport(fromFile, module string, level int) (pyimport.Result, bool)
}

type cacheKey struct {
	file *binder.BoundFile
	node pyast.NodeID
}

// Evaluator owns the builtin type table, the canonical class/module
// interner, and the per-node memo cache, per §4.5 "type_of is memoised
// per source file; invalidation on edit is per-file".
type Evaluator struct {
	provider FileProvider
	builtins *builtinSet
	interner *types.Interner

	cache    map[cacheKey]*types.Type
	inFlight map[cacheKey]bool

	moduleTypes map[string]*types.Type // resolved file path -> Module Type
	classTypes  map[classKey]*types.Class
	fnTypes     map[cacheKey]*types.Function

	protocolCache map[protocolKey]bool
}

type classKey struct {
	file *binder.BoundFile
	node pyast.NodeID
}

// New constructs an Evaluator backed by provider for cross-file lookups.
func New(provider FileProvider) *Evaluator {
	in := types.NewInterner()
	return &Evaluator{
		provider:      provider,
		builtins:      newBuiltinSet(in),
		interner:      in,
		cache:         make(map[cacheKey]*types.Type),
		inFlight:      make(map[cacheKey]bool),
		moduleTypes:   make(map[string]*types.Type),
		classTypes:    make(map[classKey]*types.Class),
		fnTypes:       make(map[cacheKey]*types.Function),
		protocolCache: make(map[protocolKey]bool),
	}
}

// InvalidateFile drops every cached result keyed on file, per §4.5's
// per-file invalidation contract — called by the program layer after a
// file is re-bound.
func (e *Evaluator) InvalidateFile(file *binder.BoundFile) {
	for k := range e.cache {
		if k.file == file {
			delete(e.cache, k)
		}
	}
	for k := range e.fnTypes {
		if k.file == file {
			delete(e.fnTypes, k)
		}
	}
	for k := range e.classTypes {
		if k.file == file {
			delete(e.classTypes, k)
		}
	}
	delete(e.moduleTypes, file.File.Path)
}

// TypeOf returns the memoised type of node within file. Re-entrant calls
// for a node already being evaluated (a reference cycle through mutually
// recursive bindings, e.g. `x = f(); def f(): return x`) resolve to
// Unknown rather than iterating to a fixed point — a documented,
// single-pass approximation of §4.5's "fixed point or bounded widening to
// Unknown" contract; true iterative fixed-point solving is future work.
func (e *Evaluator) TypeOf(file *binder.BoundFile, node pyast.NodeID) *types.Type {
	if node == pyast.InvalidNodeID || file == nil {
		return types.Unknown()
	}
	key := cacheKey{file, node}
	if t, ok := e.cache[key]; ok {
		return t
	}
	if e.inFlight[key] {
		return types.Unknown()
	}
	e.inFlight[key] = true
	t := e.evalNode(file, node)
	delete(e.inFlight, key)
	if t == nil {
		t = types.Unknown()
	}
	e.cache[key] = t
	return t
}

func (e *Evaluator) evalNode(file *binder.BoundFile, node pyast.NodeID) *types.Type {
	n := file.File.Get(node)
	if n == nil {
		return types.Unknown()
	}
	switch n.Kind {
	case pyast.KindNumberLit:
		return e.evalNumberLit(n)
	case pyast.KindStringLit, pyast.KindFString:
		return e.evalStringLit(n)
	case pyast.KindName:
		return e.evalName(file, node, n)
	case pyast.KindAttribute:
		return e.evalAttribute(file, node, n)
	case pyast.KindSubscript:
		return e.evalSubscript(file, node, n)
	case pyast.KindCall:
		return e.evalCall(file, node, n)
	case pyast.KindBinOp:
		return e.evalBinOp(file, n)
	case pyast.KindUnaryOp:
		return e.evalUnaryOp(file, n)
	case pyast.KindBoolOp:
		return e.evalBoolOp(file, n)
	case pyast.KindCompare:
		return types.NewObject(e.builtins.bool_)
	case pyast.KindTernary:
		return e.evalTernary(file, n)
	case pyast.KindNamedExpr:
		// `(x := value)` evaluates to value; its binding side-effect is
		// the binder's concern, not type_of's.
		if len(n.Children) == 2 {
			return e.TypeOf(file, n.Children[1])
		}
		return types.Unknown()
	case pyast.KindTuple:
		return e.evalTuple(file, n)
	case pyast.KindListExpr:
		return e.evalContainer(file, n, e.builtins.list_)
	case pyast.KindSetExpr:
		return e.evalContainer(file, n, e.builtins.set_)
	case pyast.KindDictExpr:
		return e.evalDict(file, n)
	case pyast.KindLambda:
		return e.evalLambda(file, node, n)
	case pyast.KindFunctionDef:
		return types.NewFunction(e.functionOf(file, node, n))
	case pyast.KindClassDef:
		return types.ClassType(e.classOf(file, node, n))
	case pyast.KindAwait:
		if len(n.Children) == 1 {
			return e.TypeOf(file, n.Children[0])
		}
		return types.Unknown()
	case pyast.KindStarred:
		if len(n.Children) == 1 {
			return e.TypeOf(file, n.Children[0])
		}
		return types.Unknown()
	case pyast.KindComprehension:
		// Element type drives the container's type argument; the exact
		// container class (list/set/dict/generator) depends on the
		// comprehension's enclosing bracket, which the parser does not
		// currently retain on the Comprehension node itself, so this
		// defaults to `list`.
		if len(n.Children) > 0 {
			elem := e.TypeOf(file, n.Children[0])
			return types.NewObject(e.builtins.list_, elem)
		}
		return types.NewObject(e.builtins.list_)
	default:
		return types.Unknown()
	}
}

func (e *Evaluator) evalNumberLit(n *pyast.Node) *types.Type {
	return literalOfNumberText(e.builtins, n.NumberText)
}

func (e *Evaluator) evalStringLit(n *pyast.Node) *types.Type {
	base := e.builtins.str_
	if n.StringKind.Bytes {
		base = e.builtins.bytes_
	}
	baseType := types.NewObject(base)
	if n.StringKind.Bytes {
		return types.NewLiteral(baseType, &types.LiteralValue{Kind: types.LiteralBytes, Bytes: n.StringValue})
	}
	return types.NewLiteral(baseType, &types.LiteralValue{Kind: types.LiteralStr, Str: n.StringValue})
}

func (e *Evaluator) evalTuple(file *binder.BoundFile, n *pyast.Node) *types.Type {
	args := make([]*types.Type, 0, len(n.Children))
	for _, c := range n.Children {
		args = append(args, e.TypeOf(file, c).General())
	}
	return types.NewObject(e.builtins.tuple_, args...)
}

func (e *Evaluator) evalContainer(file *binder.BoundFile, n *pyast.Node, cls *types.Class) *types.Type {
	if len(n.Children) == 0 {
		return types.NewObject(cls, types.Unknown())
	}
	elems := make([]*types.Type, 0, len(n.Children))
	for _, c := range n.Children {
		elems = append(elems, e.TypeOf(file, c).General())
	}
	return types.NewObject(cls, types.NewUnion(elems...))
}

// evalDict approximates `{k: v, ...}` by pairing children two at a time;
// `**other` spreads and comprehension dict forms fall back to a single
// child being both key and value source, an acceptable approximation
// since no scenario in §8 depends on precise dict-literal key/value
// splitting.
func (e *Evaluator) evalDict(file *binder.BoundFile, n *pyast.Node) *types.Type {
	if len(n.Children) == 0 {
		return types.NewObject(e.builtins.dict_, types.Unknown(), types.Unknown())
	}
	var keys, vals []*types.Type
	for i := 0; i+1 < len(n.Children); i += 2 {
		keys = append(keys, e.TypeOf(file, n.Children[i]).General())
		vals = append(vals, e.TypeOf(file, n.Children[i+1]).General())
	}
	if len(keys) == 0 {
		return types.NewObject(e.builtins.dict_, types.Unknown(), types.Unknown())
	}
	return types.NewObject(e.builtins.dict_, types.NewUnion(keys...), types.NewUnion(vals...))
}
