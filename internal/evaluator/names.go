package evaluator

import (
	"github.com/shivasurya/pathfinder-pytype/internal/binder"
	"github.com/shivasurya/pathfinder-pytype/internal/pyast"
	"github.com/shivasurya/pathfinder-pytype/internal/types"
)

// evalName resolves a Name reference: the three Python singleton
// keywords first (parsed as Name nodes, per pyparser's atom grammar),
// then symbol lookup through the enclosing scope chain, then flow-graph
// narrowing of whatever the declaration's static type says.
func (e *Evaluator) evalName(file *binder.BoundFile, node pyast.NodeID, n *pyast.Node) *types.Type {
	switch n.Name {
	case "None":
		return e.builtins.none
	case "True":
		return types.NewLiteral(types.NewObject(e.builtins.bool_), &types.LiteralValue{Kind: types.LiteralBool, Bool: true})
	case "False":
		return types.NewLiteral(types.NewObject(e.builtins.bool_), &types.LiteralValue{Kind: types.LiteralBool, Bool: false})
	}

	scope := e.enclosingScope(file, node)
	if scope == nil {
		return types.Unknown()
	}
	sym, declScope := scope.Lookup(n.Name)
	if sym == nil {
		return types.Unknown()
	}
	static := e.typeOfDeclarations(file, sym)
	if declScope != nil && declScope.Kind == binder.ScopeBuiltin {
		// Builtin names have no source declaration to narrow from.
		return static
	}
	return e.narrowAt(file, node, sym, static)
}

// enclosingScope walks up from node's parse-tree position to the nearest
// scope-introducing ancestor the binder recorded, since pyast nodes do
// not themselves carry a scope pointer.
func (e *Evaluator) enclosingScope(file *binder.BoundFile, node pyast.NodeID) *binder.Scope {
	for cur := node; cur != pyast.InvalidNodeID; {
		n := file.File.Get(cur)
		if n == nil {
			break
		}
		if s, ok := file.ScopeOf(cur); ok {
			return s
		}
		cur = n.Parent
	}
	return file.ModuleScope
}

// typeOfDeclarations folds every declaration a symbol has accumulated
// into one static type: a re-bound name's static type is the union of
// every assignment's type, since flow narrowing (narrowAt) is what picks
// the declaration(s) actually reaching a given reference.
func (e *Evaluator) typeOfDeclarations(file *binder.BoundFile, sym *binder.Symbol) *types.Type {
	if len(sym.Declarations) == 0 {
		return types.Unknown()
	}
	members := make([]*types.Type, 0, len(sym.Declarations))
	for _, d := range sym.Declarations {
		members = append(members, e.typeOfDeclaration(file, d))
	}
	return types.NewUnion(members...)
}

func (e *Evaluator) typeOfDeclaration(file *binder.BoundFile, d *binder.Declaration) *types.Type {
	switch d.Kind {
	case binder.DeclSpecialBuiltIn:
		return e.typeOfSpecialBuiltin(d)
	case binder.DeclIntrinsic:
		return types.Unknown()
	case binder.DeclVariable, binder.DeclParameter:
		if d.Annotation != pyast.InvalidNodeID {
			return e.EvalAnnotation(file, d.Annotation)
		}
		if d.Kind == binder.DeclVariable && d.Node != pyast.InvalidNodeID {
			// A variable's Declaration.Node is its target Name; the
			// binder does not also expose the RHS node directly, so an
			// unannotated variable's type comes from the value child of
			// the target's parent when that parent is an Assign/AnnAssign
			// — located generically here to avoid a second binder-side
			// field just for this lookup.
			if v := valueNodeOf(file, d.Node); v != pyast.InvalidNodeID {
				return e.TypeOf(file, v).General()
			}
		}
		return types.Unknown()
	case binder.DeclFunction:
		return types.NewFunction(e.functionOf(file, d.Node, file.File.Get(d.Node)))
	case binder.DeclClass:
		return types.ClassType(e.classOf(file, d.Node, file.File.Get(d.Node)))
	case binder.DeclAlias:
		return e.resolveAliasDeclaration(file, d, map[string]bool{})
	default:
		return types.Unknown()
	}
}

// valueNodeOf returns an Assign/AnnAssign statement's value expression,
// given either the statement or a target Name directly under it (the
// binder's Declaration.Node): the parser attaches an Assign as
// Children=[...targets, value] and an AnnAssign as Children=[target,
// annotation, value?]. Both put the value last, so the common case is
// simply the final child — except AnnAssign without an initializer, which
// has no value at all.
func valueNodeOf(file *binder.BoundFile, stmt pyast.NodeID) pyast.NodeID {
	n := file.File.Get(stmt)
	if n != nil && n.Kind == pyast.KindName {
		n = file.File.Get(n.Parent)
	}
	if n == nil || len(n.Children) == 0 {
		return pyast.InvalidNodeID
	}
	switch n.Kind {
	case pyast.KindAssign:
		return n.Children[len(n.Children)-1]
	case pyast.KindAnnAssign:
		if len(n.Children) == 3 {
			return n.Children[2]
		}
		return pyast.InvalidNodeID
	case pyast.KindFor:
		return pyast.InvalidNodeID
	default:
		return pyast.InvalidNodeID
	}
}

func (e *Evaluator) typeOfSpecialBuiltin(d *binder.Declaration) *types.Type {
	// DeclSpecialBuiltIn carries no Node, so every builtin name read as a
	// value — class names such as `int` as well as `print` or `len` —
	// types as Unknown here. Annotations and isinstance arguments resolve
	// builtin class names separately, through builtinSet.classByName.
	return types.Unknown()
}

// resolveAliasDeclaration follows an import alias to the type it
// ultimately names, per §4.5 "resolve_alias_declaration: follows import
// aliases transitively, cycle-safe". visiting guards against `import a as
// a` self-cycles and mutual re-export cycles between two modules.
func (e *Evaluator) resolveAliasDeclaration(file *binder.BoundFile, d *binder.Declaration, visiting map[string]bool) *types.Type {
	key := d.File + "#" + d.ImportPath
	if visiting[key] {
		return types.Unknown()
	}
	visiting[key] = true

	level := 0
	if stmt := file.File.Get(d.Node); stmt != nil {
		level = stmt.ImportLevel
	}
	res, ok := e.provider.ResolveImport(d.File, d.ImportPath, level)
	if !ok || len(res.ResolvedPaths) == 0 {
		return types.Unknown()
	}
	target, ok := e.provider.BoundFileAt(res.ResolvedPaths[0])
	if !ok {
		return types.Unknown()
	}
	if len(d.SubmoduleChain) == 0 {
		return e.moduleTypeOf(target, res.ResolvedPaths[0])
	}
	// `from pkg import name` / `from pkg import sub` resolves to one
	// exported symbol of the target module.
	name := d.SubmoduleChain[len(d.SubmoduleChain)-1]
	sym, ok := target.ModuleScope.Symbol(name)
	if !ok {
		return types.Unknown()
	}
	for _, decl := range sym.Declarations {
		if decl.Kind == binder.DeclAlias {
			return e.resolveAliasDeclaration(target, decl, visiting)
		}
	}
	return e.typeOfDeclarations(target, sym)
}

// moduleTypeOf builds (and caches by resolved path) the Module Type
// exposing a target file's module-scope exports.
func (e *Evaluator) moduleTypeOf(target *binder.BoundFile, path string) *types.Type {
	if t, ok := e.moduleTypes[path]; ok {
		return t
	}
	m := types.NewModuleValue(path)
	t := types.NewModule(m)
	e.moduleTypes[path] = t // registered before population to break export cycles
	for _, name := range target.ModuleScope.Names() {
		if target.HasDunderAll {
			found := false
			for _, exp := range target.DunderAll {
				if exp == name {
					found = true
					break
				}
			}
			if !found {
				continue
			}
		} else if isHiddenName(name) {
			continue
		}
		sym, _ := target.ModuleScope.Symbol(name)
		m.AddExport(name, e.typeOfDeclarations(target, sym))
	}
	return t
}

func isHiddenName(name string) bool {
	return len(name) > 0 && name[0] == '_'
}
