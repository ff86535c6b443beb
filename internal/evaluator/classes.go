package evaluator

import (
	"github.com/shivasurya/pathfinder-pytype/internal/binder"
	"github.com/shivasurya/pathfinder-pytype/internal/pyast"
	"github.com/shivasurya/pathfinder-pytype/internal/types"
)

// functionOf builds (and caches, per node) the Function signature behind
// a FunctionDef, resolving parameter/return annotations and the handful
// of decorators that change calling convention (@staticmethod,
// @classmethod, @property) or identity (@overload only sets
// Flags.IsOverload on the Function). No code assembles overload sets:
// typeOfDeclaration's DeclFunction case yields one Function per def, and
// a name with several @overload defs types as the union of them.
func (e *Evaluator) functionOf(file *binder.BoundFile, node pyast.NodeID, n *pyast.Node) *types.Function {
	key := cacheKey{file, node}
	if fn, ok := e.fnTypes[key]; ok {
		return fn
	}
	fn := &types.Function{Name: n.Name, ModulePath: file.File.Path}
	e.fnTypes[key] = fn // registered before population: a recursive function's own body can reference itself

	fnScope, _ := file.ScopeOf(node)
	bodyStart := 0
	var params *pyast.Node
	if len(n.Children) > 0 {
		if pn := file.File.Get(n.Children[0]); pn != nil && pn.Kind == pyast.KindParameters {
			params = pn
			bodyStart = 1
		}
	}
	var retAnn pyast.NodeID = pyast.InvalidNodeID
	if bodyStart < len(n.Children) {
		if rn := file.File.Get(n.Children[bodyStart]); rn != nil && !isStatementKind(rn.Kind) {
			retAnn = n.Children[bodyStart]
			bodyStart++
		}
	}

	if params != nil {
		for _, p := range params.Children {
			pn := file.File.Get(p)
			if pn == nil {
				continue
			}
			param := types.Parameter{Name: pn.Name, Kind: types.ParamKind(pn.ParamKind)}
			if len(pn.Children) > 0 {
				if ann := file.File.Get(pn.Children[0]); ann != nil {
					param.Type = e.EvalAnnotation(file, pn.Children[0])
				}
			}
			if param.Type == nil {
				param.Type = types.Unknown()
			}
			// A single child is ambiguous between "annotation only" and
			// "default only" (the binder itself treats it as an
			// annotation either way, per its own Parameter.Annotation
			// field); only the unambiguous two-children case is known to
			// carry a default.
			param.HasDefault = len(pn.Children) > 1
			fn.Parameters = append(fn.Parameters, param)
		}
	}
	if retAnn != pyast.InvalidNodeID {
		fn.Return = e.EvalAnnotation(file, retAnn)
	} else {
		fn.Return = e.inferredReturnType(file, n, bodyStart, fnScope)
	}

	for _, dID := range n.Decorators {
		switch decoratorName(file, dID) {
		case "staticmethod":
			fn.Flags.IsMethod = false
		case "classmethod", "property":
			// classmethod binds `cls` rather than `self`; property turns
			// the call into attribute access. Both are resolved at the
			// attribute-access site (evalAttribute), not here: the raw
			// Function still carries its leading parameter so Bind()'s
			// generic "strip leading parameter" step stays correct for
			// classmethod, and a property getter's Return is read
			// directly by evalAttribute without calling the function.
		case "overload":
			fn.Flags.IsOverload = true
		case "abstractmethod":
			// no distinct Function flag; tracked on the owning Class via
			// ClassFlags.Abstract when any member is abstract.
		}
	}
	if fnScope != nil && fnScope.Kind == binder.ScopeFunction {
		if n.IsAsync {
			fn.Flags.IsAsync = true
		}
	}
	fn.Flags.IsGenerator = containsYield(file, n, bodyStart)
	return fn
}

// inferredReturnType unions every Return statement's value type found in
// the function's own body (not descending into nested function/class
// defs, whose returns belong to them), defaulting to a None object for a
// body with no `return value` at all.
func (e *Evaluator) inferredReturnType(file *binder.BoundFile, n *pyast.Node, bodyStart int, fnScope *binder.Scope) *types.Type {
	var returns []*types.Type
	var walk func(id pyast.NodeID)
	walk = func(id pyast.NodeID) {
		node := file.File.Get(id)
		if node == nil {
			return
		}
		switch node.Kind {
		case pyast.KindFunctionDef, pyast.KindClassDef, pyast.KindLambda:
			return
		case pyast.KindReturn:
			if len(node.Children) == 1 {
				returns = append(returns, e.TypeOf(file, node.Children[0]).General())
			} else {
				returns = append(returns, e.builtins.none)
			}
			return
		}
		for _, c := range node.Children {
			walk(c)
		}
	}
	for _, c := range n.Children[bodyStart:] {
		walk(c)
	}
	if len(returns) == 0 {
		return e.builtins.none
	}
	return types.NewUnion(returns...)
}

func containsYield(file *binder.BoundFile, n *pyast.Node, bodyStart int) bool {
	found := false
	var walk func(id pyast.NodeID)
	walk = func(id pyast.NodeID) {
		if found {
			return
		}
		node := file.File.Get(id)
		if node == nil {
			return
		}
		switch node.Kind {
		case pyast.KindFunctionDef, pyast.KindClassDef, pyast.KindLambda:
			return
		case pyast.KindYield, pyast.KindYieldFrom:
			found = true
			return
		}
		for _, c := range node.Children {
			walk(c)
		}
	}
	for _, c := range n.Children[bodyStart:] {
		walk(c)
	}
	return found
}

func decoratorName(file *binder.BoundFile, id pyast.NodeID) string {
	n := file.File.Get(id)
	if n == nil {
		return ""
	}
	switch n.Kind {
	case pyast.KindName:
		return n.Name
	case pyast.KindAttribute:
		return n.Name
	case pyast.KindCall:
		if len(n.Children) > 0 {
			return decoratorName(file, n.Children[0])
		}
	}
	return ""
}

// isStatementKind mirrors internal/binder's own unexported helper of the
// same name (control.go), used here to split a ClassDef's base-expression
// children from its body the same way the binder split them.
func isStatementKind(kind pyast.Kind) bool {
	switch kind {
	case pyast.KindClassDef, pyast.KindFunctionDef, pyast.KindAssign, pyast.KindAugAssign,
		pyast.KindAnnAssign, pyast.KindIf, pyast.KindWhile, pyast.KindFor, pyast.KindTry,
		pyast.KindWith, pyast.KindReturn, pyast.KindRaise, pyast.KindGlobal, pyast.KindNonlocal,
		pyast.KindImport, pyast.KindImportFrom, pyast.KindPass, pyast.KindBreak, pyast.KindContinue,
		pyast.KindAssert, pyast.KindDel, pyast.KindExprStmt, pyast.KindError:
		return true
	default:
		return false
	}
}

// classOf builds (and caches, per node) the Class definition behind a
// ClassDef, populating its member table from direct-body assignments and
// method defs and its Bases from evaluated base-class expressions.
func (e *Evaluator) classOf(file *binder.BoundFile, node pyast.NodeID, n *pyast.Node) *types.Class {
	key := classKey{file, node}
	if cls, ok := e.classTypes[key]; ok {
		return cls
	}
	cls := types.NewClass(n.Name, file.File.Path)
	cls = e.interner.InternClass(file.File.Path, n.Name, cls)
	e.classTypes[key] = cls

	var bases, body []pyast.NodeID
	for _, c := range n.Children {
		cn := file.File.Get(c)
		if cn != nil && isStatementKind(cn.Kind) {
			body = append(body, c)
		} else {
			bases = append(bases, c)
		}
	}
	for _, b := range bases {
		// typing special forms (TypedDict, Protocol, NamedTuple) are base
		// classes this evaluator has no Class definition for (they live
		// in typeshed, not synthesized here); recognized by bare name
		// since they only ever set flags, never contribute real members.
		switch bareName(file, b) {
		case "TypedDict":
			cls.Flags.TypedDict = true
			continue
		case "Protocol":
			cls.Flags.Protocol = true
			continue
		case "NamedTuple":
			cls.Flags.Dataclass = true
			continue
		}
		bt := e.EvalAnnotation(file, b)
		if bt.Kind == types.KindObject {
			bt = types.ClassType(bt.Class)
		}
		if bt.Kind == types.KindClass {
			cls.Bases = append(cls.Bases, bt)
			if bt.Class != nil && bt.Class.Flags.Protocol {
				cls.Flags.Protocol = true
			}
		}
	}
	if len(cls.Bases) == 0 {
		cls.Bases = []*types.Type{types.ClassType(e.builtins.object)}
	}

	for _, dID := range n.Decorators {
		switch decoratorName(file, dID) {
		case "final":
			cls.Flags.Final = true
		case "dataclass":
			cls.Flags.Dataclass = true
		case "runtime_checkable":
			cls.Flags.Protocol = true
		}
	}

	classScope, _ := file.ScopeOf(node)
	for _, stmt := range body {
		sn := file.File.Get(stmt)
		if sn == nil {
			continue
		}
		switch sn.Kind {
		case pyast.KindFunctionDef:
			fn := e.functionOf(file, stmt, sn)
			fn.Flags.IsMethod = true
			memberType := types.NewFunction(fn)
			cls.AddMember(&types.Member{Name: sn.Name, Type: memberType, IsClassLevel: hasDecorator(file, sn, "classmethod") || hasDecorator(file, sn, "staticmethod")})
			if hasDecorator(file, sn, "abstractmethod") {
				cls.Flags.Abstract = true
			}
			if hasDecorator(file, sn, "property") {
				if cls.Flags.PropertyNames == nil {
					cls.Flags.PropertyNames = make(map[string]bool)
				}
				cls.Flags.PropertyNames[sn.Name] = true
			}
		case pyast.KindAnnAssign:
			if len(sn.Children) >= 2 {
				name := bareName(file, sn.Children[0])
				if name != "" {
					typ := e.EvalAnnotation(file, sn.Children[1])
					cls.AddMember(&types.Member{Name: name, Type: typ})
					if cls.Flags.TypedDict {
						cls.Fields = append(cls.Fields, types.Field{Name: name, Type: typ, Required: true})
					}
				}
			}
		case pyast.KindAssign:
			if len(sn.Children) >= 2 {
				val := e.TypeOf(file, sn.Children[len(sn.Children)-1]).General()
				for _, target := range sn.Children[:len(sn.Children)-1] {
					if name := bareName(file, target); name != "" {
						cls.AddMember(&types.Member{Name: name, Type: val, IsClassLevel: true})
					}
				}
			}
		}
	}
	if classScope != nil {
		for _, name := range classScope.Names() {
			if _, ok := cls.Member(name); ok {
				continue
			}
			if sym, ok := classScope.Symbol(name); ok {
				cls.AddMember(&types.Member{Name: name, Type: e.typeOfDeclarations(file, sym), IsClassLevel: true})
			}
		}
	}

	types.Linearize(cls)
	return cls
}

func hasDecorator(file *binder.BoundFile, n *pyast.Node, name string) bool {
	for _, d := range n.Decorators {
		if decoratorName(file, d) == name {
			return true
		}
	}
	return false
}

// evalLambda synthesizes an unnamed Function from a Lambda node: Children
// are [Parameters, bodyExpr] per parseLambda.
func (e *Evaluator) evalLambda(file *binder.BoundFile, node pyast.NodeID, n *pyast.Node) *types.Type {
	if len(n.Children) != 2 {
		return types.Unknown()
	}
	key := cacheKey{file, node}
	if fn, ok := e.fnTypes[key]; ok {
		return types.NewFunction(fn)
	}
	fn := &types.Function{Name: "<lambda>", ModulePath: file.File.Path}
	e.fnTypes[key] = fn
	params := file.File.Get(n.Children[0])
	if params != nil {
		for _, p := range params.Children {
			pn := file.File.Get(p)
			if pn == nil {
				continue
			}
			fn.Parameters = append(fn.Parameters, types.Parameter{
				Name:       pn.Name,
				Kind:       types.ParamKind(pn.ParamKind),
				Type:       types.Unknown(),
				HasDefault: len(pn.Children) > 0,
			})
		}
	}
	fn.Return = e.TypeOf(file, n.Children[1]).General()
	return types.NewFunction(fn)
}
