package binder

import "github.com/shivasurya/pathfinder-pytype/internal/pyast"

// builtinNames seeds the process-wide builtin scope (§3 "A builtin scope
// is process-wide and shared"). This is the subset of `builtins` the core
// itself needs to recognize for special-cased narrowing and diagnostics
// (isinstance, callable, the exception hierarchy root, None's singleton,
// …); the full builtins surface comes from typeshed's bundled stub
// through the import resolver, not from this table.
var builtinNames = []string{
	"None", "True", "False", "NotImplemented", "Ellipsis", "__debug__",
	"object", "type", "int", "float", "complex", "bool", "str", "bytes", "bytearray",
	"list", "tuple", "dict", "set", "frozenset", "range", "slice",
	"print", "len", "isinstance", "issubclass", "callable", "super", "property",
	"staticmethod", "classmethod", "iter", "next", "repr", "hash", "id", "vars",
	"getattr", "setattr", "hasattr", "delattr", "abs", "min", "max", "sum", "sorted",
	"reversed", "enumerate", "zip", "map", "filter", "any", "all", "open",
	"Exception", "BaseException", "StopIteration", "StopAsyncIteration",
	"ValueError", "TypeError", "KeyError", "IndexError", "AttributeError",
	"RuntimeError", "NotImplementedError", "OSError", "IOError", "ImportError",
	"ModuleNotFoundError", "NameError", "UnboundLocalError", "ZeroDivisionError",
	"ArithmeticError", "AssertionError", "LookupError", "GeneratorExit", "KeyboardInterrupt",
	"SystemExit", "Warning", "DeprecationWarning", "UserWarning",
}

// NewBuiltinScope constructs the shared builtin scope, each name carrying
// a single SpecialBuiltIn declaration with no source range of its own.
func NewBuiltinScope() *Scope {
	scope := newScope(ScopeBuiltin, nil, pyast.InvalidNodeID)
	id := 0
	for _, name := range builtinNames {
		sym := &Symbol{ID: id, Name: name, Scope: scope}
		sym.addDeclaration(&Declaration{Kind: DeclSpecialBuiltIn, Node: pyast.InvalidNodeID})
		scope.set(sym)
		id++
	}
	return scope
}
