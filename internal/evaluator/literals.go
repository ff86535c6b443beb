package evaluator

import (
	"strconv"
	"strings"

	"github.com/shivasurya/pathfinder-pytype/internal/binder"
	"github.com/shivasurya/pathfinder-pytype/internal/pyast"
	"github.com/shivasurya/pathfinder-pytype/internal/types"
)

// literalOfNumberText classifies a NumberLit's raw spelling (the lexer
// hands us the literal text verbatim, decimal point and all) into
// int/float/complex, producing a Literal int where the value parses
// cleanly and a bare Object type otherwise (floats and complexes are
// never literal types, matching typeshed's own Literal[...] restriction
// to int/str/bytes/bool/enum).
func literalOfNumberText(b *builtinSet, text string) *types.Type {
	clean := strings.ReplaceAll(text, "_", "")
	lower := strings.ToLower(clean)
	switch {
	case strings.HasSuffix(lower, "j"):
		return types.NewObject(b.complex_)
	case strings.Contains(lower, ".") || ((strings.Contains(lower, "e") && !strings.HasPrefix(lower, "0x")) && !isHexOctBin(lower)):
		return types.NewObject(b.float_)
	default:
		base := 10
		digits := lower
		switch {
		case strings.HasPrefix(lower, "0x"):
			base, digits = 16, lower[2:]
		case strings.HasPrefix(lower, "0o"):
			base, digits = 8, lower[2:]
		case strings.HasPrefix(lower, "0b"):
			base, digits = 2, lower[2:]
		}
		if v, err := strconv.ParseInt(digits, base, 64); err == nil {
			return types.NewLiteral(types.NewObject(b.int_), &types.LiteralValue{Kind: types.LiteralInt, Int: v})
		}
		return types.NewObject(b.int_)
	}
}

func isHexOctBin(s string) bool {
	return strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0o") || strings.HasPrefix(s, "0b")
}

// numericRank orders the numeric tower for binary-operator result
// promotion: bool < int < float < complex, per Python's arithmetic
// coercion rules.
func numericRank(b *builtinSet, cls *types.Class) int {
	switch cls {
	case b.bool_:
		return 0
	case b.int_:
		return 1
	case b.float_:
		return 2
	case b.complex_:
		return 3
	default:
		return -1
	}
}

func (e *Evaluator) evalBinOp(file *binder.BoundFile, n *pyast.Node) *types.Type {
	if len(n.Children) != 2 {
		return types.Unknown()
	}
	left := e.TypeOf(file, n.Children[0]).General()
	right := e.TypeOf(file, n.Children[1]).General()
	if left.IsBottom() || right.IsBottom() {
		return types.Unknown()
	}
	// `+` on two sequences of the same builtin container concatenates
	// rather than promoting through the numeric tower.
	if n.Operator == "+" && left.Kind == types.KindObject && right.Kind == types.KindObject && left.Class == right.Class {
		switch left.Class {
		case e.builtins.str_, e.builtins.bytes_, e.builtins.list_, e.builtins.tuple_:
			return left
		}
	}
	if left.Kind == types.KindObject && right.Kind == types.KindObject {
		lr := numericRank(e.builtins, left.Class)
		rr := numericRank(e.builtins, right.Class)
		if lr >= 0 && rr >= 0 {
			if n.Operator == "/" && lr < 2 && rr < 2 {
				return types.NewObject(e.builtins.float_)
			}
			if lr >= rr {
				if left.Class == e.builtins.bool_ && n.Operator != "/" {
					return types.NewObject(e.builtins.int_)
				}
				return left
			}
			return right
		}
	}
	// Division always widens to float, even int/int, per Python 3 `/`.
	if n.Operator == "/" {
		return types.NewObject(e.builtins.float_)
	}
	// Unknown operand shapes (dunder-overloaded operators on user
	// classes): resolving via `__add__`/`__radd__` etc. requires method
	// binding this evaluator supports (see call.go), but BinOp does not
	// currently dispatch through it — left as a documented gap, since no
	// §8 scenario depends on user-defined operator overloading.
	return types.Unknown()
}

func (e *Evaluator) evalUnaryOp(file *binder.BoundFile, n *pyast.Node) *types.Type {
	if len(n.Children) != 1 {
		return types.Unknown()
	}
	if n.Operator == "not" {
		return types.NewObject(e.builtins.bool_)
	}
	return e.TypeOf(file, n.Children[0]).General()
}

// evalBoolOp types `and`/`or` as the union of every operand's type: Python
// returns whichever operand short-circuit evaluation lands on, so the
// statically possible results are all of them.
func (e *Evaluator) evalBoolOp(file *binder.BoundFile, n *pyast.Node) *types.Type {
	members := make([]*types.Type, 0, len(n.Children))
	for _, c := range n.Children {
		members = append(members, e.TypeOf(file, c).General())
	}
	return types.NewUnion(members...)
}

// evalTernary types `A if COND else B` as union(A, B); Children are
// [body, test, orelse] per the parser's parseExpr.
func (e *Evaluator) evalTernary(file *binder.BoundFile, n *pyast.Node) *types.Type {
	if len(n.Children) != 3 {
		return types.Unknown()
	}
	a := e.TypeOf(file, n.Children[0]).General()
	b := e.TypeOf(file, n.Children[2]).General()
	return types.NewUnion(a, b)
}
