package pyparser

import (
	"strings"

	"github.com/shivasurya/pathfinder-pytype/internal/pyast"
	"github.com/shivasurya/pathfinder-pytype/internal/pytoken"
)

// parseExprList parses a possibly-comma-separated, possibly-trailing-comma
// expression list, wrapping into a KindTuple node when more than one
// element (or a trailing comma) is present — used for both RHS values and
// assignment targets.
func (p *Parser) parseExprList() pyast.NodeID {
	start := p.cur().Start
	first := p.parseStarOrExpr()
	if !p.isOp(",") {
		return first
	}
	tup := p.alloc(pyast.KindTuple, start)
	p.attachAll(tup, first)
	for p.acceptOp(",") {
		if p.atExprListEnd() {
			break
		}
		el := p.parseStarOrExpr()
		p.attachAll(tup, el)
	}
	return p.finish(tup, p.prevEnd())
}

func (p *Parser) atExprListEnd() bool {
	t := p.cur()
	if t.Kind == pytoken.KindNewline || t.Kind == pytoken.KindEOF {
		return true
	}
	if t.Kind == pytoken.KindOperator {
		switch t.Operator {
		case ":", "=", ")", "]", "}", ";":
			return true
		}
	}
	if t.Kind == pytoken.KindKeyword {
		switch t.Text {
		case "in", "as":
			return true
		}
	}
	return false
}

func (p *Parser) parseStarOrExpr() pyast.NodeID {
	if p.isOp("*") {
		start := p.cur().Start
		p.advance()
		inner := p.parseOrExpr()
		id := p.alloc(pyast.KindStarred, start)
		p.attachAll(id, inner)
		return p.finish(id, p.prevEnd())
	}
	return p.parseNamedExpr()
}

// parseTargetList parses a for/comprehension/del target list. Elements are
// parsed below the comparison level so that the `in` following a for
// target is not read as a membership test.
func (p *Parser) parseTargetList() pyast.NodeID {
	start := p.cur().Start
	first := p.parseBitOr()
	if !p.isOp(",") {
		return first
	}
	tup := p.alloc(pyast.KindTuple, start)
	p.attachAll(tup, first)
	for p.acceptOp(",") {
		if p.atExprListEnd() {
			break
		}
		p.attachAll(tup, p.parseBitOr())
	}
	return p.finish(tup, p.prevEnd())
}

func (p *Parser) parseTarget() pyast.NodeID { return p.parseOrExpr() }

// parseNamedExpr handles the walrus operator `NAME := expr`, which binds
// tighter than assignment but looser than the ternary conditional.
func (p *Parser) parseNamedExpr() pyast.NodeID {
	start := p.cur().Start
	left := p.parseExpr()
	if p.acceptOp(":=") {
		id := p.alloc(pyast.KindNamedExpr, start)
		val := p.parseExpr()
		p.attachAll(id, left, val)
		return p.finish(id, p.prevEnd())
	}
	return left
}

// parseExpr parses a full expression: lambda, ternary, or boolean-or chain.
func (p *Parser) parseExpr() pyast.NodeID {
	if p.isKeyword("lambda") {
		return p.parseLambda()
	}
	start := p.cur().Start
	cond := p.parseOrExpr()
	if p.acceptKeyword("if") {
		test := p.parseOrExpr()
		p.acceptKeyword("else")
		other := p.parseExpr()
		id := p.alloc(pyast.KindTernary, start)
		p.attachAll(id, cond, test, other)
		return p.finish(id, p.prevEnd())
	}
	return cond
}

func (p *Parser) parseLambda() pyast.NodeID {
	start := p.cur().Start
	p.advance() // 'lambda'
	id := p.alloc(pyast.KindLambda, start)
	params := p.alloc(pyast.KindParameters, p.cur().Start)
	for !p.isOp(":") && p.cur().Kind != pytoken.KindEOF {
		pstart := p.cur().Start
		kind := pyast.ParamPositionalOrKeyword
		if p.acceptOp("*") {
			kind = pyast.ParamVararg
		} else if p.acceptOp("**") {
			kind = pyast.ParamVarKwarg
		}
		param := p.alloc(pyast.KindParameter, pstart)
		pn := p.start(param)
		pn.ParamKind = kind
		if p.cur().Kind == pytoken.KindIdentifier {
			pn.Name = p.cur().Text
			p.advance()
		}
		if p.acceptOp("=") {
			def := p.parseExpr()
			p.attachAll(param, def)
		}
		p.finish(param, p.prevEnd())
		p.attachAll(params, param)
		if !p.acceptOp(",") {
			break
		}
	}
	p.finish(params, p.prevEnd())
	p.expectOp(":")
	body := p.parseExpr()
	p.attachAll(id, params, body)
	return p.finish(id, p.prevEnd())
}

func (p *Parser) parseOrExpr() pyast.NodeID { return p.parseBoolChain("or", p.parseAndExpr) }
func (p *Parser) parseAndExpr() pyast.NodeID {
	return p.parseBoolChain("and", p.parseNotExpr)
}

func (p *Parser) parseBoolChain(kw string, next func() pyast.NodeID) pyast.NodeID {
	start := p.cur().Start
	left := next()
	if !p.isKeyword(kw) {
		return left
	}
	id := p.alloc(pyast.KindBoolOp, start)
	p.start(id).Operator = kw
	p.attachAll(id, left)
	for p.acceptKeyword(kw) {
		p.attachAll(id, next())
	}
	return p.finish(id, p.prevEnd())
}

func (p *Parser) parseNotExpr() pyast.NodeID {
	if p.isKeyword("not") {
		start := p.cur().Start
		p.advance()
		inner := p.parseNotExpr()
		id := p.alloc(pyast.KindUnaryOp, start)
		p.start(id).Operator = "not"
		p.attachAll(id, inner)
		return p.finish(id, p.prevEnd())
	}
	return p.parseComparison()
}

var compareOps = map[string]bool{"<": true, ">": true, "<=": true, ">=": true, "==": true, "!=": true}

func (p *Parser) parseComparison() pyast.NodeID {
	start := p.cur().Start
	left := p.parseBitOr()
	var ops []string
	var rights []pyast.NodeID
	for {
		if p.cur().Kind == pytoken.KindOperator && compareOps[p.cur().Operator] {
			op := p.cur().Operator
			p.advance()
			ops = append(ops, op)
			rights = append(rights, p.parseBitOr())
			continue
		}
		if p.isKeyword("in") {
			p.advance()
			ops = append(ops, "in")
			rights = append(rights, p.parseBitOr())
			continue
		}
		if p.isKeyword("not") && p.peekAt(1).Kind == pytoken.KindKeyword && p.peekAt(1).Text == "in" {
			p.advance()
			p.advance()
			ops = append(ops, "not in")
			rights = append(rights, p.parseBitOr())
			continue
		}
		if p.isKeyword("is") {
			p.advance()
			op := "is"
			if p.acceptKeyword("not") {
				op = "is not"
			}
			ops = append(ops, op)
			rights = append(rights, p.parseBitOr())
			continue
		}
		break
	}
	if len(ops) == 0 {
		return left
	}
	id := p.alloc(pyast.KindCompare, start)
	p.start(id).Operator = joinOps(ops)
	p.attachAll(id, left)
	p.attachAll(id, rights...)
	return p.finish(id, p.prevEnd())
}

func joinOps(ops []string) string {
	out := ops[0]
	for _, o := range ops[1:] {
		out += "," + o
	}
	return out
}

func (p *Parser) binOpLevel(ops []string, next func() pyast.NodeID) func() pyast.NodeID {
	return func() pyast.NodeID {
		start := p.cur().Start
		left := next()
		for {
			matched := ""
			if p.cur().Kind == pytoken.KindOperator {
				for _, op := range ops {
					if p.cur().Operator == op {
						matched = op
						break
					}
				}
			}
			if matched == "" {
				break
			}
			p.advance()
			right := next()
			id := p.alloc(pyast.KindBinOp, start)
			p.start(id).Operator = matched
			p.attachAll(id, left, right)
			left = p.finish(id, p.prevEnd())
		}
		return left
	}
}

func (p *Parser) parseBitOr() pyast.NodeID  { return p.binOpLevel([]string{"|"}, p.parseBitXor)() }
func (p *Parser) parseBitXor() pyast.NodeID { return p.binOpLevel([]string{"^"}, p.parseBitAnd)() }
func (p *Parser) parseBitAnd() pyast.NodeID { return p.binOpLevel([]string{"&"}, p.parseShift)() }
func (p *Parser) parseShift() pyast.NodeID {
	return p.binOpLevel([]string{"<<", ">>"}, p.parseArith)()
}
func (p *Parser) parseArith() pyast.NodeID {
	return p.binOpLevel([]string{"+", "-"}, p.parseTerm)()
}
func (p *Parser) parseTerm() pyast.NodeID {
	return p.binOpLevel([]string{"*", "/", "//", "%", "@"}, p.parseFactor)()
}

func (p *Parser) parseFactor() pyast.NodeID {
	if p.isOp("+") || p.isOp("-") || p.isOp("~") {
		start := p.cur().Start
		op := p.cur().Operator
		p.advance()
		inner := p.parseFactor()
		id := p.alloc(pyast.KindUnaryOp, start)
		p.start(id).Operator = op
		p.attachAll(id, inner)
		return p.finish(id, p.prevEnd())
	}
	return p.parsePower()
}

func (p *Parser) parsePower() pyast.NodeID {
	start := p.cur().Start
	left := p.parseAwaitOrUnary()
	if p.acceptOp("**") {
		right := p.parseFactor()
		id := p.alloc(pyast.KindBinOp, start)
		p.start(id).Operator = "**"
		p.attachAll(id, left, right)
		return p.finish(id, p.prevEnd())
	}
	return left
}

func (p *Parser) parseAwaitOrUnary() pyast.NodeID {
	if p.isKeyword("await") {
		start := p.cur().Start
		p.advance()
		inner := p.parsePrimary()
		id := p.alloc(pyast.KindAwait, start)
		p.attachAll(id, inner)
		return p.finish(id, p.prevEnd())
	}
	return p.parsePrimary()
}

// parsePrimary parses an atom followed by any number of trailers: calls,
// attribute access, and subscripting.
func (p *Parser) parsePrimary() pyast.NodeID {
	start := p.cur().Start
	node := p.parseAtom()
	for {
		switch {
		case p.isOp("."):
			p.advance()
			attr := p.alloc(pyast.KindAttribute, start)
			if p.cur().Kind == pytoken.KindIdentifier {
				p.start(attr).Name = p.cur().Text
				p.advance()
			}
			p.attachAll(attr, node)
			node = p.finish(attr, p.prevEnd())
		case p.isOp("("):
			node = p.parseCallTrailer(start, node)
		case p.isOp("["):
			node = p.parseSubscriptTrailer(start, node)
		default:
			return node
		}
	}
}

func (p *Parser) parseCallTrailer(start int, callee pyast.NodeID) pyast.NodeID {
	p.advance() // '('
	id := p.alloc(pyast.KindCall, start)
	p.attachAll(id, callee)
	for !p.isOp(")") && p.cur().Kind != pytoken.KindEOF {
		p.attachAll(id, p.parseCallArgument())
		if !p.acceptOp(",") {
			break
		}
	}
	p.expectOp(")")
	return p.finish(id, p.prevEnd())
}

func (p *Parser) parseCallArgument() pyast.NodeID {
	start := p.cur().Start
	if p.isOp("*") || p.isOp("**") {
		star := p.cur().Operator
		p.advance()
		val := p.parseExpr()
		id := p.alloc(pyast.KindArgument, start)
		p.start(id).IsStarred = true
		p.start(id).Operator = star
		p.attachAll(id, val)
		return p.finish(id, p.prevEnd())
	}
	if p.cur().Kind == pytoken.KindIdentifier && p.peekAt(1).Kind == pytoken.KindOperator && p.peekAt(1).Operator == "=" {
		name := p.cur().Text
		p.advance()
		p.advance()
		val := p.parseExpr()
		id := p.alloc(pyast.KindKeywordArg, start)
		p.start(id).Name = name
		p.attachAll(id, val)
		return p.finish(id, p.prevEnd())
	}
	val := p.parseNamedExpr()
	if p.isKeyword("for") || (p.isKeyword("async") && p.peekAt(1).Kind == pytoken.KindKeyword && p.peekAt(1).Text == "for") {
		return p.parseComprehensionTail(start, val)
	}
	id := p.alloc(pyast.KindArgument, start)
	p.attachAll(id, val)
	return p.finish(id, p.prevEnd())
}

func (p *Parser) parseSubscriptTrailer(start int, target pyast.NodeID) pyast.NodeID {
	p.advance() // '['
	id := p.alloc(pyast.KindSubscript, start)
	p.attachAll(id, target)
	for {
		p.attachAll(id, p.parseSliceOrExpr())
		if !p.acceptOp(",") {
			break
		}
		if p.isOp("]") {
			break
		}
	}
	p.expectOp("]")
	return p.finish(id, p.prevEnd())
}

func (p *Parser) parseSliceOrExpr() pyast.NodeID {
	start := p.cur().Start
	var lower pyast.NodeID = pyast.InvalidNodeID
	if !p.isOp(":") {
		lower = p.parseStarOrExpr()
		if !p.isOp(":") {
			return lower
		}
	}
	id := p.alloc(pyast.KindSlice, start)
	p.attachAll(id, lower)
	p.advance() // ':'
	if !p.isOp(":") && !p.isOp("]") && !p.isOp(",") {
		upper := p.parseExpr()
		p.attachAll(id, upper)
	}
	if p.acceptOp(":") {
		if !p.isOp("]") && !p.isOp(",") {
			step := p.parseExpr()
			p.attachAll(id, step)
		}
	}
	return p.finish(id, p.prevEnd())
}

// parseComprehensionTail wraps an already-parsed element expression with
// one or more `for ... in ... [if ...]` clauses.
func (p *Parser) parseComprehensionTail(start int, element pyast.NodeID) pyast.NodeID {
	id := p.alloc(pyast.KindComprehension, start)
	p.attachAll(id, element)
	for p.isKeyword("for") || (p.isKeyword("async") && p.peekAt(1).Text == "for") {
		cstart := p.cur().Start
		isAsync := p.acceptKeyword("async")
		p.advance() // 'for'
		clause := p.alloc(pyast.KindComprehensionClause, cstart)
		p.start(clause).IsAsync = isAsync
		target := p.parseTargetList()
		p.acceptKeyword("in")
		iter := p.parseOrExpr()
		p.attachAll(clause, target, iter)
		for p.isKeyword("if") {
			p.advance()
			cond := p.parseOrExpr()
			p.attachAll(clause, cond)
		}
		p.finish(clause, p.prevEnd())
		p.attachAll(id, clause)
	}
	return p.finish(id, p.prevEnd())
}

func (p *Parser) parseAtom() pyast.NodeID {
	t := p.cur()
	switch {
	case t.Kind == pytoken.KindIdentifier:
		p.advance()
		id := p.alloc(pyast.KindName, t.Start)
		p.start(id).Name = t.Text
		return p.finish(id, t.End)
	case t.Kind == pytoken.KindKeyword && (t.Text == "True" || t.Text == "False" || t.Text == "None"):
		p.advance()
		id := p.alloc(pyast.KindName, t.Start)
		p.start(id).Name = t.Text
		return p.finish(id, t.End)
	case t.Kind == pytoken.KindNumber:
		p.advance()
		id := p.alloc(pyast.KindNumberLit, t.Start)
		p.start(id).NumberText = t.Number
		return p.finish(id, t.End)
	case t.Kind == pytoken.KindString:
		return p.parseStringOrFString()
	case t.Kind == pytoken.KindKeyword && t.Text == "yield":
		return p.parseYield()
	case t.Kind == pytoken.KindOperator && t.Operator == "(":
		return p.parseParenForm()
	case t.Kind == pytoken.KindOperator && t.Operator == "[":
		return p.parseListForm()
	case t.Kind == pytoken.KindOperator && t.Operator == "{":
		return p.parseDictOrSetForm()
	case t.Kind == pytoken.KindOperator && t.Operator == "*":
		return p.parseStarOrExpr()
	case t.Kind == pytoken.KindOperator && t.Operator == "...":
		p.advance()
		id := p.alloc(pyast.KindName, t.Start)
		p.start(id).Name = "..."
		return p.finish(id, t.End)
	default:
		p.errorf(t.Start, t.End, "unexpected token %q in expression", t.String())
		return p.errorNode(t.Start)
	}
}

// parseStringOrFString consumes a run of adjacent plain string literals as
// one node with their values joined (Python implicitly concatenates them).
// An f-string token is parsed on its own by parseFStringToken, which
// re-tokenizes and re-parses each `{expr}` span as a full expression (§4.1
// "the expressions are re-tokenised when the parser consumes them"); the
// literal text between spans is not kept as nodes.
func (p *Parser) parseStringOrFString() pyast.NodeID {
	t := p.cur()
	if t.Str != nil && t.Str.Flags.FString {
		return p.parseFStringToken()
	}
	p.advance()
	id := p.alloc(pyast.KindStringLit, t.Start)
	n := p.start(id)
	if t.Str != nil {
		n.StringKind = pyast.StringFlags{Raw: t.Str.Flags.Raw, Bytes: t.Str.Flags.Bytes, Unicode: t.Str.Flags.Unicode}
		n.StringValue = t.Str.Value
	}
	p.finish(id, t.End)
	for p.cur().Kind == pytoken.KindString && (p.cur().Str == nil || !p.cur().Str.Flags.FString) {
		if p.cur().Str != nil {
			n.StringValue += p.cur().Str.Value
		}
		p.advance()
	}
	n.End = p.prevEnd()
	return id
}

func (p *Parser) parseFStringToken() pyast.NodeID {
	t := p.cur()
	p.advance()
	id := p.alloc(pyast.KindFString, t.Start)
	raw := ""
	if t.Str != nil {
		raw = t.Str.Value
	}
	contentStart := t.Start
	if t.Str != nil {
		contentStart += strings.IndexByte(t.Text, t.Str.Quote) + 1
		if t.Str.Triple {
			contentStart += 2
		}
	}
	depth := 0
	fragStart := 0
	for i := 0; i < len(raw); i++ {
		switch raw[i] {
		case '{':
			if depth == 0 {
				fragStart = i + 1
			}
			depth++
		case '}':
			if depth > 0 {
				depth--
				if depth == 0 {
					exprSrc := raw[fragStart:i]
					sub, _ := Parse("<fstring>", exprSrc+"\n", p.version)
					if sub.Root != pyast.InvalidNodeID {
						if mod := sub.Get(sub.Root); mod != nil && len(mod.Children) > 0 {
							grafted := graftSubtree(p.file, sub, mod.Children[0])
							shift := contentStart + fragStart
							p.file.Walk(grafted, func(_ pyast.NodeID, gn *pyast.Node) bool {
								gn.Start += shift
								gn.End += shift
								return true
							})
							wrap := p.alloc(pyast.KindFStringExpr, t.Start)
							p.attachAll(wrap, grafted)
							p.finish(wrap, t.End)
							p.attachAll(id, wrap)
						}
					}
				}
			}
		}
	}
	return p.finish(id, t.End)
}

// graftSubtree copies a node subtree (produced by a nested Parse call over
// an f-string's embedded-expression source) into dst's arena, preserving
// structure and the byte ranges of that synthetic buffer; parseFStringToken
// then shifts the copied ranges to the expression's place in the f-string.
func graftSubtree(dst *pyast.File, src *pyast.File, id pyast.NodeID) pyast.NodeID {
	n := src.Get(id)
	newID := dst.Alloc(*n)
	newNode := dst.Get(newID)
	newNode.Children = nil
	for _, c := range n.Children {
		childID := graftSubtree(dst, src, c)
		dst.Attach(newID, childID)
	}
	return newID
}

func (p *Parser) parseYield() pyast.NodeID {
	start := p.cur().Start
	p.advance() // 'yield'
	if p.acceptKeyword("from") {
		val := p.parseExpr()
		id := p.alloc(pyast.KindYieldFrom, start)
		p.attachAll(id, val)
		return p.finish(id, p.prevEnd())
	}
	id := p.alloc(pyast.KindYield, start)
	if !p.atStatementEnd() && !p.isOp(")") {
		val := p.parseExprList()
		p.attachAll(id, val)
	}
	return p.finish(id, p.prevEnd())
}

func (p *Parser) parseParenForm() pyast.NodeID {
	start := p.cur().Start
	p.advance() // '('
	if p.isOp(")") {
		p.advance()
		id := p.alloc(pyast.KindTuple, start)
		return p.finish(id, p.prevEnd())
	}
	first := p.parseStarOrExpr()
	if p.isKeyword("for") || (p.isKeyword("async") && p.peekAt(1).Text == "for") {
		comp := p.parseComprehensionTail(start, first)
		p.expectOp(")")
		return p.finish(comp, p.prevEnd())
	}
	if p.acceptOp(":=") {
		val := p.parseExpr()
		named := p.alloc(pyast.KindNamedExpr, start)
		p.attachAll(named, first, val)
		first = p.finish(named, p.prevEnd())
	}
	if !p.isOp(",") {
		p.expectOp(")")
		return first
	}
	tup := p.alloc(pyast.KindTuple, start)
	p.attachAll(tup, first)
	for p.acceptOp(",") {
		if p.isOp(")") {
			break
		}
		p.attachAll(tup, p.parseStarOrExpr())
	}
	p.expectOp(")")
	return p.finish(tup, p.prevEnd())
}

func (p *Parser) parseListForm() pyast.NodeID {
	start := p.cur().Start
	p.advance() // '['
	id := p.alloc(pyast.KindListExpr, start)
	if !p.isOp("]") {
		first := p.parseStarOrExpr()
		if p.isKeyword("for") || (p.isKeyword("async") && p.peekAt(1).Text == "for") {
			comp := p.parseComprehensionTail(start, first)
			p.expectOp("]")
			p.attachAll(id, comp)
			return p.finish(id, p.prevEnd())
		}
		p.attachAll(id, first)
		for p.acceptOp(",") {
			if p.isOp("]") {
				break
			}
			p.attachAll(id, p.parseStarOrExpr())
		}
	}
	p.expectOp("]")
	return p.finish(id, p.prevEnd())
}

func (p *Parser) parseDictOrSetForm() pyast.NodeID {
	start := p.cur().Start
	p.advance() // '{'
	if p.isOp("}") {
		p.advance()
		return p.finish(p.alloc(pyast.KindDictExpr, start), p.prevEnd())
	}
	if p.acceptOp("**") {
		id := p.alloc(pyast.KindDictExpr, start)
		val := p.parseOrExpr()
		p.attachAll(id, val)
		p.finishDictTail(id)
		p.expectOp("}")
		return p.finish(id, p.prevEnd())
	}
	first := p.parseStarOrExpr()
	if p.acceptOp(":") {
		val := p.parseExpr()
		if p.isKeyword("for") || (p.isKeyword("async") && p.peekAt(1).Text == "for") {
			kv := p.alloc(pyast.KindKeywordArg, start)
			p.attachAll(kv, first, val)
			p.finish(kv, p.prevEnd())
			comp := p.parseComprehensionTail(start, kv)
			p.expectOp("}")
			return p.finish(comp, p.prevEnd())
		}
		id := p.alloc(pyast.KindDictExpr, start)
		kv := p.alloc(pyast.KindKeywordArg, start)
		p.attachAll(kv, first, val)
		p.finish(kv, p.prevEnd())
		p.attachAll(id, kv)
		for p.acceptOp(",") {
			if p.isOp("}") {
				break
			}
			p.attachAll(id, p.parseDictItem())
		}
		p.expectOp("}")
		return p.finish(id, p.prevEnd())
	}
	if p.isKeyword("for") || (p.isKeyword("async") && p.peekAt(1).Text == "for") {
		comp := p.parseComprehensionTail(start, first)
		p.expectOp("}")
		setWrap := p.alloc(pyast.KindSetExpr, start)
		p.attachAll(setWrap, comp)
		return p.finish(setWrap, p.prevEnd())
	}
	id := p.alloc(pyast.KindSetExpr, start)
	p.attachAll(id, first)
	for p.acceptOp(",") {
		if p.isOp("}") {
			break
		}
		p.attachAll(id, p.parseStarOrExpr())
	}
	p.expectOp("}")
	return p.finish(id, p.prevEnd())
}

func (p *Parser) parseDictItem() pyast.NodeID {
	start := p.cur().Start
	if p.acceptOp("**") {
		val := p.parseOrExpr()
		id := p.alloc(pyast.KindArgument, start)
		p.start(id).IsStarred = true
		p.attachAll(id, val)
		return p.finish(id, p.prevEnd())
	}
	key := p.parseExpr()
	p.expectOp(":")
	val := p.parseExpr()
	id := p.alloc(pyast.KindKeywordArg, start)
	p.attachAll(id, key, val)
	return p.finish(id, p.prevEnd())
}

func (p *Parser) finishDictTail(id pyast.NodeID) {
	for p.acceptOp(",") {
		if p.isOp("}") {
			break
		}
		p.attachAll(id, p.parseDictItem())
	}
}
