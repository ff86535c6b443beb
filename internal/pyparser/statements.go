package pyparser

import (
	"github.com/shivasurya/pathfinder-pytype/internal/pyast"
	"github.com/shivasurya/pathfinder-pytype/internal/pytoken"
)

func (p *Parser) parseModule() {
	root := p.alloc(pyast.KindModule, 0)
	p.file.Root = root
	for p.cur().Kind != pytoken.KindEOF {
		p.skipTrivia()
		if p.cur().Kind == pytoken.KindNewline {
			p.advance()
			continue
		}
		if p.cur().Kind == pytoken.KindEOF {
			break
		}
		stmt := p.parseStatement()
		p.attachAll(root, stmt)
	}
	p.finish(root, p.prevEnd())
}

// parseBlock parses an indented suite: NEWLINE INDENT statement+ DEDENT,
// or a single simple-statement suite on the same line (`if x: y = 1`).
func (p *Parser) parseBlock() []pyast.NodeID {
	if p.cur().Kind == pytoken.KindNewline {
		p.advance()
		p.skipTrivia()
		if p.cur().Kind != pytoken.KindIndent {
			t := p.cur()
			p.errorf(t.Start, t.End, "expected an indented block")
			return nil
		}
		p.advance()
		var stmts []pyast.NodeID
		for p.cur().Kind != pytoken.KindDedent && p.cur().Kind != pytoken.KindEOF {
			p.skipTrivia()
			if p.cur().Kind == pytoken.KindNewline {
				p.advance()
				continue
			}
			if p.cur().Kind == pytoken.KindDedent || p.cur().Kind == pytoken.KindEOF {
				break
			}
			stmts = append(stmts, p.parseStatement())
		}
		if p.cur().Kind == pytoken.KindDedent {
			p.advance()
		}
		return stmts
	}
	// Same-line simple-statement suite.
	return p.parseSimpleStmtLine()
}

// parseSimpleStmtLine parses `stmt (';' stmt)* NEWLINE`.
func (p *Parser) parseSimpleStmtLine() []pyast.NodeID {
	var stmts []pyast.NodeID
	for {
		stmts = append(stmts, p.parseSimpleStatement())
		if p.acceptOp(";") {
			if p.cur().Kind == pytoken.KindNewline || p.cur().Kind == pytoken.KindEOF {
				break
			}
			continue
		}
		break
	}
	if p.cur().Kind == pytoken.KindNewline {
		p.advance()
	}
	return stmts
}

func (p *Parser) parseStatement() pyast.NodeID {
	t := p.cur()
	if t.Kind == pytoken.KindOperator && t.Operator == "@" {
		return p.parseDecorated()
	}
	if t.Kind == pytoken.KindKeyword {
		switch t.Text {
		case "def":
			return p.parseFunctionDef(nil, false)
		case "async":
			return p.parseAsync()
		case "class":
			return p.parseClassDef()
		case "if":
			return p.parseIf()
		case "while":
			return p.parseWhile()
		case "for":
			return p.parseFor(false)
		case "try":
			return p.parseTry()
		case "with":
			return p.parseWith(false)
		}
	}
	stmts := p.parseSimpleStmtLine()
	if len(stmts) == 1 {
		return stmts[0]
	}
	// Multiple simple statements on one line: wrap in a synthetic block-less
	// sequence by returning the first and attaching the rest as trailing
	// children of the module/suite via the caller's attachAll — simplest
	// correct behaviour is to return an ExprStmt-less group using the first
	// statement's node, extended to cover the whole line.
	if len(stmts) == 0 {
		return p.errorNode(t.Start)
	}
	first := p.file.Get(stmts[0])
	last := p.file.Get(stmts[len(stmts)-1])
	first.End = last.End
	return stmts[0]
}

func (p *Parser) parseAsync() pyast.NodeID {
	start := p.cur().Start
	p.advance() // 'async'
	switch {
	case p.isKeyword("def"):
		return p.parseFunctionDef(nil, true)
	case p.isKeyword("for"):
		return p.parseFor(true)
	case p.isKeyword("with"):
		return p.parseWith(true)
	default:
		p.errorf(start, p.cur().End, "expected def/for/with after async")
		return p.errorNode(start)
	}
}

func (p *Parser) parseDecorated() pyast.NodeID {
	var decorators []pyast.NodeID
	for p.isOp("@") {
		dstart := p.cur().Start
		p.advance()
		expr := p.parseExpr()
		dec := p.alloc(pyast.KindDecorator, dstart)
		p.attachAll(dec, expr)
		p.finish(dec, p.prevEnd())
		decorators = append(decorators, dec)
		if p.cur().Kind == pytoken.KindNewline {
			p.advance()
		}
		p.skipTrivia()
	}
	var target pyast.NodeID
	switch {
	case p.isKeyword("def"):
		target = p.parseFunctionDef(decorators, false)
	case p.isKeyword("async"):
		target = p.parseAsync()
		n := p.file.Get(target)
		n.Decorators = decorators
	case p.isKeyword("class"):
		target = p.parseClassDef()
		n := p.file.Get(target)
		n.Decorators = decorators
	default:
		t := p.cur()
		p.errorf(t.Start, t.End, "expected def or class after decorator")
		target = p.errorNode(t.Start)
	}
	for _, d := range decorators {
		p.file.Attach(target, d)
	}
	return target
}

func (p *Parser) parseFunctionDef(decorators []pyast.NodeID, isAsync bool) pyast.NodeID {
	start := p.cur().Start
	p.advance() // 'def'
	id := p.alloc(pyast.KindFunctionDef, start)
	n := p.start(id)
	n.IsAsync = isAsync
	n.Decorators = decorators
	if p.cur().Kind == pytoken.KindIdentifier {
		n.Name = p.cur().Text
		p.advance()
	} else {
		p.errorf(p.cur().Start, p.cur().End, "expected function name")
	}
	p.expectOp("(")
	params := p.parseParameters()
	p.expectOp(")")
	var ret pyast.NodeID = pyast.InvalidNodeID
	if p.acceptOp("->") {
		ret = p.parseExpr()
	}
	p.expectOp(":")
	body := p.parseBlock()
	p.attachAll(id, params)
	if ret != pyast.InvalidNodeID {
		p.attachAll(id, ret)
	}
	p.attachAll(id, body...)
	return p.finish(id, p.prevEnd())
}

func (p *Parser) parseParameters() pyast.NodeID {
	start := p.cur().Start
	id := p.alloc(pyast.KindParameters, start)
	seenStar := false
	for !p.isOp(")") && p.cur().Kind != pytoken.KindEOF {
		if p.acceptOp("/") {
			// positional-only marker: retroactively tag prior params.
			for _, c := range p.file.Get(id).Children {
				pn := p.file.Get(c)
				if pn.Kind == pyast.KindParameter && pn.ParamKind == pyast.ParamPositionalOrKeyword {
					pn.ParamKind = pyast.ParamPositionalOnly
				}
			}
			if !p.acceptOp(",") {
				break
			}
			continue
		}
		pstart := p.cur().Start
		kind := pyast.ParamPositionalOrKeyword
		if p.acceptOp("*") {
			if p.cur().Kind == pytoken.KindIdentifier {
				kind = pyast.ParamVararg
			} else {
				seenStar = true
				if !p.acceptOp(",") {
					break
				}
				continue
			}
			seenStar = true
		} else if p.acceptOp("**") {
			kind = pyast.ParamVarKwarg
		} else if seenStar {
			kind = pyast.ParamKeywordOnly
		}
		param := p.alloc(pyast.KindParameter, pstart)
		pn := p.start(param)
		pn.ParamKind = kind
		if p.cur().Kind == pytoken.KindIdentifier {
			pn.Name = p.cur().Text
			p.advance()
		}
		if p.acceptOp(":") {
			ann := p.parseExpr()
			p.attachAll(param, ann)
		}
		if p.acceptOp("=") {
			def := p.parseExpr()
			p.attachAll(param, def)
		}
		p.finish(param, p.prevEnd())
		p.attachAll(id, param)
		if !p.acceptOp(",") {
			break
		}
	}
	return p.finish(id, p.prevEnd())
}

func (p *Parser) parseClassDef() pyast.NodeID {
	start := p.cur().Start
	p.advance() // 'class'
	id := p.alloc(pyast.KindClassDef, start)
	n := p.start(id)
	if p.cur().Kind == pytoken.KindIdentifier {
		n.Name = p.cur().Text
		p.advance()
	}
	if p.acceptOp("(") {
		for !p.isOp(")") && p.cur().Kind != pytoken.KindEOF {
			base := p.parseExpr()
			p.attachAll(id, base)
			if !p.acceptOp(",") {
				break
			}
		}
		p.expectOp(")")
	}
	p.expectOp(":")
	body := p.parseBlock()
	p.attachAll(id, body...)
	return p.finish(id, p.prevEnd())
}

func (p *Parser) parseIf() pyast.NodeID {
	start := p.cur().Start
	p.advance() // 'if'
	id := p.alloc(pyast.KindIf, start)
	cond := p.parseNamedExpr()
	p.expectOp(":")
	body := p.parseBlock()
	p.file.Get(id).PrimaryBodyLen = len(body)
	p.attachAll(id, cond)
	p.attachAll(id, body...)
	if p.isKeyword("elif") {
		elif := p.parseIf2("elif")
		p.attachAll(id, elif)
	} else if p.acceptKeyword("else") {
		p.expectOp(":")
		elseBody := p.parseBlock()
		p.attachAll(id, elseBody...)
	}
	return p.finish(id, p.prevEnd())
}

// parseIf2 is used for `elif`, which behaves exactly like a nested
// `if`/`else` chain for flow-graph purposes.
func (p *Parser) parseIf2(kw string) pyast.NodeID {
	start := p.cur().Start
	p.advance() // 'elif'
	id := p.alloc(pyast.KindIf, start)
	cond := p.parseNamedExpr()
	p.expectOp(":")
	body := p.parseBlock()
	p.file.Get(id).PrimaryBodyLen = len(body)
	p.attachAll(id, cond)
	p.attachAll(id, body...)
	if p.isKeyword("elif") {
		elif := p.parseIf2("elif")
		p.attachAll(id, elif)
	} else if p.acceptKeyword("else") {
		p.expectOp(":")
		elseBody := p.parseBlock()
		p.attachAll(id, elseBody...)
	}
	return p.finish(id, p.prevEnd())
}

func (p *Parser) parseWhile() pyast.NodeID {
	start := p.cur().Start
	p.advance()
	id := p.alloc(pyast.KindWhile, start)
	cond := p.parseNamedExpr()
	p.expectOp(":")
	body := p.parseBlock()
	p.file.Get(id).PrimaryBodyLen = len(body)
	p.attachAll(id, cond)
	p.attachAll(id, body...)
	if p.acceptKeyword("else") {
		p.expectOp(":")
		elseBody := p.parseBlock()
		p.attachAll(id, elseBody...)
	}
	return p.finish(id, p.prevEnd())
}

func (p *Parser) parseFor(isAsync bool) pyast.NodeID {
	start := p.cur().Start
	p.advance() // 'for'
	id := p.alloc(pyast.KindFor, start)
	p.start(id).IsAsync = isAsync
	target := p.parseTargetList()
	p.acceptKeyword("in")
	iter := p.parseExprList()
	p.expectOp(":")
	body := p.parseBlock()
	p.file.Get(id).PrimaryBodyLen = len(body)
	p.attachAll(id, target, iter)
	p.attachAll(id, body...)
	if p.acceptKeyword("else") {
		p.expectOp(":")
		elseBody := p.parseBlock()
		p.attachAll(id, elseBody...)
	}
	return p.finish(id, p.prevEnd())
}

func (p *Parser) parseTry() pyast.NodeID {
	start := p.cur().Start
	p.advance() // 'try'
	id := p.alloc(pyast.KindTry, start)
	p.expectOp(":")
	body := p.parseBlock()
	p.file.Get(id).PrimaryBodyLen = len(body)
	p.attachAll(id, body...)
	for p.isKeyword("except") {
		hstart := p.cur().Start
		p.advance()
		h := p.alloc(pyast.KindExceptHandler, hstart)
		p.acceptOp("*") // except* (exception groups)
		if !p.isOp(":") {
			typ := p.parseExpr()
			p.attachAll(h, typ)
			if p.acceptKeyword("as") {
				hn := p.start(h)
				if p.cur().Kind == pytoken.KindIdentifier {
					hn.Name = p.cur().Text
					p.advance()
				}
			}
		}
		p.expectOp(":")
		hbody := p.parseBlock()
		p.attachAll(h, hbody...)
		p.finish(h, p.prevEnd())
		p.attachAll(id, h)
	}
	if p.acceptKeyword("else") {
		p.expectOp(":")
		elseBody := p.parseBlock()
		p.file.Get(id).SecondaryBodyLen = len(elseBody)
		p.attachAll(id, elseBody...)
	}
	if p.acceptKeyword("finally") {
		p.expectOp(":")
		finBody := p.parseBlock()
		p.attachAll(id, finBody...)
	}
	return p.finish(id, p.prevEnd())
}

func (p *Parser) parseWith(isAsync bool) pyast.NodeID {
	start := p.cur().Start
	p.advance() // 'with'
	id := p.alloc(pyast.KindWith, start)
	p.start(id).IsAsync = isAsync
	parenWrapped := p.acceptOp("(")
	for {
		istart := p.cur().Start
		item := p.alloc(pyast.KindWithItem, istart)
		ctx := p.parseExpr()
		p.attachAll(item, ctx)
		if p.acceptKeyword("as") {
			target := p.parseTarget()
			p.attachAll(item, target)
		}
		p.finish(item, p.prevEnd())
		p.attachAll(id, item)
		if !p.acceptOp(",") {
			break
		}
	}
	if parenWrapped {
		p.expectOp(")")
	}
	p.expectOp(":")
	body := p.parseBlock()
	p.attachAll(id, body...)
	return p.finish(id, p.prevEnd())
}

func (p *Parser) parseSimpleStatement() pyast.NodeID {
	t := p.cur()
	if t.Kind == pytoken.KindKeyword {
		switch t.Text {
		case "return":
			return p.parseReturn()
		case "raise":
			return p.parseRaise()
		case "pass":
			p.advance()
			return p.finish(p.alloc(pyast.KindPass, t.Start), t.End)
		case "break":
			p.advance()
			return p.finish(p.alloc(pyast.KindBreak, t.Start), t.End)
		case "continue":
			p.advance()
			return p.finish(p.alloc(pyast.KindContinue, t.Start), t.End)
		case "global":
			return p.parseGlobalNonlocal(pyast.KindGlobal)
		case "nonlocal":
			return p.parseGlobalNonlocal(pyast.KindNonlocal)
		case "import":
			return p.parseImport()
		case "from":
			return p.parseImportFrom()
		case "assert":
			return p.parseAssert()
		case "del":
			return p.parseDel()
		case "yield":
			expr := p.parseYield()
			return p.wrapExprStmt(expr)
		}
	}
	return p.parseExprOrAssignStatement()
}

func (p *Parser) wrapExprStmt(expr pyast.NodeID) pyast.NodeID {
	n := p.file.Get(expr)
	id := p.alloc(pyast.KindExprStmt, n.Start)
	p.attachAll(id, expr)
	return p.finish(id, n.End)
}

func (p *Parser) parseReturn() pyast.NodeID {
	start := p.cur().Start
	p.advance()
	id := p.alloc(pyast.KindReturn, start)
	if !p.atStatementEnd() {
		val := p.parseExprList()
		p.attachAll(id, val)
	}
	return p.finish(id, p.prevEnd())
}

func (p *Parser) parseRaise() pyast.NodeID {
	start := p.cur().Start
	p.advance()
	id := p.alloc(pyast.KindRaise, start)
	if !p.atStatementEnd() {
		exc := p.parseExpr()
		p.attachAll(id, exc)
		if p.acceptKeyword("from") {
			cause := p.parseExpr()
			p.attachAll(id, cause)
		}
	}
	return p.finish(id, p.prevEnd())
}

func (p *Parser) parseGlobalNonlocal(kind pyast.Kind) pyast.NodeID {
	start := p.cur().Start
	p.advance()
	id := p.alloc(kind, start)
	for {
		if p.cur().Kind == pytoken.KindIdentifier {
			name := p.alloc(pyast.KindName, p.cur().Start)
			p.start(name).Name = p.cur().Text
			p.finish(name, p.cur().End)
			p.advance()
			p.attachAll(id, name)
		} else {
			break
		}
		if !p.acceptOp(",") {
			break
		}
	}
	return p.finish(id, p.prevEnd())
}

func (p *Parser) parseAssert() pyast.NodeID {
	start := p.cur().Start
	p.advance()
	id := p.alloc(pyast.KindAssert, start)
	cond := p.parseExpr()
	p.attachAll(id, cond)
	if p.acceptOp(",") {
		msg := p.parseExpr()
		p.attachAll(id, msg)
	}
	return p.finish(id, p.prevEnd())
}

func (p *Parser) parseDel() pyast.NodeID {
	start := p.cur().Start
	p.advance()
	id := p.alloc(pyast.KindDel, start)
	target := p.parseTargetList()
	p.attachAll(id, target)
	return p.finish(id, p.prevEnd())
}

func (p *Parser) atStatementEnd() bool {
	k := p.cur().Kind
	return k == pytoken.KindNewline || k == pytoken.KindEOF || p.isOp(";")
}

// parseExprOrAssignStatement disambiguates plain expression statements
// from simple/annotated/augmented assignments by parsing a target list
// first and inspecting what follows, per §4.4.1 "Scope construction".
func (p *Parser) parseExprOrAssignStatement() pyast.NodeID {
	start := p.cur().Start
	first := p.parseExprList()
	if p.acceptOp(":") {
		id := p.alloc(pyast.KindAnnAssign, start)
		ann := p.parseExpr()
		p.attachAll(id, first, ann)
		if p.acceptOp("=") {
			val := p.parseExprList()
			p.attachAll(id, val)
		}
		return p.finish(id, p.prevEnd())
	}
	if op := p.augAssignOp(); op != "" {
		p.advance()
		id := p.alloc(pyast.KindAugAssign, start)
		p.start(id).Operator = op
		val := p.parseExprList()
		p.attachAll(id, first, val)
		return p.finish(id, p.prevEnd())
	}
	if p.isOp("=") {
		id := p.alloc(pyast.KindAssign, start)
		targets := []pyast.NodeID{first}
		var value pyast.NodeID
		for p.acceptOp("=") {
			value = p.parseExprList()
			if p.isOp("=") {
				targets = append(targets, value)
				continue
			}
			break
		}
		p.attachAll(id, targets...)
		p.attachAll(id, value)
		return p.finish(id, p.prevEnd())
	}
	return p.wrapExprStmt(first)
}

var augOps = []string{"+=", "-=", "*=", "/=", "//=", "%=", "**=", ">>=", "<<=", "&=", "|=", "^=", "@="}

func (p *Parser) augAssignOp() string {
	t := p.cur()
	if t.Kind != pytoken.KindOperator {
		return ""
	}
	for _, op := range augOps {
		if t.Operator == op {
			return op
		}
	}
	return ""
}

func (p *Parser) parseImport() pyast.NodeID {
	start := p.cur().Start
	p.advance()
	id := p.alloc(pyast.KindImport, start)
	for {
		dotted, dstart, dend := p.parseDottedName()
		alias := ""
		if p.acceptKeyword("as") {
			if p.cur().Kind == pytoken.KindIdentifier {
				alias = p.cur().Text
				p.advance()
			}
		}
		child := p.alloc(pyast.KindName, dstart)
		cn := p.start(child)
		cn.ImportModule = dotted
		cn.ImportAlias = alias
		p.finish(child, dend)
		p.attachAll(id, child)
		if !p.acceptOp(",") {
			break
		}
	}
	return p.finish(id, p.prevEnd())
}

func (p *Parser) parseImportFrom() pyast.NodeID {
	start := p.cur().Start
	p.advance() // 'from'
	id := p.alloc(pyast.KindImportFrom, start)
	n := p.start(id)
	for p.isOp(".") || p.isOp("...") {
		if p.isOp("...") {
			n.ImportLevel += 3
		} else {
			n.ImportLevel++
		}
		p.advance()
	}
	if p.cur().Kind == pytoken.KindIdentifier {
		dotted, _, _ := p.parseDottedName()
		n.ImportModule = dotted
	}
	p.acceptKeyword("import")
	if p.acceptOp("*") {
		n.IsWildcard = true
		return p.finish(id, p.prevEnd())
	}
	parenWrapped := p.acceptOp("(")
	for {
		if p.cur().Kind != pytoken.KindIdentifier {
			break
		}
		nstart := p.cur().Start
		name := p.cur().Text
		p.advance()
		alias := ""
		if p.acceptKeyword("as") {
			if p.cur().Kind == pytoken.KindIdentifier {
				alias = p.cur().Text
				p.advance()
			}
		}
		child := p.alloc(pyast.KindName, nstart)
		cn := p.start(child)
		cn.Name = name
		cn.ImportAlias = alias
		p.finish(child, p.prevEnd())
		p.attachAll(id, child)
		if !p.acceptOp(",") {
			break
		}
	}
	if parenWrapped {
		p.expectOp(")")
	}
	return p.finish(id, p.prevEnd())
}

func (p *Parser) parseDottedName() (string, int, int) {
	start := p.cur().Start
	name := ""
	if p.cur().Kind == pytoken.KindIdentifier {
		name = p.cur().Text
		p.advance()
	}
	for p.isOp(".") {
		p.advance()
		if p.cur().Kind == pytoken.KindIdentifier {
			name += "." + p.cur().Text
			p.advance()
		}
	}
	return name, start, p.prevEnd()
}
