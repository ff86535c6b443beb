// Package pyparser implements the recursive-descent Python parser: it
// consumes a pytoken token stream and produces an immutable pyast.File,
// parameterised by target Python version (§4.2).
package pyparser

import (
	"fmt"

	"github.com/shivasurya/pathfinder-pytype/internal/pyast"
	"github.com/shivasurya/pathfinder-pytype/internal/pytoken"
)

// Error is a parse-time diagnostic with a source range, reported to the
// diagnostic sink by the caller (§7.1).
type Error struct {
	Start, End int
	Message    string
}

// Parser holds the mutable cursor over one token stream. It always
// produces a tree — unparseable constructs become pyast.KindError nodes
// so editor completions retain surrounding context (§4.2).
type Parser struct {
	toks    []pytoken.Token
	pos     int
	version pytoken.PyVersion
	file    *pyast.File
	errs    []Error
}

// New creates a Parser over toks for path, targeting version.
func New(path string, toks []pytoken.Token, version pytoken.PyVersion) *Parser {
	return &Parser{toks: toks, version: version, file: pyast.NewFile(path)}
}

// Parse runs the parser to completion and returns the resulting File and
// any parse errors collected along the way. A File is always returned.
func Parse(path, src string, version pytoken.PyVersion) (*pyast.File, []Error) {
	toks := pytoken.NewLexer(src, version).Tokenize()
	p := New(path, toks, version)
	p.parseModule()
	return p.file, p.errs
}

func (p *Parser) cur() pytoken.Token {
	if p.pos >= len(p.toks) {
		return pytoken.Token{Kind: pytoken.KindEOF}
	}
	return p.toks[p.pos]
}

func (p *Parser) peekAt(n int) pytoken.Token {
	idx := p.pos + n
	if idx >= len(p.toks) {
		return pytoken.Token{Kind: pytoken.KindEOF}
	}
	return p.toks[idx]
}

func (p *Parser) advance() pytoken.Token {
	t := p.cur()
	if p.pos < len(p.toks) {
		p.pos++
	}
	return t
}

// skipTrivia advances past comment tokens, which the statement grammar
// does not itself consume between tokens.
func (p *Parser) skipTrivia() {
	for p.cur().Kind == pytoken.KindComment {
		p.advance()
	}
}

func (p *Parser) isOp(op string) bool {
	t := p.cur()
	return t.Kind == pytoken.KindOperator && t.Operator == op
}

func (p *Parser) isKeyword(kw string) bool {
	t := p.cur()
	return t.Kind == pytoken.KindKeyword && t.Text == kw
}

func (p *Parser) acceptOp(op string) bool {
	if p.isOp(op) {
		p.advance()
		return true
	}
	return false
}

func (p *Parser) acceptKeyword(kw string) bool {
	if p.isKeyword(kw) {
		p.advance()
		return true
	}
	return false
}

func (p *Parser) errorf(start, end int, format string, args ...interface{}) {
	p.errs = append(p.errs, Error{Start: start, End: end, Message: fmt.Sprintf(format, args...)})
}

// expectOp consumes op or records an error and returns false, leaving the
// cursor in place so the caller can attempt recovery.
func (p *Parser) expectOp(op string) bool {
	if p.acceptOp(op) {
		return true
	}
	t := p.cur()
	p.errorf(t.Start, t.End, "expected %q, found %q", op, t.String())
	return false
}

func (p *Parser) start(id pyast.NodeID) *pyast.Node { return p.file.Get(id) }

func (p *Parser) alloc(kind pyast.Kind, start int) pyast.NodeID {
	return p.file.Alloc(pyast.Node{Kind: kind, Start: start, End: start})
}

// finish sets a node's End to end and returns its id; attaching the node
// to a parent is left to the caller.
func (p *Parser) finish(id pyast.NodeID, end int) pyast.NodeID {
	n := p.file.Get(id)
	n.End = end
	return id
}

func (p *Parser) attachAll(parent pyast.NodeID, children ...pyast.NodeID) {
	for _, c := range children {
		if c != pyast.InvalidNodeID {
			p.file.Attach(parent, c)
		}
	}
}

// errorNode records an unparseable span as a KindError placeholder so
// downstream consumers (completions) still see a node at that range.
func (p *Parser) errorNode(start int) pyast.NodeID {
	t := p.cur()
	if t.Kind != pytoken.KindEOF {
		p.advance()
	}
	end := t.End
	if end < start {
		end = start
	}
	id := p.alloc(pyast.KindError, start)
	n := p.file.Get(id)
	n.End = end
	n.Errors = append(n.Errors, fmt.Sprintf("unexpected token %q", t.String()))
	return id
}

func lastEnd(toks []pytoken.Token, pos int) int {
	if pos == 0 {
		return 0
	}
	return toks[pos-1].End
}

func (p *Parser) prevEnd() int { return lastEnd(p.toks, p.pos) }
