package pytoken

import "testing"

func kinds(toks []Token) []Kind {
	out := make([]Kind, len(toks))
	for i, t := range toks {
		out[i] = t.Kind
	}
	return out
}

func TestIndentDedent(t *testing.T) {
	src := "if True:\n    x = 1\n    y = 2\nz = 3\n"
	toks := NewLexer(src, PyVersion{3, 10}).Tokenize()
	var indents, dedents int
	for _, tok := range toks {
		if tok.Kind == KindIndent {
			indents++
		}
		if tok.Kind == KindDedent {
			dedents++
		}
	}
	if indents != 1 || dedents != 1 {
		t.Fatalf("expected 1 indent/1 dedent, got %d/%d", indents, dedents)
	}
}

func TestStringPrefixFlags(t *testing.T) {
	toks := NewLexer(`rb"raw\bytes"`, PyVersion{3, 10}).Tokenize()
	if toks[0].Kind != KindString || toks[0].Str == nil {
		t.Fatalf("expected string token, got %+v", toks[0])
	}
	if !toks[0].Str.Flags.Raw || !toks[0].Str.Flags.Bytes {
		t.Fatalf("expected raw+bytes flags, got %+v", toks[0].Str.Flags)
	}
	if toks[0].Str.Value != `raw\bytes` {
		t.Fatalf("raw string must not decode escapes, got %q", toks[0].Str.Value)
	}
}

func TestUnterminatedString(t *testing.T) {
	toks := NewLexer("x = 'oops\n", PyVersion{3, 10}).Tokenize()
	found := false
	for _, tok := range toks {
		if tok.Kind == KindError {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected an error token for unterminated string")
	}
}

func TestBracketsSuppressNewline(t *testing.T) {
	src := "x = [\n    1,\n    2,\n]\n"
	toks := NewLexer(src, PyVersion{3, 10}).Tokenize()
	var newlines int
	for _, tok := range toks {
		if tok.Kind == KindNewline {
			newlines++
		}
	}
	if newlines != 1 {
		t.Fatalf("expected exactly 1 logical newline inside brackets, got %d", newlines)
	}
}

func TestMixedTabSpaceError(t *testing.T) {
	src := "if True:\n\t x = 1\n"
	toks := NewLexer(src, PyVersion{3, 10}).Tokenize()
	found := false
	for _, tok := range toks {
		if tok.Kind == KindError {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected mixed tab/space error")
	}
}

func TestWalrusAndArrowOperators(t *testing.T) {
	toks := NewLexer("def f() -> int:\n    return (n := 1)\n", PyVersion{3, 10}).Tokenize()
	var ops []string
	for _, tok := range toks {
		if tok.Kind == KindOperator {
			ops = append(ops, tok.Operator)
		}
	}
	hasArrow, hasWalrus := false, false
	for _, op := range ops {
		if op == "->" {
			hasArrow = true
		}
		if op == ":=" {
			hasWalrus = true
		}
	}
	if !hasArrow || !hasWalrus {
		t.Fatalf("expected -> and := among operators, got %v", ops)
	}
}
