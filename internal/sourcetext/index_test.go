package sourcetext

import "testing"

func TestNewIndexPredominantEOL(t *testing.T) {
	idx := NewIndex("a\r\nb\r\nc\n")
	if idx.PredominantEOL() != EOLCRLF {
		t.Fatalf("expected CRLF predominant, got %v", idx.PredominantEOL())
	}
	if idx.LineCount() != 4 {
		t.Fatalf("expected 4 lines, got %d", idx.LineCount())
	}
}

func TestPositionAtRoundTrip(t *testing.T) {
	text := "x = 1\ny = 2\n"
	idx := NewIndex(text)
	pos := idx.PositionAt(6)
	if pos.Line != 1 || pos.Column != 0 {
		t.Fatalf("expected line 1 col 0, got %+v", pos)
	}
	off := idx.OffsetAt(pos)
	if off != 6 {
		t.Fatalf("expected offset 6, got %d", off)
	}
}

func TestPositionAtUnicodeColumn(t *testing.T) {
	text := "a = 'é'\n"
	idx := NewIndex(text)
	pos := idx.PositionAt(len(text) - 1)
	if pos.Column != utf16Len(text[:len(text)-1]) {
		t.Fatalf("unexpected column %d", pos.Column)
	}
}
