package vars

import "testing"

func collectTokens(text string) []token {
	l := newLexer(text)
	var out []token
	for {
		tok := l.next()
		out = append(out, tok)
		if tok.kind == tokenEOF {
			return out
		}
	}
}

func assertToken(t *testing.T, got token, kind tokenKind, text, name string) {
	t.Helper()
	if got.kind != kind {
		t.Fatalf("kind = %v, want %v (text=%q)", got.kind, kind, got.text)
	}
	if got.text != text {
		t.Fatalf("text = %q, want %q", got.text, text)
	}
	if kind == tokenVariable && got.name != name {
		t.Fatalf("name = %q, want %q", got.name, name)
	}
}

func TestLexerSimpleCase(t *testing.T) {
	toks := collectTokens("this is my super ${ cool } text.")
	assertToken(t, toks[0], tokenText, "this is my super ", "")
	assertToken(t, toks[1], tokenVariable, "${ cool }", "cool")
	assertToken(t, toks[2], tokenText, " text.", "")
	assertToken(t, toks[3], tokenEOF, "", "")
}

func TestLexerMultipleVars(t *testing.T) {
	text := "this is a ${much} more ${ complex } case."
	toks := collectTokens(text)
	assertToken(t, toks[0], tokenText, "this is a ", "")
	assertToken(t, toks[1], tokenVariable, "${much}", "much")
	assertToken(t, toks[2], tokenText, " more ", "")
	assertToken(t, toks[3], tokenVariable, "${ complex }", "complex")
	assertToken(t, toks[4], tokenText, " case.", "")
	assertToken(t, toks[5], tokenEOF, "", "")
}

func TestLexerCornerCases(t *testing.T) {
	text := "this ${should be just text$}${123this_is-CorrecT }${}"
	toks := collectTokens(text)
	assertToken(t, toks[0], tokenText, "this ", "")
	assertToken(t, toks[1], tokenText, "${should", "")
	assertToken(t, toks[2], tokenText, " be just text", "")
	assertToken(t, toks[3], tokenText, "$", "")
	assertToken(t, toks[4], tokenText, "}", "")
	assertToken(t, toks[5], tokenVariable, "${123this_is-CorrecT }", "123this_is-CorrecT")
	assertToken(t, toks[6], tokenVariable, "${}", "")
	assertToken(t, toks[7], tokenEOF, "", "")
}

func TestLexerNoBraces(t *testing.T) {
	text := "this is my super $COOL_ $} text."
	toks := collectTokens(text)
	assertToken(t, toks[0], tokenText, "this is my super ", "")
	assertToken(t, toks[1], tokenVariable, "$COOL_", "COOL_")
	assertToken(t, toks[2], tokenText, " ", "")
	assertToken(t, toks[3], tokenText, "$", "")
	assertToken(t, toks[4], tokenText, "} text.", "")
	assertToken(t, toks[5], tokenEOF, "", "")
}

func TestLexerEmptyText(t *testing.T) {
	toks := collectTokens("")
	if len(toks) != 1 || toks[0].kind != tokenEOF {
		t.Fatalf("got %#v, want single EOF", toks)
	}
}
