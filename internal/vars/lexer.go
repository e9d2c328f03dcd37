package vars

import "strings"

// lexer tokenizes a template string one token at a time, ported from the
// retrieved reference scanner: positions are tracked as byte offsets, and
// variable names accept only ASCII alphanumerics, '_' and '-'.
type lexer struct {
	text []byte
	pos  int
}

func newLexer(text string) *lexer {
	return &lexer{text: []byte(text)}
}

func (l *lexer) cur() byte {
	if l.pos < len(l.text) {
		return l.text[l.pos]
	}
	return 0
}

func (l *lexer) peek() byte {
	if l.pos+1 < len(l.text) {
		return l.text[l.pos+1]
	}
	return 0
}

// advance moves to the next byte, reporting whether it could.
func (l *lexer) advance() bool {
	if l.pos < len(l.text) {
		l.pos++
		return true
	}
	return false
}

func (l *lexer) eof() bool {
	return l.pos >= len(l.text)
}

func (l *lexer) next() token {
	if l.cur() == '$' {
		l.advance()
		return l.parseVariable()
	}
	if l.eof() {
		return token{kind: tokenEOF}
	}
	return l.parseText()
}

func (l *lexer) parseVariable() token {
	if l.cur() == '{' {
		return l.parseBraced()
	}
	return l.parseUnbraced()
}

// parseBraced handles "${NAME}" and "${ NAME }", tolerating a single
// leading space inside the brace. A brace that never closes, or whose
// body contains a character outside the name alphabet, falls back to
// plain text rather than erroring — the lexer never fails, only the
// resolver does.
func (l *lexer) parseBraced() token {
	start := l.pos - 1 // the '$'

	l.advance() // skip '{'
	if l.cur() == ' ' {
		l.advance()
	}

	for {
		c := l.cur()
		switch {
		case c == '}':
			l.advance()
			return l.finishBraced(start)
		case isASCIISpace(c) && l.peek() == '}':
			l.advance()
			l.advance()
			return l.finishBraced(start)
		}

		if !isValidNameChar(c) || !l.advance() {
			return token{kind: tokenText, text: string(l.text[start:l.pos])}
		}
	}
}

func (l *lexer) finishBraced(start int) token {
	name := string(l.text[start+2 : l.pos-1])
	return token{
		kind:   tokenVariable,
		braced: true,
		text:   string(l.text[start:l.pos]),
		name:   strings.TrimSpace(name),
	}
}

// parseUnbraced handles "$NAME". A '$' followed immediately by a
// non-name character (including another '$', whitespace, or EOF) is
// plain text: a lone '$'.
func (l *lexer) parseUnbraced() token {
	start := l.pos - 1 // the '$'

	for {
		c := l.cur()
		if !isValidNameChar(c) {
			break
		}
		if !l.advance() {
			break
		}
	}

	if l.pos == start+1 {
		return token{kind: tokenText, text: string(l.text[start:l.pos])}
	}
	return token{
		kind: tokenVariable,
		text: string(l.text[start:l.pos]),
		name: strings.TrimSpace(string(l.text[start+1 : l.pos])),
	}
}

func (l *lexer) parseText() token {
	start := l.pos
	for {
		if l.cur() == '$' || !l.advance() {
			return token{kind: tokenText, text: string(l.text[start:l.pos])}
		}
	}
}

func isASCIISpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}
