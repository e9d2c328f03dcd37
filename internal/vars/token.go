package vars

// tokenKind distinguishes the three token shapes the lexer emits.
type tokenKind int

const (
	tokenText tokenKind = iota
	tokenVariable
	tokenEOF
)

// token is one lexical unit of a template string.
type token struct {
	kind tokenKind
	text string // the raw source slice (e.g. "${ RECIPE }", "$VAR", or plain text)
	name string // for tokenVariable: the trimmed variable name; "" otherwise
	braced bool // for tokenVariable: whether it was written as ${...}
}

// isValidNameChar matches the original lexer's character class for
// variable names: ASCII alphanumerics, underscore, hyphen.
func isValidNameChar(ch byte) bool {
	return (ch >= 'a' && ch <= 'z') ||
		(ch >= 'A' && ch <= 'Z') ||
		(ch >= '0' && ch <= '9') ||
		ch == '_' || ch == '-'
}
