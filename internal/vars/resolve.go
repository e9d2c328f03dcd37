package vars

import (
	"fmt"
	"os"
)

// Mode selects the substitution policy applied to unresolved variables
// (§4.6). Cmd fields behave like a shell: an unset variable silently
// expands to nothing. Every other field requires braces and treats a
// missing value as a hard error, since a silently-empty working_dir or
// patch path is far more likely to be a typo than an intentional blank.
type Mode int

const (
	// ModeCmd resolves both "$VAR" and "${VAR}"; an unresolved name of
	// either form expands to the empty string.
	ModeCmd Mode = iota
	// ModeField resolves only "${VAR}"; a bare "$VAR" is left as literal
	// text, and an unresolved braced name is a ResolveError.
	ModeField
)

// ResolveError reports a required variable with no value, naming the
// variable and the field text it appeared in.
type ResolveError struct {
	Name string
	Text string
}

func (e *ResolveError) Error() string {
	return fmt.Sprintf("unresolved variable %q in %q", e.Name, e.Text)
}

// Resolver substitutes variable references using a layered precedence:
// recipe-declared env wins, then pkger's own build variables
// ($PKGER_OS, $PKGER_BLD_DIR, ...), then the process environment pkger
// itself was invoked with.
type Resolver struct {
	recipeEnv map[string]string
	buildVars map[string]string
	osLookup  func(string) (string, bool)
}

// NewResolver builds a Resolver over recipe-declared env and pkger's
// computed build variables. osLookup defaults to os.LookupEnv; tests may
// override it.
func NewResolver(recipeEnv, buildVars map[string]string) *Resolver {
	return &Resolver{
		recipeEnv: recipeEnv,
		buildVars: buildVars,
		osLookup:  os.LookupEnv,
	}
}

// lookup returns name's value under the recipeEnv > buildVars > process
// environment precedence.
func (r *Resolver) lookup(name string) (string, bool) {
	if v, ok := r.recipeEnv[name]; ok {
		return v, true
	}
	if v, ok := r.buildVars[name]; ok {
		return v, true
	}
	if r.osLookup != nil {
		return r.osLookup(name)
	}
	return "", false
}

// Render substitutes every variable reference in text according to mode.
func (r *Resolver) Render(text string, mode Mode) (string, error) {
	lex := newLexer(text)
	var out []byte

	for {
		tok := lex.next()
		switch tok.kind {
		case tokenEOF:
			return string(out), nil
		case tokenText:
			out = append(out, tok.text...)
		case tokenVariable:
			rendered, err := r.renderVariable(tok, mode)
			if err != nil {
				return "", err
			}
			out = append(out, rendered...)
		}
	}
}

func (r *Resolver) renderVariable(tok token, mode Mode) (string, error) {
	if mode == ModeField && !tok.braced {
		// Unbraced references outside cmd fields are not variables at
		// all; keep the literal text (§4.6).
		return tok.text, nil
	}

	if v, ok := r.lookup(tok.name); ok {
		return v, nil
	}

	if mode == ModeCmd {
		return "", nil
	}
	return "", &ResolveError{Name: tok.name, Text: tok.text}
}
