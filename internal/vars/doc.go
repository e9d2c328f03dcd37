// Package vars implements pkger's variable/template resolver (C8): the
// lexer that tokenizes "$VAR" and "${VAR}" references out of recipe
// strings, and the Resolver that substitutes them using a layered
// precedence (recipe env, then pkger-provided build variables, then the
// process environment).
//
// The lexer is a direct port of the original implementation's
// character-at-a-time scanner (see parser.rs in the retrieved reference
// material), preserved down to its corner cases around unterminated
// braces and empty variable names. The substitution *policy* — what
// happens when a name resolves to nothing — is pkger's own: a bare $VAR
// is shell-like and expands to empty in command strings, while a braced
// ${VAR} is a hard requirement anywhere else and a missing value is a
// ResolveError (§4.6).
package vars
