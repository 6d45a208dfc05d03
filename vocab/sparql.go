package vocab

import "strings"

// sparqlLiteralEscaper follows the SPARQL 1.1 string escape rules for
// double-quoted literals.
var sparqlLiteralEscaper = strings.NewReplacer(
	`\`, `\\`,
	`"`, `\"`,
	"\n", `\n`,
	"\r", `\r`,
	"\t", `\t`,
	"\b", `\b`,
	"\f", `\f`,
)

// EscapeLiteral escapes a string for embedding inside a double-quoted
// SPARQL literal. Every user-controlled value written into a query must
// pass through here.
func EscapeLiteral(s string) string {
	return sparqlLiteralEscaper.Replace(s)
}

// SafeIRI reports whether s can be embedded inside <...> in a SPARQL
// query without changing the query's structure.
func SafeIRI(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		switch {
		case r <= 0x20:
			return false
		case r == '<' || r == '>' || r == '"' || r == '{' || r == '}' || r == '|' || r == '^' || r == '`' || r == '\\':
			return false
		}
	}
	return true
}
