package sqlguard

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Reason explains a verdict.
type Reason string

const (
	ReasonOK             Reason = "ok"
	ReasonEmpty          Reason = "empty"
	ReasonNotSelect      Reason = "not_select"
	ReasonMultiStatement Reason = "multi_statement"
	ReasonForbiddenToken Reason = "forbidden_token"
)

// forbidden tokens are matched as substrings. This rejects benign text such
// as a created_at column or a string literal containing "delete".
var forbidden = []string{
	"insert",
	"update",
	"delete",
	"drop",
	"alter",
	"truncate",
	"create",
	"grant",
	"--",
	"/*",
}

// Verdict is the outcome of Validate.
type Verdict struct {
	Safe   bool
	Reason Reason
	// Token is the forbidden token that matched, if any.
	Token string
}

func (v Verdict) String() string {
	if v.Token != "" {
		return string(v.Reason) + ": " + v.Token
	}
	return string(v.Reason)
}

// Validate reports whether stmt is a single read-only select.
//
// The statement must start with the keyword "select", may contain at most one ';' and
// only as its final character, and must not contain any forbidden token.
// All checks are case-insensitive on the trimmed statement.
func Validate(stmt string) Verdict {
	s := strings.ToLower(strings.TrimSpace(stmt))
	if s == "" {
		return Verdict{Reason: ReasonEmpty}
	}
	if !startsWithSelect(s) {
		return Verdict{Reason: ReasonNotSelect}
	}
	if i := strings.IndexByte(s, ';'); i >= 0 && i != len(s)-1 {
		return Verdict{Reason: ReasonMultiStatement}
	}
	for _, tok := range forbidden {
		if strings.Contains(s, tok) {
			return Verdict{Reason: ReasonForbiddenToken, Token: tok}
		}
	}
	return Verdict{Safe: true, Reason: ReasonOK}
}

// startsWithSelect reports whether s begins with the select keyword rather
// than a longer word such as selectx.
func startsWithSelect(s string) bool {
	rest, ok := strings.CutPrefix(s, "select")
	if !ok {
		return false
	}
	if rest == "" {
		return true
	}
	r, _ := utf8.DecodeRuneInString(rest)
	return unicode.IsSpace(r) || r == '(' || r == '*' || r == ';'
}

// Check extracts the candidate statement from raw and validates it.
func Check(raw string) (string, Verdict, error) {
	stmt, err := Extract(raw)
	if err != nil {
		return "", Verdict{Reason: ReasonEmpty}, err
	}
	return stmt, Validate(stmt), nil
}
