package tools

import (
	"strings"
	"unicode"
)

// reservedBuiltins are shell builtins that only make sense inside an
// interactive session the environment does not expose. Commands starting with
// one of these are rejected so the oracle reaches for working_dir or the
// dedicated session tools instead.
var reservedBuiltins = map[string]struct{}{
	"alias":   {},
	"cd":      {},
	"exit":    {},
	"export":  {},
	"history": {},
	"source":  {},
	"unset":   {},
}

// checkCommandPrefix returns a violation message when the command's leading
// verb (after any env assignments) is a reserved builtin, or "" when the
// command is acceptable. This is a semantic check, not a structural one: the
// command remains free text otherwise.
func checkCommandPrefix(command string) string {
	fields := strings.Fields(strings.TrimSpace(command))
	idx := 0
	for idx < len(fields) && isEnvAssignment(fields[idx]) {
		idx++
	}
	if idx >= len(fields) {
		return ""
	}
	verb := strings.ToLower(strings.TrimSpace(fields[idx]))
	if _, ok := reservedBuiltins[verb]; ok {
		return "command must not start with reserved builtin " + verb
	}
	return ""
}

func isEnvAssignment(token string) bool {
	token = strings.TrimSpace(token)
	if token == "" {
		return false
	}
	eq := strings.IndexRune(token, '=')
	if eq <= 0 {
		return false
	}
	name := token[:eq]
	for i, ch := range name {
		if i == 0 {
			if !(ch == '_' || unicode.IsLetter(ch)) {
				return false
			}
			continue
		}
		if !(ch == '_' || unicode.IsLetter(ch) || unicode.IsDigit(ch)) {
			return false
		}
	}
	return true
}
