// Gantry - Machine Learning Resource and Artifact Management
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gantry

package dbms

import (
	"fmt"
	"strings"
	"unicode"
)

// placeholderStyle selects the positional placeholder syntax a driver
// expects when :name parameters are rewritten.
type placeholderStyle int

const (
	styleQuestion placeholderStyle = iota // ?
	styleDollar                           // $1, $2, ...
)

// bindNamed rewrites :name parameters in a query to the positional
// style and collects the matching arguments in occurrence order. A
// referenced name missing from params is an error; unused params are
// allowed. Double colons survive untouched so Postgres casts like
// ::int keep working.
func bindNamed(query string, params map[string]any, style placeholderStyle) (string, []any, error) {
	var (
		out  strings.Builder
		args []any
	)

	runes := []rune(query)
	for i := 0; i < len(runes); i++ {
		r := runes[i]

		if r != ':' {
			out.WriteRune(r)
			continue
		}
		// "::" is a cast, not a parameter
		if i+1 < len(runes) && runes[i+1] == ':' {
			out.WriteString("::")
			i++
			continue
		}
		// a colon glued to the preceding word, as in 'a:b', is not
		// a parameter either
		if i > 0 && isNameRune(runes[i-1]) {
			out.WriteRune(r)
			continue
		}

		start := i + 1
		end := start
		for end < len(runes) && isNameRune(runes[end]) {
			end++
		}
		if end == start {
			out.WriteRune(r)
			continue
		}

		name := string(runes[start:end])
		val, ok := params[name]
		if !ok {
			return "", nil, fmt.Errorf("query references :%s but params carry no such key", name)
		}
		args = append(args, val)
		switch style {
		case styleDollar:
			fmt.Fprintf(&out, "$%d", len(args))
		default:
			out.WriteByte('?')
		}
		i = end - 1
	}

	return out.String(), args, nil
}

func isNameRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

// quoteIdent double-quotes an identifier, quoting each dot-separated
// part so schema-qualified names stay usable.
func quoteIdent(ident string) string {
	parts := strings.Split(ident, ".")
	for i, p := range parts {
		parts[i] = `"` + strings.ReplaceAll(p, `"`, `""`) + `"`
	}
	return strings.Join(parts, ".")
}
