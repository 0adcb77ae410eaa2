package css

import (
	"strings"

	"github.com/tdewolff/parse/v2"
	tcss "github.com/tdewolff/parse/v2/css"
)

// Split breaks a CSS list on sep (',' or ' ') while keeping bracketed,
// parenthesised and quoted content intact. Parts are trimmed; an empty
// input yields nil.
func Split(s string, sep byte) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}

	l := tcss.NewLexer(parse.NewInputString(s))
	var (
		parts []string
		cur   strings.Builder
		depth int
	)
	flush := func() {
		parts = append(parts, strings.TrimSpace(cur.String()))
		cur.Reset()
	}

	for {
		tt, data := l.Next()
		if tt == tcss.ErrorToken {
			break
		}
		switch tt {
		case tcss.FunctionToken, tcss.LeftParenthesisToken, tcss.LeftBracketToken, tcss.LeftBraceToken:
			depth++
		case tcss.RightParenthesisToken, tcss.RightBracketToken, tcss.RightBraceToken:
			if depth > 0 {
				depth--
			}
		case tcss.CommaToken:
			if depth == 0 && sep == ',' {
				flush()
				continue
			}
		case tcss.WhitespaceToken:
			if depth == 0 && sep == ' ' {
				if cur.Len() > 0 {
					flush()
				}
				continue
			}
		}
		cur.Write(data)
	}
	if cur.Len() > 0 || sep == ',' {
		flush()
	}
	return parts
}

// Content returns the text inside the outermost bracket or quote pair, or s
// unchanged when it has none. "calc(1px + 2%)" yields "1px + 2%".
func Content(s string) string {
	open := strings.IndexAny(s, `("'`)
	if open < 0 {
		return s
	}
	closing := byte(')')
	if s[open] != '(' {
		closing = s[open]
	}
	end := strings.LastIndexByte(s, closing)
	if end <= open {
		end = len(s)
	}
	inner := strings.TrimSpace(s[open+1 : end])
	if n := len(inner); n >= 2 && (inner[0] == '"' || inner[0] == '\'') && inner[n-1] == inner[0] {
		inner = inner[1 : n-1]
	}
	return inner
}

// Fixed repeats the last element of list (or truncates) to length n.
func Fixed[T any](list []T, n int) []T {
	if len(list) == 0 || n <= 0 {
		return nil
	}
	out := make([]T, n)
	for i := range out {
		out[i] = list[min(i, len(list)-1)]
	}
	return out
}
