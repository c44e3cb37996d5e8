package cssval

import (
	"bufio"
	"os"
	"strings"

	"github.com/tdewolff/parse/v2"
	"github.com/tdewolff/parse/v2/css"
)

// sourceLine returns line n (1-based) of path, without its newline.
// It reports false when the file cannot be read or is shorter than n lines.
func sourceLine(path string, n int) (string, bool) {
	if n <= 0 {
		return "", false
	}

	f, err := os.Open(path)
	if err != nil {
		return "", false
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for i := 1; scanner.Scan(); i++ {
		if i == n {
			return strings.TrimRight(scanner.Text(), "\r"), true
		}
	}
	return "", false
}

// propertyColumn returns the 1-based byte column at which property name is
// declared in line, or 0 when the line holds no such declaration. Names are
// compared case-insensitively; comments and strings never match.
func propertyColumn(line, name string) int {
	if name == "" {
		return 0
	}

	lexer := css.NewLexer(parse.NewInputString(line))
	offset := 0
	candidate := -1

	for {
		tt, text := lexer.Next()
		if tt == css.ErrorToken {
			return 0
		}

		switch {
		case tt == css.IdentToken && strings.EqualFold(string(text), name):
			candidate = offset
		case tt == css.ColonToken && candidate >= 0:
			return candidate + 1
		case tt == css.WhitespaceToken || tt == css.CommentToken:
			// between name and colon
		default:
			candidate = -1
		}

		offset += len(text)
	}
}

// diagnosticColumn is the column to point at for d in line: the engine's
// own column when it reported one, else the declaration of the property an
// unknown-property message names.
func diagnosticColumn(d Diagnostic, line string) int {
	if d.Column > 0 {
		return d.Column
	}
	if name, ok := ToleratedProperty(d.Message); ok {
		return propertyColumn(line, name)
	}
	return 0
}
