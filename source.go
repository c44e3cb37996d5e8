package cssval

import (
	"net/url"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"
)

var (
	// uriScheme matches a URI scheme of two or more letters; single letters are drive names.
	uriScheme   = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9+.-]+:`)
	driveLetter = regexp.MustCompile(`^/[A-Za-z]:`)
)

// normalizeSourcePath turns the validator's per-diagnostic source (a file
// URI in one of several forms, or a plain path) into an absolute filesystem
// path. It reports false for sources that cannot name a local file.
func normalizeSourcePath(source string) (string, bool) {
	src := strings.TrimSpace(source)
	if src == "" {
		return "", false
	}

	if len(src) >= 5 && strings.EqualFold(src[:5], "file:") {
		rest := src[5:]
		if strings.HasPrefix(rest, "//") {
			rest = rest[2:]
			// file://localhost/path and file:///path both name a local path.
			if strings.HasPrefix(strings.ToLower(rest), "localhost/") {
				rest = rest[len("localhost"):]
			}
		}
		if unescaped, err := url.PathUnescape(rest); err == nil {
			rest = unescaped
		}
		if driveLetter.MatchString(rest) {
			rest = rest[1:]
		}
		src = rest
	} else if uriScheme.MatchString(src) {
		return "", false
	}

	abs, err := filepath.Abs(filepath.FromSlash(src))
	if err != nil {
		return "", false
	}
	return filepath.Clean(abs), true
}

// attributedTo reports whether a diagnostic source names file. Diagnostics
// without a source belong to the file being validated.
func attributedTo(source, file string) bool {
	if strings.TrimSpace(source) == "" {
		return true
	}
	path, ok := normalizeSourcePath(source)
	if !ok {
		return false
	}
	return samePath(path, file)
}

func samePath(a, b string) bool {
	a, b = filepath.Clean(a), filepath.Clean(b)
	if runtime.GOOS == "windows" {
		return strings.EqualFold(a, b)
	}
	return a == b
}
