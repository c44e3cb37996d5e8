package cssval

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	ignore "github.com/sabhiram/go-gitignore"
)

// cssPattern matches stylesheets at any depth, regardless of extension case.
const cssPattern = "**/*.[cC][sS][sS]"

// DiscoverFiles resolves target into the absolute paths of the stylesheets
// to validate, sorted lexicographically.
//
// A regular file must carry a .css extension. A directory is searched
// recursively; config.Exclude patterns and, when RespectGitignore is set, the
// directory's .gitignore are applied to paths relative to it.
func DiscoverFiles(target string, config ValidationConfig) ([]string, error) {
	abs, err := filepath.Abs(target)
	if err != nil {
		return nil, fmt.Errorf("resolving %s: %w", target, err)
	}

	info, err := os.Stat(abs)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrInputNotFound, target)
		}
		return nil, fmt.Errorf("stat %s: %w", target, err)
	}

	if !info.IsDir() {
		if !isCSSFile(abs) {
			return nil, fmt.Errorf("%w: %s", ErrInputNotCSS, target)
		}
		return []string{abs}, nil
	}

	matches, err := doublestar.Glob(os.DirFS(abs), cssPattern, doublestar.WithFilesOnly())
	if err != nil {
		return nil, fmt.Errorf("scanning %s: %w", target, err)
	}

	gi := loadGitIgnore(abs, config.RespectGitignore)

	files := make([]string, 0, len(matches))
	for _, rel := range matches {
		if shouldSkipFile(rel, config.Exclude, gi) {
			continue
		}
		files = append(files, filepath.Join(abs, filepath.FromSlash(rel)))
	}

	sort.Strings(files)
	return files, nil
}

func isCSSFile(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".css")
}

// loadGitIgnore compiles <dir>/.gitignore when enabled.
// A missing or unreadable file means nothing is ignored.
func loadGitIgnore(dir string, enabled bool) *ignore.GitIgnore {
	if !enabled {
		return nil
	}
	gi, err := ignore.CompileIgnoreFile(filepath.Join(dir, ".gitignore"))
	if err != nil {
		return nil
	}
	return gi
}

// shouldSkipFile reports whether rel (slash-separated, relative to the
// directory target) is excluded by a pattern or ignored by git.
func shouldSkipFile(rel string, exclude []string, gi *ignore.GitIgnore) bool {
	for _, pattern := range exclude {
		if ok, _ := doublestar.Match(pattern, rel); ok {
			return true
		}
	}

	if gi != nil && gi.MatchesPath(rel) {
		return true
	}

	return false
}

// RelativePath returns path relative to the working directory, or path itself
// when no relative form exists.
func RelativePath(path string) string {
	cwd, err := os.Getwd()
	if err != nil {
		return path
	}

	rel, err := filepath.Rel(cwd, path)
	if err != nil {
		return path
	}

	return rel
}
