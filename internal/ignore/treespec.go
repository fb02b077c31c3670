package ignore

import (
	"bufio"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// scopedMatcher is one compiled ignore file, scoped to the directory that
// contains it. The scope is tree-relative with a leading slash; "/" is the
// tree root.
type scopedMatcher struct {
	scope   string
	matcher *matcher
}

// TreeSpec layers per-directory ignore files over a directory tree the way
// nested .gitignore files work: scopes are tried deepest-first, and the first
// scope with an opinion about a path wins. A nested scope's negation
// therefore overrides a parent's ignore rule for paths under it, while the
// parent rule still applies elsewhere. A path outside all scopes is never
// ignored.
type TreeSpec struct {
	fileName string
	scopes   []scopedMatcher
}

// LoadTreeSpec walks rootDir once and compiles a scoped matcher for every
// directory containing an ignore file named fileName. The deepest-first scope
// order is fixed here, never recomputed per query.
func LoadTreeSpec(rootDir, fileName string) (*TreeSpec, error) {
	t := &TreeSpec{fileName: fileName}
	err := filepath.WalkDir(rootDir, func(dir string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		ignorePath := filepath.Join(dir, fileName)
		lines, err := readRuleLines(ignorePath)
		if err != nil {
			if os.IsNotExist(err) {
				return nil
			}
			return err
		}
		rel, err := filepath.Rel(rootDir, dir)
		if err != nil {
			return err
		}
		slog.Debug("loaded ignore file", "path", ignorePath, "rules", len(lines))
		t.scopes = append(t.scopes, scopedMatcher{
			scope:   scopePath(rel),
			matcher: compileMatcher(lines),
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(t.scopes, func(i, j int) bool {
		return t.scopes[i].scope > t.scopes[j].scope
	})
	return t, nil
}

// FileName returns the name of the ignore files this spec was built from.
func (t *TreeSpec) FileName() string {
	return t.fileName
}

// Match reports whether the tree-relative path is ignored. Each enclosing
// scope evaluates the path relative to its own directory; the deepest scope
// with a verdict decides.
func (t *TreeSpec) Match(path string) bool {
	full := "/" + strings.TrimPrefix(filepath.ToSlash(path), "/")
	for _, s := range t.scopes {
		rel, ok := scopeRel(full, s.scope)
		if !ok {
			continue
		}
		switch s.matcher.match(rel) {
		case verdictIgnore:
			return true
		case verdictKeep:
			return false
		}
	}
	return false
}

func readRuleLines(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var lines []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		if line := scanner.Text(); line != "" {
			lines = append(lines, line)
		}
	}
	return lines, scanner.Err()
}

func scopePath(rel string) string {
	rel = filepath.ToSlash(rel)
	if rel == "." {
		return "/"
	}
	return "/" + rel
}

// scopeRel returns the path relative to scope without a leading slash, and
// whether the path lies strictly under the scope directory.
func scopeRel(full, scope string) (string, bool) {
	if scope == "/" {
		return strings.TrimPrefix(full, "/"), true
	}
	prefix := scope + "/"
	if !strings.HasPrefix(full, prefix) {
		return "", false
	}
	return full[len(prefix):], true
}
