// Package ignore decides which local paths are excluded from a sync: layered
// gitignore-style rule files plus site policy (extension allow-list, hidden
// files, VCS metadata, exclude globs).
package ignore

import (
	"strings"

	gitignore "github.com/sabhiram/go-gitignore"
)

// verdict is the outcome of evaluating one rule file against a path. A rule
// file can ignore a path, explicitly keep it (negation), or say nothing,
// in which case shallower scopes get to decide.
type verdict int

const (
	verdictNone verdict = iota
	verdictIgnore
	verdictKeep
)

type rule struct {
	negate  bool
	pattern *gitignore.GitIgnore
}

// matcher evaluates one ignore file's rules with gitignore precedence: rules
// are tried in file order and the last matching rule decides, so a later
// "!pattern" un-ignores a path matched by an earlier pattern. Unparseable
// patterns are treated as literals by the glob engine, never as errors.
type matcher struct {
	rules []rule
}

func compileMatcher(lines []string) *matcher {
	m := &matcher{}
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		negate := strings.HasPrefix(line, "!")
		m.rules = append(m.rules, rule{
			negate:  negate,
			pattern: gitignore.CompileIgnoreLines(strings.TrimPrefix(line, "!")),
		})
	}
	return m
}

// match evaluates a path relative to the matcher's scope, without a leading
// slash, so anchored patterns anchor at the scope directory.
func (m *matcher) match(relPath string) verdict {
	v := verdictNone
	for _, r := range m.rules {
		if !r.pattern.MatchesPath(relPath) {
			continue
		}
		if r.negate {
			v = verdictKeep
		} else {
			v = verdictIgnore
		}
	}
	return v
}
