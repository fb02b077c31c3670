package filetree

import (
	"log/slog"
	"sort"
	"strings"
)

// Tree is an ordered collection of entries representing one side of a sync
// (local or remote). Trees are never mutated after construction; filtering
// returns a new Tree. Lookups are linear, which is fine at site scale.
type Tree struct {
	entries []*Entry
}

// New builds a tree from entries in the given order.
func New(entries ...*Entry) *Tree {
	return &Tree{entries: entries}
}

// Entries returns the entries in tree order. The slice is shared with the
// tree and must not be modified.
func (t *Tree) Entries() []*Entry {
	return t.entries
}

func (t *Tree) Len() int {
	return len(t.entries)
}

// CountFiles returns the number of non-directory entries.
func (t *Tree) CountFiles() int {
	n := 0
	for _, e := range t.entries {
		if !e.IsDirectory {
			n++
		}
	}
	return n
}

// CountDirectories returns the number of directory entries.
func (t *Tree) CountDirectories() int {
	n := 0
	for _, e := range t.entries {
		if e.IsDirectory {
			n++
		}
	}
	return n
}

// Find returns the entry with the exact path, or nil.
func (t *Tree) Find(path string) *Entry {
	for _, e := range t.entries {
		if e.Path == path {
			return e
		}
	}
	return nil
}

// Filter returns a new tree with only the entries for which keep returns
// true. Dropped paths are logged at debug level.
func (t *Tree) Filter(keep func(*Entry) bool) *Tree {
	kept := make([]*Entry, 0, len(t.entries))
	var dropped []string
	for _, e := range t.entries {
		if keep(e) {
			kept = append(kept, e)
		} else {
			dropped = append(dropped, e.Path)
		}
	}
	if len(dropped) > 0 {
		slog.Debug("filtered tree entries", "dropped", dropped)
	}
	return &Tree{entries: kept}
}

// IsEmptyDirectory reports whether path resolves to a directory entry that
// contains no files, directly or transitively. A directory holding only
// empty directories is itself empty.
func (t *Tree) IsEmptyDirectory(path string) bool {
	dir := t.Find(path)
	if dir == nil || !dir.IsDirectory {
		return false
	}
	prefix := path + "/"
	for _, e := range t.entries {
		if !e.IsDirectory && strings.HasPrefix(e.Path, prefix) {
			return false
		}
	}
	return true
}

// ListEmptyDirectories returns the paths of all empty directories, in tree
// order.
func (t *Tree) ListEmptyDirectories() []string {
	var empty []string
	for _, e := range t.entries {
		if e.IsDirectory && t.IsEmptyDirectory(e.Path) {
			empty = append(empty, e.Path)
		}
	}
	return empty
}

// Pair is one path-aligned pairing of two trees. Either side may be nil when
// the path exists only in the other tree.
type Pair struct {
	Left  *Entry
	Right *Entry
}

// Zip pairs two trees by the union of their file paths, sorted
// lexicographically. Directory entries do not contribute paths to the union,
// but remain reachable through Find, so a type conflict at a path still pairs
// a file against a directory entry. The lexicographic order guarantees that a
// path "dir" sorts before anything under "dir/", which the planner's
// ancestor-delete suppression depends on.
func (t *Tree) Zip(other *Tree) []Pair {
	seen := make(map[string]struct{}, len(t.entries)+len(other.entries))
	paths := make([]string, 0, len(t.entries)+len(other.entries))
	for _, tree := range []*Tree{t, other} {
		for _, e := range tree.entries {
			if e.IsDirectory {
				continue
			}
			if _, ok := seen[e.Path]; ok {
				continue
			}
			seen[e.Path] = struct{}{}
			paths = append(paths, e.Path)
		}
	}
	sort.Strings(paths)

	pairs := make([]Pair, len(paths))
	for i, p := range paths {
		pairs[i] = Pair{Left: t.Find(p), Right: other.Find(p)}
	}
	return pairs
}
