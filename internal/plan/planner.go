// Package plan derives the ordered set of remote mutations that make a
// remote file tree converge to a local one.
package plan

import (
	"iter"
	"strings"

	"github.com/neocities-sync/neocities-sync/internal/filetree"
)

// Decide returns the actions for one (local, remote) pair, either side nil
// when the path is absent from that tree.
//
// The dir/dir and nil/nil branches are unreachable through Plan: Tree.Zip
// keys pairs by file paths only, so at least one side of every pair is a
// file. They are kept so Decide stays total for direct callers.
func Decide(local, remote *filetree.Entry) []Action {
	switch {
	case local == nil && remote == nil:
		return nil
	case local == nil:
		return []Action{{Type: DeleteRemote, Path: remote.Path, Reason: "doesn't exist locally"}}
	case remote == nil:
		return []Action{{Type: UpdateRemote, Path: local.Path, Reason: "doesn't exist in remote"}}
	case local.IsDirectory && remote.IsDirectory:
		// Directory existence is implicit in its contents.
		return nil
	case !local.IsDirectory && remote.IsDirectory:
		// The remote must shed its directory type before the file can
		// occupy the path, hence delete-then-update.
		return []Action{
			{Type: DeleteRemote, Path: local.Path, Reason: "is a directory in remote"},
			{Type: UpdateRemote, Path: local.Path, Reason: "is a directory in remote"},
		}
	case local.IsDirectory && !remote.IsDirectory:
		return []Action{{Type: DeleteRemote, Path: remote.Path, Reason: "is a directory locally"}}
	case local.Size != remote.Size:
		// Size first as a cheap short-circuit before comparing hashes.
		return []Action{{Type: UpdateRemote, Path: local.Path, Reason: "sizes differ"}}
	case local.SHA1Hash != remote.SHA1Hash:
		return []Action{{Type: UpdateRemote, Path: local.Path, Reason: "hashes don't match"}}
	default:
		return []Action{{Type: DoNothing, Path: local.Path, Reason: "no action needed"}}
	}
}

// Plan yields the actions that converge remote to local, in lexicographic
// path order. A DeleteRemote for a path under an already-deleted directory is
// suppressed, since deleting the ancestor removed it; this relies on Zip's
// ordering placing a directory's own pairing before its descendants'.
// UpdateRemote and DoNothing are never suppressed.
func Plan(local, remote *filetree.Tree) iter.Seq[Action] {
	return func(yield func(Action) bool) {
		var deleted []string
		for _, pair := range local.Zip(remote) {
			for _, action := range Decide(pair.Left, pair.Right) {
				if action.Type == DeleteRemote {
					if underAny(action.Path, deleted) {
						continue
					}
					deleted = append(deleted, action.Path)
				}
				if !yield(action) {
					return
				}
			}
		}
	}
}

func underAny(path string, ancestors []string) bool {
	for _, a := range ancestors {
		if strings.HasPrefix(path, a+"/") {
			return true
		}
	}
	return false
}
