package ignore

import (
	"log/slog"
	"path"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	mapset "github.com/deckarep/golang-set/v2"

	"github.com/neocities-sync/neocities-sync/internal/filetree"
)

// IgnoreFileName is the per-directory rule file consulted under the site
// root. It follows .gitignore syntax and is itself never synced.
const IgnoreFileName = ".neocitiesignore"

// freeExtensions is the fixed allow-list applied when a site configures no
// explicit one: the file types Neocities accepts on the free tier.
var freeExtensions = mapset.NewSet(
	".asc", ".atom", ".bin", ".css", ".csv", ".dae", ".eot", ".epub",
	".geojson", ".gif", ".gltf", ".htm", ".html", ".ico", ".jpeg", ".jpg",
	".js", ".json", ".key", ".kml", ".knowl", ".less", ".manifest",
	".markdown", ".md", ".mf", ".mid", ".midi", ".mtl", ".obj", ".opml",
	".otf", ".pdf", ".pgp", ".png", ".rdf", ".rss", ".sass", ".scss", ".svg",
	".text", ".tsv", ".ttf", ".txt", ".webapp", ".webmanifest", ".webp",
	".woff", ".woff2", ".xcf", ".xml",
)

var vcsDirNames = mapset.NewSet(".git", ".hg", ".svn", ".bzr")

// Policy is the site-level part of the ignore rules.
type Policy struct {
	// SyncDisallowed skips the extension allow-list entirely.
	SyncDisallowed bool
	// SyncHidden keeps dotfiles and files under dot-directories.
	SyncHidden bool
	// SyncVCS keeps version-control metadata directories.
	SyncVCS bool
	// AllowedExtensions replaces the built-in free-tier allow-list.
	AllowedExtensions []string
	// ExcludePatterns are doublestar globs matched against entry paths.
	ExcludePatterns []string
}

// Filter prunes a raw local tree according to a Policy and the layered
// ignore files found under the site root. Remote trees are already filtered
// server-side and are never passed through a Filter.
type Filter struct {
	policy  Policy
	spec    *TreeSpec
	allowed mapset.Set[string]
}

// NewFilter loads the ignore files under rootDir and prepares the filter.
func NewFilter(rootDir string, policy Policy) (*Filter, error) {
	spec, err := LoadTreeSpec(rootDir, IgnoreFileName)
	if err != nil {
		return nil, err
	}
	allowed := freeExtensions
	if len(policy.AllowedExtensions) > 0 {
		allowed = mapset.NewSet[string]()
		for _, ext := range policy.AllowedExtensions {
			allowed.Add("." + strings.ToLower(strings.TrimPrefix(ext, ".")))
		}
	}
	return &Filter{policy: policy, spec: spec, allowed: allowed}, nil
}

// Apply runs the policy pipeline over the tree. Each step produces a fresh
// tree from the previous step's output; the step order only matters for how
// much work later steps see.
func (f *Filter) Apply(tree *filetree.Tree) *filetree.Tree {
	slog.Debug("dropping ignore files", "name", f.spec.FileName())
	tree = tree.Filter(func(e *filetree.Entry) bool {
		return path.Base(e.Path) != f.spec.FileName()
	})

	if !f.policy.SyncDisallowed {
		slog.Debug("dropping files with disallowed extensions")
		tree = tree.Filter(func(e *filetree.Entry) bool {
			return e.IsDirectory || f.allowed.Contains(strings.ToLower(e.Ext()))
		})
	}

	slog.Debug("dropping files matched by ignore files")
	tree = tree.Filter(func(e *filetree.Entry) bool {
		return !f.spec.Match(e.Path)
	})

	if len(f.policy.ExcludePatterns) > 0 {
		slog.Debug("dropping files matched by exclude patterns")
		tree = tree.Filter(func(e *filetree.Entry) bool {
			return !matchAnyPattern(f.policy.ExcludePatterns, e.Path)
		})
	}

	if !f.policy.SyncHidden {
		slog.Debug("dropping hidden files")
		tree = tree.Filter(func(e *filetree.Entry) bool {
			return !anySegment(e.Path, func(seg string) bool {
				return strings.HasPrefix(seg, ".")
			})
		})
	}

	if !f.policy.SyncVCS {
		slog.Debug("dropping version control files")
		tree = tree.Filter(func(e *filetree.Entry) bool {
			return !anySegment(e.Path, func(seg string) bool {
				return vcsDirNames.Contains(seg)
			})
		})
	}

	return tree
}

func anySegment(path string, match func(string) bool) bool {
	for _, seg := range strings.Split(path, "/") {
		if match(seg) {
			return true
		}
	}
	return false
}

func matchAnyPattern(patterns []string, path string) bool {
	for _, pattern := range patterns {
		// Bad patterns just never match; a glob engine has no business
		// rejecting input.
		if ok, err := doublestar.Match(pattern, path); err == nil && ok {
			return true
		}
	}
	return false
}
