// Package syncer drives one site's sync: build and filter the local tree,
// fetch the remote listing, plan the difference and apply it.
package syncer

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sort"

	"github.com/dustin/go-humanize"
	"golang.org/x/sync/errgroup"

	"github.com/neocities-sync/neocities-sync/internal/config"
	"github.com/neocities-sync/neocities-sync/internal/filetree"
	"github.com/neocities-sync/neocities-sync/internal/ignore"
	"github.com/neocities-sync/neocities-sync/internal/localfs"
	"github.com/neocities-sync/neocities-sync/internal/plan"
)

// RemoteAPI is the part of the Neocities client the syncer consumes.
type RemoteAPI interface {
	List(ctx context.Context) (*filetree.Tree, error)
	Upload(ctx context.Context, remotePath, localPath string) error
	Delete(ctx context.Context, paths ...string) error
}

type Syncer struct {
	site   *config.Site
	remote RemoteAPI
	dryRun bool
}

func New(site *config.Site, remote RemoteAPI, dryRun bool) *Syncer {
	return &Syncer{site: site, remote: remote, dryRun: dryRun}
}

// Run syncs the site's root directory to the remote. The first failed upload
// or delete aborts the run; re-running is idempotent and self-corrects.
func (s *Syncer) Run(ctx context.Context) error {
	slog.Info("starting sync", "site", s.site.Name, "root", s.site.RootDir, "dry_run", s.dryRun)

	local, remote, err := s.buildTrees(ctx)
	if err != nil {
		return err
	}

	applied, err := s.applyPlan(ctx, local, remote)
	if err != nil {
		return err
	}
	if s.dryRun {
		slog.Info("dry run, nothing applied", "would_apply", applied)
	} else {
		slog.Info("applied actions", "count", applied)
	}

	if s.site.RemoveEmptyDirs {
		if err := s.removeEmptyDirs(ctx); err != nil {
			return err
		}
	}

	slog.Info("finished sync", "site", s.site.Name)
	return nil
}

// buildTrees assembles both sides concurrently; the local walk and the
// remote listing are independent. Planning itself stays sequential since
// delete suppression is order-dependent.
func (s *Syncer) buildTrees(ctx context.Context) (local, remote *filetree.Tree, err error) {
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		tree, err := localfs.Build(s.site.RootDir)
		if err != nil {
			return fmt.Errorf("local tree: %w", err)
		}
		filter, err := ignore.NewFilter(s.site.RootDir, policyFor(s.site))
		if err != nil {
			return fmt.Errorf("ignore rules: %w", err)
		}
		local = filter.Apply(tree)
		slog.Info("local tree ready", "files", local.CountFiles(), "dirs", local.CountDirectories())
		return nil
	})
	g.Go(func() error {
		tree, err := s.remote.List(gctx)
		if err != nil {
			return fmt.Errorf("remote tree: %w", err)
		}
		remote = tree
		slog.Info("remote tree ready", "files", remote.CountFiles(), "dirs", remote.CountDirectories())
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return local, remote, nil
}

func (s *Syncer) applyPlan(ctx context.Context, local, remote *filetree.Tree) (int, error) {
	applied := 0
	for action := range plan.Plan(local, remote) {
		if err := ctx.Err(); err != nil {
			return applied, err
		}
		switch action.Type {
		case plan.UpdateRemote:
			slog.Info("updating remote file", "path", action.Path, "size", entrySize(local, action.Path), "reason", action.Reason)
			if !s.dryRun {
				localPath := filepath.Join(s.site.RootDir, filepath.FromSlash(action.Path))
				if err := s.remote.Upload(ctx, action.Path, localPath); err != nil {
					return applied, err
				}
			}
			applied++
		case plan.DeleteRemote:
			slog.Info("deleting remote file", "path", action.Path, "reason", action.Reason)
			if !s.dryRun {
				if err := s.remote.Delete(ctx, action.Path); err != nil {
					return applied, err
				}
			}
			applied++
		case plan.DoNothing:
			slog.Debug("skipping", "path", action.Path, "reason", action.Reason)
		}
	}
	return applied, nil
}

// removeEmptyDirs re-fetches the listing (the plan just changed it) and
// deletes empty directories children-first.
func (s *Syncer) removeEmptyDirs(ctx context.Context) error {
	remote, err := s.remote.List(ctx)
	if err != nil {
		return fmt.Errorf("remote tree: %w", err)
	}
	empty := remote.ListEmptyDirectories()
	if len(empty) == 0 {
		return nil
	}
	slog.Info("removing empty remote directories", "count", len(empty))
	sort.Sort(sort.Reverse(sort.StringSlice(empty)))
	for _, dir := range empty {
		slog.Info("deleting remote empty directory", "path", dir)
		if s.dryRun {
			continue
		}
		if err := s.remote.Delete(ctx, dir); err != nil {
			return err
		}
	}
	return nil
}

func policyFor(site *config.Site) ignore.Policy {
	return ignore.Policy{
		SyncDisallowed:    site.SyncDisallowed,
		SyncHidden:        site.SyncHidden,
		SyncVCS:           site.SyncVCS,
		AllowedExtensions: site.AllowedExtensions,
		ExcludePatterns:   site.ExcludePatterns,
	}
}

func entrySize(tree *filetree.Tree, path string) string {
	if e := tree.Find(path); e != nil && !e.IsDirectory {
		return humanize.Bytes(uint64(e.Size))
	}
	return ""
}
