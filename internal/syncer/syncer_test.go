package syncer

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/neocities-sync/neocities-sync/internal/config"
	"github.com/neocities-sync/neocities-sync/internal/filetree"
	"github.com/neocities-sync/neocities-sync/internal/localfs"
)

// fakeRemote records the calls the syncer makes. Each List call pops the next
// tree from listings, so the post-plan re-listing can differ from the first.
type fakeRemote struct {
	listings  []*filetree.Tree
	listErr   error
	uploadErr error
	deleteErr error

	uploads []string
	deletes []string
}

func (f *fakeRemote) List(ctx context.Context) (*filetree.Tree, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	tree := f.listings[0]
	if len(f.listings) > 1 {
		f.listings = f.listings[1:]
	}
	return tree, nil
}

func (f *fakeRemote) Upload(ctx context.Context, remotePath, localPath string) error {
	if f.uploadErr != nil {
		return f.uploadErr
	}
	f.uploads = append(f.uploads, remotePath)
	return nil
}

func (f *fakeRemote) Delete(ctx context.Context, paths ...string) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.deletes = append(f.deletes, paths...)
	return nil
}

func writeLocalSite(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "index.html"), []byte("<h1>hi</h1>"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "about.html"), []byte("<h1>about</h1>"), 0o644))
	return root
}

func testSite(root string) *config.Site {
	return &config.Site{
		Name:    "test",
		RootDir: root,
		APIKey:  "key",
	}
}

func TestSyncer_UploadsAndDeletes(t *testing.T) {
	root := writeLocalSite(t)
	remote := &fakeRemote{listings: []*filetree.Tree{filetree.New(
		&filetree.Entry{Path: "old.html", Size: 3, SHA1Hash: "dead"},
	)}}

	site := testSite(root)
	site.RemoveEmptyDirs = false
	require.NoError(t, New(site, remote, false).Run(context.Background()))

	assert.Equal(t, []string{"about.html", "index.html"}, remote.uploads)
	assert.Equal(t, []string{"old.html"}, remote.deletes)
}

func TestSyncer_UpToDateRemoteNeedsNoCalls(t *testing.T) {
	root := writeLocalSite(t)
	local, err := localfs.Build(root)
	require.NoError(t, err)

	remote := &fakeRemote{listings: []*filetree.Tree{local}}
	site := testSite(root)
	site.RemoveEmptyDirs = false
	require.NoError(t, New(site, remote, false).Run(context.Background()))

	assert.Empty(t, remote.uploads)
	assert.Empty(t, remote.deletes)
}

func TestSyncer_DryRunTouchesNothing(t *testing.T) {
	root := writeLocalSite(t)
	remote := &fakeRemote{listings: []*filetree.Tree{filetree.New(
		&filetree.Entry{Path: "old.html", Size: 3, SHA1Hash: "dead"},
		&filetree.Entry{Path: "empty", IsDirectory: true},
	)}}

	site := testSite(root)
	site.RemoveEmptyDirs = true
	require.NoError(t, New(site, remote, true).Run(context.Background()))

	assert.Empty(t, remote.uploads)
	assert.Empty(t, remote.deletes)
}

func TestSyncer_AbortsOnFirstFailure(t *testing.T) {
	root := writeLocalSite(t)
	remote := &fakeRemote{
		listings:  []*filetree.Tree{filetree.New()},
		uploadErr: errors.New("boom"),
	}

	site := testSite(root)
	err := New(site, remote, false).Run(context.Background())
	require.Error(t, err)
	assert.Empty(t, remote.uploads, "nothing applied after the failure")
}

func TestSyncer_RemovesEmptyDirectoriesChildrenFirst(t *testing.T) {
	root := writeLocalSite(t)
	first := filetree.New(
		&filetree.Entry{Path: "about.html", Size: 14, SHA1Hash: "x"},
		&filetree.Entry{Path: "index.html", Size: 11, SHA1Hash: "y"},
	)
	second := filetree.New(
		&filetree.Entry{Path: "a", IsDirectory: true},
		&filetree.Entry{Path: "a/b", IsDirectory: true},
	)
	remote := &fakeRemote{listings: []*filetree.Tree{first, second}}

	site := testSite(root)
	site.RemoveEmptyDirs = true
	require.NoError(t, New(site, remote, false).Run(context.Background()))

	assert.Equal(t, []string{"a/b", "a"}, remote.deletes, "children deleted before parents")
}

func TestSyncer_ListFailureAbortsRun(t *testing.T) {
	root := writeLocalSite(t)
	remote := &fakeRemote{listErr: errors.New("network down")}

	err := New(testSite(root), remote, false).Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "remote tree")
}

func TestSyncer_AppliesIgnorePolicy(t *testing.T) {
	root := writeLocalSite(t)
	require.NoError(t, os.WriteFile(filepath.Join(root, ".neocitiesignore"), []byte("about.html\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "raw.dat"), []byte("xx"), 0o644))

	remote := &fakeRemote{listings: []*filetree.Tree{filetree.New()}}
	site := testSite(root)
	site.RemoveEmptyDirs = false
	require.NoError(t, New(site, remote, false).Run(context.Background()))

	// about.html is ignored, raw.dat has no allowed extension, and the
	// ignore file itself is never synced.
	assert.Equal(t, []string{"index.html"}, remote.uploads)
}
