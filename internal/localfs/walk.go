// Package localfs builds a file tree from a local directory.
package localfs

import (
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/neocities-sync/neocities-sync/internal/filetree"
)

// Build walks root and returns its file tree. Paths are slash-separated and
// relative to root; the root itself gets no entry. Anything that is neither a
// regular file nor a directory (broken symlinks included) is an input error
// and fails the whole build.
func Build(root string) (*filetree.Tree, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("not a directory: %s", root)
	}

	var entries []*filetree.Entry
	err = filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if p == root {
			return nil
		}
		rel, err := filepath.Rel(root, p)
		if err != nil {
			return err
		}
		relPath := filepath.ToSlash(rel)

		// Stat (not Lstat) so symlinks count as their targets; a dangling
		// symlink is an input error that fails the whole build.
		info, err := os.Stat(p)
		if err != nil {
			if os.IsNotExist(err) {
				return fmt.Errorf("%s is neither a file nor a directory", p)
			}
			return err
		}

		switch {
		case info.IsDir():
			entries = append(entries, &filetree.Entry{
				Path:         relPath,
				IsDirectory:  true,
				LastModified: info.ModTime(),
			})
		case info.Mode().IsRegular():
			hash, err := FileSHA1(p)
			if err != nil {
				return err
			}
			entries = append(entries, &filetree.Entry{
				Path:         relPath,
				LastModified: info.ModTime(),
				Size:         info.Size(),
				SHA1Hash:     hash,
			})
		default:
			return fmt.Errorf("%s is neither a file nor a directory", p)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return filetree.New(entries...), nil
}

// FileSHA1 returns the hex-encoded SHA1 digest of a file's contents. SHA1
// because that is the digest the remote listing reports; everywhere else the
// hash is an opaque equality token.
func FileSHA1(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := sha1.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
