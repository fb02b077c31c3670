package neocities

import (
	"time"

	"github.com/neocities-sync/neocities-sync/internal/filetree"
)

type listResponse struct {
	Result string       `json:"result"`
	Files  []remoteFile `json:"files"`
}

// remoteFile is one entry of the /api/list response.
type remoteFile struct {
	Path        string `json:"path"`
	IsDirectory bool   `json:"is_directory"`
	Size        int64  `json:"size"`
	UpdatedAt   string `json:"updated_at"`
	SHA1Hash    string `json:"sha1_hash"`
}

func (f remoteFile) toEntry() *filetree.Entry {
	// updated_at is informational; an unparseable value is not an error.
	mtime, _ := time.Parse(time.RFC1123Z, f.UpdatedAt)
	return &filetree.Entry{
		Path:         f.Path,
		IsDirectory:  f.IsDirectory,
		LastModified: mtime,
		Size:         f.Size,
		SHA1Hash:     f.SHA1Hash,
	}
}
