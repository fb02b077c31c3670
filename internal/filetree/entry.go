package filetree

import (
	"fmt"
	"path"
	"strings"
	"time"
)

// Entry is a single file or directory in a Tree. Identity is Path, which is
// slash-separated and relative to the tree root. Size and SHA1Hash are only
// meaningful for files; LastModified is informational and never drives diff
// decisions.
type Entry struct {
	Path         string
	IsDirectory  bool
	LastModified time.Time
	Size         int64
	SHA1Hash     string
}

// Ext returns the extension of the entry's basename, including the leading
// dot. Dotfiles like ".bashrc" have no extension.
func (e *Entry) Ext() string {
	base := path.Base(e.Path)
	i := strings.LastIndex(base, ".")
	if i <= 0 {
		return ""
	}
	return base[i:]
}

func (e *Entry) String() string {
	if e.IsDirectory {
		return fmt.Sprintf("Directory(%s)", e.Path)
	}
	return fmt.Sprintf("File(%s, size=%d, sha1=%s)", e.Path, e.Size, e.SHA1Hash)
}
