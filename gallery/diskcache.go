package gallery

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

// DiskCache persists rendered thumbnails as PNG files under a cache root,
// content-addressed by (id, size). It is an optimization layer only: every
// I/O error is absorbed and reported as a miss or a no-op write so a broken
// disk can never fail a request. Writes are atomic (temp file + rename), so
// concurrent readers across worker goroutines never see a partial file.
type DiskCache struct {
	root string
}

var hexLikeID = regexp.MustCompile(`^[0-9a-fA-F]{16,128}$`)

func NewDiskCache(root string) *DiskCache {
	_ = os.MkdirAll(root, 0o755)
	return &DiskCache{root: root}
}

// filePath derives the cache file location for a key. Identifiers that are
// already hex digests are used as-is (lowercased); anything else, such as a
// bare file path, is replaced by its sha256 digest. Entries shard into
// two-character subdirectories to bound per-directory file counts.
func (c *DiskCache) filePath(key Key) string {
	id := strings.TrimSpace(key.ID)
	if id == "" {
		id = "unknown"
	}
	if !hexLikeID.MatchString(id) {
		sum := sha256.Sum256([]byte(id))
		id = hex.EncodeToString(sum[:])
	}
	id = strings.ToLower(id)
	return filepath.Join(c.root, id[:2], fmt.Sprintf("%s_%d.png", id, key.Size))
}

// Read returns the cached bytes for a key, or nil when the entry is
// missing, empty, or unreadable.
func (c *DiskCache) Read(key Key) []byte {
	data, err := os.ReadFile(c.filePath(key))
	if err != nil || len(data) == 0 {
		return nil
	}
	return data
}

// Write stores png under the key's derived path. The data lands in a
// uniquely named temp file first and is renamed into place, so a reader
// observes either the previous content or the complete new content.
func (c *DiskCache) Write(key Key, png []byte) {
	target := c.filePath(key)
	dir := filepath.Dir(target)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(target)+".tmp-*")
	if err != nil {
		return
	}
	if _, err := tmp.Write(png); err != nil {
		tmp.Close()
		_ = os.Remove(tmp.Name())
		return
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return
	}
	if err := os.Rename(tmp.Name(), target); err != nil {
		_ = os.Remove(tmp.Name())
	}
}
