package gallery

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
)

func TestDiskCachePathIsPureAndSharded(t *testing.T) {
	c := NewDiskCache(t.TempDir())

	k := Key{ID: "ABCDEF0123456789abcdef0123456789", Size: 200}
	p1 := c.filePath(k)
	p2 := c.filePath(k)
	if p1 != p2 {
		t.Fatalf("path derivation must be pure: %s != %s", p1, p2)
	}

	// Hex-like identifiers pass through lowercased, sharded by prefix.
	if !strings.HasSuffix(p1, filepath.Join("ab", "abcdef0123456789abcdef0123456789_200.png")) {
		t.Errorf("unexpected path for hex id: %s", p1)
	}

	// Non-hex identifiers (e.g. bare paths) get hashed to fixed-length hex.
	pathKey := Key{ID: `C:\photos\summer.jpg`, Size: 200}
	hp := c.filePath(pathKey)
	base := strings.TrimSuffix(filepath.Base(hp), "_200.png")
	if len(base) != 64 {
		t.Errorf("hashed id should be a sha256 hex digest, got %q", base)
	}
	if hp == p1 {
		t.Error("distinct keys must derive distinct paths")
	}

	// Same id, different size: distinct files.
	if c.filePath(Key{ID: pathKey.ID, Size: 100}) == hp {
		t.Error("size must be part of the derived path")
	}
}

func TestDiskCacheRoundTrip(t *testing.T) {
	c := NewDiskCache(t.TempDir())
	k := Key{ID: "0123456789abcdef0123456789abcdef", Size: 200}

	if c.Read(k) != nil {
		t.Fatal("expected miss before write")
	}

	want := []byte("png-bytes")
	c.Write(k, want)

	if got := c.Read(k); !bytes.Equal(got, want) {
		t.Fatalf("read %q, want %q", got, want)
	}

	// No temp leftovers next to the entry.
	entries, err := os.ReadDir(filepath.Dir(c.filePath(k)))
	if err != nil {
		t.Fatal(err)
	}
	for _, e := range entries {
		if strings.Contains(e.Name(), ".tmp") {
			t.Errorf("temp file left behind: %s", e.Name())
		}
	}
}

func TestDiskCacheEmptyFileIsMiss(t *testing.T) {
	c := NewDiskCache(t.TempDir())
	k := Key{ID: "0123456789abcdef0123456789abcdef", Size: 200}

	p := c.filePath(k)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(p, nil, 0o644); err != nil {
		t.Fatal(err)
	}

	if c.Read(k) != nil {
		t.Fatal("zero-byte entry must read as a miss")
	}
}

func TestDiskCacheAbsorbsIOErrors(t *testing.T) {
	// A root that cannot exist: reads miss, writes are no-ops, nothing panics.
	c := &DiskCache{root: filepath.Join(t.TempDir(), "no", "such", "file.txt", "root")}
	k := Key{ID: "0123456789abcdef0123456789abcdef", Size: 200}

	if c.Read(k) != nil {
		t.Fatal("expected miss from broken cache root")
	}
	c.Write(k, []byte("data")) // must not panic or return an error
}

func TestDiskCacheConcurrentWritersNeverExposePartialFiles(t *testing.T) {
	c := NewDiskCache(t.TempDir())
	k := Key{ID: "fedcba9876543210fedcba9876543210", Size: 200}

	payload := func(n int) []byte {
		return bytes.Repeat([]byte(fmt.Sprintf("%d", n%10)), 4096)
	}

	var wg sync.WaitGroup
	for w := 0; w < 4; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < 50; i++ {
				c.Write(k, payload(w))
			}
		}(w)
	}

	for i := 0; i < 200; i++ {
		data := c.Read(k)
		if data == nil {
			continue // miss before the first rename lands
		}
		if len(data) != 4096 {
			t.Fatalf("observed partial file of %d bytes", len(data))
		}
		// Complete writes are uniform; a mixed buffer means torn content.
		for _, b := range data {
			if b != data[0] {
				t.Fatal("observed torn file content")
			}
		}
	}
	wg.Wait()
}
