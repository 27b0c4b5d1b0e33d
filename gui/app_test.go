package gui

import (
	"path/filepath"
	"testing"

	"fyne.io/fyne/v2/test"

	"github.com/hardtopnet/image-desc-search/config"
	"github.com/hardtopnet/image-desc-search/store"
)

func TestBuildUIWiring(t *testing.T) {
	a := test.NewApp()

	db, err := store.Open(filepath.Join(t.TempDir(), "index.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()
	if err := store.Migrate(db); err != nil {
		t.Fatal(err)
	}

	u, err := buildUI(a, config.DefaultConfig(), db, t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	defer u.grid.Close()

	if u.status.Text != "Ready" {
		t.Errorf("initial status = %q, want Ready", u.status.Text)
	}
	if u.input.Text == "" {
		t.Error("input dir should start with a sensible default")
	}
	if u.grid.OnOpen == nil || u.grid.OnHover == nil || u.grid.OnHoverEnd == nil {
		t.Error("grid callbacks not wired")
	}
}

func TestSetSearchingTogglesButton(t *testing.T) {
	a := test.NewApp()

	db, err := store.Open(filepath.Join(t.TempDir(), "index.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()
	if err := store.Migrate(db); err != nil {
		t.Fatal(err)
	}

	u, err := buildUI(a, config.DefaultConfig(), db, t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	defer u.grid.Close()

	u.setSearching(true)
	if !u.search.Disabled() {
		t.Error("search button should be disabled during a search")
	}
	u.setSearching(false)
	if u.search.Disabled() {
		t.Error("search button should re-enable after a search")
	}
}

func TestItemsFromMatches(t *testing.T) {
	matches := []store.Match{
		{Hash: "h1", Path: "/photos/a.png", Description: "a red fox"},
		{Hash: "", Path: "/photos/b.png", Description: "blue sky"},
	}

	items := itemsFromMatches(matches)
	if len(items) != 2 {
		t.Fatalf("got %d items", len(items))
	}
	if items[0].Hash != "h1" || items[0].Path != "/photos/a.png" {
		t.Errorf("item 0 = %+v", items[0])
	}
	// Hashless rows still carry a usable cache identity through the path.
	if items[1].CacheID() != "/photos/b.png" {
		t.Errorf("cache id fallback = %q", items[1].CacheID())
	}

	if got := itemsFromMatches(nil); len(got) != 0 {
		t.Errorf("nil matches should produce no items, got %d", len(got))
	}
}
