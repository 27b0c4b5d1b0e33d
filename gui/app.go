package gui

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"strings"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"
	log "github.com/sirupsen/logrus"

	"github.com/hardtopnet/image-desc-search/config"
	"github.com/hardtopnet/image-desc-search/gallery"
	"github.com/hardtopnet/image-desc-search/store"
)

const (
	appID = "com.hardtopnet.image-desc-search"

	prefLastInputDir = "last_input_dir"
	prefWindowWidth  = "window_width"
	prefWindowHeight = "window_height"

	defaultWindowWidth  = 1100
	defaultWindowHeight = 750
)

type ui struct {
	app fyne.App
	win fyne.Window
	cfg *config.Config
	db  *sql.DB

	input  *widget.Entry
	query  *widget.Entry
	search *widget.Button
	status *widget.Label

	grid    *gallery.Grid
	tooltip *tooltip

	searching bool
	lastRoot  string
	lastQuery string
}

// Run opens the search window and blocks until it is closed.
func Run(cfg *config.Config) error {
	dbPath, err := config.DBPath()
	if err != nil {
		return err
	}
	db, err := store.Open(dbPath)
	if err != nil {
		return err
	}
	defer db.Close()
	if err := store.Migrate(db); err != nil {
		return err
	}

	cacheDir, err := config.CacheDir()
	if err != nil {
		return err
	}

	a := app.NewWithID(appID)
	u, err := buildUI(a, cfg, db, cacheDir)
	if err != nil {
		return err
	}

	// Re-run the last search when the indexer updates the database, so
	// results appear as they are written.
	changes, stopWatch, err := store.Watch(dbPath)
	if err != nil {
		log.WithError(err).Warn("database watch unavailable")
		stopWatch = func() {}
	} else {
		go func() {
			for range changes {
				fyne.Do(u.refreshSearch)
			}
		}()
	}

	u.win.SetCloseIntercept(func() {
		u.saveWindowState()
		stopWatch()
		u.grid.Close()
		u.win.Close()
	})

	u.win.ShowAndRun()
	return nil
}

func buildUI(a fyne.App, cfg *config.Config, db *sql.DB, cacheDir string) (*ui, error) {
	u := &ui{app: a, cfg: cfg, db: db}
	u.win = a.NewWindow("Image Desc Search")

	opts := cfg.GalleryOptions()
	pipe := gallery.NewPipeline(gallery.NewDiskCache(cacheDir), store.NewThumbnailSource(db), opts)
	u.grid = gallery.NewGrid(opts, pipe)
	u.grid.OnOpen = u.openItem

	u.tooltip = newTooltip(u.win.Canvas())
	u.grid.OnHover = u.tooltip.show
	u.grid.OnHoverEnd = u.tooltip.hide

	u.input = widget.NewEntry()
	u.input.SetText(u.initialInputDir())
	browse := widget.NewButton("Browse", u.browse)

	u.query = widget.NewEntry()
	u.query.OnSubmitted = func(string) { u.startSearch() }
	u.search = widget.NewButton("Search", u.startSearch)

	u.status = widget.NewLabel("Ready")

	top := container.NewVBox(
		container.NewBorder(nil, nil, widget.NewLabel("Input"), browse, u.input),
		container.NewBorder(nil, nil, widget.NewLabel("Query"), u.search, u.query),
	)
	bottom := container.NewVBox(widget.NewSeparator(), u.status)
	u.win.SetContent(container.NewBorder(top, bottom, nil, nil, u.grid))

	w := float32(a.Preferences().FloatWithFallback(prefWindowWidth, defaultWindowWidth))
	h := float32(a.Preferences().FloatWithFallback(prefWindowHeight, defaultWindowHeight))
	u.win.Resize(fyne.NewSize(w, h))

	return u, nil
}

func (u *ui) initialInputDir() string {
	if dir := u.app.Preferences().String(prefLastInputDir); dir != "" {
		return dir
	}
	if cwd, err := os.Getwd(); err == nil {
		return cwd
	}
	return ""
}

func (u *ui) saveWindowState() {
	size := u.win.Canvas().Size()
	u.app.Preferences().SetFloat(prefWindowWidth, float64(size.Width))
	u.app.Preferences().SetFloat(prefWindowHeight, float64(size.Height))
	u.app.Preferences().SetString(prefLastInputDir, u.input.Text)
}

func (u *ui) startSearch() {
	if u.searching {
		return
	}

	root := strings.TrimSpace(u.input.Text)
	query := strings.TrimSpace(u.query.Text)
	if query == "" {
		dialog.ShowError(errors.New("query must not be empty"), u.win)
		return
	}
	if info, err := os.Stat(root); err != nil || !info.IsDir() {
		dialog.ShowError(errors.New("input directory does not exist or is not a directory"), u.win)
		return
	}

	u.app.Preferences().SetString(prefLastInputDir, root)
	u.lastRoot, u.lastQuery = root, query

	u.setSearching(true)
	u.status.SetText("Searching...")
	go u.runSearch(root, query)
}

// refreshSearch silently re-runs the last search. Called on the UI
// goroutine after the database changes on disk.
func (u *ui) refreshSearch() {
	if u.searching || u.lastQuery == "" {
		return
	}
	u.setSearching(true)
	go u.runSearch(u.lastRoot, u.lastQuery)
}

func (u *ui) runSearch(root, query string) {
	matches, err := store.Search(context.Background(), u.db, root, query)

	fyne.Do(func() {
		u.setSearching(false)
		if err != nil {
			u.status.SetText("Error")
			dialog.ShowError(err, u.win)
			return
		}
		u.grid.SetItems(itemsFromMatches(matches))
		u.status.SetText(fmt.Sprintf("Matches: %d", len(matches)))
	})
}

func (u *ui) setSearching(searching bool) {
	u.searching = searching
	if searching {
		u.search.Disable()
	} else {
		u.search.Enable()
	}
}

// openItem opens the file with the OS default viewer and copies its path
// to the clipboard for pasting elsewhere.
func (u *ui) openItem(it gallery.Item) {
	u.win.Clipboard().SetContent(it.Path)
	if err := openPath(it.Path); err != nil {
		log.WithError(err).WithField("path", it.Path).Warn("failed to open file")
	}
}

func itemsFromMatches(matches []store.Match) []gallery.Item {
	items := make([]gallery.Item, len(matches))
	for i, m := range matches {
		items[i] = gallery.Item{Hash: m.Hash, Path: m.Path, Description: m.Description}
	}
	return items
}
