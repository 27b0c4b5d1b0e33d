//go:build flatpak && !windows && !android && !ios && !wasm && !js

package gui

import (
	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/driver"
	"fyne.io/fyne/v2/storage"

	"github.com/rymdport/portal"
	"github.com/rymdport/portal/filechooser"
)

// browse goes through the XDG desktop portal so the folder chooser works
// inside the flatpak sandbox.
func (u *ui) browse() {
	options := &filechooser.OpenFileOptions{
		AcceptLabel:   "Open",
		Directory:     true,
		CurrentFolder: u.input.Text,
	}
	handle := windowHandleForPortal(u.win)

	go func() {
		uris, err := filechooser.OpenFile(handle, "Open Folder", options)
		if err != nil || len(uris) == 0 {
			return
		}
		uri, err := storage.ParseURI(uris[0])
		if err != nil {
			return
		}
		fyne.Do(func() {
			u.input.SetText(uri.Path())
		})
	}()
}

func windowHandleForPortal(window fyne.Window) string {
	native, ok := window.(driver.NativeWindow)
	if !ok {
		return ""
	}

	handle := ""
	native.RunNative(func(context any) {
		if x11, ok := context.(driver.X11WindowContext); ok {
			handle = portal.FormatX11WindowHandle(x11.WindowHandle)
		}
	})
	return handle
}
