//go:build !flatpak || windows || android || ios || wasm || js

package gui

import (
	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/storage"
)

func (u *ui) browse() {
	d := dialog.NewFolderOpen(func(uri fyne.ListableURI, err error) {
		if err != nil {
			dialog.ShowError(err, u.win)
			return
		}
		if uri == nil {
			return
		}
		u.input.SetText(uri.Path())
	}, u.win)

	if lister, err := storage.ListerForURI(storage.NewFileURI(u.input.Text)); err == nil {
		d.SetLocation(lister)
	}
	d.Show()
}
