// Package tray puts the resident overlay manager in the system tray.
package tray

import (
	_ "embed"

	"github.com/getlantern/systray"
)

//go:embed icon.ico
var iconData []byte

// Callbacks connect tray menu items to the manager. Nil entries disable the
// corresponding item.
type Callbacks struct {
	ShowAll    func()
	HideAll    func()
	CopyLayout func()
	Quit       func()
}

// Run blocks inside the systray loop until Quit is clicked. Call from the
// main goroutine; most platforms require the tray on the main thread.
func Run(cb Callbacks) {
	systray.Run(func() { onReady(cb) }, func() {})
}

func onReady(cb Callbacks) {
	systray.SetIcon(iconData)
	systray.SetTitle("Overlay Manager")
	systray.SetTooltip("Desktop Overlay Manager")

	mShow := systray.AddMenuItem("Show All", "Show every overlay")
	mHide := systray.AddMenuItem("Hide All", "Hide every overlay")
	systray.AddSeparator()
	mCopy := systray.AddMenuItem("Copy Layout", "Copy all overlay geometry as JSON")
	systray.AddSeparator()
	mQuit := systray.AddMenuItem("Quit", "Stop the overlay manager")

	go func() {
		for {
			select {
			case <-mShow.ClickedCh:
				if cb.ShowAll != nil {
					cb.ShowAll()
				}
			case <-mHide.ClickedCh:
				if cb.HideAll != nil {
					cb.HideAll()
				}
			case <-mCopy.ClickedCh:
				if cb.CopyLayout != nil {
					cb.CopyLayout()
				}
			case <-mQuit.ClickedCh:
				if cb.Quit != nil {
					cb.Quit()
				}
				systray.Quit()
				return
			}
		}
	}()
}
