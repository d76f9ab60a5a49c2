//go:build !windows

package widget

import "log"

// Only Windows has a native driver in this project. Elsewhere the headless
// driver keeps the registry and store fully functional for automation that
// does not need pixels.
func newPlatformDriver() Driver {
	log.Printf("widget: no native overlay backend on this platform, using headless driver")
	return NewMemory()
}
