// Package hotkey registers a global key combination for toggling overlay
// visibility while another application has focus.
package hotkey

import (
	"log"
	"strings"

	hook "github.com/robotn/gohook"
)

// Listen registers combo (e.g. "Ctrl+Alt+O") and invokes callback on every
// press. The callback runs on the hook goroutine; it must post into the
// event loop rather than touch the registry directly. Empty combo disables
// the listener.
func Listen(combo string, callback func()) {
	keys := parseCombo(combo)
	if len(keys) == 0 {
		return
	}
	log.Printf("hotkey: listening for %s", combo)

	go func() {
		defer func() {
			if r := recover(); r != nil {
				log.Printf("hotkey: listener panic: %v", r)
			}
		}()
		hook.Register(hook.KeyDown, keys, func(e hook.Event) {
			callback()
		})
		s := hook.Start()
		<-hook.Process(s)
	}()
}

// Stop tears down the hook event loop.
func Stop() {
	hook.End()
}

// parseCombo lowers "Ctrl+Alt+O" to the key names gohook expects.
func parseCombo(combo string) []string {
	var keys []string
	for _, part := range strings.Split(combo, "+") {
		part = strings.ToLower(strings.TrimSpace(part))
		if part == "" {
			continue
		}
		keys = append(keys, part)
	}
	return keys
}
