// Package display provides the full-screen SDL2 surface frames are drawn on.
//
// The window covers the desktop, hides the cursor and is cleared to black
// before every frame; frames are drawn centred at their own size with the
// requested opacity applied as a texture alpha modulation. SDL requires its
// calls to come from the thread that initialised it, so a Window must only
// be used from the goroutine locked to the main OS thread.
//
// Window also reports quit requests from the event queue: closing the
// window, Esc, q and Ctrl+C.
package display
