// Package input turns quit requests into cancellation of the root context.
//
// A Monitor owns the cancel function of the context both pipeline loops run
// under. Sources of quit requests are polled by the presenter on every frame
// (display events, the controlling terminal) or push asynchronously (OS
// signals). The first request wins: the context is cancelled with a
// *QuitError cause carrying the reason and the process exit code, and later
// requests are ignored.
package input
