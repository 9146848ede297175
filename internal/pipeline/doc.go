// Package pipeline runs the slideshow: a Producer that scans, decodes and
// enqueues media, and a Presenter that pops items and renders them with fades.
//
// The two loops share only the bounded queue. The producer blocks on a full
// queue before decoding the next file, which keeps at most a few decoded
// items in memory. The presenter never blocks on an empty queue; it keeps
// presenting a blank frame and polling input so a quit request is seen
// promptly.
//
// Items from the announcement directory are tagged by position: for a scan
// with a announcement files and b media files, exactly the first min(a, a+b)
// attempted entries are tagged, whatever the outcome of each decode.
package pipeline
