// Package queue provides the bounded FIFO that decouples decoding from
// presentation.
//
// A Queue never holds more than its capacity. Push blocks while the queue
// is full and Pop blocks while it is empty; both return early with the
// context's error when the context is done. Waiters are woken through a
// signal channel that is closed and replaced on every state change, so no
// fixed polling interval is involved.
//
// The queue is safe for any number of goroutines, although the slideshow
// uses exactly one producer and one consumer.
package queue
