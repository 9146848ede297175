// Package mediatypes classifies media files by extension.
//
// It is a dependency-free leaf package shared by the scanner, the decoder
// adapter and the producer, so all of them agree on what counts as an image,
// a video, or an unsupported file:
//
//	switch mediatypes.Classify(path) {
//	case mediatypes.KindImage:
//	    // decode as a still
//	case mediatypes.KindVideo:
//	    // open as a stream
//	default:
//	    // log and skip
//	}
//
// Classification is purely extension based and case-insensitive. The file
// contents are never inspected here; a mislabelled file surfaces later as a
// decode error.
package mediatypes
