// Package scanner lists the files the slideshow should attempt to show.
//
// A Scanner walks two roots on every call to Scan: the announcement
// directory first, then the regular media directory. The result is a flat,
// ordered list of regular files; nothing is filtered by extension here, so
// unsupported files still occupy their position in the cycle.
//
// Within a root the order is top-down: the files of a directory (sorted by
// name), then each subdirectory in name order, recursively. Hidden entries
// (names starting with ".") are skipped. Symlinks to regular files are
// listed; symlinked directories are not followed.
//
// A missing or unreadable root contributes no entries and is reported in
// Result.Errors wrapped with ErrScan; it never aborts the scan. The same
// applies to unreadable subdirectories.
package scanner
