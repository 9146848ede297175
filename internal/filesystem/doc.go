/*
Package filesystem wraps the directory and file reads the slideshow makes
on its watched roots with retry logic for NFS stale file handle errors.

Kiosk players commonly mount their media and announcement directories from a
NAS. When content is replaced on the server side, an in-flight stat, open or
readdir can fail with ESTALE even though the path is valid a moment later.
Those errors are retried with exponential backoff; every other error is
returned immediately so that missing files and unreadable directories are
reported on the first attempt.

	entries, err := filesystem.ReadDirWithRetry(dir, filesystem.DefaultRetryConfig())

	f, err := filesystem.OpenWithRetry(path, filesystem.DefaultRetryConfig())

Defaults: 3 retries, 50ms initial backoff doubling up to 500ms.

Metrics are recorded through an Observer, registered once at startup with
SetObserver. The metrics package provides the implementation; keeping the
interface here avoids an import cycle. A VolumeResolver maps paths to
"announcement" / "media" labels.
*/
package filesystem
