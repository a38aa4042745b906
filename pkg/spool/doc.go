// Package spool watches a drop directory for incoming audio files and
// hands each one off for analysis once it has finished arriving.
//
// # Overview
//
// A spool directory is the batch-mode front door: files copied or moved
// into it are picked up, analyzed, and reported on without any HTTP
// traffic. The watcher is built on fsnotify and deals with the two
// realities of file drops:
//
//   - Files arrive incrementally. A copy in progress emits a burst of
//     write events; acting on the first one would analyze a truncated
//     file. Each file gets its own settle timer that resets on every
//     event and fires only after the file has been quiet for the
//     configured interval.
//
//   - Directories nest. Subdirectories of the spool are watched too,
//     including ones created after watching begins.
//
// Files already present when the watcher starts are queued as if they
// had just arrived, so a restart never strands work in the spool.
//
// # Usage
//
//	watcher, err := spool.NewWatcher(&spool.Config{
//		Dir:            "/var/spool/clarion",
//		SettleInterval: 500 * time.Millisecond,
//	}, logger)
//	if err != nil {
//		return err
//	}
//
//	err = watcher.Watch(ctx, func(path string) {
//		report, err := pipe.Run(ctx, artifactFromFile(path))
//		// ...
//	})
//
// The callback runs in its own goroutine per file and must tolerate the
// file having been removed between settling and processing.
package spool
