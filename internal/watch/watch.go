// Package watch implements the CLI-layer --watch convenience described in
// SPEC_FULL.md §6: re-running analysis whenever the input ROM or split
// table changes on disk. It has no concept in the core engine itself (spec
// §5: "no cancellation, no I/O during analysis"); each watch tick is a
// fresh, complete, synchronous call into internal/engine.
//
// The three platform-specific backends (watch_linux.go, watch_darwin.go,
// watch_other.go) are adapted directly from the teacher's
// filewatcher_unix.go/filewatcher_darwin.go/filewatcher_windows.go: same
// inotify/kqueue/polling split, repurposed from "rebuild on source edit" to
// "re-disassemble on ROM/CSV edit".
package watch

import "time"

// Debounce is how long Watcher waits after the last observed change before
// invoking the callback, matching the teacher's 500ms debounce window.
const Debounce = 500 * time.Millisecond

// Watcher watches a fixed set of files and invokes onChange (with the
// changed path) no more than once per Debounce window per file.
type Watcher interface {
	AddFile(path string) error
	Watch()
	Close() error
}
