package project

import (
	"fmt"
	"unsafe"

	"golang.org/x/sys/unix"
)

// Watcher polls directory change notifications with Linux inotify,
// backing the `sysc watch` command's "w" alias.
type Watcher struct {
	fd      int
	watches map[int32]string
}

// NewWatcher opens an inotify instance and adds a watch on root for
// file-content and rename/delete events.
func NewWatcher(root string) (*Watcher, error) {
	fd, err := unix.InotifyInit1(unix.IN_CLOEXEC)
	if err != nil {
		return nil, fmt.Errorf("project: inotify_init1: %w", err)
	}
	wd, err := unix.InotifyAddWatch(fd, root, unix.IN_MODIFY|unix.IN_CREATE|unix.IN_DELETE|unix.IN_MOVED_TO)
	if err != nil {
		unix.Close(fd)
		return nil, fmt.Errorf("project: inotify_add_watch: %w", err)
	}
	return &Watcher{fd: fd, watches: map[int32]string{int32(wd): root}}, nil
}

// Close releases the inotify file descriptor.
func (w *Watcher) Close() error { return unix.Close(w.fd) }

// Next blocks until the next batch of filesystem events and returns the
// changed paths' containing directories (inotify reports events relative
// to the watched directory, not the repo root).
func (w *Watcher) Next() ([]string, error) {
	buf := make([]byte, 4096)
	n, err := unix.Read(w.fd, buf)
	if err != nil {
		return nil, fmt.Errorf("project: read inotify events: %w", err)
	}

	var changed []string
	off := 0
	for off+unix.SizeofInotifyEvent <= n {
		raw := (*unix.InotifyEvent)(unsafe.Pointer(&buf[off]))
		dir, ok := w.watches[raw.Wd]
		if ok {
			changed = append(changed, dir)
		}
		off += unix.SizeofInotifyEvent + int(raw.Len)
	}
	return changed, nil
}
