package relocate

import "sync"

// overlay records the moves a dry run would have made, so later decisions in
// the same run see the directory the real run would have produced. It is
// only consulted in dry-run mode; a real run always re-queries the
// filesystem.
type overlay struct {
	mu      sync.Mutex
	owners  map[string]string // destination path → source path that claimed it
	vacated map[string]bool   // source paths that would have been moved away
}

func newOverlay() *overlay {
	return &overlay{
		owners:  make(map[string]string),
		vacated: make(map[string]bool),
	}
}

// owner returns the source that claimed dest, if any.
func (o *overlay) owner(dest string) (string, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	src, ok := o.owners[dest]
	return src, ok
}

// isVacated reports whether path would no longer exist.
func (o *overlay) isVacated(path string) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.vacated[path]
}

// move records src → dest.
func (o *overlay) move(src, dest string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.owners[dest] = src
	o.vacated[src] = true
	delete(o.vacated, dest)
}

// remove records that path would have been deleted.
func (o *overlay) remove(path string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.vacated[path] = true
}
