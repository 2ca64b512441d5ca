// Package rowstate tracks which single list row, if any, is open.
package rowstate

// Tracker is either closed or open at exactly one index.
// It is not safe for concurrent use; the owner serializes access.
type Tracker struct {
	open    int
	isOpen  bool
	onClose func(index int)
}

// New returns a closed tracker. onClose, if non-nil, is invoked for a row that
// is force-closed because another row opened.
func New(onClose func(index int)) *Tracker {
	return &Tracker{onClose: onClose}
}

// Open moves the tracker to OpenAt(index), closing any other open row first.
func (t *Tracker) Open(index int) {
	if t.isOpen && t.open != index && t.onClose != nil {
		t.onClose(t.open)
	}
	t.open = index
	t.isOpen = true
}

// Close closes index if it is the open row.
func (t *Tracker) Close(index int) {
	if t.isOpen && t.open == index {
		t.isOpen = false
		t.open = 0
	}
}

// CloseAll returns to the closed state without invoking onClose.
func (t *Tracker) CloseAll() {
	t.isOpen = false
	t.open = 0
}

// OpenIndex returns the open row, if any.
func (t *Tracker) OpenIndex() (int, bool) {
	return t.open, t.isOpen
}

// Removed adjusts the state after the row at index was removed from the list.
func (t *Tracker) Removed(index int) {
	if !t.isOpen {
		return
	}
	switch {
	case t.open == index:
		t.CloseAll()
	case t.open > index:
		t.open--
	}
}
