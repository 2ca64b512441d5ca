// Package taskstore keeps an ordered task list in sync with the owner's flat
// positional document.
//
// The remote document has no array type: order is carried by the dense field
// names task1..taskN. Every completed operation leaves those names contiguous.
// Operations are serialized; a remove that is interrupted part-way leaves the
// in-memory list untouched and reports ErrPartialRemove so that the caller can
// Load the document again.
package taskstore

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/go-logr/logr"
	"github.com/google/uuid"

	"todo/internal/positional"
	"todo/internal/rowstate"
	"todo/internal/service"
	"todo/internal/session"
)

// Operation names carried by events and errors.
const (
	OpLoad       = "load"
	OpAdd        = "add"
	OpEdit       = "edit"
	OpRemove     = "remove"
	OpBeginEdit  = "begin-edit"
	OpCancelEdit = "cancel-edit"
	OpOpenRow    = "open-row"
	OpCloseRow   = "close-row"
	OpCloseRows  = "close-rows"
	OpSession    = "session"
)

// Snapshot is a copy of the list and row state at one point in time.
type Snapshot struct {
	OwnerID   string
	Loaded    bool
	Tasks     []positional.Task
	OpenIndex int
	HasOpen   bool
}

// Event is delivered to subscribers after every operation.
type Event struct {
	Op       string
	Err      error
	Snapshot Snapshot
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger. The default discards everything.
func WithLogger(log logr.Logger) Option {
	return func(s *Store) {
		s.log = log
	}
}

// Store is the task store engine for the signed-in owner.
type Store struct {
	gw   service.Gateway
	sess session.Provider
	log  logr.Logger

	// opMu serializes operations, including their remote round trips.
	opMu sync.Mutex

	// mu guards the state below; readers never wait for a remote call.
	mu      sync.RWMutex
	owner   string
	docID   string
	loaded  bool
	tasks   []positional.Task
	rows    *rowstate.Tracker
	subs    map[int]func(Event)
	nextSub int

	unsubscribe func()
}

// New creates a Store that reads and writes through gw on behalf of the owner
// reported by sess. Call Close to drop the session subscription.
func New(gw service.Gateway, sess session.Provider, opts ...Option) *Store {
	s := &Store{
		gw:   gw,
		sess: sess,
		log:  logr.Discard(),
		subs: make(map[int]func(Event)),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.rows = rowstate.New(func(index int) {
		s.log.V(1).Info("row closed", "index", index)
	})
	s.unsubscribe = sess.OnOwnerChanged(s.ownerChanged)
	return s
}

// Close releases the session subscription.
func (s *Store) Close() {
	s.mu.Lock()
	unsubscribe := s.unsubscribe
	s.unsubscribe = nil
	s.mu.Unlock()
	if unsubscribe != nil {
		unsubscribe()
	}
}

// Subscribe registers fn to receive an Event after every operation.
// Events are delivered after the operation has released the store, so fn may
// call back into it; a later operation can already be running by then.
func (s *Store) Subscribe(fn func(Event)) (unsubscribe func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.subs, id)
	}
}

// Snapshot returns a copy of the current list and row state.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshotLocked()
}

// Tasks returns a copy of the current list.
func (s *Store) Tasks() []positional.Task {
	return s.Snapshot().Tasks
}

// Load replaces the in-memory list with the decoded remote document and
// closes any open row.
func (s *Store) Load(ctx context.Context) error {
	log := s.opLogger(OpLoad)
	s.opMu.Lock()
	err := s.load(ctx, log, OpLoad, -1)
	s.opMu.Unlock()
	s.finish(log, OpLoad, err)
	return err
}

// Add appends text as a new last task. Blank text is ignored.
// The list only grows once the remote write has succeeded.
func (s *Store) Add(ctx context.Context, text string) error {
	log := s.opLogger(OpAdd)
	s.opMu.Lock()
	err := s.add(ctx, log, text)
	s.opMu.Unlock()
	s.finish(log, OpAdd, err)
	return err
}

// Edit replaces the text of the task at index. Blank text removes the task.
// On failure both the text and the editing flag are restored.
func (s *Store) Edit(ctx context.Context, index int, text string) error {
	log := s.opLogger(OpEdit).WithValues("index", index)
	s.opMu.Lock()
	var err error
	if strings.TrimSpace(text) == "" {
		log.V(1).Info("blank edit, removing task")
		err = s.remove(ctx, log, OpEdit, index)
	} else {
		err = s.edit(ctx, log, index, text)
	}
	s.opMu.Unlock()
	s.finish(log, OpEdit, err)
	return err
}

// Remove deletes the task at index, shifting the following tasks down one
// position and deleting the last field.
func (s *Store) Remove(ctx context.Context, index int) error {
	log := s.opLogger(OpRemove).WithValues("index", index)
	s.opMu.Lock()
	err := s.remove(ctx, log, OpRemove, index)
	s.opMu.Unlock()
	s.finish(log, OpRemove, err)
	return err
}

// BeginEdit marks the task at index as being edited. Nothing is written remotely.
func (s *Store) BeginEdit(index int) error {
	return s.local(OpBeginEdit, index, func() {
		s.tasks[index].Editing = true
	})
}

// CancelEdit clears the editing flag of the task at index.
func (s *Store) CancelEdit(index int) error {
	return s.local(OpCancelEdit, index, func() {
		s.tasks[index].Editing = false
	})
}

// OpenRow opens the row at index, closing any other open row.
func (s *Store) OpenRow(index int) error {
	return s.local(OpOpenRow, index, func() {
		s.rows.Open(index)
	})
}

// CloseRow closes the row at index if it is the open one.
func (s *Store) CloseRow(index int) error {
	return s.local(OpCloseRow, index, func() {
		s.rows.Close(index)
	})
}

// CloseRows closes the open row, if any.
func (s *Store) CloseRows() {
	s.mu.Lock()
	s.rows.CloseAll()
	s.mu.Unlock()
	s.emit(OpCloseRows, nil)
}

func (s *Store) load(ctx context.Context, log logr.Logger, op string, index int) error {
	owner, err := s.requireOwner(op, index)
	if err != nil {
		return err
	}

	doc, err := s.gw.GetDocument(ctx, owner)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			return &OpError{Op: op, Kind: ErrNotFound, Index: index}
		}
		return &OpError{Op: op, Kind: ErrTransport, Index: index, Err: err}
	}

	tasks := positional.Decode(doc.Fields)
	if err := positional.Check(tasks); err != nil {
		log.Info("task document is not contiguous", "reason", err.Error())
	}

	docID := doc.ID
	if docID == "" {
		docID = service.DocumentID(owner)
	}

	s.mu.Lock()
	s.owner = owner
	s.docID = docID
	s.loaded = true
	s.tasks = tasks
	s.rows.CloseAll()
	s.mu.Unlock()

	log.V(1).Info("loaded", "tasks", len(tasks))
	return nil
}

func (s *Store) add(ctx context.Context, log logr.Logger, text string) error {
	if _, err := s.requireOwner(OpAdd, -1); err != nil {
		return err
	}
	if strings.TrimSpace(text) == "" {
		log.V(1).Info("blank text, nothing to add")
		return nil
	}

	owner, docID, err := s.ensureLoaded(ctx, log, OpAdd, -1)
	if err != nil {
		return err
	}

	s.mu.RLock()
	key := positional.Key(len(s.tasks) + 1)
	s.mu.RUnlock()

	if err := s.gw.SetFields(ctx, owner, docID, map[string]string{key: text}); err != nil {
		return remoteError(OpAdd, -1, err)
	}

	s.mutate(owner, func() {
		s.tasks = append(s.tasks, positional.Task{Key: key, Text: text})
	})
	log.V(1).Info("added", "key", key)
	return nil
}

func (s *Store) edit(ctx context.Context, log logr.Logger, index int, text string) error {
	owner, docID, err := s.ensureLoaded(ctx, log, OpEdit, index)
	if err != nil {
		return err
	}

	s.mu.Lock()
	if index < 0 || index >= len(s.tasks) {
		s.mu.Unlock()
		return &OpError{Op: OpEdit, Kind: ErrIndexOutOfRange, Index: index}
	}
	prev := s.tasks[index]
	before := positional.Encode(s.tasks)
	s.tasks[index].Text = text
	s.tasks[index].Editing = false
	after := positional.Encode(s.tasks)
	s.mu.Unlock()

	changed := positional.Diff(before, after)
	if len(changed) == 0 {
		log.V(1).Info("text unchanged")
		return nil
	}

	if err := s.gw.SetFields(ctx, owner, docID, changed); err != nil {
		s.mutate(owner, func() {
			if index < len(s.tasks) {
				s.tasks[index] = prev
			}
		})
		return remoteError(OpEdit, index, err)
	}

	log.V(1).Info("edited", "fields", len(changed))
	return nil
}

func (s *Store) remove(ctx context.Context, log logr.Logger, op string, index int) error {
	owner, docID, err := s.ensureLoaded(ctx, log, op, index)
	if err != nil {
		return err
	}

	s.mu.RLock()
	tasks := append([]positional.Task(nil), s.tasks...)
	s.mu.RUnlock()

	n := len(tasks)
	if index < 0 || index >= n {
		return &OpError{Op: op, Kind: ErrIndexOutOfRange, Index: index}
	}

	// Shift task(j+2) down into task(j+1) in increasing order, then drop task(n).
	applied := 0
	for j := index; j <= n-2; j++ {
		field := positional.Key(j + 1)
		if err := s.gw.SetFields(ctx, owner, docID, map[string]string{field: tasks[j+1].Text}); err != nil {
			return removeError(op, index, applied, err)
		}
		applied++
	}
	last := positional.Key(n)
	if err := s.gw.DeleteField(ctx, owner, docID, last); err != nil {
		return removeError(op, index, applied, err)
	}

	s.mutate(owner, func() {
		if index >= len(s.tasks) {
			return
		}
		updated := append(s.tasks[:index:index], s.tasks[index+1:]...)
		for i := range updated {
			updated[i].Key = positional.Key(i + 1)
		}
		s.tasks = updated
		s.rows.Removed(index)
	})
	log.V(1).Info("removed", "shifted", applied, "deleted", last)
	return nil
}

// ensureLoaded returns the owner and document to write to, loading the
// document first if the list was not loaded for the current owner.
func (s *Store) ensureLoaded(ctx context.Context, log logr.Logger, op string, index int) (owner, docID string, err error) {
	owner, err = s.requireOwner(op, index)
	if err != nil {
		return "", "", err
	}

	s.mu.RLock()
	loaded := s.loaded && s.owner == owner
	docID = s.docID
	s.mu.RUnlock()
	if loaded {
		return owner, docID, nil
	}

	log.V(1).Info("list not loaded, loading first")
	if err := s.load(ctx, log, op, index); err != nil {
		return "", "", err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.owner != owner {
		return "", "", &OpError{Op: op, Kind: ErrUnauthenticated, Index: index}
	}
	return owner, s.docID, nil
}

func (s *Store) requireOwner(op string, index int) (string, error) {
	owner, ok := s.sess.CurrentOwnerID()
	if !ok {
		return "", &OpError{Op: op, Kind: ErrUnauthenticated, Index: index}
	}
	return owner, nil
}

// mutate applies fn under the state lock unless the owner changed meanwhile.
func (s *Store) mutate(owner string, fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.owner != owner || !s.loaded {
		return
	}
	fn()
}

// local runs a purely local change on a valid index and emits an event.
func (s *Store) local(op string, index int, fn func()) error {
	s.mu.Lock()
	if index < 0 || index >= len(s.tasks) {
		s.mu.Unlock()
		err := &OpError{Op: op, Kind: ErrIndexOutOfRange, Index: index}
		s.emit(op, err)
		return err
	}
	fn()
	s.mu.Unlock()
	s.emit(op, nil)
	return nil
}

func (s *Store) ownerChanged(owner string) {
	s.mu.Lock()
	changed := owner != s.owner
	if changed {
		s.owner = ""
		s.docID = ""
		s.loaded = false
		s.tasks = nil
		s.rows.CloseAll()
	}
	s.mu.Unlock()

	if changed {
		s.log.V(1).Info("owner changed, list discarded", "signedIn", owner != "")
		s.emit(OpSession, nil)
	}
}

func (s *Store) opLogger(op string) logr.Logger {
	return s.log.WithValues("op", op, "opID", uuid.NewString())
}

func (s *Store) finish(log logr.Logger, op string, err error) {
	if err != nil {
		log.Error(err, "operation failed")
	}
	s.emit(op, err)
}

func (s *Store) emit(op string, err error) {
	s.mu.RLock()
	ev := Event{Op: op, Err: err, Snapshot: s.snapshotLocked()}
	subs := make([]func(Event), 0, len(s.subs))
	for _, fn := range s.subs {
		subs = append(subs, fn)
	}
	s.mu.RUnlock()

	for _, fn := range subs {
		fn(ev)
	}
}

func (s *Store) snapshotLocked() Snapshot {
	idx, open := s.rows.OpenIndex()
	return Snapshot{
		OwnerID:   s.owner,
		Loaded:    s.loaded,
		Tasks:     append([]positional.Task(nil), s.tasks...),
		OpenIndex: idx,
		HasOpen:   open,
	}
}

func remoteError(op string, index int, err error) error {
	if errors.Is(err, service.ErrNotFound) {
		return &OpError{Op: op, Kind: ErrNotFound, Index: index, Err: err}
	}
	return &OpError{Op: op, Kind: ErrTransport, Index: index, Err: err}
}

func removeError(op string, index, applied int, err error) error {
	if applied == 0 {
		return remoteError(op, index, err)
	}
	return &OpError{Op: op, Kind: ErrPartialRemove, Index: index, Applied: applied, Err: err}
}
