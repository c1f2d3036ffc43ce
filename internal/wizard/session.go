package wizard

import (
	"sync"

	"github.com/m3rciful/tracker/internal/model"
)

// Session holds the fields collected during one conversation run.
type Session struct {
	userID int64

	State   State
	SheetID string

	EntryType model.EntryType
	Price     string
	Remarks   string
	Category  string
	Payment   string

	// Options are the labels of the keyboard rendered for State.
	Options []string
}

func (s *Session) reset() {
	*s = Session{userID: s.userID, State: StateIdle}
}

func (s *Session) entry() model.Entry {
	return model.Entry{
		Type:     s.EntryType,
		Price:    s.Price,
		Remarks:  s.Remarks,
		Category: s.Category,
		Payment:  s.Payment,
	}
}

type slot struct {
	mu   sync.Mutex
	sess Session
}

// Store keeps one session per user. A user's turns are serialised by a
// per-user lock; different users proceed concurrently.
type Store struct {
	mu    sync.Mutex
	slots map[int64]*slot
}

// NewStore returns an empty Store.
func NewStore() *Store {
	return &Store{slots: make(map[int64]*slot)}
}

// acquire locks the session of userID until release is called.
func (st *Store) acquire(userID int64) (*Session, func()) {
	st.mu.Lock()
	sl, ok := st.slots[userID]
	if !ok {
		sl = &slot{sess: Session{userID: userID, State: StateIdle}}
		st.slots[userID] = sl
	}
	st.mu.Unlock()

	sl.mu.Lock()
	return &sl.sess, sl.mu.Unlock
}

// State returns the current state of userID, waiting for any turn in flight.
func (st *Store) State(userID int64) State {
	sess, release := st.acquire(userID)
	defer release()
	return sess.State
}

// InProgress reports whether userID is inside a conversation.
func (st *Store) InProgress(userID int64) bool {
	return st.State(userID) != StateIdle
}
