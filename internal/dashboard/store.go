package dashboard

import (
	"sync"

	"github.com/madu12/metro-interstate-traffic-volume/internal/observability"
)

// sessionStore holds the open sessions in recency order. Opening a session
// past capacity closes the least recently used one. The active-session gauge
// always matches the number held.
type sessionStore struct {
	capacity int
	metrics  *observability.Metrics

	mu     sync.Mutex
	byID   map[string]*slot
	newest *slot
	oldest *slot
}

type slot struct {
	session *Session
	newer   *slot
	older   *slot
}

func newSessionStore(capacity int, metrics *observability.Metrics) *sessionStore {
	return &sessionStore{
		capacity: max(capacity, 1),
		metrics:  metrics,
		byID:     make(map[string]*slot),
	}
}

// lookup returns the session and marks it most recently used.
func (st *sessionStore) lookup(id string) (*Session, bool) {
	st.mu.Lock()
	defer st.mu.Unlock()

	sl, ok := st.byID[id]
	if !ok {
		return nil, false
	}
	st.touch(sl)
	return sl.session, true
}

// open adds s as the most recent session and returns the session closed to
// make room, if any. Reopening a held id replaces its session.
func (st *sessionStore) open(s *Session) (closed *Session) {
	st.mu.Lock()
	defer func() {
		st.metrics.SessionsActive.Set(float64(len(st.byID)))
		st.mu.Unlock()
	}()

	if sl, ok := st.byID[s.ID]; ok {
		sl.session = s
		st.touch(sl)
		return nil
	}

	sl := &slot{session: s}
	st.byID[s.ID] = sl
	st.pushNewest(sl)

	if len(st.byID) <= st.capacity {
		return nil
	}
	victim := st.oldest
	st.unlink(victim)
	delete(st.byID, victim.session.ID)
	st.metrics.SessionsEvicted.Inc()
	return victim.session
}

func (st *sessionStore) size() int {
	st.mu.Lock()
	defer st.mu.Unlock()
	return len(st.byID)
}

func (st *sessionStore) touch(sl *slot) {
	if sl == st.newest {
		return
	}
	st.unlink(sl)
	st.pushNewest(sl)
}

func (st *sessionStore) pushNewest(sl *slot) {
	sl.older, sl.newer = st.newest, nil
	if st.newest != nil {
		st.newest.newer = sl
	} else {
		st.oldest = sl
	}
	st.newest = sl
}

func (st *sessionStore) unlink(sl *slot) {
	if sl.newer != nil {
		sl.newer.older = sl.older
	} else {
		st.newest = sl.older
	}
	if sl.older != nil {
		sl.older.newer = sl.newer
	} else {
		st.oldest = sl.newer
	}
	sl.newer, sl.older = nil, nil
}
