package notify

import "sync"

// MaxStored is the number of notifications kept for CloseNotification
// and listing. Older ones are forgotten.
const MaxStored = 100

// store keeps the most recent notifications in arrival order.
type store struct {
	mu    sync.Mutex
	items []Notification
	limit int
}

func newStore(limit int) *store {
	return &store{limit: limit}
}

// put adds n, replacing a stored notification with the same ID in place.
// It returns the notification evicted to respect the limit, if any.
func (s *store) put(n Notification) (Notification, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.items {
		if s.items[i].ID == n.ID {
			s.items[i] = n
			return Notification{}, false
		}
	}
	s.items = append(s.items, n)
	if len(s.items) <= s.limit {
		return Notification{}, false
	}
	evicted := s.items[0]
	s.items = append(s.items[:0:0], s.items[1:]...)
	return evicted, true
}

func (s *store) get(id uint32) (Notification, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, n := range s.items {
		if n.ID == id {
			return n, true
		}
	}
	return Notification{}, false
}

func (s *store) remove(id uint32) (Notification, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, n := range s.items {
		if n.ID == id {
			s.items = append(s.items[:i], s.items[i+1:]...)
			return n, true
		}
	}
	return Notification{}, false
}

func (s *store) list() []Notification {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Notification(nil), s.items...)
}
