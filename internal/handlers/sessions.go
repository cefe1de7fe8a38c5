package handlers

import (
	"sync"
	"time"

	"github.com/fostercare-aficionado/chat/internal/chatview"
	"github.com/fostercare-aficionado/chat/internal/metrics"
)

type session struct {
	id          string
	view        *chatview.View
	unsubscribe func()
	lastSeen    time.Time
}

type sessions struct {
	ttl time.Duration

	mu   sync.Mutex
	byID map[string]*session
}

func newSessions(ttl time.Duration) *sessions {
	return &sessions{
		ttl:  ttl,
		byID: make(map[string]*session),
	}
}

func (s *sessions) get(id string) (*session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.byID[id]
	if ok {
		sess.lastSeen = time.Now()
	}
	return sess, ok
}

func (s *sessions) add(sess *session) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess.lastSeen = time.Now()
	s.byID[sess.id] = sess
	metrics.ActiveSessions.Set(float64(len(s.byID)))
}

func (s *sessions) evict(now time.Time) int {
	if s.ttl <= 0 {
		return 0
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	evicted := 0
	for id, sess := range s.byID {
		if now.Sub(sess.lastSeen) < s.ttl || sess.view.Busy() {
			continue
		}
		sess.unsubscribe()
		delete(s.byID, id)
		evicted++
	}
	metrics.ActiveSessions.Set(float64(len(s.byID)))

	return evicted
}
