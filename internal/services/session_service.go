package services

import (
	"database/sql"
	"errors"
	"sync"
	"time"

	"productos/internal/domain"
	"productos/internal/repos"
)

// SessionService keeps one ProductController per browser session and
// persists its view state. Controllers are dropped from memory when the cap
// is exceeded or they go idle; their saved state is restored on next use.
type SessionService struct {
	Repo *repos.SessionRepo
	API  ProductAPI

	MaxLive int           // 0: no cap
	IdleTTL time.Duration // 0: Sweep does nothing
	Now     func() time.Time

	mu   sync.Mutex
	live map[string]*liveSession
}

type liveSession struct {
	ctl  *ProductController
	seen time.Time
}

func NewSessionService(repo *repos.SessionRepo, api ProductAPI) *SessionService {
	return &SessionService{Repo: repo, API: api, Now: time.Now, live: map[string]*liveSession{}}
}

func (s *SessionService) now() time.Time {
	if s.Now == nil {
		return time.Now()
	}
	return s.Now()
}

// Controller returns the controller for sid, restoring saved state on first use.
func (s *SessionService) Controller(sid string) (*ProductController, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	if ls, ok := s.live[sid]; ok {
		ls.seen = now
		return ls.ctl, nil
	}
	ctl := NewProductController(s.API)
	st, err := s.Repo.Load(sid)
	switch {
	case err == nil:
		ctl.Restore(st)
	case errors.Is(err, sql.ErrNoRows):
	default:
		return nil, err
	}
	s.live[sid] = &liveSession{ctl: ctl, seen: now}
	s.evictOverCap(sid)
	return ctl, nil
}

// evictOverCap drops least recently used controllers other than keep.
func (s *SessionService) evictOverCap(keep string) {
	for s.MaxLive > 0 && len(s.live) > s.MaxLive {
		var oldest string
		var at time.Time
		for sid, ls := range s.live {
			if sid == keep {
				continue
			}
			if oldest == "" || ls.seen.Before(at) {
				oldest, at = sid, ls.seen
			}
		}
		if oldest == "" {
			return
		}
		delete(s.live, oldest)
	}
}

// Save persists the view state of ctl. A session back at its initial state
// has nothing worth restoring, so its row is removed instead.
func (s *SessionService) Save(sid string, ctl *ProductController) error {
	st := ctl.State()
	if st == (domain.ViewState{}) {
		return s.Repo.Delete(sid)
	}
	return s.Repo.SaveAt(sid, st, s.now())
}

// Sweep forgets sessions idle for longer than IdleTTL, in memory and in the
// store, and returns how many live controllers were dropped.
func (s *SessionService) Sweep() (int, error) {
	if s.IdleTTL <= 0 {
		return 0, nil
	}
	cutoff := s.now().Add(-s.IdleTTL)
	s.mu.Lock()
	dropped := 0
	for sid, ls := range s.live {
		if ls.seen.Before(cutoff) {
			delete(s.live, sid)
			dropped++
		}
	}
	s.mu.Unlock()
	_, err := s.Repo.DeleteIdle(cutoff)
	return dropped, err
}

// Live reports how many controllers are held in memory.
func (s *SessionService) Live() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.live)
}
