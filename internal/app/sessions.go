package app

import (
	"context"
	crand "crypto/rand"
	"encoding/hex"
	"fmt"
	"time"

	"reviewking/internal/domain"
)

// Session tracks one import-by-URL preview flow: which product it is
// for and how many reviews were pushed to the catalog so far.
type Session struct {
	ID            string          `json:"id"`
	ProductID     string          `json:"product_id"`
	Platform      domain.Platform `json:"platform"`
	StartedAt     time.Time       `json:"started_at"`
	ImportedCount int             `json:"imported_count"`
}

// SessionService keeps sessions and per-session skip sets in the shared
// cache, so the pipeline itself stays stateless.
type SessionService struct {
	cache domain.Cache
	ttl   time.Duration
}

func NewSessionService(c domain.Cache, ttl time.Duration) *SessionService {
	return &SessionService{cache: c, ttl: ttl}
}

func sessionKey(id string) string { return "session:" + id }
func skipKey(id string) string    { return "session:" + id + ":skipped" }

// Start registers a session, generating an id when the caller did not
// supply one.
func (s *SessionService) Start(ctx context.Context, id, productID string, platform domain.Platform) (Session, error) {
	if id == "" {
		id = newSessionID()
	}
	sess := Session{
		ID:        id,
		ProductID: productID,
		Platform:  platform,
		StartedAt: time.Now().UTC(),
	}
	if err := s.cache.Set(ctx, sessionKey(id), sess, int(s.ttl.Seconds())); err != nil {
		return Session{}, fmt.Errorf("store session %s: %w", id, err)
	}
	return sess, nil
}

func (s *SessionService) Get(ctx context.Context, id string) (Session, bool, error) {
	var sess Session
	ok, err := s.cache.Get(ctx, sessionKey(id), &sess)
	return sess, ok, err
}

// RecordImports bumps the session's imported counter. Unknown sessions
// are ignored: imports are still valid without preview tracking.
func (s *SessionService) RecordImports(ctx context.Context, id string, n int) error {
	if id == "" || n == 0 {
		return nil
	}
	sess, ok, err := s.Get(ctx, id)
	if err != nil || !ok {
		return err
	}
	sess.ImportedCount += n
	return s.cache.Set(ctx, sessionKey(id), sess, int(s.ttl.Seconds()))
}

// Skip marks a review id so bulk import excludes it for this session.
func (s *SessionService) Skip(ctx context.Context, sessionID, reviewID string) error {
	if sessionID == "" || reviewID == "" {
		return fmt.Errorf("%w: session and review ids required", domain.ErrInvalidFilter)
	}
	return s.cache.AddToSet(ctx, skipKey(sessionID), reviewID)
}

// Skipped returns the review ids rejected during this session.
func (s *SessionService) Skipped(ctx context.Context, sessionID string) (map[string]struct{}, error) {
	if sessionID == "" {
		return nil, nil
	}
	ids, err := s.cache.SetMembers(ctx, skipKey(sessionID))
	if err != nil {
		return nil, err
	}
	set := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set, nil
}

func newSessionID() string {
	var b [16]byte
	if _, err := crand.Read(b[:]); err != nil {
		return fmt.Sprintf("s%d", time.Now().UnixNano())
	}
	return hex.EncodeToString(b[:])
}
