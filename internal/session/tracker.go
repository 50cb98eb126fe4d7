package session

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/dotapulse/gsi-backend/internal/gsi"
)

// UnattributedID is the sentinel session id reported for snapshots that
// carry no (matchId, participant) key and therefore have no session.
const UnattributedID = "unattributed"

type Session struct {
	Key              string
	MatchID          string
	ParticipantID    string
	CreatedAt        time.Time
	LastUpdate       time.Time
	LastSnapshotHash string
	SnapshotCount    int
}

// Result is the outcome of feeding one snapshot through the tracker.
type Result struct {
	Broadcast    bool
	Deduplicated bool
	SnapshotHash string
	SessionID    string
}

type Stats struct {
	ActiveSessions    int     `json:"activeSessions"`
	TotalProcessed    int64   `json:"totalProcessed"`
	TotalDeduplicated int64   `json:"totalDeduplicated"`
	DedupRatio        float64 `json:"dedupRatio"`
}

// Tracker owns the session map. All access goes through its methods; the
// sweep goroutine shares the same mutex, so a concurrent Update and Cleanup
// interleave safely (worst case a session is touched right before removal,
// which the next snapshot simply recreates).
type Tracker struct {
	mu       sync.Mutex
	sessions map[string]*Session

	totalProcessed    int64
	totalDeduplicated int64

	ttl time.Duration
	log *zap.Logger
	now func() time.Time
}

func NewTracker(ttl time.Duration, log *zap.Logger) *Tracker {
	return &Tracker{
		sessions: make(map[string]*Session),
		ttl:      ttl,
		log:      log,
		now:      time.Now,
	}
}

// Run drives the periodic TTL sweep until ctx is cancelled.
func (t *Tracker) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if removed := t.Cleanup(); removed > 0 {
				t.log.Info("session sweep", zap.Int("removed", removed))
			}
		}
	}
}

func sessionKey(matchID, participantID string) string {
	return matchID + ":" + participantID
}

// GetOrCreate resolves the session for a (match, participant) pair,
// creating it on first sight. Idempotent.
func (t *Tracker) GetOrCreate(matchID, participantID string) *Session {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.getOrCreateLocked(matchID, participantID)
}

func (t *Tracker) getOrCreateLocked(matchID, participantID string) *Session {
	key := sessionKey(matchID, participantID)
	if s, ok := t.sessions[key]; ok {
		return s
	}
	now := t.now()
	s := &Session{
		Key:           key,
		MatchID:       matchID,
		ParticipantID: participantID,
		CreatedAt:     now,
		LastUpdate:    now,
	}
	t.sessions[key] = s
	t.log.Debug("session created",
		zap.String("matchId", matchID),
		zap.String("participantId", participantID))
	return s
}

// Update runs dedup for one canonical snapshot. Snapshots without a match id
// or participant id have no stable key: they are always broadcast, never
// deduplicated, and leave no session state behind.
func (t *Tracker) Update(snap *gsi.Snapshot) (Result, error) {
	hash, err := gsi.Hash(snap)
	if err != nil {
		return Result{}, err
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	t.totalProcessed++

	if snap.MatchID == nil || snap.Player == nil || snap.Player.SteamID == "" {
		return Result{Broadcast: true, SnapshotHash: hash, SessionID: UnattributedID}, nil
	}

	s := t.getOrCreateLocked(*snap.MatchID, snap.Player.SteamID)
	dedup := s.LastSnapshotHash != "" && s.LastSnapshotHash == hash
	if dedup {
		t.totalDeduplicated++
	} else {
		s.LastSnapshotHash = hash
	}
	s.LastUpdate = t.now()
	s.SnapshotCount++

	return Result{
		Broadcast:    !dedup,
		Deduplicated: dedup,
		SnapshotHash: hash,
		SessionID:    s.Key,
	}, nil
}

// Delete removes one session explicitly.
func (t *Tracker) Delete(matchID, participantID string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.sessions, sessionKey(matchID, participantID))
}

// Cleanup removes every session idle beyond the TTL and returns how many
// were dropped.
func (t *Tracker) Cleanup() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	now := t.now()
	removed := 0
	for key, s := range t.sessions {
		if now.Sub(s.LastUpdate) > t.ttl {
			delete(t.sessions, key)
			removed++
		}
	}
	return removed
}

func (t *Tracker) Stats() Stats {
	t.mu.Lock()
	defer t.mu.Unlock()
	st := Stats{
		ActiveSessions:    len(t.sessions),
		TotalProcessed:    t.totalProcessed,
		TotalDeduplicated: t.totalDeduplicated,
	}
	if st.TotalProcessed > 0 {
		st.DedupRatio = float64(st.TotalDeduplicated) / float64(st.TotalProcessed)
	}
	return st
}
