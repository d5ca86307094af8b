package campaign

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Store provides durable campaign snapshots with per-campaign
// serialization: Acquire blocks until the caller holds the only
// in-flight lease for that id, so two concurrent steps can never
// interleave writes to the same snapshot.
type Store interface {
	Acquire(ctx context.Context, campaignID string) (Lease, error)
	// Load reads the last persisted snapshot without locking; intended
	// for read-only status surfaces.
	Load(ctx context.Context, campaignID string) (CampaignState, bool, error)
}

// Lease is an exclusive hold on one campaign's snapshot.
type Lease interface {
	// Snapshot returns the state loaded at acquisition time and whether
	// a snapshot existed.
	Snapshot() (CampaignState, bool)
	Save(ctx context.Context, st CampaignState) error
	Release(ctx context.Context) error
}

// PGStore persists snapshots as jsonb rows keyed by campaign id and
// serializes same-campaign steps with a session advisory lock held for
// the lease's lifetime.
type PGStore struct {
	pool *pgxpool.Pool
}

func NewPGStore(pool *pgxpool.Pool) *PGStore {
	return &PGStore{pool: pool}
}

func (s *PGStore) Acquire(ctx context.Context, campaignID string) (Lease, error) {
	conn, err := s.pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("campaign: acquire connection: %w", err)
	}

	if _, err := conn.Exec(ctx, `SELECT pg_advisory_lock(hashtextextended($1, 0))`, campaignID); err != nil {
		conn.Release()
		return nil, fmt.Errorf("campaign: advisory lock: %w", err)
	}

	lease := &pgLease{conn: conn, campaignID: campaignID}

	var raw []byte
	err = conn.QueryRow(ctx, `SELECT snapshot FROM campaigns WHERE id = $1`, campaignID).Scan(&raw)
	switch {
	case errors.Is(err, pgx.ErrNoRows):
		return lease, nil
	case err != nil:
		_ = lease.Release(ctx)
		return nil, fmt.Errorf("campaign: load snapshot: %w", err)
	}

	if err := json.Unmarshal(raw, &lease.state); err != nil {
		_ = lease.Release(ctx)
		return nil, fmt.Errorf("campaign: decode snapshot: %w", err)
	}
	lease.exists = true
	return lease, nil
}

func (s *PGStore) Load(ctx context.Context, campaignID string) (CampaignState, bool, error) {
	var raw []byte
	err := s.pool.QueryRow(ctx, `SELECT snapshot FROM campaigns WHERE id = $1`, campaignID).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return CampaignState{}, false, nil
	}
	if err != nil {
		return CampaignState{}, false, fmt.Errorf("campaign: load snapshot: %w", err)
	}
	var st CampaignState
	if err := json.Unmarshal(raw, &st); err != nil {
		return CampaignState{}, false, fmt.Errorf("campaign: decode snapshot: %w", err)
	}
	return st, true, nil
}

type pgLease struct {
	conn       *pgxpool.Conn
	campaignID string
	state      CampaignState
	exists     bool
	released   bool
}

func (l *pgLease) Snapshot() (CampaignState, bool) {
	return l.state, l.exists
}

func (l *pgLease) Save(ctx context.Context, st CampaignState) error {
	raw, err := json.Marshal(st)
	if err != nil {
		return fmt.Errorf("campaign: encode snapshot: %w", err)
	}
	_, err = l.conn.Exec(ctx, `
        INSERT INTO campaigns (id, snapshot)
        VALUES ($1, $2::jsonb)
        ON CONFLICT (id) DO UPDATE
        SET snapshot = EXCLUDED.snapshot, updated_at = now()
    `, l.campaignID, raw)
	if err != nil {
		return fmt.Errorf("campaign: save snapshot: %w", err)
	}
	l.state = st.Clone()
	l.exists = true
	return nil
}

func (l *pgLease) Release(ctx context.Context) error {
	if l.released {
		return nil
	}
	l.released = true
	_, err := l.conn.Exec(ctx, `SELECT pg_advisory_unlock(hashtextextended($1, 0))`, l.campaignID)
	l.conn.Release()
	if err != nil {
		return fmt.Errorf("campaign: advisory unlock: %w", err)
	}
	return nil
}

// MemoryStore is an in-process Store with the same serialization
// guarantees, backed by JSON-encoded snapshots. Used by tests and
// single-node development setups.
type MemoryStore struct {
	mu    sync.Mutex
	locks map[string]chan struct{}
	snaps map[string][]byte
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		locks: make(map[string]chan struct{}),
		snaps: make(map[string][]byte),
	}
}

func (s *MemoryStore) lockFor(campaignID string) chan struct{} {
	s.mu.Lock()
	defer s.mu.Unlock()
	ch, ok := s.locks[campaignID]
	if !ok {
		ch = make(chan struct{}, 1)
		s.locks[campaignID] = ch
	}
	return ch
}

func (s *MemoryStore) Acquire(ctx context.Context, campaignID string) (Lease, error) {
	ch := s.lockFor(campaignID)
	select {
	case ch <- struct{}{}:
	case <-ctx.Done():
		return nil, fmt.Errorf("campaign: acquire %s: %w", campaignID, ctx.Err())
	}

	lease := &memLease{store: s, campaignID: campaignID, lock: ch}
	s.mu.Lock()
	raw, ok := s.snaps[campaignID]
	s.mu.Unlock()
	if ok {
		if err := json.Unmarshal(raw, &lease.state); err != nil {
			_ = lease.Release(ctx)
			return nil, fmt.Errorf("campaign: decode snapshot: %w", err)
		}
		lease.exists = true
	}
	return lease, nil
}

func (s *MemoryStore) Load(_ context.Context, campaignID string) (CampaignState, bool, error) {
	s.mu.Lock()
	raw, ok := s.snaps[campaignID]
	s.mu.Unlock()
	if !ok {
		return CampaignState{}, false, nil
	}
	var st CampaignState
	if err := json.Unmarshal(raw, &st); err != nil {
		return CampaignState{}, false, fmt.Errorf("campaign: decode snapshot: %w", err)
	}
	return st, true, nil
}

type memLease struct {
	store      *MemoryStore
	campaignID string
	lock       chan struct{}
	state      CampaignState
	exists     bool
	released   bool
}

func (l *memLease) Snapshot() (CampaignState, bool) {
	return l.state, l.exists
}

func (l *memLease) Save(_ context.Context, st CampaignState) error {
	raw, err := json.Marshal(st)
	if err != nil {
		return fmt.Errorf("campaign: encode snapshot: %w", err)
	}
	l.store.mu.Lock()
	l.store.snaps[l.campaignID] = raw
	l.store.mu.Unlock()
	l.state = st.Clone()
	l.exists = true
	return nil
}

func (l *memLease) Release(context.Context) error {
	if l.released {
		return nil
	}
	l.released = true
	<-l.lock
	return nil
}
