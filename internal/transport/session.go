// Package transport exposes the WebSocket endpoint dApps connect to and
// carries requests into the pipeline and responses back out.
package transport

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/frostlabs/frostgate/internal/dapp"
	"github.com/frostlabs/frostgate/internal/storage"
)

// SessionRecord is the persisted state of one dApp session.
type SessionRecord struct {
	ID         string        `json:"id"`
	Peer       dapp.PeerMeta `json:"peer"`
	Approved   bool          `json:"approved"`
	ApprovedAt time.Time     `json:"approvedAt,omitempty"`
	CreatedAt  time.Time     `json:"createdAt"`
}

// SessionStore persists session records across restarts.
type SessionStore struct {
	db storage.DB
}

// NewSessionStore creates a session store over the given database.
func NewSessionStore(db storage.DB) *SessionStore {
	return &SessionStore{db: db}
}

// Save writes a session record.
func (s *SessionStore) Save(rec *SessionRecord) error {
	raw, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	if err := s.db.Put([]byte(rec.ID), raw); err != nil {
		return fmt.Errorf("store session: %w", err)
	}
	return nil
}

// Get loads a session record by ID.
func (s *SessionStore) Get(id string) (*SessionRecord, error) {
	raw, err := s.db.Get([]byte(id))
	if err != nil {
		return nil, fmt.Errorf("session %s not found", id)
	}
	var rec SessionRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}
	return &rec, nil
}

// Delete removes a session record.
func (s *SessionStore) Delete(id string) error {
	return s.db.Delete([]byte(id))
}

// List returns all session records.
func (s *SessionStore) List() ([]SessionRecord, error) {
	var out []SessionRecord
	err := s.db.ForEach(nil, func(key, value []byte) error {
		var rec SessionRecord
		if err := json.Unmarshal(value, &rec); err != nil {
			return fmt.Errorf("decode session %s: %w", key, err)
		}
		out = append(out, rec)
		return nil
	})
	return out, err
}
