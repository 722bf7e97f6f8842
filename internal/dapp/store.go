package dapp

import (
	"sync"
	"time"
)

// PendingRequest is a request parked for user approval.
type PendingRequest struct {
	Request     *Request    `json:"request"`
	DisplayData interface{} `json:"displayData,omitempty"`
	CreatedAt   time.Time   `json:"createdAt"`
}

// PendingStore holds requests awaiting user approval. Requests stay until
// explicitly resolved; there is no expiry.
type PendingStore struct {
	mu      sync.Mutex
	pending map[uint64]*PendingRequest
}

// NewPendingStore creates an empty store.
func NewPendingStore() *PendingStore {
	return &PendingStore{pending: make(map[uint64]*PendingRequest)}
}

// Add parks a request. An existing entry with the same ID is replaced.
func (s *PendingStore) Add(req *Request, displayData interface{}) *PendingRequest {
	p := &PendingRequest{
		Request:     req,
		DisplayData: displayData,
		CreatedAt:   time.Now(),
	}
	s.mu.Lock()
	s.pending[req.ID] = p
	s.mu.Unlock()
	return p
}

// Take removes and returns the pending request with the given ID. The
// removal happens before any resolution work so that a second approve or
// reject for the same ID finds nothing and becomes a no-op.
func (s *PendingStore) Take(id uint64) (*PendingRequest, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.pending[id]
	if ok {
		delete(s.pending, id)
	}
	return p, ok
}

// TakeSession removes and returns every pending request parked for the
// given session.
func (s *PendingStore) TakeSession(sessionID string) []*PendingRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*PendingRequest
	for id, p := range s.pending {
		if p.Request.SessionID == sessionID {
			delete(s.pending, id)
			out = append(out, p)
		}
	}
	return out
}

// List returns all pending requests.
func (s *PendingStore) List() []*PendingRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*PendingRequest, 0, len(s.pending))
	for _, p := range s.pending {
		out = append(out, p)
	}
	return out
}

// Len returns the number of pending requests.
func (s *PendingStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pending)
}
