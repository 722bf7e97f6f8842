package dapp

import (
	"context"

	"github.com/frostlabs/frostgate/internal/log"
	"github.com/frostlabs/frostgate/internal/wallet"
)

// SessionApprover records the approval state of dApp sessions.
type SessionApprover interface {
	ApproveSession(sessionID string, peer PeerMeta) error
	RejectSession(sessionID string) error
}

// SessionProposal is shown to the user when a dApp asks to connect.
type SessionProposal struct {
	Peer PeerMeta `json:"peer"`
}

// SessionResult is returned to the dApp once the user approves.
type SessionResult struct {
	Approved bool     `json:"approved"`
	ChainID  uint64   `json:"chainId"`
	Accounts []string `json:"accounts"`
	Methods  []string `json:"methods"`
}

// SessionHandler serves session_request: the initial connection handshake
// every dApp performs before issuing calls.
type SessionHandler struct {
	wallet   *wallet.Service
	chainID  func() uint64
	sessions SessionApprover
	methods  func() []string
}

// NewSessionHandler creates the session handshake handler. chainID reports
// the active EVM chain for the handshake payload.
func NewSessionHandler(w *wallet.Service, chainID func() uint64, sessions SessionApprover) *SessionHandler {
	return &SessionHandler{wallet: w, chainID: chainID, sessions: sessions}
}

// SetMethods supplies the registry's full method list so approvals can
// report what the session may call. Set after the registry is built; the
// handler itself is part of it.
func (h *SessionHandler) SetMethods(methods func() []string) {
	h.methods = methods
}

// approvedMethods filters the registry's methods down to what this
// session's origin may call. Restricted methods are granted only to
// trusted origins.
func (h *SessionHandler) approvedMethods(origin string) []string {
	if h.methods == nil {
		return nil
	}
	trusted := IsTrustedOrigin(origin)
	var out []string
	for _, m := range h.methods() {
		if IsCoreOnly(m) && !trusted {
			continue
		}
		out = append(out, m)
	}
	return out
}

func (h *SessionHandler) Methods() []string {
	return []string{MethodSessionRequest}
}

// Handle parks the handshake for user approval. The peer metadata arrives
// in the request envelope, not the params, so no parsing is needed.
func (h *SessionHandler) Handle(ctx context.Context, req *Request) Outcome {
	if req.Peer.Name == "" && req.Peer.URL == "" {
		return Failed(ErrInvalidParams("session request carries no peer metadata"))
	}
	return Pending(SessionProposal{Peer: req.Peer})
}

// Rejected clears the session record when the user declines the
// handshake or the dApp disconnects before approval.
func (h *SessionHandler) Rejected(ctx context.Context, req *Request) {
	if err := h.sessions.RejectSession(req.SessionID); err != nil {
		log.Pipeline.Warn().
			Str("session", req.SessionID).
			Err(err).
			Msg("session cleanup failed")
		return
	}
	log.Pipeline.Info().
		Str("session", req.SessionID).
		Str("peer", req.Peer.Name).
		Msg("session rejected")
}

// Approve marks the session approved and returns the wallet's account
// list and active chain to the dApp.
func (h *SessionHandler) Approve(ctx context.Context, req *Request, displayData interface{}) Outcome {
	if err := h.sessions.ApproveSession(req.SessionID, req.Peer); err != nil {
		return Failed(ErrInternal(err))
	}

	active, err := h.wallet.ActiveAccount()
	if err != nil {
		return Failed(ErrInternal(err))
	}

	log.Pipeline.Info().
		Str("session", req.SessionID).
		Str("peer", req.Peer.Name).
		Msg("session approved")
	return Resolved(SessionResult{
		Approved: true,
		ChainID:  h.chainID(),
		Accounts: []string{active.EVMAddress.Hex()},
		Methods:  h.approvedMethods(req.Origin),
	})
}
