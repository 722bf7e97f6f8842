package dapp

import (
	"context"

	"github.com/frostlabs/frostgate/internal/log"
	"github.com/frostlabs/frostgate/internal/network"
)

// Responder delivers responses back to a dApp session.
type Responder interface {
	SendResult(sessionID string, reqID uint64, result interface{})
	SendError(sessionID string, reqID uint64, rpcErr *Error)
}

// Pipeline validates, dispatches, and resolves dApp requests. Requests
// that need consent are parked in the pending store until the user
// approves or rejects them.
type Pipeline struct {
	registry *Registry
	store    *PendingStore
	networks *network.Registry

	responder Responder

	// onPending, when set, is invoked for every newly parked request so
	// an approval surface can present it.
	onPending func(*PendingRequest)
}

// NewPipeline wires a pipeline from its parts.
func NewPipeline(registry *Registry, networks *network.Registry, responder Responder) *Pipeline {
	return &Pipeline{
		registry:  registry,
		store:     NewPendingStore(),
		networks:  networks,
		responder: responder,
	}
}

// OnPending registers a callback for newly parked requests.
func (p *Pipeline) OnPending(fn func(*PendingRequest)) {
	p.onPending = fn
}

// Pending returns the requests currently awaiting approval.
func (p *Pipeline) Pending() []*PendingRequest {
	return p.store.List()
}

// HandleRequest validates and dispatches one inbound request, delivering
// the response through the responder unless the request goes pending.
func (p *Pipeline) HandleRequest(ctx context.Context, req *Request) {
	logger := log.Pipeline.With().
		Uint64("req_id", req.ID).
		Str("method", req.Method).
		Str("peer", req.Peer.Name).
		Logger()

	handler, ok := p.registry.Get(req.Method)
	if !ok {
		logger.Warn().Msg("unknown method")
		p.responder.SendError(req.SessionID, req.ID, ErrMethodNotSupported(req.Method))
		return
	}

	if IsCoreOnly(req.Method) && !IsTrustedOrigin(req.Origin) {
		logger.Warn().Str("origin", req.Origin).Msg("core-only method from untrusted origin")
		p.responder.SendError(req.SessionID, req.ID, ErrUnauthorized())
		return
	}

	if req.Method != MethodSessionRequest {
		active := p.networks.Active()
		if !network.Supports(active, req.Method) {
			logger.Warn().Str("network", active.Name).Msg("method unsupported on active network")
			p.responder.SendError(req.SessionID, req.ID, ErrMethodNotSupported(req.Method))
			return
		}
	}

	outcome := handler.Handle(ctx, req)
	switch outcome.Status {
	case StatusResolved:
		logger.Info().Msg("request resolved")
		p.responder.SendResult(req.SessionID, req.ID, outcome.Result)
	case StatusFailed:
		logger.Info().Int("code", outcome.Err.Code).Str("error", outcome.Err.Message).Msg("request failed")
		p.responder.SendError(req.SessionID, req.ID, outcome.Err)
	case StatusPending:
		pending := p.store.Add(req, outcome.DisplayData)
		logger.Info().Msg("request pending approval")
		if p.onPending != nil {
			p.onPending(pending)
		}
	}
}

// Approve resolves a pending request after user consent. Returns false
// when no pending request with that ID exists (already resolved, rejected,
// or never parked).
func (p *Pipeline) Approve(ctx context.Context, id uint64) bool {
	pending, ok := p.store.Take(id)
	if !ok {
		return false
	}
	req := pending.Request

	handler, ok := p.registry.Get(req.Method)
	if !ok {
		// The registry cannot lose handlers at runtime; treat defensively.
		p.responder.SendError(req.SessionID, req.ID, ErrMethodNotSupported(req.Method))
		return true
	}

	outcome := handler.Approve(ctx, req, pending.DisplayData)
	logger := log.Pipeline.With().
		Uint64("req_id", req.ID).
		Str("method", req.Method).
		Logger()

	switch outcome.Status {
	case StatusResolved:
		logger.Info().Msg("request approved")
		p.responder.SendResult(req.SessionID, req.ID, outcome.Result)
	case StatusFailed:
		logger.Warn().Int("code", outcome.Err.Code).Str("error", outcome.Err.Message).Msg("approval failed")
		p.responder.SendError(req.SessionID, req.ID, outcome.Err)
	case StatusPending:
		logger.Error().Msg("approve produced another pending outcome")
		p.responder.SendError(req.SessionID, req.ID, ErrInternal(errApproveWentPending))
	}
	return true
}

// RejectObserver handlers are told when the user rejects one of their
// pending requests, so handler-side state can be cleaned up.
type RejectObserver interface {
	Rejected(ctx context.Context, req *Request)
}

// Reject declines a pending request. A non-empty reason is sent to the
// dApp in place of the generic user-rejected message. Returns false when
// no pending request with that ID exists.
func (p *Pipeline) Reject(ctx context.Context, id uint64, reason string) bool {
	pending, ok := p.store.Take(id)
	if !ok {
		return false
	}
	req := pending.Request

	log.Pipeline.Info().
		Uint64("req_id", req.ID).
		Str("method", req.Method).
		Str("reason", reason).
		Msg("request rejected by user")

	if handler, ok := p.registry.Get(req.Method); ok {
		if obs, ok := handler.(RejectObserver); ok {
			obs.Rejected(ctx, req)
		}
	}
	p.responder.SendError(req.SessionID, req.ID, ErrUserRejected(reason))
	return true
}

// DropSession discards every pending request parked for a disconnected
// session. No responses are sent; there is no connection left to carry
// them. Returns the number of requests dropped.
func (p *Pipeline) DropSession(ctx context.Context, sessionID string) int {
	dropped := p.store.TakeSession(sessionID)
	for _, pending := range dropped {
		req := pending.Request
		log.Pipeline.Info().
			Uint64("req_id", req.ID).
			Str("method", req.Method).
			Str("session", sessionID).
			Msg("pending request dropped, session disconnected")
		if handler, ok := p.registry.Get(req.Method); ok {
			if obs, ok := handler.(RejectObserver); ok {
				obs.Rejected(ctx, req)
			}
		}
	}
	return len(dropped)
}
