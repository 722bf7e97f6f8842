package dapp

import (
	"encoding/json"
	"strings"
	"time"
)

// Method names served by the pipeline.
const (
	MethodSessionRequest = "session_request"

	MethodEthSendTransaction = "eth_sendTransaction"
	MethodEthSign            = "eth_sign"
	MethodPersonalSign       = "personal_sign"
	MethodEthSignTypedData   = "eth_signTypedData"
	MethodEthSignTypedDataV1 = "eth_signTypedData_v1"
	MethodEthSignTypedDataV3 = "eth_signTypedData_v3"
	MethodEthSignTypedDataV4 = "eth_signTypedData_v4"

	MethodWalletAddChain    = "wallet_addEthereumChain"
	MethodWalletSwitchChain = "wallet_switchEthereumChain"
	MethodWalletWatchAsset  = "wallet_watchAsset"

	MethodAvalancheSendTransaction = "avalanche_sendTransaction"
	MethodAvalancheSignTransaction = "avalanche_signTransaction"
	MethodAvalancheBridgeAsset     = "avalanche_bridgeAsset"
	MethodAvalancheSelectAccount   = "avalanche_selectAccount"
	MethodAvalancheGetAccounts     = "avalanche_getAccounts"
	MethodAvalancheCreateContact   = "avalanche_createContact"
	MethodAvalancheUpdateContact   = "avalanche_updateContact"
	MethodAvalancheRemoveContact   = "avalanche_removeContact"
	MethodAvalancheGetContacts     = "avalanche_getContacts"
)

// coreOnlyMethods may only be called by trusted first-party origins.
var coreOnlyMethods = map[string]bool{
	MethodAvalancheSelectAccount: true,
	MethodAvalancheGetAccounts:   true,
	MethodAvalancheCreateContact: true,
	MethodAvalancheUpdateContact: true,
	MethodAvalancheRemoveContact: true,
	MethodAvalancheGetContacts:   true,
	MethodAvalancheBridgeAsset:   true,
}

// trustedOriginSuffixes lists the origin suffixes allowed to call
// core-only methods.
var trustedOriginSuffixes = []string{
	"core.app",
	"localhost",
}

// IsCoreOnly reports whether a method is restricted to trusted origins.
func IsCoreOnly(method string) bool {
	return coreOnlyMethods[method]
}

// IsTrustedOrigin reports whether an origin may call core-only methods.
func IsTrustedOrigin(origin string) bool {
	origin = strings.TrimPrefix(origin, "https://")
	origin = strings.TrimPrefix(origin, "http://")
	if host, _, ok := strings.Cut(origin, ":"); ok {
		origin = host
	}
	for _, suffix := range trustedOriginSuffixes {
		if origin == suffix || strings.HasSuffix(origin, "."+suffix) {
			return true
		}
	}
	return false
}

// PeerMeta describes the dApp on the far side of a session.
type PeerMeta struct {
	PeerID      string `json:"peerId"`
	Name        string `json:"name"`
	URL         string `json:"url"`
	Icon        string `json:"icon,omitempty"`
	Description string `json:"description,omitempty"`
}

// Request is one inbound RPC call from a dApp.
type Request struct {
	ID        uint64          `json:"id"`
	SessionID string          `json:"sessionId"`
	Method    string          `json:"method"`
	Params    json.RawMessage `json:"params,omitempty"`
	Peer      PeerMeta        `json:"peer"`
	Origin    string          `json:"origin"`
	Received  time.Time       `json:"received"`
}

// Status is the disposition of a handled request.
type Status int

// Request dispositions.
const (
	// StatusResolved means the handler produced a result immediately.
	StatusResolved Status = iota
	// StatusFailed means the handler produced an error immediately.
	StatusFailed
	// StatusPending means the request awaits user approval.
	StatusPending
)

// Outcome is a handler's disposition of a request. Exactly one of Result,
// Err, or DisplayData is meaningful, selected by Status.
type Outcome struct {
	Status      Status
	Result      interface{}
	Err         *Error
	DisplayData interface{}
}

// Resolved returns an immediately-resolved outcome.
func Resolved(result interface{}) Outcome {
	return Outcome{Status: StatusResolved, Result: result}
}

// Failed returns an immediately-failed outcome.
func Failed(err *Error) Outcome {
	return Outcome{Status: StatusFailed, Err: err}
}

// Pending returns an outcome that parks the request for user approval.
// displayData is surfaced to the approval UI.
func Pending(displayData interface{}) Outcome {
	return Outcome{Status: StatusPending, DisplayData: displayData}
}

// parseParams unmarshals a request's params into dst, normalizing any
// JSON shape the dApp sent.
func parseParams(req *Request, dst interface{}) *Error {
	if len(req.Params) == 0 {
		return ErrInvalidParams("missing params for %s", req.Method)
	}
	if err := json.Unmarshal(req.Params, dst); err != nil {
		return ErrInvalidParams("malformed params for %s: %v", req.Method, err)
	}
	return nil
}
