// Package dapp implements the request pipeline between connected dApps
// and the wallet: method routing, validation, human approval, and the
// handlers behind each supported RPC method.
package dapp

import (
	"errors"
	"fmt"
)

// errApproveWentPending guards against a handler's Approve parking the
// request a second time.
var errApproveWentPending = errors.New("approval handler returned a pending outcome")

// Error codes returned to dApps. Negative codes follow JSON-RPC 2.0;
// positive codes follow the EIP-1193 provider error convention.
const (
	CodeInvalidParams      = -32602
	CodeMethodNotSupported = -32601
	CodeResourceNotFound   = -32001
	CodeInternal           = -32603
	CodeUnauthorized       = 4100
	CodeUserRejected       = 4001
	CodeUnrecognizedChain  = 4902
)

// Error is a JSON-RPC error returned to the requesting dApp.
type Error struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

func (e *Error) Error() string {
	return fmt.Sprintf("rpc error %d: %s", e.Code, e.Message)
}

// ErrInvalidParams reports malformed or missing request parameters.
func ErrInvalidParams(format string, args ...interface{}) *Error {
	return &Error{Code: CodeInvalidParams, Message: fmt.Sprintf(format, args...)}
}

// ErrMethodNotSupported reports a method the wallet does not serve, either
// at all or on the active network.
func ErrMethodNotSupported(method string) *Error {
	return &Error{Code: CodeMethodNotSupported, Message: fmt.Sprintf("the method %s is not supported", method)}
}

// ErrUnauthorized reports a request the calling origin may not make.
func ErrUnauthorized() *Error {
	return &Error{Code: CodeUnauthorized, Message: "the requested method is not authorized for this origin"}
}

// ErrResourceNotFound reports a missing wallet resource such as an
// unknown account or contact.
func ErrResourceNotFound(format string, args ...interface{}) *Error {
	return &Error{Code: CodeResourceNotFound, Message: fmt.Sprintf(format, args...)}
}

// ErrInternal reports a wallet-side failure.
func ErrInternal(err error) *Error {
	return &Error{Code: CodeInternal, Message: err.Error()}
}

// ErrUserRejected reports that the user declined the request. A non-empty
// reason replaces the generic message.
func ErrUserRejected(reason string) *Error {
	if reason == "" {
		reason = "user rejected the request"
	}
	return &Error{Code: CodeUserRejected, Message: reason}
}

// ErrUnrecognizedChain reports a switch to a chain the wallet does not know.
func ErrUnrecognizedChain(chainID string) *Error {
	return &Error{
		Code:    CodeUnrecognizedChain,
		Message: fmt.Sprintf("unrecognized chain id %s; add the chain with wallet_addEthereumChain first", chainID),
	}
}
