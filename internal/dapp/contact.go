package dapp

import (
	"context"
	"strings"

	"github.com/frostlabs/frostgate/internal/contacts"
)

// ContactHandler serves the address book methods.
type ContactHandler struct {
	book *contacts.Book
}

// NewContactHandler creates the address book handler.
func NewContactHandler(book *contacts.Book) *ContactHandler {
	return &ContactHandler{book: book}
}

func (h *ContactHandler) Methods() []string {
	return []string{
		MethodAvalancheGetContacts,
		MethodAvalancheCreateContact,
		MethodAvalancheUpdateContact,
		MethodAvalancheRemoveContact,
	}
}

// contactParams wraps the contact payload of the mutating methods.
type contactParams struct {
	Contact contacts.Contact `json:"contact"`
}

// removeContactParams carries the contact ID to delete.
type removeContactParams struct {
	ID string `json:"id"`
}

func (h *ContactHandler) Handle(ctx context.Context, req *Request) Outcome {
	switch req.Method {
	case MethodAvalancheGetContacts:
		list, err := h.book.List()
		if err != nil {
			return Failed(ErrInternal(err))
		}
		return Resolved(list)

	case MethodAvalancheCreateContact:
		var params contactParams
		if rpcErr := parseParams(req, &params); rpcErr != nil {
			return Failed(rpcErr)
		}
		if params.Contact.Name == "" {
			return Failed(ErrInvalidParams("contact name is required"))
		}
		return Pending(params)

	case MethodAvalancheUpdateContact:
		var params contactParams
		if rpcErr := parseParams(req, &params); rpcErr != nil {
			return Failed(rpcErr)
		}
		if params.Contact.ID == "" {
			return Failed(ErrInvalidParams("contact id is required"))
		}
		if _, err := h.book.Get(params.Contact.ID); err != nil {
			return Failed(ErrResourceNotFound("contact %s not found", params.Contact.ID))
		}
		return Pending(params)

	case MethodAvalancheRemoveContact:
		var params removeContactParams
		if rpcErr := parseParams(req, &params); rpcErr != nil {
			return Failed(rpcErr)
		}
		if params.ID == "" {
			return Failed(ErrInvalidParams("contact id is required"))
		}
		if _, err := h.book.Get(params.ID); err != nil {
			return Failed(ErrResourceNotFound("contact %s not found", params.ID))
		}
		return Pending(params)
	}
	return Failed(ErrMethodNotSupported(req.Method))
}

func (h *ContactHandler) Approve(ctx context.Context, req *Request, displayData interface{}) Outcome {
	switch req.Method {
	case MethodAvalancheCreateContact:
		params, err := decodeDisplayData[contactParams](displayData)
		if err != nil {
			return Failed(ErrInternal(err))
		}
		created, err := h.book.Create(params.Contact)
		if err != nil {
			return Failed(contactError(err))
		}
		return Resolved(created)

	case MethodAvalancheUpdateContact:
		params, err := decodeDisplayData[contactParams](displayData)
		if err != nil {
			return Failed(ErrInternal(err))
		}
		updated, err := h.book.Update(params.Contact)
		if err != nil {
			return Failed(contactError(err))
		}
		return Resolved(updated)

	case MethodAvalancheRemoveContact:
		params, err := decodeDisplayData[removeContactParams](displayData)
		if err != nil {
			return Failed(ErrInternal(err))
		}
		if err := h.book.Delete(params.ID); err != nil {
			return Failed(contactError(err))
		}
		return Resolved(nil)
	}
	return Failed(ErrMethodNotSupported(req.Method))
}

// contactError maps address book failures to RPC errors.
func contactError(err error) *Error {
	if strings.Contains(err.Error(), "not found") {
		return ErrResourceNotFound("%v", err)
	}
	return ErrInvalidParams("%v", err)
}
