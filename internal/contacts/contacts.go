// Package contacts manages the wallet's address book.
package contacts

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sort"
	"sync"

	"github.com/frostlabs/frostgate/internal/log"
	"github.com/frostlabs/frostgate/internal/storage"
)

// Contact is a named address book entry. A contact carries one address
// per chain family; any of them may be empty, but not all.
type Contact struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Address   string `json:"address,omitempty"`
	AddressXP string `json:"addressXP,omitempty"`
	AddressBT string `json:"addressBTC,omitempty"`
}

// validate checks that a contact has a name and at least one address.
func (c *Contact) validate() error {
	if c.Name == "" {
		return fmt.Errorf("contact name is required")
	}
	if c.Address == "" && c.AddressXP == "" && c.AddressBT == "" {
		return fmt.Errorf("contact must have at least one address")
	}
	return nil
}

// Book is a persistent address book backed by a key-value store.
type Book struct {
	mu sync.RWMutex
	db storage.DB
}

// NewBook creates an address book over the given store.
func NewBook(db storage.DB) *Book {
	return &Book{db: db}
}

// Create adds a new contact and assigns it an ID.
func (b *Book) Create(c Contact) (*Contact, error) {
	if err := c.validate(); err != nil {
		return nil, err
	}

	id, err := newContactID()
	if err != nil {
		return nil, err
	}
	c.ID = id

	b.mu.Lock()
	defer b.mu.Unlock()

	if err := b.put(&c); err != nil {
		return nil, err
	}

	log.Contacts.Info().Str("id", c.ID).Str("name", c.Name).Msg("contact created")
	return &c, nil
}

// Update replaces an existing contact. The contact's ID must already exist.
func (b *Book) Update(c Contact) (*Contact, error) {
	if c.ID == "" {
		return nil, fmt.Errorf("contact id is required")
	}
	if err := c.validate(); err != nil {
		return nil, err
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	exists, err := b.db.Has([]byte(c.ID))
	if err != nil {
		return nil, fmt.Errorf("check contact: %w", err)
	}
	if !exists {
		return nil, fmt.Errorf("contact %s not found", c.ID)
	}

	if err := b.put(&c); err != nil {
		return nil, err
	}

	log.Contacts.Info().Str("id", c.ID).Msg("contact updated")
	return &c, nil
}

// Delete removes a contact by ID.
func (b *Book) Delete(id string) error {
	if id == "" {
		return fmt.Errorf("contact id is required")
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	exists, err := b.db.Has([]byte(id))
	if err != nil {
		return fmt.Errorf("check contact: %w", err)
	}
	if !exists {
		return fmt.Errorf("contact %s not found", id)
	}

	if err := b.db.Delete([]byte(id)); err != nil {
		return fmt.Errorf("delete contact: %w", err)
	}

	log.Contacts.Info().Str("id", id).Msg("contact deleted")
	return nil
}

// Get looks up a contact by ID.
func (b *Book) Get(id string) (*Contact, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	raw, err := b.db.Get([]byte(id))
	if err != nil {
		return nil, fmt.Errorf("contact %s not found", id)
	}

	var c Contact
	if err := json.Unmarshal(raw, &c); err != nil {
		return nil, fmt.Errorf("decode contact: %w", err)
	}
	return &c, nil
}

// List returns all contacts sorted by name.
func (b *Book) List() ([]Contact, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	var out []Contact
	err := b.db.ForEach(nil, func(key, value []byte) error {
		var c Contact
		if err := json.Unmarshal(value, &c); err != nil {
			return fmt.Errorf("decode contact %s: %w", key, err)
		}
		out = append(out, c)
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

// put encodes and stores a contact. Caller holds the lock.
func (b *Book) put(c *Contact) error {
	raw, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("encode contact: %w", err)
	}
	if err := b.db.Put([]byte(c.ID), raw); err != nil {
		return fmt.Errorf("store contact: %w", err)
	}
	return nil
}

// newContactID generates a random 16-byte hex identifier.
func newContactID() (string, error) {
	var buf [16]byte
	if _, err := rand.Read(buf[:]); err != nil {
		return "", fmt.Errorf("generate contact id: %w", err)
	}
	return hex.EncodeToString(buf[:]), nil
}
