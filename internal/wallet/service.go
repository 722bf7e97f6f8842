package wallet

import (
	"fmt"
	"sync"

	gethcrypto "github.com/ethereum/go-ethereum/crypto"

	"github.com/frostlabs/frostgate/internal/log"
	"github.com/frostlabs/frostgate/pkg/crypto"
	"github.com/frostlabs/frostgate/pkg/types"
)

// xpScanLimit bounds the derivation scan when resolving an X/P address
// back to its key. Addresses beyond this index are treated as foreign.
const xpScanLimit = 256

// Service is the unlocked wallet. It owns the master key and answers
// derivation and signing requests. Safe for concurrent use.
type Service struct {
	mu sync.RWMutex

	ks         *Keystore
	walletName string
	master     *HDKey

	accounts []Account
	active   uint32

	// xpKeys maps derived X/P addresses to their (change, index) path.
	// Populated lazily as addresses are resolved.
	xpKeys map[types.Address][2]uint32
	// xpScanned tracks how far each change chain has been scanned.
	xpScanned [2]uint32
}

// Unlock decrypts the named wallet and derives its account addresses.
func Unlock(ks *Keystore, name string, password []byte) (*Service, error) {
	seed, entries, active, err := ks.Load(name, password)
	if err != nil {
		return nil, err
	}

	master, err := NewMasterKey(seed)
	for i := range seed {
		seed[i] = 0
	}
	if err != nil {
		return nil, err
	}

	s := &Service{
		ks:         ks,
		walletName: name,
		master:     master,
		active:     active,
		xpKeys:     make(map[types.Address][2]uint32),
	}

	for _, e := range entries {
		acct, err := s.deriveAccount(e.Index, e.Name)
		if err != nil {
			return nil, err
		}
		s.accounts = append(s.accounts, acct)
	}

	log.Wallet.Info().
		Str("wallet", name).
		Int("accounts", len(s.accounts)).
		Msg("wallet unlocked")
	return s, nil
}

// deriveAccount computes the EVM and X/P addresses for an account index.
func (s *Service) deriveAccount(index uint32, name string) (Account, error) {
	evmKey, err := s.master.DeriveEVM(index)
	if err != nil {
		return Account{}, fmt.Errorf("derive evm key %d: %w", index, err)
	}
	evmPriv, err := gethcrypto.ToECDSA(evmKey.PrivateKeyBytes())
	if err != nil {
		return Account{}, fmt.Errorf("evm key %d: %w", index, err)
	}

	xpKey, err := s.master.DeriveXP(ChangeExternal, index)
	if err != nil {
		return Account{}, fmt.Errorf("derive xp key %d: %w", index, err)
	}

	return Account{
		Index:      index,
		Name:       name,
		EVMAddress: gethcrypto.PubkeyToAddress(evmPriv.PublicKey),
		XPAddress:  xpKey.XPAddress(),
	}, nil
}

// Accounts returns all derived accounts.
func (s *Service) Accounts() []Account {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Account, len(s.accounts))
	copy(out, s.accounts)
	return out
}

// ActiveAccount returns the currently selected account.
func (s *Service) ActiveAccount() (Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, a := range s.accounts {
		if a.Index == s.active {
			return a, nil
		}
	}
	return Account{}, fmt.Errorf("active account %d not found", s.active)
}

// SelectAccount switches the active account and persists the choice.
func (s *Service) SelectAccount(index uint32) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	found := false
	for _, a := range s.accounts {
		if a.Index == index {
			found = true
			break
		}
	}
	if !found {
		return fmt.Errorf("account index %d not found", index)
	}

	if err := s.ks.SetActiveAccount(s.walletName, index); err != nil {
		return err
	}
	s.active = index
	log.Wallet.Info().Uint32("index", index).Msg("account selected")
	return nil
}

// AddAccount derives the next account and persists it.
func (s *Service) AddAccount(name string) (Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var next uint32
	for _, a := range s.accounts {
		if a.Index >= next {
			next = a.Index + 1
		}
	}
	if name == "" {
		name = fmt.Sprintf("Account %d", next+1)
	}

	acct, err := s.deriveAccount(next, name)
	if err != nil {
		return Account{}, err
	}
	if err := s.ks.AddAccount(s.walletName, AccountEntry{Index: next, Name: name}); err != nil {
		return Account{}, err
	}

	s.accounts = append(s.accounts, acct)
	return acct, nil
}

// AddressesByIndices derives X/P addresses at the given indices on the
// external (internal=false) or internal (internal=true) chain.
func (s *Service) AddressesByIndices(indices []uint32, internal bool) ([]types.Address, error) {
	change := uint32(ChangeExternal)
	if internal {
		change = ChangeInternal
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]types.Address, 0, len(indices))
	for _, idx := range indices {
		key, err := s.master.DeriveXP(change, idx)
		if err != nil {
			return nil, fmt.Errorf("derive address %d/%d: %w", change, idx, err)
		}
		addr := key.XPAddress()
		s.xpKeys[addr] = [2]uint32{change, idx}
		out = append(out, addr)
	}
	return out, nil
}

// SignerForXPAddress resolves an X/P address to its signing key.
// Returns false when the address does not belong to this wallet within
// the derivation scan limit.
func (s *Service) SignerForXPAddress(addr types.Address) (crypto.Signer, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	path, ok := s.xpKeys[addr]
	if !ok {
		if !s.scanForAddress(addr) {
			return nil, false
		}
		path = s.xpKeys[addr]
	}

	key, err := s.master.DeriveXP(path[0], path[1])
	if err != nil {
		return nil, false
	}
	signer, err := key.Signer()
	if err != nil {
		return nil, false
	}
	return signer, true
}

// scanForAddress extends the derivation scan until addr is found or the
// scan limit is reached. Caller holds the lock.
func (s *Service) scanForAddress(addr types.Address) bool {
	for _, change := range []uint32{ChangeExternal, ChangeInternal} {
		for idx := s.xpScanned[change]; idx < xpScanLimit; idx++ {
			key, err := s.master.DeriveXP(change, idx)
			if err != nil {
				continue
			}
			derived := key.XPAddress()
			s.xpKeys[derived] = [2]uint32{change, idx}
			s.xpScanned[change] = idx + 1
			if derived == addr {
				return true
			}
		}
	}
	return false
}

// Lock discards the master key. The service is unusable afterwards.
func (s *Service) Lock() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.master = nil
	s.xpKeys = nil
	log.Wallet.Info().Str("wallet", s.walletName).Msg("wallet locked")
}
