package wallet

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts"
	ethtypes "github.com/ethereum/go-ethereum/core/types"
	gethcrypto "github.com/ethereum/go-ethereum/crypto"

	"github.com/frostlabs/frostgate/internal/log"
)

// SignEVMTx signs an EVM transaction with the active account's key for
// the given chain ID.
func (s *Service) SignEVMTx(tx *ethtypes.Transaction, chainID *big.Int) (*ethtypes.Transaction, error) {
	s.mu.RLock()
	index := s.active
	s.mu.RUnlock()

	key, err := s.master.DeriveEVM(index)
	if err != nil {
		return nil, fmt.Errorf("derive evm key: %w", err)
	}
	priv, err := gethcrypto.ToECDSA(key.PrivateKeyBytes())
	if err != nil {
		return nil, fmt.Errorf("evm key: %w", err)
	}
	defer priv.D.SetInt64(0)

	signed, err := ethtypes.SignTx(tx, ethtypes.LatestSignerForChainID(chainID), priv)
	if err != nil {
		return nil, fmt.Errorf("sign evm tx: %w", err)
	}

	log.Wallet.Debug().
		Str("tx_hash", signed.Hash().Hex()).
		Uint64("chain_id", chainID.Uint64()).
		Msg("evm transaction signed")
	return signed, nil
}

// SignPersonalMessage signs data per EIP-191 ("Ethereum Signed Message"
// prefix) with the active account's key. The returned 65-byte signature
// uses the 27/28 recovery id convention.
func (s *Service) SignPersonalMessage(data []byte) ([]byte, error) {
	return s.SignDigest(accounts.TextHash(data))
}

// SignDigest signs a raw 32-byte digest with the active account's EVM key.
// The returned 65-byte signature uses the 27/28 recovery id convention.
func (s *Service) SignDigest(digest []byte) ([]byte, error) {
	if len(digest) != 32 {
		return nil, fmt.Errorf("digest must be 32 bytes, got %d", len(digest))
	}

	s.mu.RLock()
	index := s.active
	s.mu.RUnlock()

	key, err := s.master.DeriveEVM(index)
	if err != nil {
		return nil, fmt.Errorf("derive evm key: %w", err)
	}
	priv, err := gethcrypto.ToECDSA(key.PrivateKeyBytes())
	if err != nil {
		return nil, fmt.Errorf("evm key: %w", err)
	}
	defer priv.D.SetInt64(0)

	sig, err := gethcrypto.Sign(digest, priv)
	if err != nil {
		return nil, fmt.Errorf("sign digest: %w", err)
	}
	sig[64] += 27
	return sig, nil
}
