package wallet

import (
	"github.com/ethereum/go-ethereum/common"

	"github.com/frostlabs/frostgate/pkg/types"
)

// Account is one derived wallet identity. The same BIP-44 index yields
// an EVM address (coin type 60) and an X/P address (coin type 9000).
type Account struct {
	Index      uint32         `json:"index"`
	Name       string         `json:"name"`
	EVMAddress common.Address `json:"addressEVM"`
	XPAddress  types.Address  `json:"addressXP"`
}
