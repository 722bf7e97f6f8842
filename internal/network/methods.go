package network

import "regexp"

// evmOnlyRE matches methods that only make sense on an EVM network:
// the eth_ namespace plus asset watching.
var evmOnlyRE = regexp.MustCompile(`^eth_|_watchAsset$`)

// IsEVMOnly reports whether a method requires an EVM network.
func IsEVMOnly(method string) bool {
	return evmOnlyRE.MatchString(method)
}

// Supports reports whether a method can be dispatched while the given
// network is active. Non-EVM-only methods run on any network.
func Supports(n Network, method string) bool {
	return !(IsEVMOnly(method) && n.VM != VMEVM)
}
