// Package config holds the environment variable names and network selection
// shared by the CLI commands.
package config

import "fmt"

// Environment variable names for the signer CLI.
const (
	EnvNetwork  = "FILSIGNER_NETWORK"
	EnvLanguage = "FILSIGNER_MNEMONIC_LANGUAGE"
	EnvPath     = "FILSIGNER_DERIVATION_PATH"
	EnvVerbose  = "FILSIGNER_VERBOSE"
)

// NetworkName selects the address network prefix.
type NetworkName string

const (
	NetworkMainnet NetworkName = "mainnet"
	NetworkTestnet NetworkName = "testnet"
)

// DefaultDerivationPath is the conventional first mainnet wallet path.
const DefaultDerivationPath = "m/44'/461'/0'/0/0"

// IsTestnet maps a network name to the testnet flag the key derivation and
// recovery entry points take.
func IsTestnet(name NetworkName) (bool, error) {
	switch name {
	case NetworkMainnet:
		return false, nil
	case NetworkTestnet:
		return true, nil
	default:
		return false, fmt.Errorf("unsupported network %q", name)
	}
}
