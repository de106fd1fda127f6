// Package bcconfig renders and writes the generated bc-config.<network>.<chainId>.ts file
// that front-end code imports to find the deployed bonding curve contract.
package bcconfig

import (
	"fmt"
	"math/big"
	"os"
	"path/filepath"
)

const (
	// UnknownNetwork is the name providers report for chains they cannot name.
	UnknownNetwork = "unknown"
	// LocalNetwork replaces UnknownNetwork in generated file names.
	LocalNetwork = "local"
)

const template = `export const contractAddress = "%s";
export const ownerAddress = "%s";`

// ResolveNetworkName maps the provider's network name to the label used in file names
func ResolveNetworkName(name string) string {
	if name == UnknownNetwork {
		return LocalNetwork
	}
	return name
}

// FileName returns the relative path of the config file for a network
func FileName(networkName string, chainID *big.Int) string {
	return fmt.Sprintf("./bc-config.%s.%s.ts", ResolveNetworkName(networkName), chainIDString(chainID))
}

// Render returns the file content for a deployed contract and its owner
func Render(contractAddress, ownerAddress string) string {
	return fmt.Sprintf(template, contractAddress, ownerAddress)
}

// Write renders the config and writes it under dir, replacing any existing file.
// It returns the path written.
func Write(dir, networkName string, chainID *big.Int, contractAddress, ownerAddress string) (string, error) {
	path := filepath.Join(dir, FileName(networkName, chainID))
	if err := os.WriteFile(path, []byte(Render(contractAddress, ownerAddress)), 0644); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", path, err)
	}
	return path, nil
}

func chainIDString(chainID *big.Int) string {
	if chainID == nil {
		return "0"
	}
	return chainID.String()
}
