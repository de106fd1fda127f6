// Package artifacts loads compiled contract artifacts produced by the Solidity toolchain
// (Hardhat layout, Foundry bytecode objects are accepted too).
package artifacts

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

var (
	ErrArtifactNotFound  = errors.New("artifact not found")
	ErrAmbiguousArtifact = errors.New("multiple artifacts match contract name")
	ErrEmptyBytecode     = errors.New("artifact has no bytecode")
	ErrUnlinkedBytecode  = errors.New("artifact bytecode has unlinked libraries")
)

// Artifact is a compiled contract ready to deploy
type Artifact struct {
	ContractName string
	SourceName   string
	Path         string
	ABI          abi.ABI
	Bytecode     []byte
}

type artifactFile struct {
	ContractName string          `json:"contractName"`
	SourceName   string          `json:"sourceName"`
	ABI          json.RawMessage `json:"abi"`
	Bytecode     bytecode        `json:"bytecode"`
}

// bytecode handles both a plain hex string and an object with an "object" field.
type bytecode string

func (b *bytecode) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*b = bytecode(s)
		return nil
	}

	var obj struct {
		Object string `json:"object"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return fmt.Errorf("bytecode must be a string or object with 'object' field")
	}
	*b = bytecode(obj.Object)
	return nil
}

// Load finds the artifact for contractName under dir and parses it.
func Load(dir, contractName string) (*Artifact, error) {
	path, err := Find(dir, contractName)
	if err != nil {
		return nil, err
	}
	return LoadFile(path)
}

// Find returns the path of the single <contractName>.json artifact under dir.
// Hardhat build-info and debug files are ignored.
func Find(dir, contractName string) (string, error) {
	want := contractName + ".json"
	var matches []string

	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if d.Name() == "build-info" {
				return filepath.SkipDir
			}
			return nil
		}
		if d.Name() == want {
			matches = append(matches, path)
		}
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("failed to scan artifacts in %s: %w", dir, err)
	}

	switch len(matches) {
	case 0:
		return "", fmt.Errorf("%w: %s in %s", ErrArtifactNotFound, contractName, dir)
	case 1:
		return matches[0], nil
	default:
		return "", fmt.Errorf("%w: %s (%s)", ErrAmbiguousArtifact, contractName, strings.Join(matches, ", "))
	}
}

// LoadFile parses a single artifact file.
func LoadFile(path string) (*Artifact, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read artifact: %w", err)
	}

	var file artifactFile
	if err := json.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("failed to parse artifact %s: %w", path, err)
	}

	parsedABI, err := abi.JSON(bytes.NewReader(file.ABI))
	if err != nil {
		return nil, fmt.Errorf("failed to parse ABI in %s: %w", path, err)
	}

	code, err := decodeBytecode(string(file.Bytecode))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	name := file.ContractName
	if name == "" {
		name = strings.TrimSuffix(filepath.Base(path), ".json")
	}

	return &Artifact{
		ContractName: name,
		SourceName:   file.SourceName,
		Path:         path,
		ABI:          parsedABI,
		Bytecode:     code,
	}, nil
}

func decodeBytecode(s string) ([]byte, error) {
	s = strings.TrimSpace(s)
	if strings.Contains(s, "__$") {
		return nil, ErrUnlinkedBytecode
	}
	if s == "" || s == "0x" {
		return nil, ErrEmptyBytecode
	}
	if !strings.HasPrefix(s, "0x") {
		s = "0x" + s
	}
	code, err := hexutil.Decode(s)
	if err != nil {
		return nil, fmt.Errorf("invalid bytecode: %w", err)
	}
	return code, nil
}
