package evm

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/umbracle/ethgo"
	"github.com/umbracle/ethgo/abi"
	"github.com/umbracle/ethgo/wallet"
)

// LoadABI reads a contract artifact from path and parses its interface description.
func LoadABI(path string) (*abi.ABI, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read abi file: %w", err)
	}
	return ParseABI(data)
}

// ParseABI accepts either a compiler artifact with an "abi" field or a bare ABI array.
func ParseABI(data []byte) (*abi.ABI, error) {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '[' {
		return newABI(data)
	}

	var artifact struct {
		ABI json.RawMessage `json:"abi"`
	}
	if err := json.Unmarshal(data, &artifact); err != nil {
		return nil, fmt.Errorf("failed to parse abi file: %w", err)
	}
	if len(artifact.ABI) == 0 || string(artifact.ABI) == "null" {
		return nil, fmt.Errorf("abi file has no abi field")
	}
	return newABI(artifact.ABI)
}

func newABI(data []byte) (*abi.ABI, error) {
	a, err := abi.NewABI(string(data))
	if err != nil {
		return nil, fmt.Errorf("failed to parse abi: %w", err)
	}
	return a, nil
}

// ParseKey decodes a hex private key, with or without 0x prefix.
func ParseKey(hexKey string) (*wallet.Key, error) {
	raw, err := hex.DecodeString(strings.TrimPrefix(strings.TrimSpace(hexKey), "0x"))
	if err != nil {
		return nil, fmt.Errorf("invalid private key: %w", err)
	}
	key, err := wallet.NewWalletFromPrivKey(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid private key: %w", err)
	}
	return key, nil
}

// ParseAddress validates and decodes a 20-byte hex address.
func ParseAddress(s string) (ethgo.Address, error) {
	s = strings.TrimSpace(s)
	raw := strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
	if len(raw) != 40 {
		return ethgo.Address{}, fmt.Errorf("invalid address %q", s)
	}
	if _, err := hex.DecodeString(raw); err != nil {
		return ethgo.Address{}, fmt.Errorf("invalid address %q", s)
	}
	return ethgo.HexToAddress(s), nil
}
