package evm

import (
	"encoding/hex"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseABI(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr string
	}{
		{"artifact", `{"contractName":"Marketplace","abi":` + marketplaceABI + `,"bytecode":"0x"}`, ""},
		{"bare array", marketplaceABI, ""},
		{"missing abi field", `{"contractName":"Marketplace"}`, "no abi field"},
		{"null abi field", `{"abi":null}`, "no abi field"},
		{"not json", `abi: []`, "failed to parse abi file"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, err := ParseABI([]byte(tt.input))
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.NotNil(t, a.GetMethod("modelCount"))
			assert.NotNil(t, a.GetMethod("listModel"))
		})
	}
}

func TestLoadABI(t *testing.T) {
	path := filepath.Join(t.TempDir(), "Marketplace.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"abi":`+marketplaceABI+`}`), 0o600))

	a, err := LoadABI(path)
	require.NoError(t, err)
	assert.NotNil(t, a.GetMethod("listModel"))

	_, err = LoadABI(filepath.Join(t.TempDir(), "missing.json"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read abi file")
}

func TestParseKey(t *testing.T) {
	plain, err := ParseKey(testPrivateKey)
	require.NoError(t, err)

	prefixed, err := ParseKey("0x" + testPrivateKey)
	require.NoError(t, err)
	assert.Equal(t, plain.Address(), prefixed.Address())

	_, err = ParseKey("not-hex")
	assert.Error(t, err)
}

func TestParseAddress(t *testing.T) {
	addr, err := ParseAddress(testContract)
	require.NoError(t, err)
	assert.Equal(t, "5fbdb2315678afecb367f032d93f642f64180aa3", hex.EncodeToString(addr[:]))

	for _, bad := range []string{"", "0x1234", "0xZZbDB2315678afecb367f032d93F642f64180aa3"} {
		_, err := ParseAddress(bad)
		assert.Error(t, err, bad)
	}
}

