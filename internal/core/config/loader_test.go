package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{EnvRPCURL, EnvContractAddress, EnvPrivateKey, EnvABIPath, EnvPort, EnvLogLevel} {
		t.Setenv(key, "")
	}
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}
	return path
}

func TestLoad_EnvSubstitution(t *testing.T) {
	clearEnv(t)
	t.Setenv("TEST_NODE_URL", "http://127.0.0.1:8545")

	path := writeConfig(t, `
chain:
  rpc_url: ${TEST_NODE_URL}
  contract_address: "0x5FbDB2315678afecb367f032d93F642f64180aa3"
  private_key: "ac0974bec39a17e36ba4a6b4d238ff944bacb478cbed5efcab78d7a8"
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Chain.RPCURL != "http://127.0.0.1:8545" {
		t.Errorf("Expected RPC URL http://127.0.0.1:8545, got %s", cfg.Chain.RPCURL)
	}
}

func TestLoad_EnvOnly(t *testing.T) {
	clearEnv(t)
	t.Setenv(EnvRPCURL, "http://node:8545")
	t.Setenv(EnvContractAddress, "0x5FbDB2315678afecb367f032d93F642f64180aa3")
	t.Setenv(EnvPrivateKey, "0xdeadbeef")

	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Server.Port != 5002 {
		t.Errorf("Expected default port 5002, got %d", cfg.Server.Port)
	}
	if cfg.Chain.ABIPath != "Marketplace.json" {
		t.Errorf("Expected default abi path, got %s", cfg.Chain.ABIPath)
	}
	if cfg.Chain.GasLimit != 2_000_000 {
		t.Errorf("Expected default gas limit 2000000, got %d", cfg.Chain.GasLimit)
	}
	if cfg.Server.ReadTimeout != 15*time.Second {
		t.Errorf("Expected default read timeout 15s, got %v", cfg.Server.ReadTimeout)
	}
	if cfg.Logging.Level != "info" || cfg.Logging.Format != "text" {
		t.Errorf("Unexpected logging defaults: %+v", cfg.Logging)
	}
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	clearEnv(t)
	t.Setenv(EnvPrivateKey, "0xfromenv")
	t.Setenv(EnvPort, "6000")

	path := writeConfig(t, `
server:
  port: 8080
  read_timeout: 5s
chain:
  rpc_url: http://node:8545
  contract_address: "0x5FbDB2315678afecb367f032d93F642f64180aa3"
  private_key: "0xfromfile"
  gas_limit: 300000
rate_limit:
  rps: 0.5
  burst: 3
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Chain.PrivateKey != "0xfromenv" {
		t.Errorf("Expected env private key to win, got %s", cfg.Chain.PrivateKey)
	}
	if cfg.Server.Port != 6000 {
		t.Errorf("Expected port 6000, got %d", cfg.Server.Port)
	}
	if cfg.Server.ReadTimeout != 5*time.Second {
		t.Errorf("Expected read timeout 5s, got %v", cfg.Server.ReadTimeout)
	}
	if cfg.Chain.GasLimit != 300000 {
		t.Errorf("Expected gas limit 300000, got %d", cfg.Chain.GasLimit)
	}
	if cfg.RateLimit.RPS != 0.5 || cfg.RateLimit.Burst != 3 {
		t.Errorf("Unexpected rate limit: %+v", cfg.RateLimit)
	}
}

func TestLoad_MissingRequired(t *testing.T) {
	clearEnv(t)
	t.Setenv(EnvRPCURL, "http://node:8545")

	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err == nil {
		t.Fatal("Expected error for missing configuration")
	}
	for _, key := range []string{EnvContractAddress, EnvPrivateKey} {
		if !strings.Contains(err.Error(), key) {
			t.Errorf("Expected error to mention %s, got %v", key, err)
		}
	}
	if strings.Contains(err.Error(), EnvRPCURL) {
		t.Errorf("Did not expect %s in error: %v", EnvRPCURL, err)
	}
}

func TestLoad_InvalidPort(t *testing.T) {
	clearEnv(t)
	t.Setenv(EnvRPCURL, "http://node:8545")
	t.Setenv(EnvContractAddress, "0x5FbDB2315678afecb367f032d93F642f64180aa3")
	t.Setenv(EnvPrivateKey, "0xdeadbeef")
	t.Setenv(EnvPort, "http")

	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatal("Expected error for invalid port")
	}
}

func TestLoad_MalformedFile(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, "chain: [unterminated")

	if _, err := Load(path); err == nil {
		t.Fatal("Expected parse error")
	}
}
