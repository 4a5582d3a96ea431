package config

import (
	"fmt"
	"os"
	"strconv"
)

// Config holds all configuration for the bridge relayer service.
type Config struct {
	// Persistence
	DBPath string

	// EVM side
	EVMRPC            string
	EVMWS             string
	EVMPrivateKey     string
	EVMBridgeContract string
	EVMBlockExplorer  string
	EVMChainID        int64

	// Solana side
	SolanaWallet         string
	SolanaRPC            string
	SolanaWS             string
	SolanaBridgeProgram  string
	SolanaBridgeAccount  string
	SolanaBlockExplorer  string

	// HTTP
	Port string
}

// Load reads configuration from environment variables.
//
// This service reads exactly the variable names below; it does not fall
// back to any other spelling. Required variables have no defaults so a
// misconfigured deployment fails fast at startup instead of silently
// running against an empty RPC URL.
func Load() (*Config, error) {
	cfg := &Config{
		DBPath: getEnv("DB_PATH", "./data/bridge.db"),

		EVMRPC:            getEnv("EVM_RPC", ""),
		EVMWS:             getEnv("EVM_WS", ""),
		EVMPrivateKey:     getEnv("EVM_PK", ""),
		EVMBridgeContract: getEnv("EVM_BRIDGE_CONTRACT", ""),
		EVMBlockExplorer:  getEnv("EVM_BLOCK_EXPLORER", ""),
		EVMChainID:        getEnvInt64("EVM_CHAIN_ID", 11155111),

		SolanaWallet:        getEnv("SOLANA_WALLET", ""),
		SolanaRPC:           getEnv("SOLANA_RPC", ""),
		SolanaWS:            getEnv("SOLANA_WS", ""),
		SolanaBridgeProgram: getEnv("SOLANA_BRIDGE_PROGRAM", ""),
		SolanaBridgeAccount: getEnv("SOLANA_BRIDGE_ACCOUNT", ""),
		SolanaBlockExplorer: getEnv("SOLANA_BLOCK_EXPLORER", ""),

		Port: getEnv("PORT", "8080"),
	}

	return cfg, nil
}

// Validate checks that the configuration has everything needed to run both
// chain adapters. Call this after Load() and before wiring up the relayer.
func (c *Config) Validate() error {
	var missing []string

	required := map[string]string{
		"EVM_RPC":                c.EVMRPC,
		"EVM_WS":                 c.EVMWS,
		"EVM_PK":                 c.EVMPrivateKey,
		"EVM_BRIDGE_CONTRACT":    c.EVMBridgeContract,
		"SOLANA_WALLET":          c.SolanaWallet,
		"SOLANA_RPC":             c.SolanaRPC,
		"SOLANA_WS":              c.SolanaWS,
		"SOLANA_BRIDGE_PROGRAM":  c.SolanaBridgeProgram,
		"SOLANA_BRIDGE_ACCOUNT":  c.SolanaBridgeAccount,
	}
	for name, value := range required {
		if value == "" {
			missing = append(missing, name)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("missing required configuration: %v", missing)
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intValue
		}
	}
	return defaultValue
}
