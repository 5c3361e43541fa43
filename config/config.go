// Package config holds the static deployment configuration: the RPC endpoint
// and the contract addresses the framework is wired to. Values come from a
// config file with env var overrides; defaults target Ethereum mainnet.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/viper"
)

// Ethereum mainnet deployment defaults.
const (
	DefaultChainID       = 1
	DefaultWrappedNative = "0xC02aaA39b223FE8D0A0e5C4F27eAD9083C756Cc2"
	DefaultToken         = "0x6B175474E89094C44Da98b954EedeAC495271d0F"
	DefaultRouter        = "0x7a250d5630B4cF539739dF2C5dAcb4c659F2488D"
)

// Config is the static deployment configuration.
//
// WARNING: PrivateKey is sensitive and should only be provided through the
// environment, never logged or committed in file configuration.
type Config struct {
	RPCURL        string `mapstructure:"rpc_url" yaml:"rpc_url"`                               // The RPC endpoint of the EVM node.
	ChainID       int64  `mapstructure:"chain_id" yaml:"chain_id"`                             // The chain ID transactions are signed for.
	WrappedNative string `mapstructure:"wrapped_native_address" yaml:"wrapped_native_address"` // The wrapped-native token contract.
	Token         string `mapstructure:"token_address" yaml:"token_address"`                   // The tracked fungible token contract.
	Router        string `mapstructure:"router_address" yaml:"router_address"`                 // The swap router contract.
	PrivateKey    string `mapstructure:"private_key" yaml:"private_key,omitempty"`             // Secret: hex private key for the keyed provider.
}

// envBindings maps config keys to the environment variables that can provide
// their values.
var envBindings = map[string]string{
	"rpc_url":                "WALLET_RPC_URL",
	"chain_id":               "WALLET_CHAIN_ID",
	"wrapped_native_address": "WALLET_WRAPPED_NATIVE_ADDRESS",
	"token_address":          "WALLET_TOKEN_ADDRESS",
	"router_address":         "WALLET_ROUTER_ADDRESS",
	"private_key":            "WALLET_PRIVATE_KEY",
}

// Load loads the config from the file path, falling back to env vars if the
// file does not exist. Env vars that are set override values loaded from the
// file. A private_key entry in the file is rejected; the key must come from
// the environment.
func Load(filePath string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(filePath)

	setDefaults(v)
	if err := bindEnvs(v); err != nil {
		return nil, err
	}

	if _, err := os.Stat(filePath); !errors.Is(err, fs.ErrNotExist) {
		if err := v.ReadInConfig(); err != nil {
			return nil, err
		}
		if v.InConfig("private_key") {
			return nil, fmt.Errorf("private_key must not be set in %s, use %s instead",
				filePath, envBindings["private_key"])
		}
	}

	return unmarshal(v)
}

// LoadEnv loads the config from environment variables and defaults alone.
func LoadEnv() (*Config, error) {
	v := viper.New()

	setDefaults(v)
	if err := bindEnvs(v); err != nil {
		return nil, err
	}

	return unmarshal(v)
}

func unmarshal(v *viper.Viper) (*Config, error) {
	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("chain_id", DefaultChainID)
	v.SetDefault("wrapped_native_address", DefaultWrappedNative)
	v.SetDefault("token_address", DefaultToken)
	v.SetDefault("router_address", DefaultRouter)
}

// bindEnvs binds the environment variables to the viper instance.
func bindEnvs(v *viper.Viper) error {
	for key, env := range envBindings {
		if err := v.BindEnv(key, env); err != nil {
			return err
		}
	}

	return nil
}

// Validate checks that the configuration is complete and the contract
// addresses are well formed and non-zero.
func (c *Config) Validate() error {
	if c.RPCURL == "" {
		return errors.New("rpc_url is required")
	}
	if c.ChainID <= 0 {
		return errors.New("chain_id must be positive")
	}

	for name, addr := range map[string]string{
		"wrapped_native_address": c.WrappedNative,
		"token_address":          c.Token,
		"router_address":         c.Router,
	} {
		if !common.IsHexAddress(addr) {
			return fmt.Errorf("%s is not a valid address: %q", name, addr)
		}
		if common.HexToAddress(addr) == (common.Address{}) {
			return fmt.Errorf("%s must not be the zero address", name)
		}
	}

	return nil
}

// WrappedNativeAddress returns the wrapped-native contract address.
func (c *Config) WrappedNativeAddress() common.Address {
	return common.HexToAddress(c.WrappedNative)
}

// TokenAddress returns the tracked token contract address.
func (c *Config) TokenAddress() common.Address {
	return common.HexToAddress(c.Token)
}

// RouterAddress returns the swap router contract address.
func (c *Config) RouterAddress() common.Address {
	return common.HexToAddress(c.Router)
}
