package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"royaltychain/crypto"
)

type Config struct {
	RPCAddress        string `toml:"RPCAddress"`
	DataDir           string `toml:"DataDir"`
	NetworkName       string `toml:"NetworkName"`
	AdminAddress      string `toml:"AdminAddress"`
	AdminKeystorePath string `toml:"AdminKeystorePath"`
}

// Load loads the configuration from the given path, creating a default file
// with a freshly generated administrator key when none exists yet.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return createDefault(path)
	}

	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, err
	}

	if strings.TrimSpace(cfg.NetworkName) == "" {
		cfg.NetworkName = "royalty-local"
	}
	if strings.TrimSpace(cfg.RPCAddress) == "" {
		cfg.RPCAddress = ":8080"
	}
	if strings.TrimSpace(cfg.DataDir) == "" {
		cfg.DataDir = "./royalty-data"
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	addr := strings.TrimSpace(c.AdminAddress)
	if addr == "" {
		return fmt.Errorf("config: AdminAddress is required")
	}
	decoded, err := crypto.DecodeAddress(addr)
	if err != nil {
		return fmt.Errorf("config: invalid AdminAddress: %w", err)
	}
	if decoded.Prefix() != crypto.RoyaltyPrefix {
		return fmt.Errorf("config: AdminAddress must use the %q prefix", crypto.RoyaltyPrefix)
	}
	return nil
}

// Admin returns the genesis administrator as a raw 20-byte identity.
func (c *Config) Admin() ([20]byte, error) {
	if err := c.validate(); err != nil {
		return [20]byte{}, err
	}
	decoded, err := crypto.DecodeAddress(strings.TrimSpace(c.AdminAddress))
	if err != nil {
		return [20]byte{}, err
	}
	return decoded.Raw(), nil
}

// createDefault creates and saves a default configuration file. The generated
// administrator key lands in a keystore next to the config file.
func createDefault(path string) (*Config, error) {
	key, err := crypto.GeneratePrivateKey()
	if err != nil {
		return nil, err
	}

	keystorePath := defaultKeystorePath(path)
	if err := crypto.SaveToKeystore(keystorePath, key, ""); err != nil {
		return nil, err
	}

	cfg := &Config{
		RPCAddress:        ":8080",
		DataDir:           "./royalty-data",
		NetworkName:       "royalty-local",
		AdminAddress:      key.PubKey().Address().String(),
		AdminKeystorePath: keystorePath,
	}

	if err := persist(path, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func defaultKeystorePath(configPath string) string {
	dir := filepath.Dir(configPath)
	return filepath.Join(dir, "admin.keystore")
}

func persist(path string, cfg *Config) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return err
		}
	}
	file, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return err
	}
	defer file.Close()
	return toml.NewEncoder(file).Encode(cfg)
}
