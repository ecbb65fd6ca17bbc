package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"royaltychain/crypto"
)

func TestLoadCreatesDefaultConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, ":8080", cfg.RPCAddress)
	require.Equal(t, "royalty-local", cfg.NetworkName)
	require.NotEmpty(t, cfg.AdminAddress)

	decoded, err := crypto.DecodeAddress(cfg.AdminAddress)
	require.NoError(t, err)
	require.Equal(t, crypto.RoyaltyPrefix, decoded.Prefix())

	// The config file and keystore both landed on disk.
	_, err = os.Stat(path)
	require.NoError(t, err)
	_, err = os.Stat(cfg.AdminKeystorePath)
	require.NoError(t, err)

	// The keystore decrypts back to the configured admin address.
	key, err := crypto.LoadFromKeystore(cfg.AdminKeystorePath, "")
	require.NoError(t, err)
	require.Equal(t, cfg.AdminAddress, key.PubKey().Address().String())
}

func TestLoadExistingConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")

	created, err := Load(path)
	require.NoError(t, err)

	loaded, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, created.AdminAddress, loaded.AdminAddress)
	require.Equal(t, created.RPCAddress, loaded.RPCAddress)

	admin, err := loaded.Admin()
	require.NoError(t, err)
	require.NotEqual(t, [20]byte{}, admin)
}

func TestLoadRejectsMissingAdmin(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("RPCAddress = \":8080\"\n"), 0o600))

	_, err := Load(path)
	require.Error(t, err)
}

func TestLoadRejectsForeignPrefix(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")

	foreign := crypto.MustNewAddress("xyz", make([]byte, 20)).String()
	require.NoError(t, os.WriteFile(path, []byte("AdminAddress = \""+foreign+"\"\n"), 0o600))

	_, err := Load(path)
	require.Error(t, err)
}
