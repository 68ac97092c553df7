// Package config provides configuration management for the rijndael CLI tool
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/Davincible/rijndael/internal/validation"
	"github.com/Davincible/rijndael/pkg/crypto/modes"
	"github.com/spf13/afero"
)

// Config represents the main configuration structure
type Config struct {
	Version  string          `json:"version"`
	Defaults DefaultSettings `json:"defaults"`
	KDF      KDFConfig       `json:"kdf"`
	Security SecurityConfig  `json:"security"`
	UI       UIConfig        `json:"ui"`
	Storage  StorageConfig   `json:"storage"`
}

// DefaultSettings are used when the matching flag is not given
type DefaultSettings struct {
	KeyBits   int    `json:"key_bits"`   // Default: 256
	BlockBits int    `json:"block_bits"` // Default: 128
	Modulus   string `json:"modulus"`    // Default: 0x1B
	Mode      string `json:"mode"`       // Default: CBC
	Padding   string `json:"padding"`    // Default: PKCS7
	ChunkSize int    `json:"chunk_size"` // 0 selects the library default
	Workers   int    `json:"workers"`    // 0 selects GOMAXPROCS
}

// KDFConfig controls passphrase key derivation
type KDFConfig struct {
	Iterations int `json:"iterations"` // PBKDF2-SHA256 rounds
	SaltSize   int `json:"salt_size"`  // Bytes
}

// SecurityConfig contains security-related settings
type SecurityConfig struct {
	MinPassphraseLength int  `json:"min_passphrase_length"`
	ShowFingerprint     bool `json:"show_fingerprint"` // Print key fingerprints
}

// UIConfig contains user interface settings
type UIConfig struct {
	UseColor  bool   `json:"use_color"`
	Verbosity string `json:"verbosity"` // quiet, normal, verbose
}

// StorageConfig contains output file settings
type StorageConfig struct {
	FilePermissions string `json:"file_permissions"` // Octal, e.g. 0600
}

// ConfigManager manages configuration loading and saving
type ConfigManager struct {
	fs         afero.Fs
	config     *Config
	configPath string
}

// NewConfigManager loads the configuration from the default location on fs,
// writing a default file when none exists.
func NewConfigManager(fs afero.Fs) (*ConfigManager, error) {
	configPath, err := getConfigPath()
	if err != nil {
		return nil, err
	}
	return NewConfigManagerAt(fs, configPath)
}

// NewConfigManagerAt is NewConfigManager with an explicit path.
func NewConfigManagerAt(fs afero.Fs, configPath string) (*ConfigManager, error) {
	cm := &ConfigManager{
		fs:         fs,
		configPath: configPath,
	}

	err := cm.LoadConfig()
	switch {
	case err == nil:
	case errors.Is(err, os.ErrNotExist):
		cm.config = DefaultConfig()
		if err := cm.SaveConfig(); err != nil {
			return nil, fmt.Errorf("failed to save default config: %w", err)
		}
	default:
		return nil, err
	}

	return cm, nil
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Version: "1.0.0",
		Defaults: DefaultSettings{
			KeyBits:   256,
			BlockBits: 128,
			Modulus:   "0x1B",
			Mode:      modes.CBC.String(),
			Padding:   modes.PKCS7.String(),
		},
		KDF: KDFConfig{
			Iterations: 210000,
			SaltSize:   16,
		},
		Security: SecurityConfig{
			MinPassphraseLength: 8,
			ShowFingerprint:     true,
		},
		UI: UIConfig{
			UseColor:  true,
			Verbosity: "normal",
		},
		Storage: StorageConfig{
			FilePermissions: "0600",
		},
	}
}

// LoadConfig loads the configuration from disk
func (cm *ConfigManager) LoadConfig() error {
	data, err := afero.ReadFile(cm.fs, cm.configPath)
	if err != nil {
		return err
	}

	config := DefaultConfig()
	if err := json.Unmarshal(data, config); err != nil {
		return fmt.Errorf("failed to parse config: %w", err)
	}

	cm.config = config
	return nil
}

// SaveConfig saves the configuration to disk
func (cm *ConfigManager) SaveConfig() error {
	configDir := filepath.Dir(cm.configPath)
	if err := cm.fs.MkdirAll(configDir, 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := json.MarshalIndent(cm.config, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := afero.WriteFile(cm.fs, cm.configPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

// GetConfig returns the current configuration
func (cm *ConfigManager) GetConfig() *Config {
	return cm.config
}

// SetConfig updates the configuration
func (cm *ConfigManager) SetConfig(config *Config) {
	cm.config = config
}

// Path returns the file the configuration is read from
func (cm *ConfigManager) Path() string {
	return cm.configPath
}

// Validate checks every setting with the same parsers the commands use
func (cm *ConfigManager) Validate() error {
	return cm.config.Validate()
}

// Validate checks every setting with the same parsers the commands use
func (c *Config) Validate() error {
	d := c.Defaults
	if err := validation.ValidateBits("key", d.KeyBits); err != nil {
		return fmt.Errorf("defaults.key_bits: %w", err)
	}
	if err := validation.ValidateBits("block", d.BlockBits); err != nil {
		return fmt.Errorf("defaults.block_bits: %w", err)
	}
	if _, err := validation.ParseModulus(d.Modulus); err != nil {
		return fmt.Errorf("defaults.modulus: %w", err)
	}
	if _, err := modes.ParseMode(d.Mode); err != nil {
		return fmt.Errorf("defaults.mode: %w", err)
	}
	if _, err := modes.ParsePadding(d.Padding); err != nil {
		return fmt.Errorf("defaults.padding: %w", err)
	}
	if err := validation.ValidateChunkSize(d.ChunkSize); err != nil {
		return fmt.Errorf("defaults.chunk_size: %w", err)
	}
	if d.Workers < 0 {
		return fmt.Errorf("defaults.workers cannot be negative (got %d)", d.Workers)
	}

	if c.KDF.Iterations < 1000 {
		return fmt.Errorf("kdf.iterations must be at least 1000 (got %d)", c.KDF.Iterations)
	}
	if c.KDF.SaltSize < 8 || c.KDF.SaltSize > 64 {
		return fmt.Errorf("kdf.salt_size must be between 8 and 64 bytes (got %d)", c.KDF.SaltSize)
	}

	switch c.UI.Verbosity {
	case "quiet", "normal", "verbose":
	default:
		return fmt.Errorf("ui.verbosity must be quiet, normal or verbose (got %q)", c.UI.Verbosity)
	}

	if _, err := c.FileMode(); err != nil {
		return err
	}
	return nil
}

// FileMode parses storage.file_permissions
func (c *Config) FileMode() (os.FileMode, error) {
	perm, err := strconv.ParseUint(c.Storage.FilePermissions, 8, 32)
	if err != nil || perm > 0o777 {
		return 0, fmt.Errorf("storage.file_permissions must be an octal mode like 0600 (got %q)", c.Storage.FilePermissions)
	}
	return os.FileMode(perm), nil
}

// getConfigPath returns the configuration file path
func getConfigPath() (string, error) {
	if customPath := os.Getenv("RIJNDAEL_CONFIG"); customPath != "" {
		return customPath, nil
	}

	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		return filepath.Join(xdgConfig, "rijndael", "config.json"), nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}

	return filepath.Join(homeDir, ".config", "rijndael", "config.json"), nil
}
