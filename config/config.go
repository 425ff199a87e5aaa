package config

import (
	"fmt"
	"os"

	"github.com/spf13/viper"
)

// Config holds the application configuration
type Config struct {
	VenueBaseURL      string
	VenueAPIKey       string
	Network           string
	NetworkPassphrase string
	HorizonURL        string
	LedgerBaseURL     string
	LedgerToken       string
	JournalPath       string
}

var globalConfig *Config

// Load reads configuration from environment variables and config file
func Load() (*Config, error) {
	viper.SetConfigName(".levsek-swap")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("$HOME")
	viper.AddConfigPath(".")

	// Test network defaults; production use overrides all of these.
	viper.SetDefault("venue_base_url", "https://api.soroswap.finance")
	viper.SetDefault("network", "testnet")
	viper.SetDefault("network_passphrase", "Test SDF Network ; September 2015")
	viper.SetDefault("horizon_url", "https://horizon-testnet.stellar.org")
	viper.SetDefault("ledger_base_url", "https://api.levsek.app")

	// Read from environment variables
	viper.SetEnvPrefix("LEVSEK")
	viper.AutomaticEnv()

	// Read config file (optional)
	_ = viper.ReadInConfig()

	cfg := &Config{
		VenueBaseURL:      viper.GetString("venue_base_url"),
		VenueAPIKey:       viper.GetString("venue_api_key"),
		Network:           viper.GetString("network"),
		NetworkPassphrase: viper.GetString("network_passphrase"),
		HorizonURL:        viper.GetString("horizon_url"),
		LedgerBaseURL:     viper.GetString("ledger_base_url"),
		LedgerToken:       viper.GetString("ledger_token"),
		JournalPath:       viper.GetString("journal_path"),
	}

	if cfg.VenueAPIKey == "" {
		return nil, fmt.Errorf("venue API key not found. Please set LEVSEK_VENUE_API_KEY environment variable or create a .levsek-swap.yaml config file")
	}

	globalConfig = cfg
	return cfg, nil
}

// Get returns the global configuration
func Get() *Config {
	if globalConfig == nil {
		cfg, err := Load()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
			os.Exit(1)
		}
		return cfg
	}
	return globalConfig
}

// Set updates the global configuration
func Set(cfg *Config) {
	globalConfig = cfg
}
