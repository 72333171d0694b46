package app

import (
	"fmt"
	"os"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"

	coreconfig "github.com/m3rciful/storebot/core/config"
	coredatabase "github.com/m3rciful/storebot/core/database"
)

// ShopConfig holds the storefront-specific settings.
type ShopConfig struct {
	AdminIDs       []int64 `yaml:"admin_ids" envconfig:"SHOP_ADMIN_IDS"`
	SupportContact string  `yaml:"support_contact" envconfig:"SHOP_SUPPORT_CONTACT"`
	PaymentDetails string  `yaml:"payment_details" envconfig:"SHOP_PAYMENT_DETAILS"`
	RetentionDays  int     `yaml:"retention_days" envconfig:"SHOP_RETENTION_DAYS"`
	ReceiptsDir    string  `yaml:"receipts_dir" envconfig:"SHOP_RECEIPTS_DIR"`
	SectionsDir    string  `yaml:"sections_dir" envconfig:"SHOP_SECTIONS_DIR"`
	Currency       string  `yaml:"currency" envconfig:"SHOP_CURRENCY"`
}

// Config aggregates core, database, and shop configuration.
type Config struct {
	Core     coreconfig.Config   `yaml:",inline"`
	Database coredatabase.Config `yaml:"database"`
	Shop     ShopConfig          `yaml:"shop"`
}

// CoreConfig exposes the embedded core configuration to the runner.
func (c *Config) CoreConfig() *coreconfig.Config {
	return &c.Core
}

// IsAdmin reports whether the user is on the admin allow-list.
func (c *Config) IsAdmin(userID int64) bool {
	for _, id := range c.Shop.AdminIDs {
		if id == userID {
			return true
		}
	}
	return false
}

// LoadConfig reads the YAML file, applies env overrides, and validates.
func LoadConfig(path string) (*Config, error) {
	var cfg Config

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse YAML config: %w", err)
	}
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process env: %w", err)
	}

	if err := coreconfig.Normalize(&cfg.Core); err != nil {
		return nil, err
	}
	if err := normalizeShop(&cfg.Shop); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func normalizeShop(shop *ShopConfig) error {
	if len(shop.AdminIDs) == 0 {
		return fmt.Errorf("shop.admin_ids must list at least one admin")
	}
	if shop.RetentionDays == 0 {
		shop.RetentionDays = 7
	}
	if shop.RetentionDays < 0 {
		return fmt.Errorf("shop.retention_days must be >= 0")
	}
	if shop.Currency == "" {
		shop.Currency = "XTR"
	}
	if shop.ReceiptsDir == "" {
		shop.ReceiptsDir = "data/receipts"
	}
	if shop.SectionsDir == "" {
		shop.SectionsDir = "data/sections"
	}
	if shop.SupportContact == "" {
		return fmt.Errorf("shop.support_contact is required")
	}
	if shop.PaymentDetails == "" {
		return fmt.Errorf("shop.payment_details is required")
	}
	return nil
}
