package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// CurrencySeed is one row of currency master data as written in the seed file
type CurrencySeed struct {
	Code        string `yaml:"code"`
	NumericCode int    `yaml:"numeric_code"`
	MinorUnit   int    `yaml:"minor_unit"`
	Name        string `yaml:"name"`
}

// CurrenciesConfig is the root of the currency seed file
type CurrenciesConfig struct {
	Currencies []CurrencySeed `yaml:"currencies"`
}

// LoadCurrencies loads currency master data from a YAML file
func LoadCurrencies(path string) (*CurrenciesConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read currencies file: %w", err)
	}
	return ParseCurrencies(data)
}

// ParseCurrencies parses and validates currency seed YAML
func ParseCurrencies(data []byte) (*CurrenciesConfig, error) {
	var cfg CurrenciesConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse currencies: %w", err)
	}

	for i := range cfg.Currencies {
		cfg.Currencies[i].Code = strings.ToUpper(strings.TrimSpace(cfg.Currencies[i].Code))
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the seed rows for obvious mistakes. ISO code validity is
// checked later by the currency service.
func (c *CurrenciesConfig) Validate() error {
	if len(c.Currencies) == 0 {
		return fmt.Errorf("at least one currency must be configured")
	}

	seen := make(map[string]bool, len(c.Currencies))
	for _, cur := range c.Currencies {
		if len(cur.Code) != 3 {
			return fmt.Errorf("currency code %q must be 3 letters", cur.Code)
		}
		if cur.Name == "" {
			return fmt.Errorf("name is required for currency %s", cur.Code)
		}
		if cur.MinorUnit < 0 || cur.MinorUnit > 4 {
			return fmt.Errorf("minor_unit for currency %s must be between 0 and 4", cur.Code)
		}
		if seen[cur.Code] {
			return fmt.Errorf("duplicate currency %s", cur.Code)
		}
		seen[cur.Code] = true
	}
	return nil
}
