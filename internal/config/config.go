package config

import (
	"fmt"
	"os"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/algebank/algebank/internal/bank"
)

// FileName is the config file at the root of a workspace.
const FileName = "algebank.yaml"

// Config represents the top-level algebank.yaml configuration.
type Config struct {
	Bank   BankConfig   `yaml:"bank"`
	Loan   LoanConfig   `yaml:"loan"`
	Matrix MatrixConfig `yaml:"matrix"`
	Git    GitConfig    `yaml:"git"`
}

// BankConfig identifies the simulated bank. Scenarios may override both fields.
type BankConfig struct {
	Name        string `yaml:"name"`
	Fingerprint string `yaml:"fingerprint,omitempty"`
}

// LoanConfig holds the loan policy percentages.
type LoanConfig struct {
	CeilingPercentPerRank float64 `yaml:"ceiling_percent_per_rank"`
	InterestPercent       float64 `yaml:"interest_percent"`
}

// MatrixConfig controls matrix output.
type MatrixConfig struct {
	FormatWidth int `yaml:"format_width"`
}

// GitConfig controls git integration.
type GitConfig struct {
	AutoCommit  bool   `yaml:"auto_commit"`
	AuthorName  string `yaml:"author_name"`
	AuthorEmail string `yaml:"author_email"`
}

// Load reads an algebank.yaml file from disk.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return &cfg, nil
}

// Save writes a Config to a YAML file.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// Default returns a Config with the stock loan policy for a new workspace.
func Default(bankName string) *Config {
	return &Config{
		Bank: BankConfig{
			Name: bankName,
		},
		Loan: LoanConfig{
			CeilingPercentPerRank: 10,
			InterestPercent:       10,
		},
		Matrix: MatrixConfig{
			FormatWidth: 7,
		},
		Git: GitConfig{
			AutoCommit:  false,
			AuthorName:  "Algebank Simulator",
			AuthorEmail: "simulator@algebank.dev",
		},
	}
}

// LoanPolicy converts the loan section. Zero percentages fall back to the
// bank defaults.
func (c *Config) LoanPolicy() bank.LoanPolicy {
	p := bank.DefaultLoanPolicy()
	if c.Loan.CeilingPercentPerRank > 0 {
		p.CeilingPercentPerRank = decimal.NewFromFloat(c.Loan.CeilingPercentPerRank)
	}
	if c.Loan.InterestPercent > 0 {
		p.InterestPercent = decimal.NewFromFloat(c.Loan.InterestPercent)
	}
	return p
}
