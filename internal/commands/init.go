package commands

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/algebank/algebank/internal/config"
	"github.com/algebank/algebank/internal/gitops"
)

const exampleScenario = `name: example
bank:
  fingerprint: change-me
people:
  - key: alice
    name: Alice
    age: 34
    gender: Female
    fingerprint: alice-secret
    rank: 2
  - key: bob
    name: Bob
    age: 41
    gender: Male
    fingerprint: bob-secret
    rank: 4
steps:
  - {op: create_account, key: alice-main, person: alice, fingerprint: alice-secret, password: open-sesame}
  - {op: create_account, key: bob-main, person: bob, fingerprint: bob-secret, password: hunter2}
  - {op: deposit, account: alice-main, fingerprint: alice-secret, amount: 1000}
  - {op: withdraw, account: alice-main, fingerprint: alice-secret, amount: 5000, expect: error}
  - {op: transfer, from: alice-main, to: bob-main, fingerprint: alice-secret, cvv2: $cvv2, password: $password, expiry: $expiry, amount: 250}
  - {op: transfer, from: alice-main, to: bob-main, fingerprint: alice-secret, cvv2: $cvv2, password: wrong, expiry: $expiry, amount: 1, expect: declined}
  - {op: take_loan, account: alice-main, fingerprint: alice-secret, amount: 100}
  - {op: delete_customer, person: alice, fingerprint: alice-secret, expect: error}
  - {op: pay_loan, account: alice-main, amount: 105}
  - {op: dump, target: bank}
`

func newInitCommand() *cobra.Command {
	var bankName string

	cmd := &cobra.Command{
		Use:   "init [directory]",
		Short: "Initialize a new algebank workspace",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) > 0 {
				dir = args[0]
			}

			absDir, err := filepath.Abs(dir)
			if err != nil {
				return fmt.Errorf("resolving path: %w", err)
			}

			return runInit(cmd.OutOrStdout(), absDir, bankName)
		},
	}

	cmd.Flags().StringVar(&bankName, "bank", "", "bank name (required)")
	_ = cmd.MarkFlagRequired("bank")

	return cmd
}

func runInit(out io.Writer, dir, bankName string) error {
	for _, d := range []string{"scenarios", "matrices", "logs"} {
		if err := os.MkdirAll(filepath.Join(dir, d), 0o755); err != nil {
			return fmt.Errorf("creating directory %s: %w", d, err)
		}
	}

	cfg := config.Default(bankName)
	if err := config.Save(filepath.Join(dir, config.FileName), cfg); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	files := map[string]string{
		filepath.Join("scenarios", "example.yaml"): exampleScenario,
		filepath.Join("matrices", "identity.csv"):  "1,0\n0,1\n",
		filepath.Join("logs", ".gitkeep"):          "",
		".gitignore":                               "dumps/\n*.txt\n",
	}
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
			return fmt.Errorf("writing %s: %w", name, err)
		}
	}

	if err := gitops.Init(dir); err != nil {
		return fmt.Errorf("git init: %w", err)
	}

	author := gitops.Author{Name: cfg.Git.AuthorName, Email: cfg.Git.AuthorEmail}
	hash, err := gitops.Commit(dir, "init: Initialize "+bankName, author)
	if err != nil {
		return fmt.Errorf("initial commit: %w", err)
	}

	fmt.Fprintf(out, "Initialized algebank workspace at %s (%s)\n", dir, hash)
	return nil
}
