package commands_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/algebank/algebank/internal/auditlog"
	"github.com/algebank/algebank/internal/config"
	"github.com/algebank/algebank/internal/scenario"
)

const testScenario = `name: smoke
bank:
  name: Scenario Bank
  fingerprint: vault
people:
  - {key: ann, name: Ann, age: 50, gender: Female, fingerprint: ann-fp, rank: 3}
  - {key: ben, name: Ben, age: 22, gender: Male, fingerprint: ben-fp, rank: 1}
steps:
  - {op: create_account, key: ann1, person: ann, fingerprint: ann-fp, password: pw}
  - {op: create_account, key: ben1, person: ben, fingerprint: ben-fp, password: pw}
  - {op: deposit, account: ann1, fingerprint: ann-fp, amount: 300}
  - {op: transfer, from: ann1, to: ben1, fingerprint: ann-fp, cvv2: $cvv2, password: $password, expiry: $expiry, amount: 1000, expect: declined}
  - {op: transfer, from: ann1, to: ben1, fingerprint: ann-fp, cvv2: $cvv2, password: $password, expiry: $expiry, amount: 100}
  - {op: dump, target: account, account: ben1, path: ben1.txt}
`

func TestSimulate_WithoutWorkspace(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "smoke.yaml", testScenario)
	repo := t.TempDir()

	out, _, err := runAlgebank(t, "simulate", path, "--repo", repo, "--seed", "7")
	require.NoError(t, err)
	assert.Contains(t, out, "declined")
	assert.Contains(t, out, "transfer declined: insufficient funds")
	assert.Contains(t, out, "bank Scenario Bank: 2 customers")
	assert.Contains(t, out, "100.00")

	data, err := os.ReadFile(filepath.Join(dir, "ben1.txt"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "Ben\nScenario Bank\n")

	_, err = os.Stat(filepath.Join(repo, "logs"))
	assert.True(t, os.IsNotExist(err), "no bank log outside a workspace")
}

func TestSimulate_WritesBankLog(t *testing.T) {
	repo := t.TempDir()
	require.NoError(t, config.Save(filepath.Join(repo, config.FileName), config.Default("Configured Bank")))
	path := writeFile(t, t.TempDir(), "smoke.yaml", testScenario)
	dumps := t.TempDir()

	_, _, err := runAlgebank(t, "simulate", path, "--repo", repo, "--dump-dir", dumps)
	require.NoError(t, err)

	entries, err := auditlog.Read(repo)
	require.NoError(t, err)
	require.Len(t, entries, 6)
	assert.Equal(t, "smoke", entries[0].Scenario)
	assert.Equal(t, "create_account", entries[0].Op)
	assert.Equal(t, "declined", entries[3].Outcome)
	assert.Equal(t, 5, entries[5].Step)

	_, err = os.Stat(filepath.Join(dumps, "ben1.txt"))
	require.NoError(t, err)
}

func TestSimulate_UnexpectedOutcome(t *testing.T) {
	repo := t.TempDir()
	require.NoError(t, config.Save(filepath.Join(repo, config.FileName), config.Default("Configured Bank")))
	path := writeFile(t, t.TempDir(), "bad.yaml", `
people:
  - {key: p, name: P, age: 20, gender: Male, fingerprint: f, rank: 1}
steps:
  - {op: create_account, key: a, person: p, fingerprint: f, password: pw}
  - {op: withdraw, account: a, fingerprint: f, amount: 1}
  - {op: deposit, account: a, fingerprint: f, amount: 1}
`)

	out, _, err := runAlgebank(t, "simulate", path, "--repo", repo)
	require.ErrorIs(t, err, scenario.ErrUnexpectedOutcome)
	assert.Contains(t, out, "bank Configured Bank: 1 customers")

	entries, err := auditlog.Read(repo)
	require.NoError(t, err)
	require.Len(t, entries, 2, "steps up to the failure are logged")
	assert.Equal(t, "bad", entries[1].Scenario)
	assert.Equal(t, "failed", entries[1].Outcome)
}

func TestSimulate_DumpFailureWarns(t *testing.T) {
	path := writeFile(t, t.TempDir(), "dump.yaml", `
bank: {name: Dump Bank, fingerprint: vault}
people:
  - {key: p, name: P, age: 20, gender: Male, fingerprint: f, rank: 1}
steps:
  - {op: create_account, key: a, person: p, fingerprint: f, password: pw}
  - {op: dump, target: bank, path: missing/bank.txt}
  - {op: deposit, account: a, fingerprint: f, amount: 3}
`)

	out, stderr, err := runAlgebank(t, "simulate", path, "--repo", t.TempDir())
	require.NoError(t, err)
	assert.Contains(t, stderr, "warning: dump bank: opening info file")
	assert.Contains(t, out, "3.00")
}

func TestSimulate_InvalidScenario(t *testing.T) {
	path := writeFile(t, t.TempDir(), "bad.yaml", "steps:\n  - {op: launder}\n")

	_, _, err := runAlgebank(t, "simulate", path, "--repo", t.TempDir())
	require.ErrorIs(t, err, scenario.ErrUnknownOp)
}
