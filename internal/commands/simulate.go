package commands

import (
	"fmt"
	"io"
	"math/rand/v2"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/algebank/algebank/internal/auditlog"
	"github.com/algebank/algebank/internal/gitops"
	"github.com/algebank/algebank/internal/scenario"
)

type simulateOptions struct {
	repo    string
	commit  bool
	seed    uint64
	seeded  bool
	dumpDir string
}

func newSimulateCommand() *cobra.Command {
	var opts simulateOptions

	cmd := &cobra.Command{
		Use:   "simulate <scenario.yaml>",
		Short: "Run a bank scenario against a fresh bank",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			absDir, err := filepath.Abs(opts.repo)
			if err != nil {
				return fmt.Errorf("resolving path: %w", err)
			}
			opts.repo = absDir
			opts.seeded = cmd.Flags().Changed("seed")
			return runSimulate(cmd, args[0], opts)
		},
	}

	cmd.Flags().StringVar(&opts.repo, "repo", ".", "workspace directory")
	cmd.Flags().BoolVar(&opts.commit, "commit", false, "commit the audit log after the run")
	cmd.Flags().Uint64Var(&opts.seed, "seed", 0, "seed for account numbers and credentials")
	cmd.Flags().StringVar(&opts.dumpDir, "dump-dir", "", "directory for dump paths (default: the scenario's directory)")

	return cmd
}

func runSimulate(cmd *cobra.Command, path string, opts simulateOptions) error {
	out := cmd.OutOrStdout()

	cfg, isWorkspace, err := loadWorkspaceConfig(opts.repo)
	if err != nil {
		return err
	}

	doc, err := scenario.Load(path)
	if err != nil {
		return err
	}
	name := doc.Name
	if name == "" {
		name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}

	runOpts := scenario.Options{
		BankName:        cfg.Bank.Name,
		BankFingerprint: cfg.Bank.Fingerprint,
		Policy:          cfg.LoanPolicy(),
		BaseDir:         opts.dumpDir,
		Out:             out,
		Warn:            cmd.ErrOrStderr(),
	}
	if runOpts.BaseDir == "" {
		runOpts.BaseDir = filepath.Dir(path)
	}
	if opts.seeded {
		runOpts.Rand = rand.New(rand.NewPCG(opts.seed, opts.seed))
	}

	res, runErr := scenario.Run(doc, runOpts)
	if res == nil {
		return runErr
	}
	printResult(out, res)

	if !isWorkspace {
		return runErr
	}
	if err := auditlog.Append(opts.repo, logEntries(name, res)); err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "warning: failed to write bank log: %v\n", err)
		return runErr
	}

	if (opts.commit || cfg.Git.AutoCommit) && gitops.IsRepo(opts.repo) {
		author := gitops.Author{Name: cfg.Git.AuthorName, Email: cfg.Git.AuthorEmail}
		hash, err := gitops.Commit(opts.repo, "simulate: "+name, author, auditlog.File)
		if err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "warning: failed to commit bank log: %v\n", err)
		} else {
			fmt.Fprintf(out, "Committed bank log (%s)\n", hash)
		}
	}
	return runErr
}

func printResult(w io.Writer, res *scenario.Result) {
	for _, st := range res.Steps {
		fmt.Fprintf(w, "%3d  %-16s %-8s %s\n", st.Index, st.Op, st.Outcome, st.Message)
	}

	sum := res.Summary
	fmt.Fprintf(w, "\nbank %s: %d customers, interest %s, loaned %s, unpaid %s\n",
		sum.Bank, sum.Customers, sum.TotalBalance, sum.TotalLoan, sum.UnpaidLoans)
	for _, acct := range sum.Accounts {
		status := "active"
		if !acct.Active {
			status = "inactive"
		}
		fmt.Fprintf(w, "  %-16s %s  %-12s %12s  %s\n", acct.Key, acct.Number, acct.Owner, acct.Balance.StringFixed(2), status)
	}
}

func logEntries(name string, res *scenario.Result) []auditlog.Entry {
	now := time.Now().UTC()
	entries := make([]auditlog.Entry, 0, len(res.Steps))
	for _, st := range res.Steps {
		entries = append(entries, auditlog.Entry{
			Timestamp: now,
			Scenario:  name,
			Step:      st.Index,
			Op:        st.Op,
			Outcome:   string(st.Outcome),
			Details:   st.Message,
		})
	}
	return entries
}
