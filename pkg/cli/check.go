package cli

import (
	"fmt"
	"time"

	"github.com/fieldlinehq/linemock/pkg/check"
	"github.com/spf13/cobra"
)

var (
	checkUsername string
	checkPassword string
	checkTimeout  time.Duration
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Run live scenarios against a running emulator",
	Long: `Run live scenarios against a running emulator.

Each scenario exercises one behavior integration code depends on: login,
auth enforcement, rule evaluation, strict thresholds, idempotent
re-validation, and reset. The command exits non-zero if any scenario fails,
so it can gate CI jobs. Scenarios reset emulator state as they run; do not
point this at an emulator holding data you care about.`,
	Example: `  # Check the default emulator
  linemock check

  # Check a different instance with custom credentials
  linemock check --url http://localhost:8080 --username other_user --password other_password`,
	Args: cobra.NoArgs,
	RunE: runCheck,
}

func init() {
	checkCmd.Flags().StringVar(&checkUsername, "username", "", "Login username (default: the emulator's first identity)")
	checkCmd.Flags().StringVar(&checkPassword, "password", "", "Login password")
	checkCmd.Flags().DurationVar(&checkTimeout, "timeout", 10*time.Second, "Per-request timeout")
	rootCmd.AddCommand(checkCmd)
}

func runCheck(cmd *cobra.Command, args []string) error {
	opts := []check.Option{check.WithTimeout(checkTimeout)}
	if checkUsername != "" || checkPassword != "" {
		opts = append(opts, check.WithCredentials(checkUsername, checkPassword))
	}

	runner := check.NewRunner(baseURL, opts...)
	results, allPassed := runner.Run(cmd.Context())

	failed := 0
	for _, res := range results {
		if !res.Passed() {
			failed++
		}
	}

	printResult(map[string]any{"checks": results, "allPassed": allPassed}, func() {
		fmt.Printf("Checking %s\n\n", baseURL)
		renderChecks(results, allPassed)
	})

	if !allPassed {
		return fmt.Errorf("%d of %d checks failed", failed, len(results))
	}
	return nil
}

func renderChecks(results []check.Result, allPassed bool) {
	for _, res := range results {
		if res.Passed() {
			fmt.Printf("  ✓ %s (%dms)\n", res.Name, res.DurationMs)
		} else {
			fmt.Printf("  ✗ %s: %s\n", res.Name, res.Detail)
		}
	}
	fmt.Println()
	if allPassed {
		fmt.Printf("All %d checks passed\n", len(results))
	}
}
