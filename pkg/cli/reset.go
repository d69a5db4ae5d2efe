package cli

import (
	"fmt"

	"github.com/fieldlinehq/linemock/pkg/client"
	"github.com/spf13/cobra"
)

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Clear all emulator state (missions, sessions, request history)",
	Long: `Clear all emulator state (missions, sessions, request history).

Configured identities and fixtures survive; issued tokens do not. Run this
between test suites to get a clean slate without restarting the process.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		c := client.New(baseURL)
		res, err := c.Reset(cmd.Context())
		if err != nil {
			return err
		}

		printResult(res, func() {
			fmt.Println(res.Message)
			fmt.Printf("  Missions cleared:  %d\n", res.MissionsCleared)
			fmt.Printf("  Sessions cleared:  %d\n", res.SessionsCleared)
			fmt.Printf("  Requests cleared:  %d\n", res.RequestsCleared)
		})
		return nil
	},
}

func init() {
	rootCmd.AddCommand(resetCmd)
}
