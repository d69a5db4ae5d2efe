package cli

import (
	"fmt"
	"time"

	types "github.com/fieldlinehq/linemock/pkg/api/types"
	"github.com/fieldlinehq/linemock/pkg/client"
	"github.com/spf13/cobra"
)

// StatusOutput represents JSON output format for the status command.
type StatusOutput struct {
	URL     string               `json:"url"`
	Running bool                 `json:"running"`
	Error   string               `json:"error,omitempty"`
	State   *types.StateResponse `json:"state,omitempty"`
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show whether an emulator is running and what it holds",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		c := client.New(baseURL, client.WithTimeout(5*time.Second))

		out := StatusOutput{URL: baseURL}
		state, err := c.State(cmd.Context())
		if err != nil {
			out.Error = err.Error()
		} else {
			out.Running = true
			out.State = state
		}

		printResult(out, func() {
			if !out.Running {
				fmt.Printf("Emulator not reachable at %s\n", out.URL)
				fmt.Println("\nStart one with: linemock serve")
				return
			}
			uptime := time.Duration(state.UptimeSeconds * float64(time.Second)).Round(time.Second)
			fmt.Printf("Emulator running at %s\n", out.URL)
			fmt.Printf("  Uptime:    %s\n", uptime)
			fmt.Printf("  Missions:  %d\n", state.Missions)
			fmt.Printf("  Sessions:  %d\n", state.Sessions)
			fmt.Printf("  Requests:  %d\n", state.Requests)
			fmt.Printf("  Stores:    %d\n", state.Stores)
		})
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
}
