package cli

import (
	"fmt"
	"os"

	types "github.com/fieldlinehq/linemock/pkg/api/types"
	"github.com/fieldlinehq/linemock/pkg/auth"
	"github.com/fieldlinehq/linemock/pkg/client"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var (
	missionsUsername string
	missionsPassword string
	missionsStatus   string
	missionsTarget   string
	missionsLimit    int
)

var missionsCmd = &cobra.Command{
	Use:   "missions",
	Short: "Inspect missions on a running emulator",
}

var missionsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List missions in creation order",
	Example: `  # All missions (first page)
  linemock missions list

  # Pending missions for one store
  linemock missions list --status pending --target store_001 --limit 50`,
	Args: cobra.NoArgs,
	RunE: runMissionsList,
}

func init() {
	ident := auth.DefaultIdentities()[0]
	missionsCmd.PersistentFlags().StringVar(&missionsUsername, "username", ident.Username, "Login username")
	missionsCmd.PersistentFlags().StringVar(&missionsPassword, "password", ident.Password, "Login password")
	missionsListCmd.Flags().StringVar(&missionsStatus, "status", "", "Filter by status (pending, validated, failed)")
	missionsListCmd.Flags().StringVar(&missionsTarget, "target", "", "Filter by target store")
	missionsListCmd.Flags().IntVar(&missionsLimit, "limit", 0, "Page size (0 uses the emulator default)")
	missionsCmd.AddCommand(missionsListCmd)
	rootCmd.AddCommand(missionsCmd)
}

func runMissionsList(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	c := client.New(baseURL)
	if _, err := c.Login(ctx, missionsUsername, missionsPassword); err != nil {
		return fmt.Errorf("login: %w", err)
	}

	list, err := c.ListMissions(ctx, &client.MissionFilter{
		Status: missionsStatus,
		Target: missionsTarget,
		Limit:  missionsLimit,
	})
	if err != nil {
		return err
	}

	printResult(list, func() { renderMissionTable(list) })
	return nil
}

func renderMissionTable(list *types.MissionListResponse) {
	if list.Total == 0 {
		fmt.Println("No missions")
		return
	}
	tw := table.NewWriter()
	tw.SetOutputMirror(os.Stdout)
	tw.AppendHeader(table.Row{"ID", "Title", "Target", "Rule", "Status", "Priority"})
	for _, m := range list.Missions {
		rule := fmt.Sprintf("%s %s %g", m.Rule.Field, m.Rule.Operator, m.Rule.Threshold)
		tw.AppendRow(table.Row{m.ID, m.Title, m.Target, rule, m.Status, m.Priority})
	}
	tw.Render()
	fmt.Printf("%d of %d missions\n", list.Count, list.Total)
}
