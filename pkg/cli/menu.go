package cli

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/huh"
	types "github.com/fieldlinehq/linemock/pkg/api/types"
	"github.com/fieldlinehq/linemock/pkg/auth"
	"github.com/fieldlinehq/linemock/pkg/check"
	"github.com/fieldlinehq/linemock/pkg/cli/internal/output"
	"github.com/fieldlinehq/linemock/pkg/client"
	"github.com/fieldlinehq/linemock/pkg/mission"
	"github.com/spf13/cobra"
)

var (
	menuUsername string
	menuPassword string
)

var menuCmd = &cobra.Command{
	Use:   "menu",
	Short: "Interactive session against a running emulator",
	Long: `Interactive session against a running emulator.

Walks through the emulator's surface from a terminal: create missions,
submit values, inspect state, and reset, without writing curl commands.`,
	Args: cobra.NoArgs,
	RunE: runMenu,
}

func init() {
	ident := auth.DefaultIdentities()[0]
	menuCmd.Flags().StringVar(&menuUsername, "username", ident.Username, "Login username")
	menuCmd.Flags().StringVar(&menuPassword, "password", ident.Password, "Login password")
	rootCmd.AddCommand(menuCmd)
}

// menuSession holds the client and login state across menu actions.
type menuSession struct {
	c        *client.Client
	username string
	password string
	authed   bool
}

func runMenu(cmd *cobra.Command, args []string) error {
	if jsonOutput {
		return errors.New("menu is interactive and does not support --json")
	}

	ctx := cmd.Context()
	m := &menuSession{
		c:        client.New(baseURL),
		username: menuUsername,
		password: menuPassword,
	}

	if _, err := m.c.Health(ctx); err != nil {
		return fmt.Errorf("no emulator reachable at %s (start one with 'linemock serve'): %w", baseURL, err)
	}

	for {
		var action string
		form := huh.NewForm(
			huh.NewGroup(
				huh.NewSelect[string]().
					Title("linemock " + baseURL).
					Options(
						huh.NewOption("Create a mission", "create"),
						huh.NewOption("List missions", "list"),
						huh.NewOption("Show status", "status"),
						huh.NewOption("Run checks", "checks"),
						huh.NewOption("Reset mock data", "reset"),
						huh.NewOption("Quit", "quit"),
					).
					Value(&action),
			),
		)
		if err := form.Run(); err != nil {
			return err
		}

		var err error
		switch action {
		case "create":
			err = m.create(ctx)
		case "list":
			err = m.list(ctx)
		case "status":
			err = m.status(ctx)
		case "checks":
			err = m.runChecks(ctx)
		case "reset":
			err = m.reset(ctx)
		case "quit":
			return nil
		}
		if err != nil {
			output.Warn("%v", err)
		}
		fmt.Println()
	}
}

// loggedIn logs in on first use and keeps the session for later actions.
func (m *menuSession) loggedIn(ctx context.Context) (*client.Client, error) {
	if !m.authed {
		if _, err := m.c.Login(ctx, m.username, m.password); err != nil {
			return nil, fmt.Errorf("login as %s: %w", m.username, err)
		}
		m.authed = true
	}
	return m.c, nil
}

// dropSession forgets the held token. Required after anything that resets the
// emulator, which revokes all sessions.
func (m *menuSession) dropSession() {
	m.authed = false
	m.c.SetToken("")
}

func (m *menuSession) create(ctx context.Context) error {
	c, err := m.loggedIn(ctx)
	if err != nil {
		return err
	}

	stores, err := c.ListStores(ctx)
	if err != nil {
		return err
	}
	storeOpts := make([]huh.Option[string], 0, len(stores.Data))
	for _, st := range stores.Data {
		storeOpts = append(storeOpts, huh.NewOption(fmt.Sprintf("%s (%s)", st.Name, st.ID), st.ID))
	}
	if len(storeOpts) == 0 {
		storeOpts = append(storeOpts, huh.NewOption("store_001", "store_001"))
	}

	title := "Check fridge temperature"
	field := "temperature"
	operator := "gt"
	thresholdStr := "4"
	var target string

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Mission title").
				Value(&title).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return errors.New("title is required")
					}
					return nil
				}),
			huh.NewSelect[string]().
				Title("Target store").
				Options(storeOpts...).
				Value(&target),
			huh.NewInput().
				Title("Measurement field").
				Value(&field).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return errors.New("field is required")
					}
					return nil
				}),
			huh.NewSelect[string]().
				Title("Comparator").
				Options(
					huh.NewOption("gt (strictly greater)", "gt"),
					huh.NewOption("lt (strictly less)", "lt"),
					huh.NewOption("eq (exactly equal)", "eq"),
					huh.NewOption("gte (greater or equal)", "gte"),
					huh.NewOption("lte (less or equal)", "lte"),
				).
				Value(&operator),
			huh.NewInput().
				Title("Threshold").
				Placeholder("4.0").
				Value(&thresholdStr).
				Validate(validFloat),
		),
	)
	if err := form.Run(); err != nil {
		return err
	}

	threshold, _ := strconv.ParseFloat(strings.TrimSpace(thresholdStr), 64)
	created, err := c.CreateMission(ctx, &types.CreateMissionRequest{
		Title:  strings.TrimSpace(title),
		Target: target,
		Rule: mission.Rule{
			Field:     strings.TrimSpace(field),
			Operator:  mission.Operator(operator),
			Threshold: threshold,
		},
	})
	if err != nil {
		return err
	}
	fmt.Printf("Created %s (%s)\n", created.ID, created.Status)

	var submit bool
	confirm := huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title("Submit a value against it now?").
				Value(&submit),
		),
	)
	if err := confirm.Run(); err != nil {
		return err
	}
	if !submit {
		return nil
	}

	var valueStr string
	valueForm := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title(fmt.Sprintf("Value for %s (rule: %s %g)", field, operator, threshold)).
				Value(&valueStr).
				Validate(validFloat),
		),
	)
	if err := valueForm.Run(); err != nil {
		return err
	}

	value, _ := strconv.ParseFloat(strings.TrimSpace(valueStr), 64)
	validated, err := c.ValidateMission(ctx, created.ID, value)
	if err != nil {
		return err
	}
	fmt.Printf("%s is now %s\n", validated.ID, validated.Status)
	return nil
}

func (m *menuSession) list(ctx context.Context) error {
	c, err := m.loggedIn(ctx)
	if err != nil {
		return err
	}
	list, err := c.ListMissions(ctx, nil)
	if err != nil {
		return err
	}
	renderMissionTable(list)
	return nil
}

func (m *menuSession) status(ctx context.Context) error {
	state, err := m.c.State(ctx)
	if err != nil {
		return err
	}
	uptime := time.Duration(state.UptimeSeconds * float64(time.Second)).Round(time.Second)
	fmt.Printf("Up %s: %d missions, %d sessions, %d requests, %d stores\n",
		uptime, state.Missions, state.Sessions, state.Requests, state.Stores)
	return nil
}

func (m *menuSession) runChecks(ctx context.Context) error {
	runner := check.NewRunner(baseURL, check.WithCredentials(m.username, m.password))
	results, allPassed := runner.Run(ctx)
	renderChecks(results, allPassed)
	// The check scenarios reset the emulator, which revokes our session.
	m.dropSession()
	return nil
}

func (m *menuSession) reset(ctx context.Context) error {
	res, err := m.c.Reset(ctx)
	if err != nil {
		return err
	}
	m.dropSession()
	fmt.Printf("%s: %d missions, %d sessions, %d requests cleared\n",
		res.Message, res.MissionsCleared, res.SessionsCleared, res.RequestsCleared)
	return nil
}

func validFloat(s string) error {
	if _, err := strconv.ParseFloat(strings.TrimSpace(s), 64); err != nil {
		return errors.New("enter a number, e.g. 4 or 4.5")
	}
	return nil
}
