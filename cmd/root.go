package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/keviinplz/go-dentalink/config"
	"github.com/keviinplz/go-dentalink/dentalink"
	"github.com/keviinplz/go-dentalink/filter"
)

var (
	cfgFile    string
	cfg        *config.Config
	logger     zerolog.Logger
	client     *dentalink.Client
	operations *dentalink.Operations

	// Command flags
	filterExpr  string
	preset      string
	fromDate    string
	toDate      string
	branchID    int
	statusID    int
	enabledOnly bool
	dryRun      bool
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "dentalink",
	Short: "A tool to search and manage dental clinic appointments via Dentalink",
	Long: `dentalink is a CLI tool that searches, inspects and updates appointments
in a Dentalink-managed dental clinic. Appointments can be narrowed with
filter expressions such as:

  hasStatus("Confirmada") and Duration >= 30
  atBranch("Providencia") and not Cancelled
  forPatient("Pérez") and onDate("2023-11-14")`,
	PersistentPreRunE: initializeApp,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.go-dentalink/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&dryRun, "dry-run", "d", false, "report what would change without calling the API")

	// Add subcommands
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(getCmd)
	rootCmd.AddCommand(statusesCmd)
	rootCmd.AddCommand(branchesCmd)
	rootCmd.AddCommand(testCmd)
}

// initializeApp initializes the configuration and the API client. Commands
// that never touch the API skip all of it.
func initializeApp(cmd *cobra.Command, args []string) error {
	switch cmd.Name() {
	case "version", "self-update", "help", "completion":
		return nil
	}

	// Load configuration
	var err error
	cfg, err = config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Setup logger
	logger = setupLogger(cfg.Logging)

	// Create Dentalink client
	client, err = dentalink.NewClient(cfg.Dentalink.URL, cfg.Dentalink.Token, logger,
		dentalink.WithTimeout(time.Duration(cfg.Dentalink.Timeout)*time.Second))
	if err != nil {
		return fmt.Errorf("failed to create Dentalink client: %w", err)
	}

	operations = dentalink.NewOperations(client, logger)

	return nil
}

// setupLogger configures the zerolog logger
func setupLogger(cfg config.LoggingConfig) zerolog.Logger {
	// Set log level
	level := zerolog.InfoLevel
	switch strings.ToLower(cfg.Level) {
	case "debug":
		level = zerolog.DebugLevel
	case "warn":
		level = zerolog.WarnLevel
	case "error":
		level = zerolog.ErrorLevel
	}

	zerolog.SetGlobalLevel(level)

	// Configure output format
	if cfg.Format == "json" {
		return zerolog.New(os.Stderr).With().Timestamp().Logger()
	}

	// Console format
	output := zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: time.RFC3339,
		NoColor:    !cfg.Color || !isatty.IsTerminal(os.Stderr.Fd()),
	}

	return zerolog.New(output).With().Timestamp().Logger()
}

// listCmd represents the list command
var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List appointments matching the filter criteria",
	Long: `List appointments in a date window that match the specified filter
criteria. Without --from/--to the API returns today's appointments.`,
	RunE: runList,
}

func init() {
	listCmd.Flags().StringVarP(&filterExpr, "filter", "f", "", "filter expression")
	listCmd.Flags().StringVarP(&preset, "preset", "p", "", "use a preset filter from config")
	listCmd.Flags().StringVar(&fromDate, "from", "", "earliest appointment date (YYYY-MM-DD)")
	listCmd.Flags().StringVar(&toDate, "to", "", "latest appointment date (YYYY-MM-DD)")
	listCmd.Flags().IntVar(&branchID, "branch", 0, "restrict to a branch ID")
	listCmd.Flags().IntVar(&statusID, "status", 0, "restrict to a status ID")
}

func runList(cmd *cobra.Command, args []string) error {
	// Determine filter expression
	expr, err := getFilterExpression()
	if err != nil {
		return err
	}

	logger.Info().Str("filter", expr).Msg("Searching appointments")

	// Parse filter
	filterFunc, err := filter.ParseAndCreateFilter(expr)
	if err != nil {
		return fmt.Errorf("invalid filter expression: %w", err)
	}

	opts, err := searchOptions()
	if err != nil {
		return err
	}

	// Search appointments
	ctx := context.Background()
	appointments, err := operations.SearchAppointments(ctx, opts, filterFunc)
	if err != nil {
		return err
	}

	if cfg.Output.Format == "json" {
		return printJSON(appointments)
	}

	// Display results
	if len(appointments) == 0 {
		fmt.Println("No appointments found matching the filter criteria.")
		return nil
	}

	fmt.Printf("\nFound %d appointments:\n", len(appointments))
	fmt.Println(strings.Repeat("-", 80))

	for _, appt := range appointments {
		fmt.Printf("• #%d %s on %s at %s", appt.ID, appt.PatientName,
			appt.Date.Format("2006-01-02"), appt.StartsAt.Format("15:04"))
		if appt.Cancelled {
			fmt.Printf(" [CANCELLED]")
		} else if appt.Confirmed {
			fmt.Printf(" [CONFIRMED]")
		}
		fmt.Println()
		if cfg.Output.ShowDetails {
			fmt.Printf("  Status: %s\n", appt.StatusName)
			fmt.Printf("  Dentist: %s\n", appt.DentistName)
			if appt.TreatmentName != "" {
				fmt.Printf("  Treatment: %s\n", appt.TreatmentName)
			}
			fmt.Printf("  Branch: %s\n", appt.BranchName)
			fmt.Printf("  Duration: %d min\n", appt.Duration)
			if appt.Comments != "" {
				fmt.Printf("  Comments: %s\n", appt.Comments)
			}
		}
	}

	return nil
}

// searchOptions builds the search window from the list flags.
func searchOptions() (dentalink.SearchOptions, error) {
	var opts dentalink.SearchOptions

	if fromDate != "" {
		from, err := time.Parse("2006-01-02", fromDate)
		if err != nil {
			return opts, fmt.Errorf("invalid --from date %q: expected YYYY-MM-DD", fromDate)
		}
		opts.From = &from
	}
	if toDate != "" {
		to, err := time.Parse("2006-01-02", toDate)
		if err != nil {
			return opts, fmt.Errorf("invalid --to date %q: expected YYYY-MM-DD", toDate)
		}
		opts.To = &to
	}
	if branchID > 0 {
		opts.BranchID = &branchID
	}
	if statusID > 0 {
		opts.StatusID = &statusID
	}

	return opts, nil
}

// getCmd represents the get command
var getCmd = &cobra.Command{
	Use:   "get <appointment-id>",
	Short: "Show a single appointment",
	Args:  cobra.ExactArgs(1),
	RunE:  runGet,
}

func runGet(cmd *cobra.Command, args []string) error {
	id, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("invalid appointment ID %q", args[0])
	}

	ctx := context.Background()
	info, err := operations.GetAppointmentInfo(ctx, id)
	if err != nil {
		return err
	}

	if cfg.Output.Format == "json" {
		return printJSON(info)
	}

	fmt.Printf("\nAppointment #%d\n", info.ID)
	fmt.Printf("  Patient:   %s (ID: %d)\n", info.PatientName, info.PatientID)
	fmt.Printf("  Dentist:   %s\n", info.DentistName)
	if info.TreatmentName != "" {
		fmt.Printf("  Treatment: %s\n", info.TreatmentName)
	}
	fmt.Printf("  Status:    %s", info.StatusName)
	if info.Cancelled {
		fmt.Printf(" [CANCELLED]")
	} else if info.Confirmed {
		fmt.Printf(" [CONFIRMED]")
	}
	fmt.Println()
	fmt.Printf("  Branch:    %s (%s)\n", info.BranchName, info.BranchCity)
	fmt.Printf("  Date:      %s\n", info.Date.Format("2006-01-02"))
	fmt.Printf("  Time:      %s - %s (%d min)\n",
		info.StartsAt.Format("15:04"), info.EndsAt.Format("15:04"), info.Duration)
	if info.Comments != "" {
		fmt.Printf("  Comments:  %s\n", info.Comments)
	}
	if !info.UpdatedAt.IsZero() {
		fmt.Printf("  Updated:   %s\n", info.UpdatedAt.Format("2006-01-02 15:04"))
	}

	return nil
}

// statusesCmd represents the statuses command
var statusesCmd = &cobra.Command{
	Use:   "statuses",
	Short: "List the clinic's appointment status catalog",
	RunE:  runStatuses,
}

func init() {
	statusesCmd.Flags().BoolVar(&enabledOnly, "enabled", false, "only show enabled entries")
	branchesCmd.Flags().BoolVar(&enabledOnly, "enabled", false, "only show enabled entries")
}

func runStatuses(cmd *cobra.Command, args []string) error {
	var f dentalink.AppointmentStatusFilter
	if enabledOnly {
		f.Enabled = dentalink.True()
	}

	ctx := context.Background()
	resp, err := client.ListAppointmentStatuses(ctx, f)
	if err != nil {
		return err
	}

	if cfg.Output.Format == "json" {
		return printJSON(resp.Data)
	}

	fmt.Printf("\nFound %d statuses:\n", len(resp.Data))
	fmt.Println(strings.Repeat("-", 80))

	for _, status := range resp.Data {
		fmt.Printf("• %s (ID: %d)", status.Name, status.ID)
		if status.Cancellation {
			fmt.Printf(" [CANCELLATION]")
		}
		if !status.Enabled {
			fmt.Printf(" [DISABLED]")
		}
		fmt.Println()
		if cfg.Output.ShowDetails {
			fmt.Printf("  Color: %s\n", status.Color)
			fmt.Printf("  Reserves slot: %t, internal use: %t\n",
				bool(status.Reserved), bool(status.InternalUse))
		}
	}

	return nil
}

// branchesCmd represents the branches command
var branchesCmd = &cobra.Command{
	Use:   "branches",
	Short: "List the clinic's branches",
	RunE:  runBranches,
}

func runBranches(cmd *cobra.Command, args []string) error {
	var f dentalink.BranchFilter
	if enabledOnly {
		f.Enabled = dentalink.True()
	}

	ctx := context.Background()
	resp, err := client.ListBranches(ctx, f)
	if err != nil {
		return err
	}

	if cfg.Output.Format == "json" {
		return printJSON(resp.Data)
	}

	fmt.Printf("\nFound %d branches:\n", len(resp.Data))
	fmt.Println(strings.Repeat("-", 80))

	for _, branch := range resp.Data {
		fmt.Printf("• %s (ID: %d)", branch.Name, branch.ID)
		if !branch.Enabled {
			fmt.Printf(" [DISABLED]")
		}
		fmt.Println()
		if cfg.Output.ShowDetails {
			fmt.Printf("  City: %s\n", branch.City)
			if branch.Address != "" {
				fmt.Printf("  Address: %s, %s\n", branch.Address, branch.Commune)
			}
			if branch.Phone != "" {
				fmt.Printf("  Phone: %s\n", branch.Phone)
			}
		}
	}

	return nil
}

// testCmd represents the test command
var testCmd = &cobra.Command{
	Use:   "test",
	Short: "Test connection to the Dentalink API",
	Long:  `Test the connection to the Dentalink API and display basic catalog information.`,
	RunE:  runTest,
}

func runTest(cmd *cobra.Command, args []string) error {
	fmt.Printf("Testing connection to Dentalink at %s...\n", cfg.Dentalink.URL)

	ctx := context.Background()
	if err := client.TestConnection(ctx); err != nil {
		return fmt.Errorf("connection failed: %w", err)
	}
	fmt.Println("✓ Connection successful!")

	// Get some basic stats
	statuses, err := client.ListAppointmentStatuses(ctx, dentalink.AppointmentStatusFilter{})
	if err != nil {
		return fmt.Errorf("failed to get statuses: %w", err)
	}

	branches, err := client.ListBranches(ctx, dentalink.BranchFilter{})
	if err != nil {
		return fmt.Errorf("failed to get branches: %w", err)
	}

	fmt.Printf("\nClinic overview:\n")
	fmt.Printf("- Appointment statuses: %d\n", len(statuses.Data))
	fmt.Printf("- Branches: %d\n", len(branches.Data))

	if len(statuses.Data) > 0 {
		fmt.Printf("\nAvailable statuses:\n")
		for _, status := range statuses.Data {
			fmt.Printf("  • %s (ID: %d)\n", status.Name, status.ID)
		}
	}

	return nil
}

// getFilterExpression determines the filter expression to use
func getFilterExpression() (string, error) {
	// Priority: command line filter > preset > match everything
	if filterExpr != "" {
		return filterExpr, nil
	}

	if preset != "" {
		if expression, ok := cfg.Filter[preset]; ok {
			return expression, nil
		}
		return "", fmt.Errorf("preset '%s' not found in config", preset)
	}

	return "", nil
}

func printJSON(v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}
	fmt.Println(string(data))
	return nil
}
