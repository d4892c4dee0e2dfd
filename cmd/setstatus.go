package cmd

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/keviinplz/go-dentalink/dentalink"
	"github.com/keviinplz/go-dentalink/filter"
)

var (
	selectAll bool
	notify    bool
)

// setStatusCmd represents the set-status command
var setStatusCmd = &cobra.Command{
	Use:   "set-status <status-id> [appointment-id...]",
	Short: "Change the status of one or more appointments",
	Long: `Change the status of one or more appointments.

With explicit appointment IDs the change is applied directly. Without IDs
the command searches appointments the same way 'list' does and lets you
pick from the matches:
- Filter expressions and presets narrow the candidates
- --all selects every match without prompting
- --dry-run shows what would change without calling the API`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSetStatus,
}

func init() {
	rootCmd.AddCommand(setStatusCmd)

	setStatusCmd.Flags().StringVarP(&filterExpr, "filter", "f", "", "filter expression")
	setStatusCmd.Flags().StringVarP(&preset, "preset", "p", "", "use a preset filter from config")
	setStatusCmd.Flags().StringVar(&fromDate, "from", "", "earliest appointment date (YYYY-MM-DD)")
	setStatusCmd.Flags().StringVar(&toDate, "to", "", "latest appointment date (YYYY-MM-DD)")
	setStatusCmd.Flags().IntVar(&branchID, "branch", 0, "restrict to a branch ID")
	setStatusCmd.Flags().IntVar(&statusID, "status", 0, "restrict to appointments currently in a status ID")
	setStatusCmd.Flags().BoolVar(&selectAll, "all", false, "select every matching appointment without prompting")
	setStatusCmd.Flags().BoolVar(&notify, "notify", false, "send the patient a cancellation notice when annulling")
}

func runSetStatus(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	targetID, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("invalid status ID %q", args[0])
	}

	// Resolve the target status against the clinic's catalog before
	// touching any appointment.
	statuses, err := client.ListAppointmentStatuses(ctx, dentalink.AppointmentStatusFilter{})
	if err != nil {
		return fmt.Errorf("failed to fetch status catalog: %w", err)
	}
	var targetName string
	for _, status := range statuses.Data {
		if status.ID == targetID {
			targetName = status.Name
			break
		}
	}
	if targetName == "" {
		return fmt.Errorf("status ID %d not found in the clinic's catalog", targetID)
	}

	// Explicit appointment IDs skip the search entirely
	if len(args) > 1 {
		var ids []int
		for _, arg := range args[1:] {
			id, err := strconv.Atoi(arg)
			if err != nil {
				return fmt.Errorf("invalid appointment ID %q", arg)
			}
			ids = append(ids, id)
		}

		if dryRun {
			fmt.Printf("[DRY RUN] Would change %d %s to status '%s':\n",
				len(ids), pluralize("appointment", len(ids)), targetName)
			for _, id := range ids {
				fmt.Printf("  - appointment #%d\n", id)
			}
			return nil
		}

		return reportBatchResult(operations.ChangeStatus(ctx, ids, targetID, notify), targetName)
	}

	// Determine filter expression
	expr, err := getFilterExpression()
	if err != nil {
		return err
	}

	filterFunc, err := filter.ParseAndCreateFilter(expr)
	if err != nil {
		return fmt.Errorf("invalid filter expression: %w", err)
	}

	opts, err := searchOptions()
	if err != nil {
		return err
	}

	logger.Info().
		Str("filter", expr).
		Str("target_status", targetName).
		Msg("Searching appointments to update")

	appointments, err := operations.SearchAppointments(ctx, opts, filterFunc)
	if err != nil {
		return fmt.Errorf("failed to search appointments: %w", err)
	}

	if len(appointments) == 0 {
		fmt.Println("No appointments found matching the criteria.")
		return nil
	}

	fmt.Printf("Found %d %s:\n\n", len(appointments), pluralize("appointment", len(appointments)))

	fmt.Println(strings.Repeat("━", 85))
	fmt.Printf("%-4s %-30s %-12s %-14s %s\n", "#", "PATIENT", "DATE", "TIME", "STATUS")
	fmt.Println(strings.Repeat("━", 85))

	for i, appt := range appointments {
		// Truncate name if too long
		name := appt.PatientName
		if len(name) > 28 {
			name = name[:25] + "..."
		}

		window := fmt.Sprintf("%s - %s", appt.StartsAt.Format("15:04"), appt.EndsAt.Format("15:04"))
		fmt.Printf("%-4d %-30s %-12s %-14s %s\n",
			i+1, name, appt.Date.Format("2006-01-02"), window, appt.StatusName)
	}
	fmt.Println(strings.Repeat("━", 85))

	var selected []dentalink.AppointmentInfo
	if selectAll {
		selected = appointments
		fmt.Printf("\nSelected all %d %s\n", len(selected), pluralize("appointment", len(selected)))
	} else {
		selected, err = selectAppointments(appointments)
		if err != nil {
			return err
		}
		if len(selected) == 0 {
			return nil
		}
	}

	if dryRun {
		fmt.Printf("\n[DRY RUN] Would change %d %s to status '%s':\n",
			len(selected), pluralize("appointment", len(selected)), targetName)
		for _, appt := range selected {
			fmt.Printf("  - #%d %s on %s at %s\n", appt.ID, appt.PatientName,
				appt.Date.Format("2006-01-02"), appt.StartsAt.Format("15:04"))
		}
		return nil
	}

	var ids []int
	for _, appt := range selected {
		ids = append(ids, appt.ID)
	}

	fmt.Printf("\nChanging %d %s to '%s'...\n", len(ids), pluralize("appointment", len(ids)), targetName)

	return reportBatchResult(operations.ChangeStatus(ctx, ids, targetID, notify), targetName)
}

// selectAppointments prompts for a comma-separated selection from the
// displayed table. An empty slice with a nil error means the user cancelled.
func selectAppointments(appointments []dentalink.AppointmentInfo) ([]dentalink.AppointmentInfo, error) {
	fmt.Printf("\nEnter appointment numbers to update (comma-separated, e.g. 1,3,5) or 'all' for all [Enter to cancel]: ")

	scanner := bufio.NewScanner(os.Stdin)
	if !scanner.Scan() {
		if err := scanner.Err(); err != nil {
			return nil, fmt.Errorf("failed to read input: %w", err)
		}
		// No input (Ctrl+D or similar)
		fmt.Println("No appointments selected.")
		return nil, nil
	}

	input := strings.TrimSpace(scanner.Text())
	if input == "" {
		fmt.Println("No appointments selected.")
		return nil, nil
	}

	var selectedIndices []int

	if strings.ToLower(input) == "all" {
		for i := range appointments {
			selectedIndices = append(selectedIndices, i)
		}
	} else {
		// Parse comma-separated numbers
		parts := strings.Split(input, ",")
		seen := make(map[int]bool)

		for _, part := range parts {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}

			num, err := strconv.Atoi(part)
			if err != nil {
				return nil, fmt.Errorf("invalid number '%s': must be a positive integer", part)
			}

			if num < 1 || num > len(appointments) {
				return nil, fmt.Errorf("invalid appointment number %d: must be between 1 and %d", num, len(appointments))
			}

			// Convert to 0-based index and check for duplicates
			idx := num - 1
			if !seen[idx] {
				selectedIndices = append(selectedIndices, idx)
				seen[idx] = true
			}
		}

		if len(selectedIndices) == 0 {
			fmt.Println("No valid appointments selected.")
			return nil, nil
		}
	}

	var selected []dentalink.AppointmentInfo
	for _, idx := range selectedIndices {
		selected = append(selected, appointments[idx])
	}

	return selected, nil
}

func reportBatchResult(result dentalink.BatchUpdateResult, targetName string) error {
	fmt.Printf("\n✓ Changed %d %s to '%s'\n",
		len(result.Successful), pluralize("appointment", len(result.Successful)), targetName)

	if len(result.Failed) > 0 {
		fmt.Printf("✗ Failed to update %d of %d:\n", len(result.Failed), result.Requested)
		for _, failure := range result.Failed {
			fmt.Printf("  - appointment #%d: %v\n", failure.AppointmentID, failure.Err)
		}
		if len(result.Successful) == 0 {
			return fmt.Errorf("all %d status changes failed", len(result.Failed))
		}
	}

	return nil
}

func pluralize(word string, n int) string {
	if n == 1 {
		return word
	}
	return word + "s"
}
