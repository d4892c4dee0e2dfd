package cmd

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/keviinplz/go-dentalink/dentalink"
)

var (
	updateDuration int
	updateStatusID int
	updateComment  string
	updateNotify   bool
)

// updateCmd represents the update command
var updateCmd = &cobra.Command{
	Use:   "update <appointment-id>",
	Short: "Update a single appointment",
	Long: `Update fields of a single appointment. Only the fields given as flags
are sent to the API, everything else stays untouched.`,
	Args: cobra.ExactArgs(1),
	RunE: runUpdate,
}

func init() {
	rootCmd.AddCommand(updateCmd)

	updateCmd.Flags().IntVar(&updateDuration, "duration", 0, "new duration in minutes")
	updateCmd.Flags().IntVar(&updateStatusID, "status", 0, "new status ID")
	updateCmd.Flags().StringVar(&updateComment, "comment", "", "new comments")
	updateCmd.Flags().BoolVar(&updateNotify, "notify", false, "send the patient a cancellation notice when annulling")
}

func runUpdate(cmd *cobra.Command, args []string) error {
	id, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("invalid appointment ID %q", args[0])
	}

	if updateDuration == 0 && updateStatusID == 0 && updateComment == "" {
		return fmt.Errorf("nothing to update: pass at least one of --duration, --status or --comment")
	}

	if dryRun {
		fmt.Printf("[DRY RUN] Would update appointment #%d:\n", id)
		if updateDuration > 0 {
			fmt.Printf("  - duration: %d min\n", updateDuration)
		}
		if updateStatusID > 0 {
			fmt.Printf("  - status ID: %d\n", updateStatusID)
		}
		if updateComment != "" {
			fmt.Printf("  - comments: %s\n", updateComment)
		}
		return nil
	}

	req := dentalink.UpdateAppointmentRequest{
		Duration:           updateDuration,
		StatusID:           updateStatusID,
		Comment:            updateComment,
		NotifyCancellation: updateNotify,
	}

	ctx := context.Background()
	resp, err := client.UpdateAppointment(ctx, id, req)
	if err != nil {
		return fmt.Errorf("failed to update appointment %d: %w", id, err)
	}

	updated := resp.Data
	fmt.Printf("✓ Updated appointment #%d\n", updated.ID)
	fmt.Printf("  Patient: %s\n", updated.PatientName)
	fmt.Printf("  Status: %s\n", updated.StatusName)
	fmt.Printf("  Date: %s %s (%d min)\n",
		updated.Date.Format("2006-01-02"), updated.StartTime, updated.Duration)
	if updated.Comments != "" {
		fmt.Printf("  Comments: %s\n", updated.Comments)
	}

	return nil
}
