package cmd

import (
	"fmt"
	"log"
	"time"

	"github.com/spf13/cobra"
)

// newSweepCmd creates a new command for reclaiming orphaned uploads
func newSweepCmd() *cobra.Command {
	var (
		dryRun bool
		grace  time.Duration
	)

	cmd := &cobra.Command{
		Use:   "sweep",
		Short: "Reclaim uploads that were never registered",
		Long: `Find uploads that no content entry refers to and that are older than the
grace period, and delete them. Uploads that have since been registered are
marked as such and kept.`,
		Run: func(cmd *cobra.Command, args []string) {
			a, err := loadApp(cmd.Context())
			if err != nil {
				log.Fatal(err)
			}
			defer a.Close()

			if !cmd.Flags().Changed("grace") {
				grace = a.cfg.OrphanGrace
			}

			report, err := a.svc.SweepOrphans(cmd.Context(), grace, dryRun)
			if err != nil {
				log.Fatalf("Sweep failed: %v", err)
			}

			verb := "Reclaimed"
			if dryRun {
				verb = "Would reclaim"
			}
			for _, p := range report.Adopted {
				fmt.Printf("Adopted:  %s\n", p)
			}
			for _, p := range report.Reclaimed {
				fmt.Printf("%s: %s\n", verb, p)
			}
			for _, p := range report.Failed {
				fmt.Printf("Failed:   %s\n", p)
			}
			fmt.Printf("Total: %d adopted, %d reclaimed, %d failed\n", len(report.Adopted), len(report.Reclaimed), len(report.Failed))
		},
	}

	cmd.Flags().BoolVarP(&dryRun, "dry-run", "n", false, "Report what would be reclaimed without deleting anything")
	cmd.Flags().DurationVarP(&grace, "grace", "g", time.Hour, "Minimum upload age before it is reclaimed (defaults to ORPHAN_GRACE)")

	return cmd
}
