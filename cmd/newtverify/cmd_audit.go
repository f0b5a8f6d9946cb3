package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/newtron-network/newtverify/pkg/audit"
	"github.com/newtron-network/newtverify/pkg/cli"
)

var auditCmd = &cobra.Command{
	Use:   "audit",
	Short: "View the verification audit log",
	Long: `View the log of verification rounds.

Every links verify and lab check round is recorded with:
  - Timestamp and user
  - What was verified (intent file or lab id) and the source it read
  - How many links or commands matched
  - Whether the round failed outright

Examples:
  newtverify audit list --kind lab
  newtverify audit list --last 24h --mismatches
  newtverify audit list --host SW1`,
}

var (
	auditKind       string
	auditUser       string
	auditTarget     string
	auditHost       string
	auditLast       string
	auditLimit      int
	auditFailures   bool
	auditMismatches bool
)

var auditListCmd = &cobra.Command{
	Use:   "list",
	Short: "List audit events",
	RunE: func(cmd *cobra.Command, args []string) error {
		filter := audit.Filter{
			Kind:         audit.Kind(auditKind),
			User:         auditUser,
			Target:       auditTarget,
			Host:         auditHost,
			Limit:        auditLimit,
			FailureOnly:  auditFailures,
			MismatchOnly: auditMismatches,
		}
		switch filter.Kind {
		case "", audit.KindLinks, audit.KindLab:
		default:
			return fmt.Errorf("invalid kind %q (valid: links, lab)", auditKind)
		}

		if auditLast != "" {
			duration, err := time.ParseDuration(auditLast)
			if err != nil {
				return fmt.Errorf("invalid duration: %s", auditLast)
			}
			filter.StartTime = time.Now().Add(-duration)
		}

		events, err := audit.Query(filter)
		if err != nil {
			return fmt.Errorf("querying audit log: %w", err)
		}

		if jsonOutput {
			return printJSON(events)
		}
		if len(events) == 0 {
			fmt.Println("No audit events found")
			return nil
		}

		t := cli.NewTable("TIMESTAMP", "USER", "KIND", "TARGET", "SOURCE", "MATCHED", "STATUS")
		for _, e := range events {
			t.Row(
				e.Timestamp.Format("2006-01-02 15:04:05"),
				e.User,
				string(e.Kind),
				e.Target,
				e.Source,
				fmt.Sprintf("%d/%d", e.Matched, e.Total),
				eventStatus(e),
			)
		}
		t.Flush()
		return nil
	},
}

func eventStatus(e *audit.Event) string {
	switch {
	case !e.Success:
		return cli.Red("failed")
	case e.Verified:
		return cli.Green("verified")
	default:
		return cli.Yellow("mismatch")
	}
}

func init() {
	auditListCmd.Flags().StringVar(&auditKind, "kind", "", "Filter by round kind (links, lab)")
	auditListCmd.Flags().StringVar(&auditUser, "user", "", "Filter by user")
	auditListCmd.Flags().StringVar(&auditTarget, "target", "", "Filter by intent file or lab id")
	auditListCmd.Flags().StringVar(&auditHost, "host", "", "Filter by host")
	auditListCmd.Flags().StringVar(&auditLast, "last", "", "Show events from last duration (e.g., 24h)")
	auditListCmd.Flags().IntVar(&auditLimit, "limit", 100, "Maximum events to show")
	auditListCmd.Flags().BoolVar(&auditFailures, "failures", false, "Show only failed rounds")
	auditListCmd.Flags().BoolVar(&auditMismatches, "mismatches", false, "Show only rounds that completed with mismatches")

	auditCmd.AddCommand(auditListCmd)
}
