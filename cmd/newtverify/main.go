// Newtverify - Configuration Verification Engine
//
// Checks that network devices ended up configured the way an operator
// declared them:
//   - link intents (VLANs, addressing, routes, trunks) against the state
//     devices report, field by field
//   - lab expectations against the output of show commands
//
// Examples:
//
//	newtverify links verify links.yaml --state report.json
//	newtverify links verify links.yaml --redis 10.0.0.5:6379
//	newtverify lab check vlan-lab.yaml --output capture.yaml
//	newtverify lab check vlan-lab --ssh --save capture.yaml
//	newtverify audit list --failures
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"os/user"

	"github.com/spf13/cobra"

	"github.com/newtron-network/newtverify/pkg/audit"
	"github.com/newtron-network/newtverify/pkg/cli"
	"github.com/newtron-network/newtverify/pkg/session"
	"github.com/newtron-network/newtverify/pkg/settings"
	"github.com/newtron-network/newtverify/pkg/util"
	"github.com/newtron-network/newtverify/pkg/version"
)

var (
	verbose    bool
	jsonOutput bool
	noColor    bool

	userSettings *settings.Settings
)

// errNotVerified is returned when a round completed but something did not
// match. It maps to exit status 2 so scripts can tell it from a failure.
var errNotVerified = errors.New("not verified")

func main() {
	if err := rootCmd.Execute(); err != nil {
		if errors.Is(err, errNotVerified) {
			os.Exit(2)
		}
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:               "newtverify",
	Short:             "Configuration Verification Engine",
	SilenceUsage:      true,
	SilenceErrors:     true,
	CompletionOptions: cobra.CompletionOptions{HiddenDefaultCmd: true},
	Long: `Newtverify checks declared network configuration against what devices
actually report.

Link intents are compared field by field with the state each device
reported; lab definitions are checked line by line against the output of
show commands. Exit status is 0 when everything matched, 2 when a round
completed with mismatches and 1 on error.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if verbose {
			util.SetLogLevel("debug")
		} else {
			util.SetLogLevel("warn")
		}
		if noColor || jsonOutput {
			cli.SetColor(false)
		}

		var err error
		userSettings, err = settings.Load()
		if err != nil {
			util.Warnf("Could not load settings: %v", err)
			userSettings = &settings.Settings{}
		}

		if isSettingsOrHelp(cmd) {
			return nil
		}

		auditLogger, err := audit.NewFileLogger(userSettings.GetAuditLog(), audit.RotationConfig{
			MaxSize:    10 * 1024 * 1024, // 10MB
			MaxBackups: 10,
		})
		if err != nil {
			util.Warnf("Could not initialize audit logging: %v", err)
		} else {
			audit.SetDefaultLogger(auditLogger)
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose output")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "Disable colored output")

	rootCmd.AddGroup(
		&cobra.Group{ID: "verify", Title: "Verification:"},
		&cobra.Group{ID: "meta", Title: "Configuration & Meta:"},
	)
	for _, cmd := range []*cobra.Command{linksCmd, labCmd, stateCmd} {
		cmd.GroupID = "verify"
		rootCmd.AddCommand(cmd)
	}
	for _, cmd := range []*cobra.Command{auditCmd, settingsCmd, versionCmd} {
		cmd.GroupID = "meta"
		rootCmd.AddCommand(cmd)
	}
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		if version.Version == "dev" {
			fmt.Println("newtverify dev build")
		} else {
			fmt.Printf("newtverify %s\n", version.Info())
		}
	},
}

func isSettingsOrHelp(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		switch c.Name() {
		case "settings", "help", "version":
			return true
		}
	}
	return false
}

// newSession returns a session that logs its transitions at debug level.
func newSession() *session.Session {
	s := session.New()
	s.OnChange(func(snap session.Snapshot) {
		log := util.WithField("state", snap.State.String()).WithField("token", snap.Token)
		if snap.Err != nil {
			log = log.WithError(snap.Err)
		}
		log.Debug("session state changed")
	})
	return s
}

// signalContext is cancelled on Ctrl-C so an in-flight fetch is abandoned.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt)
}

func currentUser() string {
	if u, err := user.Current(); err == nil && u.Username != "" {
		return u.Username
	}
	if name := os.Getenv("USER"); name != "" {
		return name
	}
	return "unknown"
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// logAudit records a round; a failure to record never fails the command.
func logAudit(event *audit.Event) {
	if err := audit.Log(event); err != nil {
		util.Warnf("Could not write audit event: %v", err)
	}
}
