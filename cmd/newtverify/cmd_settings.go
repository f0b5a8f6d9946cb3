package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/newtron-network/newtverify/pkg/cli"
	"github.com/newtron-network/newtverify/pkg/settings"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Manage persistent settings",
	Long: `Manage persistent settings stored in ~/.newtverify/settings.json.

Settings provide defaults for flags:
  - redis_addr: Redis state database (--redis)
  - redis_db:   Redis database number (--redis-db)
  - ssh_user:   SSH user for lab checks (--ssh-user)
  - ssh_port:   SSH port for lab checks (--ssh-port)
  - lab_dir:    Directory searched for labs referenced by id (--dir)
  - audit_log:  Audit log path

Examples:
  newtverify settings show
  newtverify settings set redis_addr 10.0.0.5:6379
  newtverify settings set lab_dir /srv/labs
  newtverify settings clear`,
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current settings",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := settings.Load()
		if err != nil {
			return fmt.Errorf("loading settings: %w", err)
		}
		if jsonOutput {
			return printJSON(s)
		}

		fmt.Printf("Settings file: %s\n\n", settings.DefaultSettingsPath())

		t := cli.NewTable("SETTING", "VALUE", "EFFECTIVE")
		row := func(name, value, effective string) {
			if value == "" || value == "0" {
				value = cli.Dim("(not set)")
			}
			t.Row(name, value, effective)
		}
		row("redis_addr", s.RedisAddr, s.GetRedisAddr())
		row("redis_db", fmt.Sprint(s.RedisDB), fmt.Sprint(s.RedisDB))
		row("ssh_user", s.SSHUser, s.GetSSHUser())
		row("ssh_port", fmt.Sprint(s.SSHPort), fmt.Sprint(s.GetSSHPort()))
		row("lab_dir", s.LabDir, s.GetLabDir())
		row("audit_log", s.AuditLog, s.GetAuditLog())
		t.Flush()
		return nil
	},
}

var settingsSetCmd = &cobra.Command{
	Use:   "set <setting> <value>",
	Short: "Set a setting value",
	Long: `Set a persistent setting value. An empty value resets the setting.

Available settings: ` + strings.Join(settings.Keys(), ", "),
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := settings.Load()
		if err != nil {
			s = &settings.Settings{}
		}
		if err := s.Set(args[0], args[1]); err != nil {
			return fmt.Errorf("%w (valid: %s)", err, strings.Join(settings.Keys(), ", "))
		}
		if err := s.Save(); err != nil {
			return fmt.Errorf("saving settings: %w", err)
		}
		fmt.Printf("%s set to: %s\n", args[0], args[1])
		return nil
	},
}

var settingsClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Clear all settings",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := settings.Load()
		if err != nil {
			s = &settings.Settings{}
		}
		s.Clear()
		if err := s.Save(); err != nil {
			return fmt.Errorf("saving settings: %w", err)
		}
		fmt.Println("All settings cleared.")
		return nil
	},
}

var settingsPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Show settings file path",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println(settings.DefaultSettingsPath())
	},
}

func init() {
	settingsCmd.AddCommand(settingsShowCmd)
	settingsCmd.AddCommand(settingsSetCmd)
	settingsCmd.AddCommand(settingsClearCmd)
	settingsCmd.AddCommand(settingsPathCmd)
}
