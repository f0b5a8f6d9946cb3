package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/newtron-network/newtverify/pkg/cli"
	"github.com/newtron-network/newtverify/pkg/state"
)

var stateCmd = &cobra.Command{
	Use:   "state",
	Short: "Inspect and publish reported device state",
	Long: `Inspect state reports and load them into the Redis state database.

A state report is JSON:

  {"devices": [
    {"hostname": "SW1", "domain": "trunk",
     "records": [{"interface": "Gi0/1", "mode": "trunk", "allowed_vlans": "10,20"}]}
  ]}

Examples:
  newtverify state show report.json
  newtverify state publish report.json --redis 10.0.0.5:6379`,
}

var stateShowCmd = &cobra.Command{
	Use:   "show <report.json>",
	Short: "Decode a state report and list what it holds",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		states, err := readReport(args[0])
		if err != nil {
			return err
		}
		if jsonOutput {
			return printJSON(states)
		}
		t := cli.NewTable("HOST", "DOMAIN", "RECORDS")
		for _, st := range states {
			t.Row(st.Hostname, string(st.Domain), fmt.Sprint(len(st.Records)))
		}
		t.Flush()
		return nil
	},
}

var statePublishCmd = &cobra.Command{
	Use:   "publish <report.json>",
	Short: "Write a state report into the Redis state database",
	Long: `Write a state report into the Redis state database.

Each (host, domain) pair replaces whatever was stored for it before.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		states, err := readReport(args[0])
		if err != nil {
			return err
		}

		ctx, stop := signalContext()
		defer stop()

		rs, addr, err := openRedis(ctx, cmd)
		if err != nil {
			return err
		}
		defer rs.Close()

		for _, st := range states {
			if err := rs.Publish(ctx, st); err != nil {
				return err
			}
		}
		fmt.Printf("Published %d device states to redis %s\n", len(states), addr)
		return nil
	},
}

func readReport(path string) ([]*state.ActualState, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	states, err := state.DecodeReport(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return states, nil
}

func init() {
	addRedisFlags(statePublishCmd)

	stateCmd.AddCommand(stateShowCmd)
	stateCmd.AddCommand(statePublishCmd)
}
