package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/newtron-network/newtverify/pkg/audit"
	"github.com/newtron-network/newtverify/pkg/cli"
	"github.com/newtron-network/newtverify/pkg/collect"
	"github.com/newtron-network/newtverify/pkg/lab"
	"github.com/newtron-network/newtverify/pkg/util"
	"github.com/newtron-network/newtverify/pkg/verify"
)

var labCmd = &cobra.Command{
	Use:   "lab",
	Short: "Check lab expectations against command output",
	Long: `Check lab definitions against the output of show commands.

A lab is referenced by file path, or by id when the definition lives in
the lab directory (settings: lab_dir).

Examples:
  newtverify lab list
  newtverify lab validate vlan-lab.yaml --devices SW1=switch,R1=router
  newtverify lab check vlan-lab --output capture.yaml
  newtverify lab check vlan-lab --ssh --save capture.yaml --contains`,
}

var (
	labDir      string
	labDevices  map[string]string
	labOutput   string
	labSSH      bool
	labSave     string
	labContains bool
	labSSHUser  string
	labSSHPort  int
	labAddrs    map[string]string
	labTimeout  time.Duration
)

var labListCmd = &cobra.Command{
	Use:   "list",
	Short: "List lab definitions in the lab directory",
	RunE: func(cmd *cobra.Command, args []string) error {
		defs, err := lab.LoadDir(labDirectory())
		if err != nil {
			return err
		}
		if jsonOutput {
			return printJSON(defs)
		}
		if len(defs) == 0 {
			fmt.Printf("No labs found in %s\n", labDirectory())
			return nil
		}
		t := cli.NewTable("ID", "NAME", "COMMANDS", "HOSTS")
		for _, d := range defs {
			t.Row(d.ID, d.Name, fmt.Sprint(len(d.Commands)), strings.Join(d.Hosts(), ","))
		}
		t.Flush()
		return nil
	},
}

var labValidateCmd = &cobra.Command{
	Use:   "validate <lab>",
	Short: "Validate a lab definition",
	Long: `Validate a lab definition without contacting any device.

With --devices, command scopes are also checked against device types:
a command scoped to routers may only carry expectations for routers.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		def, err := resolveLab(args[0])
		if err != nil {
			return err
		}
		if err := def.Validate(); err != nil {
			return err
		}
		if len(labDevices) > 0 {
			if err := def.CheckScopes(labDevices); err != nil {
				return err
			}
		}
		fmt.Printf("%s %s: %d commands, %d hosts\n", cli.Green("✓"), def.ID, len(def.Commands), len(def.Hosts()))
		return nil
	},
}

var labCheckCmd = &cobra.Command{
	Use:   "check <lab>",
	Short: "Check a lab against captured or live command output",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		def, err := resolveLab(args[0])
		if err != nil {
			return err
		}

		outputs, source, err := openOutputSource()
		if err != nil {
			return err
		}
		var rec *recordingOutputs
		if labSave != "" {
			rec = &recordingOutputs{src: outputs}
			outputs = rec
		}

		policy := verify.PolicyStrict
		if labContains {
			policy = verify.PolicyContains
		}
		engine := &verify.Engine{Outputs: outputs, Policy: policy}

		ctx, stop := signalContext()
		defer stop()

		event := audit.NewEvent(currentUser(), audit.KindLab, def.ID).
			WithSource(source).
			WithPolicy(policy.String())
		start := time.Now()

		res, err := newSession().CheckLab(ctx, engine, def)
		event.WithDuration(time.Since(start))
		if err != nil {
			logAudit(event.WithError(err))
			return err
		}
		logAudit(event.WithLabResult(res))

		if rec != nil {
			if err := collect.WriteCapture(labSave, def.ID, rec.outputs); err != nil {
				return err
			}
			if !jsonOutput {
				fmt.Printf("Captured output saved to %s\n\n", labSave)
			}
		}

		if jsonOutput {
			if err := printJSON(res); err != nil {
				return err
			}
		} else {
			printLabResult(def, res)
		}
		if !res.Verified() {
			return errNotVerified
		}
		return nil
	},
}

func openOutputSource() (verify.OutputSource, string, error) {
	switch {
	case labOutput != "" && labSSH:
		return nil, "", fmt.Errorf("--output and --ssh are mutually exclusive")
	case labOutput != "":
		if labSave != "" {
			return nil, "", fmt.Errorf("--save requires --ssh")
		}
		return &collect.FileOutputSource{Path: labOutput}, "file:" + labOutput, nil
	case labSSH:
		password, err := sshPassword()
		if err != nil {
			return nil, "", err
		}
		user := util.FirstNonEmpty(labSSHUser, userSettings.GetSSHUser())
		port := labSSHPort
		if port == 0 {
			port = userSettings.GetSSHPort()
		}
		return &collect.SSHOutputSource{
			User:     user,
			Password: password,
			Port:     port,
			Timeout:  labTimeout,
			Addrs:    labAddrs,
		}, "ssh", nil
	}
	return nil, "", fmt.Errorf("output source required: use --output <capture.yaml> or --ssh")
}

// sshPassword reads the password from NEWTVERIFY_SSH_PASSWORD, or prompts
// when stdin is a terminal.
func sshPassword() (string, error) {
	if pw, ok := os.LookupEnv("NEWTVERIFY_SSH_PASSWORD"); ok {
		return pw, nil
	}
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return "", fmt.Errorf("no SSH password: set NEWTVERIFY_SSH_PASSWORD")
	}
	fmt.Fprint(os.Stderr, "SSH password: ")
	pw, err := term.ReadPassword(fd)
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("reading SSH password: %w", err)
	}
	return string(pw), nil
}

// resolveLab loads ref as a file when it exists, otherwise looks it up by
// id in the lab directory.
func resolveLab(ref string) (*lab.Definition, error) {
	if _, err := os.Stat(ref); err == nil {
		return lab.Load(ref)
	}
	dir := labDirectory()
	defs, err := lab.LoadDir(dir)
	if err != nil {
		return nil, err
	}
	def, ok := lab.Find(defs, ref)
	if !ok {
		return nil, fmt.Errorf("lab %q not found (no such file, and no lab with that id in %s)", ref, dir)
	}
	return def, nil
}

func labDirectory() string {
	if labDir != "" {
		return labDir
	}
	if userSettings == nil {
		return "."
	}
	return userSettings.GetLabDir()
}

// recordingOutputs keeps a copy of what its source returned so a live
// capture can be saved and replayed later.
type recordingOutputs struct {
	src     verify.OutputSource
	outputs map[lab.OutputKey]string
}

func (r *recordingOutputs) FetchOutput(ctx context.Context, def *lab.Definition) (map[lab.OutputKey]string, error) {
	out, err := r.src.FetchOutput(ctx, def)
	if err != nil {
		return nil, err
	}
	r.outputs = make(map[lab.OutputKey]string, len(out))
	for k, v := range out {
		r.outputs[k] = v
	}
	return out, nil
}

func init() {
	labCmd.PersistentFlags().StringVar(&labDir, "dir", "", "Lab directory (default from settings)")

	labValidateCmd.Flags().StringToStringVar(&labDevices, "devices", nil, "Device types for scope checks (host=router|switch,...)")

	labCheckCmd.Flags().StringVar(&labOutput, "output", "", "Read command output from a capture file")
	labCheckCmd.Flags().BoolVar(&labSSH, "ssh", false, "Run the lab's commands over SSH")
	labCheckCmd.Flags().StringVar(&labSave, "save", "", "With --ssh, save captured output to this file")
	labCheckCmd.Flags().BoolVar(&labContains, "contains", false, "Also accept output that contains the expected lines")
	labCheckCmd.Flags().StringVar(&labSSHUser, "ssh-user", "", "SSH user (default from settings)")
	labCheckCmd.Flags().IntVar(&labSSHPort, "ssh-port", 0, "SSH port (default from settings)")
	labCheckCmd.Flags().StringToStringVar(&labAddrs, "addr", nil, "Address to dial per host (host=addr,...)")
	labCheckCmd.Flags().DurationVar(&labTimeout, "timeout", 10*time.Second, "SSH connect timeout")

	labCmd.AddCommand(labListCmd)
	labCmd.AddCommand(labValidateCmd)
	labCmd.AddCommand(labCheckCmd)
}
