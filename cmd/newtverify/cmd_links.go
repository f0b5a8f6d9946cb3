package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/newtron-network/newtverify/pkg/audit"
	"github.com/newtron-network/newtverify/pkg/collect"
	"github.com/newtron-network/newtverify/pkg/intent"
	"github.com/newtron-network/newtverify/pkg/util"
	"github.com/newtron-network/newtverify/pkg/verify"
)

var linksCmd = &cobra.Command{
	Use:   "links",
	Short: "Verify link intents against reported device state",
	Long: `Verify link intents against the state devices report.

An intent file holds a batch of link intents, each tagged with its kind:

  links:
    - kind: trunk
      hostname1: SW1
      interface1: Gi0/1
      hostname2: SW2
      interface2: Gi0/2
      vlans: [10, "20-22"]

State is read from a JSON state report (--state) or from a Redis state
database (--redis). The whole batch is verified against one fetch.

Examples:
  newtverify links verify links.yaml --state report.json
  newtverify links verify links.yaml --redis
  newtverify links verify links.yaml --redis 10.0.0.5:6379 --json`,
}

var (
	linksStateFile string

	redisAddr string
	redisDB   int
)

var linksVerifyCmd = &cobra.Command{
	Use:   "verify <intents.yaml>",
	Short: "Verify a batch of link intents",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		intents, err := intent.LoadBatch(args[0])
		if err != nil {
			return err
		}

		ctx, stop := signalContext()
		defer stop()

		states, source, closeFn, err := openStateSource(ctx, cmd)
		if err != nil {
			return err
		}
		defer closeFn()

		engine := &verify.Engine{States: states}
		event := audit.NewEvent(currentUser(), audit.KindLinks, args[0]).WithSource(source)
		start := time.Now()

		verdicts, err := newSession().VerifyLinks(ctx, engine, intents)
		event.WithDuration(time.Since(start))
		if err != nil {
			logAudit(event.WithError(err))
			return err
		}
		logAudit(event.WithLinkVerdicts(verdicts))

		if jsonOutput {
			if err := printJSON(verdicts); err != nil {
				return err
			}
		} else {
			printLinkVerdicts(verdicts, verbose)
		}
		if !verify.AllMatched(verdicts) {
			return errNotVerified
		}
		return nil
	},
}

// openStateSource picks the state source from --state or --redis. The
// returned close func is always safe to call.
func openStateSource(ctx context.Context, cmd *cobra.Command) (verify.StateSource, string, func(), error) {
	useRedis := cmd.Flags().Changed("redis")
	switch {
	case linksStateFile != "" && useRedis:
		return nil, "", nil, fmt.Errorf("--state and --redis are mutually exclusive")
	case linksStateFile != "":
		return &collect.FileStateSource{Path: linksStateFile}, "file:" + linksStateFile, func() {}, nil
	case useRedis:
		src, addr, err := openRedis(ctx, cmd)
		if err != nil {
			return nil, "", nil, err
		}
		return src, "redis:" + addr, func() { src.Close() }, nil
	}
	return nil, "", nil, fmt.Errorf("state source required: use --state <report.json> or --redis [addr]")
}

// openRedis connects to the Redis state database named by --redis and
// --redis-db, falling back to settings.
func openRedis(ctx context.Context, cmd *cobra.Command) (*collect.RedisStateSource, string, error) {
	addr := redisAddr
	if addr == redisFromSettings {
		addr = ""
	}
	addr = util.FirstNonEmpty(addr, userSettings.GetRedisAddr())
	db := redisDB
	if !cmd.Flags().Changed("redis-db") {
		db = userSettings.RedisDB
	}
	src := collect.NewRedisStateSource(addr, db)
	if err := src.Connect(ctx); err != nil {
		src.Close()
		return nil, "", fmt.Errorf("connecting to redis at %s: %w", addr, err)
	}
	return src, addr, nil
}

// redisFromSettings is the value --redis takes when given without an address.
const redisFromSettings = "settings"

func addRedisFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&redisAddr, "redis", "", "Redis state database address (default from settings)")
	cmd.Flags().Lookup("redis").NoOptDefVal = redisFromSettings
	cmd.Flags().IntVar(&redisDB, "redis-db", collect.DefaultStateDB, "Redis database holding reported state")
}

func init() {
	linksVerifyCmd.Flags().StringVar(&linksStateFile, "state", "", "Read state from a JSON state report")
	addRedisFlags(linksVerifyCmd)

	linksCmd.AddCommand(linksVerifyCmd)
}
