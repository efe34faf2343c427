// Command dsync runs the continuous file synchronization engine against
// one or more local-root/remote-dest mappings. Wiring argument parsing
// into an engine run is a thin driver, not a specified component (CLI arg
// parsing is explicitly out of scope) — it exists only so the engine has
// somewhere to be exercised from, following rclone's own cobra.Command
// root-command idiom.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/rclone/dsync/config"
	dfs "github.com/rclone/dsync/fs"
	"github.com/rclone/dsync/logging"
	"github.com/rclone/dsync/orchestrator"
	"github.com/rclone/dsync/rpcagent"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		logging.Errorf(nil, "%v", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		mappingFlags []string
		debounceMs   int
		skipPolicy   string
		blockSize    int
	)

	cmd := &cobra.Command{
		Use:   "dsync",
		Short: "Continuously mirror local directories to a remote agent",
		RunE: func(cmd *cobra.Command, args []string) error {
			mappings, err := parseMappings(mappingFlags)
			if err != nil {
				return err
			}
			cfg := config.Config{
				Mappings:   mappings,
				DebounceMs: time.Duration(debounceMs) * time.Millisecond,
				SkipPolicy: config.SkipPolicy(skipPolicy),
				BlockSize:  blockSize,
			}
			return run(cmd.Context(), cfg)
		},
	}

	flags := cmd.Flags()
	flags.StringArrayVar(&mappingFlags, "map", nil, "name=localRoot:remoteDest mapping, repeatable")
	flags.IntVar(&debounceMs, "debounce-ms", 100, "milliseconds to coalesce watcher bursts before a sync pass")
	flags.StringVar(&skipPolicy, "skip", string(config.SkipPolicyNone), "skip predicate policy: none, dotgit, gitignore")
	flags.IntVar(&blockSize, "block-size", dfs.B, "block size in bytes; must be positive, but hashing and transfer always use the fixed 4 MiB block size")
	pflag.CommandLine = flags

	return cmd
}

func parseMappings(raw []string) ([]dfs.Mapping, error) {
	mappings := make([]dfs.Mapping, 0, len(raw))
	for _, spec := range raw {
		nameAndRest := strings.SplitN(spec, "=", 2)
		if len(nameAndRest) != 2 {
			return nil, fmt.Errorf("invalid --map %q: expected name=localRoot:remoteDest", spec)
		}
		rootAndDest := strings.SplitN(nameAndRest[1], ":", 2)
		if len(rootAndDest) != 2 {
			return nil, fmt.Errorf("invalid --map %q: expected name=localRoot:remoteDest", spec)
		}
		mappings = append(mappings, dfs.Mapping{
			Name:       nameAndRest[0],
			LocalRoot:  rootAndDest[0],
			RemoteDest: rootAndDest[1],
		})
	}
	return mappings, nil
}

// run constructs the RPC client and orchestrator and blocks until an
// interrupt or a fatal error. The real remote-agent transport is the
// non-goal spec.md §1 names as a black box; this wires an in-memory
// client as a placeholder so the engine is runnable end-to-end, the same
// way a pluggable Client constructor would be substituted for a real one.
func run(ctx context.Context, cfg config.Config) error {
	client := rpcagent.NewMemClient()

	o, err := orchestrator.New(cfg, client)
	if err != nil {
		return err
	}
	o.OnComplete(func() {
		logging.Logf(nil, "sync pass complete, queue quiescent")
	})

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	runErr := make(chan error, 1)
	go func() { runErr <- o.Run(ctx) }()

	select {
	case <-ctx.Done():
		closeErr := o.Close()
		if err := <-runErr; err != nil {
			return err
		}
		return closeErr
	case err := <-runErr:
		closeErr := o.Close()
		if err != nil {
			return err
		}
		return closeErr
	}
}
