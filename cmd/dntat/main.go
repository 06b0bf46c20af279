// Command dntat exercises the threshold multi-signer anonymous token scheme.
//
// Usage:
//
//	dntat demo  [--signers n] [--proof]
//	dntat bench [--sweep 1,2,4,8] [--rounds n] [--parallel n] [--chart out.html]
//	dntat version
//
// Global flags:
//
//	--config      Optional YAML/TOML/JSON config file
//	--workers     Concurrent signer tasks per session (0 = one per signer)
//	--backend     Pairing backend: gnark, or blst when built with -tags blst
//	--log-level   debug, info, warn, error (default: info)
//	--log-format  auto, text, json (default: auto)
//	--verbosity   0-5, overrides --log-level when set
//
// Every setting can also be given as a DNTAT_* environment variable, for
// example DNTAT_SIGNERS=8 or DNTAT_LOG_LEVEL=debug.
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/eth2030/dntat/crypto"
	"github.com/eth2030/dntat/log"
)

// Build-time version info, overridable with ldflags:
//
//	go build -ldflags "-X main.version=v0.2.0 -X main.commit=abc1234"
var (
	version = "v0.1.0-dev"
	commit  = "unknown"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

// run is the actual entry point, returning an exit code. Accepts CLI
// arguments (without the program name) so it can be tested in isolation.
func run(args []string) int {
	return runWith(args, os.Stdout, os.Stderr)
}

func runWith(args []string, stdout, stderr io.Writer) int {
	root := newRootCmd(stdout, stderr)
	root.SetArgs(args)
	if err := root.Execute(); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

// app carries the resolved configuration from the root command to the
// subcommands.
type app struct {
	v      *viper.Viper
	cfg    Config
	log    *log.Logger
	stdout io.Writer
	stderr io.Writer
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	a := &app{v: newViper(), stdout: stdout, stderr: stderr}
	var (
		configPath string
		verbosity  int
	)
	defaults := DefaultConfig()

	root := &cobra.Command{
		Use:           "dntat",
		Short:         "Threshold multi-signer anonymous tokens over BLS12-381",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Name() == "version" {
				return nil
			}
			if err := bindFlags(a.v, cmd.Flags()); err != nil {
				return err
			}
			cfg, err := LoadConfig(a.v, configPath)
			if err != nil {
				return err
			}
			a.cfg = cfg

			level := log.LevelFromString(cfg.LogLevel)
			if verbosity >= 0 {
				level = log.VerbosityToLevel(verbosity)
			}
			a.log = log.NewConsole(stderr, level, cfg.LogFormat)
			log.SetDefault(a.log)

			if !crypto.Initialized() {
				if err := crypto.Init(); err != nil {
					return fmt.Errorf("crypto init: %w", err)
				}
			}
			crypto.SetPairingBackend(pairingBackends[cfg.Backend])
			a.log.Debug("configuration loaded",
				"backend", cfg.Backend, "workers", cfg.Workers, "proof", cfg.Proof, "level", level.String())
			return nil
		},
	}
	root.SetOut(stdout)
	root.SetErr(stderr)

	pf := root.PersistentFlags()
	pf.StringVar(&configPath, "config", "", "config file (yaml, toml or json)")
	pf.Int("workers", defaults.Workers, "concurrent signer tasks per session (0 = one per signer)")
	pf.Bool("proof", defaults.Proof, "attach and check a request proof in every session")
	pf.String("backend", defaults.Backend, "pairing backend")
	pf.String("log-level", defaults.LogLevel, "log level: debug, info, warn, error")
	pf.String("log-format", defaults.LogFormat, "log format: auto, text, json")
	pf.IntVar(&verbosity, "verbosity", -1, "log verbosity 0-5, overrides --log-level")

	root.AddCommand(newDemoCmd(a), newBenchCmd(a), newVersionCmd(stdout))
	return root
}

func newVersionCmd(stdout io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(*cobra.Command, []string) {
			fmt.Fprintf(stdout, "dntat %s (commit %s)\n", version, commit)
		},
	}
}
