// Package cli implements the Cobra command-line interface for shellgate.
package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"shellgate/internal/catalog"
	"shellgate/internal/config"
	"shellgate/internal/confirm"
	"shellgate/internal/executor"
	"shellgate/internal/gate"
	"shellgate/internal/history"
	"shellgate/internal/output"
	"shellgate/internal/policy"
	"shellgate/internal/target"
)

// Version information set by goreleaser
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// Global flag values
var (
	flagConfig    string
	flagOutput    string
	flagVerbose   bool
	flagNoHistory bool
	flagYolo      int
	flagDistrobox string
	flagDocker    string
	flagPodman    string
)

var rootCmd = &cobra.Command{
	Use:   "shellgate",
	Short: "Safety gate for model-proposed shell commands",
	Long: `shellgate evaluates shell commands proposed by an AI assistant before
they run, on the host or inside a container backend.

Every command is classified against a catalog of dangerous-command
signatures, a safety-mode policy turns the classification into a decision,
and anything ambiguous is confirmed interactively before execution.

Safety modes (stack -y to loosen the gate):
  (default)  confirm    prompt on anything risky
  -y         safe-yolo  warn on privilege use, prompt on real danger
  -yy        root-yolo  warn-allow everything except critical matches
  -yyy       full-yolo  explicit opt-out of all checks`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if flagVerbose {
			log.SetLevel(log.DebugLevel)
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "config file (default ~/.shellgate/config.toml)")
	rootCmd.PersistentFlags().StringVarP(&flagOutput, "output", "o", "", "output format: text, json, yaml")
	rootCmd.PersistentFlags().BoolVar(&flagVerbose, "verbose", false, "enable debug logging")
	rootCmd.PersistentFlags().BoolVar(&flagNoHistory, "no-history", false, "disable the audit history for this invocation")
	rootCmd.PersistentFlags().CountVarP(&flagYolo, "yolo", "y", "increase safety-bypass level (-y, -yy, -yyy)")
	rootCmd.PersistentFlags().StringVarP(&flagDistrobox, "distrobox", "d", "", "run inside a distrobox container")
	rootCmd.PersistentFlags().StringVar(&flagDocker, "docker", "", "run inside a docker container")
	rootCmd.PersistentFlags().StringVar(&flagPodman, "podman", "", "run inside a podman container")
}

// Execute runs the root command and maps errors to process exit codes.
func Execute() int {
	if err := rootCmd.Execute(); err != nil {
		var rej *gate.RejectionError
		if errors.As(err, &rej) {
			return rej.ExitCode()
		}
		var child *childExitError
		if errors.As(err, &child) {
			return child.code
		}
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}
	return 0
}

// childExitError propagates a failed command's own exit code, distinct from
// every policy exit code.
type childExitError struct {
	code int
}

func (e *childExitError) Error() string {
	return fmt.Sprintf("command exited with status %d", e.code)
}

// resolveTarget validates the target flags. At most one backend may be
// active; conflicts are a configuration error raised before the gate sees
// any command.
func resolveTarget() (target.Target, error) {
	set := 0
	t := target.Host()
	if flagDistrobox != "" {
		set++
		t = target.Container(target.BackendDistrobox, flagDistrobox)
	}
	if flagDocker != "" {
		set++
		t = target.Container(target.BackendDocker, flagDocker)
	}
	if flagPodman != "" {
		set++
		t = target.Container(target.BackendPodman, flagPodman)
	}
	if set > 1 {
		return target.Target{}, fmt.Errorf("conflicting target flags: pick one of --distrobox, --docker, --podman")
	}
	return t, nil
}

// setup is everything a gate-facing subcommand needs, built once per
// invocation.
type setup struct {
	cfg     *config.Config
	cat     *catalog.Catalog
	mode    policy.Mode
	tgt     target.Target
	out     *output.Writer
	logger  *log.Logger
	history *history.Store
}

// loadSetup builds the immutable evaluation context from flags and config.
func loadSetup() (*setup, error) {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return nil, err
	}

	mode, err := policy.FromYoloCount(flagYolo)
	if err != nil {
		return nil, err
	}

	tgt, err := resolveTarget()
	if err != nil {
		return nil, err
	}

	cat := catalog.New()
	if cfg.RulesFile != "" {
		rules, err := config.LoadRules(cfg.RulesFile)
		if err != nil {
			return nil, err
		}
		if err := cat.Extend(rules); err != nil {
			return nil, err
		}
	}

	format := output.Format(cfg.Output)
	if flagOutput != "" {
		format = output.Format(flagOutput)
	}
	if !format.Valid() {
		return nil, fmt.Errorf("unknown output format %q", format)
	}

	logger := log.NewWithOptions(os.Stderr, log.Options{
		Level:  parseLogLevel(cfg.LogLevel),
		Prefix: "shellgate",
	})
	if flagVerbose {
		logger.SetLevel(log.DebugLevel)
	}

	s := &setup{
		cfg:    cfg,
		cat:    cat,
		mode:   mode,
		tgt:    tgt,
		out:    output.New(format),
		logger: logger,
	}

	if cfg.History.Enabled && !flagNoHistory {
		store, err := history.Open(cfg.History.Path)
		if err != nil {
			// A broken audit log must not block the gate; log and go on.
			logger.Warn("history disabled", "err", err)
		} else {
			s.history = store
		}
	}
	return s, nil
}

// newGate assembles the evaluation pipeline from a setup.
func (s *setup) newGate() *gate.Gate {
	var recorder gate.Recorder = history.Noop{}
	if s.history != nil {
		recorder = s.history
	}
	return &gate.Gate{
		Mode:     s.mode,
		Catalog:  s.cat,
		Resolver: target.NewResolver(s.tgt),
		Prompter: confirm.NewTerminalPrompter(s.logger),
		Session:  confirm.NewSession(),
		Runner:   executor.New(s.logger),
		Recorder: recorder,
		Logger:   s.logger,
		ExecOpts: executor.Options{
			Stdout: os.Stdout,
			Stderr: os.Stderr,
			Stdin:  os.Stdin,
		},
	}
}

func (s *setup) close() {
	if s.history != nil {
		s.history.Close()
	}
}

func parseLogLevel(level string) log.Level {
	switch level {
	case "debug":
		return log.DebugLevel
	case "info":
		return log.InfoLevel
	case "error":
		return log.ErrorLevel
	default:
		return log.WarnLevel
	}
}
