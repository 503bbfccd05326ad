// File: internal/cli/run.go
// Author: momentics <momentics@gmail.com>

package cli

import (
	"fmt"
	"io"
	"os"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/momentics/cndevent/affinity"
	"github.com/momentics/cndevent/api"
	"github.com/momentics/cndevent/control"
	"github.com/momentics/cndevent/internal/logging"
	"github.com/momentics/cndevent/internal/service"
	"github.com/momentics/cndevent/reactor"
)

// RunOptions holds flags for the run command. Flags that were set override
// the config file.
type RunOptions struct {
	ConfigPath string
	Socket     string
	MaxEvents  int
	Waiter     string
	LogLevel   string
	CPU        int
}

// NewRunCommand creates the run command.
func NewRunCommand() *cobra.Command {
	opts := &RunOptions{}
	def := control.DefaultConfig()

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Start the event loop and control socket",
		Long: `Start the event loop in the foreground. SIGINT or SIGTERM stops the loop
after the current dispatch cycle.

Example:
  cnd run --config /etc/cnd.yaml
  cnd run --socket /tmp/cnd.sock --waiter epoll --log-level debug`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.resolve(cmd)
			if err != nil {
				return err
			}
			return runDaemon(cfg, opts.ConfigPath, cmd.ErrOrStderr())
		},
	}

	cmd.Flags().StringVarP(&opts.ConfigPath, "config", "c", "", "path to YAML config file")
	cmd.Flags().StringVar(&opts.Socket, "socket", def.Socket, "control socket path")
	cmd.Flags().IntVar(&opts.MaxEvents, "max-events", def.MaxEvents, "watch table capacity")
	cmd.Flags().StringVar(&opts.Waiter, "waiter", def.Waiter, "readiness backend (select|epoll)")
	cmd.Flags().StringVar(&opts.LogLevel, "log-level", def.LogLevel, "log level (trace|debug|info|notice|warning|error|off)")
	cmd.Flags().IntVar(&opts.CPU, "cpu", def.CPU, "pin the loop thread to this CPU (-1 disables)")

	return cmd
}

// resolve loads the config file, if any, and applies explicitly set flags.
func (o *RunOptions) resolve(cmd *cobra.Command) (control.Config, error) {
	cfg := control.DefaultConfig()
	if o.ConfigPath != "" {
		loaded, err := control.LoadConfig(o.ConfigPath)
		if err != nil {
			return cfg, err
		}
		cfg = loaded
	}
	flags := cmd.Flags()
	if flags.Changed("socket") {
		cfg.Socket = o.Socket
	}
	if flags.Changed("max-events") {
		cfg.MaxEvents = o.MaxEvents
	}
	if flags.Changed("waiter") {
		cfg.Waiter = o.Waiter
	}
	if flags.Changed("log-level") {
		cfg.LogLevel = o.LogLevel
	}
	if flags.Changed("cpu") {
		cfg.CPU = o.CPU
	}
	return cfg, cfg.Validate()
}

func newWaiter(cfg control.Config) (api.Waiter, error) {
	switch cfg.Waiter {
	case control.WaiterEpoll:
		return reactor.NewEpollWaiter(cfg.MaxEvents)
	case control.WaiterSelect:
		return reactor.NewSelectWaiter()
	default:
		return nil, fmt.Errorf("unknown waiter %q: %w", cfg.Waiter, api.ErrInvalidArgument)
	}
}

func runDaemon(cfg control.Config, configPath string, stderr io.Writer) error {
	level, err := logging.ParseLevel(cfg.LogLevel)
	if err != nil {
		return err
	}
	lv := logging.NewLevelVar(level)
	logger := logging.New(stderr, lv)

	store := control.NewConfigStore(cfg)
	store.OnReload(func(next control.Config) {
		lvl, err := logging.ParseLevel(next.LogLevel)
		if err != nil {
			logger.Warning().Err(err).Log("ignoring reloaded log level")
			return
		}
		lv.Set(lvl)
		logger.Notice().Str("log_level", next.LogLevel).Log("log level reloaded")
	})
	if configPath != "" {
		cw, err := control.WatchConfig(configPath, store, logger)
		if err != nil {
			return err
		}
		defer cw.Close()
	}

	waiter, err := newWaiter(cfg)
	if err != nil {
		return err
	}

	metrics := control.NewMetricsRegistry()
	probes := control.NewDebugProbes()
	control.RegisterPlatformProbes(probes)
	probes.RegisterProbe("metrics", func() any { return metrics.GetSnapshot() })

	svc := service.New(cfg.Socket, logger, metrics, probes)
	loop, err := reactor.New(
		reactor.WithMaxEvents(cfg.MaxEvents),
		reactor.WithWaiter(waiter),
		reactor.WithLogger(logger),
		reactor.WithMetrics(metrics),
		reactor.WithBootstrap(svc.Bootstrap),
	)
	if err != nil {
		_ = waiter.Close()
		return err
	}
	defer loop.Close()

	if err := loop.Init(); err != nil {
		return err
	}
	defer svc.Close()

	sp, err := installSignalPipe(loop, logger, os.Interrupt, syscall.SIGTERM)
	if err != nil {
		return err
	}
	defer sp.Close()

	release, err := affinity.Pin(cfg.CPU)
	if err != nil {
		return err
	}
	defer release()

	logger.Info().
		Str("loop_id", loop.ID()).
		Str("waiter", cfg.Waiter).
		Int("max_events", cfg.MaxEvents).
		Int("cpu", cfg.CPU).
		Int("pid", os.Getpid()).
		Log("cnd starting")
	return loop.Run()
}
