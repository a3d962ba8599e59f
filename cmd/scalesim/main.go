package main

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"runtime/debug"
	"strings"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	pflag "github.com/spf13/pflag"

	"github.com/bft-labs/scalesim/internal/cliconfig"
	"github.com/bft-labs/scalesim/pkg/log"
	"github.com/bft-labs/scalesim/pkg/scalesim"
	"github.com/bft-labs/scalesim/plugins/inputwatcher"
	"github.com/bft-labs/scalesim/plugins/wsmonitor"
)

const helpDescription = `
Replay recorded vehicle scale readings as the serial output of a Pacific
multi-channel scale indicator.

Each CSV row (after the header) becomes one frame: the channel masses, their
TOTAL, and the / and \ markers, written to the serial line at a fixed period.
Point weighbridge software at the other end of a null-modem pair and it sees a
live scale.

Configure via file ($HOME/.scalesim/config.toml, or a legacy .cfg file),
SCALESIM_* environment variables, or flags.
`

var exampleUsage = strings.TrimSpace(`
  scalesim --dev /dev/ttyUSB0 --mass-file scales_input.csv
  scalesim --config scales.cfg --mode loop --monitor-addr :8080
  scalesim --dry-run --num-channels 6 --periodicity 0
  scalesim ports
  scalesim frame --num-channels 4 -- 1200 1350 -5 1420
`)

func getVersion() string {
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" {
		return info.Main.Version
	}
	return "dev"
}

func main() {
	bootLog, _ := cliconfig.NewLogger(cliconfig.DefaultLogLevel, "")

	if err := newRootCmd().Execute(); err != nil {
		bootLog.Error().Err(err).Msg("scalesim")
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	cfg := cliconfig.DefaultConfig()
	var cfgPath string

	root := &cobra.Command{
		Use:           "scalesim",
		Short:         "Simulate the serial output of a Pacific multi-channel vehicle scale",
		Long:          strings.TrimSpace(helpDescription),
		Example:       exampleUsage,
		Version:       fmt.Sprintf("%s %s/%s", getVersion(), runtime.GOOS, runtime.GOARCH),
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := resolveConfig(cmd, &cfg, cfgPath); err != nil {
				return err
			}
			return runPlayback(cmd, cfg)
		},
	}

	root.Flags().StringVar(&cfgPath, "config", "", "path to config file, TOML or legacy .cfg (default: $HOME/.scalesim/config.toml)")
	root.Flags().StringVar(&cfg.Device, "dev", cfg.Device, "serial device to write frames to")
	root.Flags().IntVar(&cfg.Baud, "baud", cfg.Baud, "serial baud rate")
	root.Flags().StringVar(&cfg.Mode, "mode", cfg.Mode, `"loop" to replay the input forever, anything else plays it once`)
	root.Flags().Var(periodValue{&cfg.Periodicity}, "periodicity", "delay after each frame (seconds, or a duration such as 250ms)")
	root.Flags().IntVar(&cfg.NumChannels, "num-channels", cfg.NumChannels, "number of scale channels (4 or 6)")
	root.Flags().StringVar(&cfg.MassFile, "mass-file", cfg.MassFile, "CSV file of recorded readings (header row first)")
	root.Flags().DurationVar(&cfg.SendTimeout, "timeout", cfg.SendTimeout, "per-frame write timeout")
	root.Flags().BoolVar(&cfg.DryRun, "dry-run", cfg.DryRun, "write frames to stdout instead of the serial device")
	root.Flags().BoolVar(&cfg.WatchInput, "watch-input", cfg.WatchInput, "reload the mass file when it changes (loop mode)")
	root.Flags().StringVar(&cfg.MonitorAddr, "monitor-addr", cfg.MonitorAddr, "serve /ws and /status on this address (disabled when empty)")
	root.Flags().StringVar(&cfg.LogFile, "log-file", cfg.LogFile, "also write logs to this file, rotated")
	root.Flags().StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "log level (debug, info, warn, error)")

	root.AddCommand(newPortsCmd(), newFrameCmd())
	return root
}

// resolveConfig layers the config file, environment and explicitly set flags
// over the defaults, then validates the result.
func resolveConfig(cmd *cobra.Command, cfg *cliconfig.Config, cfgPath string) error {
	cfgFile := cfgPath
	if cfgFile == "" {
		cfgFile = cliconfig.DefaultConfigPath()
	}

	changed := map[string]bool{}
	cmd.Flags().Visit(func(f *pflag.Flag) { changed[f.Name] = true })

	if cfgFile != "" && cliconfig.FileExists(cfgFile) {
		fc, err := cliconfig.LoadFileConfig(cfgFile)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		if err := cliconfig.ApplyFileConfig(cfg, fc, changed); err != nil {
			return err
		}
	} else if cfgPath != "" {
		return fmt.Errorf("config file %s not found", cfgPath)
	}

	// SCALESIM_* override the file but not flags that were set explicitly.
	if err := cliconfig.ApplyEnvConfig(cfg, changed); err != nil {
		return err
	}

	return cfg.Validate()
}

func runPlayback(cmd *cobra.Command, cfg cliconfig.Config) error {
	logger, closer := cliconfig.NewLogger(cfg.LogLevel, cfg.LogFile)
	defer closer.Close()

	logger.Info().Interface("config", cfg).Msg("configuration")

	libCfg := scalesim.Config{
		Device:       cfg.Device,
		BaudRate:     cfg.Baud,
		Mode:         cfg.Mode,
		Periodicity:  cfg.Periodicity,
		ChannelCount: cfg.NumChannels,
		InputFile:    cfg.MassFile,
		SendTimeout:  cfg.SendTimeout,
		DryRun:       cfg.DryRun,
	}

	opts := []scalesim.Option{
		scalesim.WithLogger(log.NewZerologAdapterWithLogger(logger)),
		scalesim.WithOutput(cmd.OutOrStdout()),
	}
	if cfg.WatchInput {
		opts = append(opts, inputwatcher.WithInputWatcher(inputwatcher.DefaultConfig()))
	}
	if cfg.MonitorAddr != "" {
		opts = append(opts, wsmonitor.WithMonitor(wsmonitor.Config{Addr: cfg.MonitorAddr}))
	}

	sim, err := scalesim.New(libCfg, opts...)
	if err != nil {
		return fmt.Errorf("create simulator: %w", err)
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	if err := sim.Start(cmd.Context()); err != nil {
		return fmt.Errorf("start simulator: %w", err)
	}

	select {
	case sig := <-sigCh:
		logger.Info().Str("signal", sig.String()).Msg("received signal, stopping...")
		if err := sim.Stop(); err != nil && !errors.Is(err, scalesim.ErrNotRunning) {
			return fmt.Errorf("stop simulator: %w", err)
		}
	case <-sim.Done():
	}

	logSummary(logger, sim.Stats())
	return sim.Err()
}

func logSummary(logger zerolog.Logger, stats scalesim.Stats) {
	logger.Info().
		Uint64("frames_sent", stats.FramesSent).
		Uint64("send_failures", stats.SendFailures).
		Uint64("passes", stats.Passes).
		Uint64("reloads", stats.Reloads).
		Msg("playback summary")
}
