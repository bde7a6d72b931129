package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/ironsheep/pixelscale/internal/config"
	"github.com/ironsheep/pixelscale/internal/imaging"
	"github.com/ironsheep/pixelscale/internal/logger"
	"github.com/ironsheep/pixelscale/internal/service"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// NewRootCmd creates the root command for pixelscale.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pixelscale [flags] INPUT [OUTPUT]",
		Short: "Undo nearest-neighbour upscaling of pixel art",
		Long: `pixelscale finds the integer factor a piece of pixel art was upscaled by
and writes the image back at its native resolution.

Without OUTPUT the result is written next to INPUT as <name>.scaled.<ext>.
The OUTPUT extension selects the format. Animated GIFs keep every frame;
animated input written to another format keeps only the first frame.`,
		Version:       getVersion(),
		Args:          cobra.RangeArgs(1, 2),
		RunE:          runRootCmd,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags that apply to all commands
	flags := cmd.PersistentFlags()
	flags.BoolP("verbose", "v", false, "Enable verbose logging")
	flags.StringP("config", "c", "", "Path to a YAML config file")
	flags.BoolP("ignore-border", "b", false,
		"Ignore the first and last run of every row and column (framed or padded art)")
	flags.BoolP("only-analyze-first", "f", false, "Only analyse the first frame of an animation")
	flags.Bool("gcd", false, "Reduce run lengths to their greatest common divisor")
	flags.IntP("workers", "w", config.DefaultWorkers, "Number of animation frames scanned concurrently")
	flags.String("resampler", config.DefaultResampler, "Downscaling backend: imaging, bild or sample")

	cmd.Flags().BoolP("in-place", "i", false, "Overwrite INPUT instead of writing a new file (ignored when OUTPUT is given)")

	// Add subcommands
	cmd.AddCommand(NewDetectCmd())
	cmd.AddCommand(NewMCPCmd())
	cmd.AddCommand(NewServeCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := NewRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}

func runRootCmd(cmd *cobra.Command, args []string) error {
	cfg, log, err := loadSettings(cmd)
	if err != nil {
		return err
	}

	inPlace, err := cmd.Flags().GetBool("in-place")
	if err != nil {
		return fmt.Errorf("failed to get in-place flag: %w", err)
	}

	req := service.Request{
		Input:          args[0],
		InPlace:        inPlace,
		IgnoreBorder:   cfg.IgnoreBorder,
		FirstFrameOnly: cfg.FirstFrameOnly,
	}
	if len(args) == 2 {
		req.Output = args[1]
	}

	u, err := newUnscaler(cfg, log, cmd.OutOrStdout())
	if err != nil {
		return err
	}

	_, err = u.Run(cmd.Context(), req)
	return err
}

// loadSettings resolves the configuration and applies the flags that were
// set explicitly on the command line.
func loadSettings(cmd *cobra.Command) (*config.Config, *logrus.Logger, error) {
	flags := cmd.Flags()

	configPath, err := flags.GetString("config")
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get config flag: %w", err)
	}

	cfg, path, err := config.Load(configPath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}

	if err := applyFlags(flags, cfg); err != nil {
		return nil, nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}

	log, err := logger.New(cfg.LogLevel, cfg.LogFormat, cmd.ErrOrStderr())
	if err != nil {
		return nil, nil, err
	}
	if path != "" {
		log.WithField("path", path).Debug("loaded config file")
	}
	return cfg, log, nil
}

// applyFlags copies the flags set on the command line over cfg.
func applyFlags(flags *pflag.FlagSet, cfg *config.Config) error {
	var err error
	if flags.Changed("ignore-border") {
		if cfg.IgnoreBorder, err = flags.GetBool("ignore-border"); err != nil {
			return fmt.Errorf("failed to get ignore-border flag: %w", err)
		}
	}
	if flags.Changed("only-analyze-first") {
		if cfg.FirstFrameOnly, err = flags.GetBool("only-analyze-first"); err != nil {
			return fmt.Errorf("failed to get only-analyze-first flag: %w", err)
		}
	}
	if flags.Changed("gcd") {
		if cfg.UseGCD, err = flags.GetBool("gcd"); err != nil {
			return fmt.Errorf("failed to get gcd flag: %w", err)
		}
	}
	if flags.Changed("workers") {
		if cfg.Workers, err = flags.GetInt("workers"); err != nil {
			return fmt.Errorf("failed to get workers flag: %w", err)
		}
	}
	if flags.Changed("resampler") {
		if cfg.Resampler, err = flags.GetString("resampler"); err != nil {
			return fmt.Errorf("failed to get resampler flag: %w", err)
		}
	}

	verbose, err := flags.GetBool("verbose")
	if err != nil {
		return fmt.Errorf("failed to get verbose flag: %w", err)
	}
	if verbose {
		cfg.LogLevel = logrus.DebugLevel.String()
	}
	return nil
}

// newUnscaler builds the service from cfg. Progress lines go to out.
func newUnscaler(cfg *config.Config, log *logrus.Logger, out io.Writer) (*service.Unscaler, error) {
	resampler, err := imaging.NewResampler(cfg.Resampler)
	if err != nil {
		return nil, err
	}
	return service.New(
		service.WithResampler(resampler),
		service.WithLogger(log),
		service.WithOutput(out),
		service.WithWorkers(cfg.Workers),
		service.WithGCD(cfg.UseGCD),
	), nil
}
