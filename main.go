package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/image/font"
	"golang.org/x/sync/errgroup"

	"pointview/app"
	"pointview/hal"
	"pointview/internal/buildinfo"
	"pointview/internal/cloud"
	"pointview/internal/config"
	"pointview/internal/export"
	"pointview/internal/labels"
	"pointview/internal/logging"
	"pointview/internal/stream"
	"pointview/kernel"
)

const defaultConfigPath = "pointview.yaml"

var (
	// Global flags
	configPath string
	verbose    bool

	// Run flags
	headless  bool
	hz        int
	ticks     uint64
	streamURL string
	exportDir string
	fontSrc   string

	cfg    *config.Config
	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "pointview",
	Short: "Live 3D point cloud viewer",
	Long: `pointview connects to a Socket.IO point stream and renders every batch as a
cloud of cubes. Drag a point to move it, drag empty space to orbit, right-drag to
pan and scroll to zoom. Press d or click "Detect Feature" to save the points to
feature_points.txt.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(configPath)
		if err != nil {
			return err
		}
		applyFlags(cmd)
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("invalid configuration: %w", err)
		}
		logger, err = logging.New(cfg.Logging, verbose)
		return err
	},
	RunE: runViewer,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print build information",
	Args:  cobra.NoArgs,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return nil
	},
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintln(cmd.OutOrStdout(), buildinfo.String())
	},
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Configuration helpers",
}

var configInitCmd = &cobra.Command{
	Use:   "init [path]",
	Short: "Write the default configuration to a file",
	Args:  cobra.MaximumNArgs(1),
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		path := defaultConfigPath
		if len(args) == 1 {
			path = args[0]
		}
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("%s already exists", path)
		}
		if err := config.DefaultConfig().Save(path); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", path)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", defaultConfigPath, "Config file (missing file means defaults)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Debug logging")

	f := rootCmd.Flags()
	f.BoolVar(&headless, "headless", false, "Run without a window")
	f.IntVar(&hz, "hz", 0, "Step rate in headless mode")
	f.Uint64Var(&ticks, "ticks", 0, "Stop after N steps in headless mode (0 = run until interrupted)")
	f.StringVar(&streamURL, "stream-url", "", "Socket.IO WebSocket URL")
	f.StringVar(&exportDir, "export-dir", "", "Directory exports are written to")
	f.StringVar(&fontSrc, "font", "", "Axis label font: URL or file path")

	configCmd.AddCommand(configInitCmd)
	rootCmd.AddCommand(versionCmd, configCmd)
}

// applyFlags copies explicitly set flags over the loaded configuration.
func applyFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	if f.Changed("headless") {
		cfg.Headless.Enabled = headless
	}
	if f.Changed("hz") {
		cfg.Headless.Hz = hz
	}
	if f.Changed("ticks") {
		cfg.Headless.Ticks = ticks
	}
	if f.Changed("stream-url") {
		cfg.Stream.URL = streamURL
	}
	if f.Changed("export-dir") {
		cfg.Export.Dir = exportDir
	}
	if f.Changed("font") {
		cfg.Labels.Font = fontSrc
	}
}

func runViewer(cmd *cobra.Command, args []string) (err error) {
	defer func() {
		if serr := logger.Sync(); serr != nil && !errors.Is(serr, syscall.EINVAL) && !errors.Is(serr, syscall.ENOTTY) {
			err = multierr.Append(err, serr)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("starting",
		zap.String("version", buildinfo.Short()),
		zap.String("stream", cfg.Stream.URL),
		zap.Bool("headless", cfg.Headless.Enabled))

	batches := kernel.NewMailbox[[]cloud.Point3D](cfg.Stream.MailboxSlots)
	status := &kernel.Latest[stream.Status]{}
	fonts := &kernel.Latest[font.Face]{}

	client := stream.NewClient(stream.Config{
		URL:              cfg.Stream.URL,
		Event:            cfg.Stream.Event,
		ReconnectMin:     cfg.GetReconnectMin(),
		ReconnectMax:     cfg.GetReconnectMax(),
		HandshakeTimeout: cfg.GetHandshakeTimeout(),
	}, logger.Named("stream"), batches, status)
	loader := labels.Loader{
		Src:     cfg.Labels.Font,
		Size:    cfg.Labels.Size,
		Timeout: cfg.GetFontTimeout(),
		Logger:  logger.Named("labels"),
	}

	bgCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	g, gctx := errgroup.WithContext(bgCtx)
	g.Go(func() error { return client.Run(gctx) })
	g.Go(func() error { return loader.Run(gctx, fonts) })

	var viewer *app.Viewer
	newApp := func(h hal.HAL) func() error {
		v, err := app.New(h, app.Options{
			Batches:    batches,
			Status:     status,
			Font:       fonts,
			Saver:      export.DirSaver{Dir: cfg.Export.Dir},
			Logger:     logger.Named("viewer"),
			StaleAfter: cfg.GetStaleAfter(),
		})
		if err != nil {
			return func() error { return err }
		}
		viewer = v
		step := app.Guard(v.Step, logger, h.Display().Framebuffer())
		return func() error {
			if ctx.Err() != nil {
				return hal.ErrStopped
			}
			return step()
		}
	}

	var runErr error
	if cfg.Headless.Enabled {
		runErr = hal.RunHeadless(ctx, newApp, hal.HeadlessConfig{
			Width:  cfg.Window.Width,
			Height: cfg.Window.Height,
			Hz:     cfg.Headless.Hz,
			Ticks:  cfg.Headless.Ticks,
		})
		if errors.Is(runErr, context.Canceled) {
			runErr = nil
		}
		if cfg.Headless.ExportOnExit && viewer != nil {
			if _, err := viewer.Export(); err != nil {
				runErr = multierr.Append(runErr, err)
			}
		}
	} else {
		runErr = hal.RunWindow(hal.WindowConfig{
			Title:  cfg.Window.Title,
			Width:  cfg.Window.Width,
			Height: cfg.Window.Height,
			Scale:  cfg.Window.Scale,
			TPS:    cfg.Window.TPS,
		}, newApp)
	}

	cancel()
	runErr = multierr.Append(runErr, g.Wait())
	logger.Info("stopped", zap.Uint64("batches", client.Received()), zap.Uint64("dropped", batches.Dropped()))
	return runErr
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
