// Homedeck drives a multi-button display deck from a declarative YAML
// configuration backed by Home Assistant entity state.
//
// Usage:
//
//	homedeck run [flags]
//
// See 'homedeck run --help' for available options.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/homedeck/homedeck/internal/app"
	"github.com/homedeck/homedeck/internal/cache"
	"github.com/homedeck/homedeck/internal/deckdev"
	"github.com/homedeck/homedeck/internal/logging"
)

// Version is set at build time via -ldflags.
var Version = "dev"

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "homedeck",
	Short: "Home Assistant button deck engine",
	Long: `Homedeck renders a paged grid of buttons onto a physical display deck
and routes taps and holds to Home Assistant service calls. Button styling,
pages and actions come from a YAML configuration file that reloads on save.`,
	Version: Version,
}

func init() {
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(versionCmd)
}

// Run command and flags
var (
	configPath string
	cacheDir   string
	fontsDir   string
	driverName string
	haHost     string
	haToken    string
	noCache    bool
	stdioLog   string
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start the deck session",
	Long: `Start the deck session: connect to Home Assistant, render the root
page and process input until interrupted.

The Home Assistant address and access token may also come from the HA_HOST
and HA_ACCESS_TOKEN environment variables. With no address at all the
instance is discovered over mDNS.`,
	Example: `  # Run against a discovered Home Assistant instance
  HA_ACCESS_TOKEN=... homedeck run --config ./deck.yml

  # Explicit instance, framebuffer preview instead of real hardware
  homedeck run --config ./deck.yml --driver framebuffer --ha-host homeassistant.local:8123 --ha-token ...`,
	RunE: runDeck,
}

func init() {
	runCmd.Flags().StringVar(&configPath, "config", "config.yml", "Path to the deck configuration file")
	runCmd.Flags().StringVar(&cacheDir, "cache-dir", ".homedeck", "Directory for downloaded assets and generated bitmaps")
	runCmd.Flags().StringVar(&fontsDir, "fonts-dir", "", "Directory holding .ttf font files (default <cache-dir>/fonts)")
	runCmd.Flags().StringVar(&driverName, "driver", "noop", "Device driver (noop, framebuffer)")
	runCmd.Flags().StringVar(&haHost, "ha-host", "", "Home Assistant address (empty = mDNS discovery)")
	runCmd.Flags().StringVar(&haToken, "ha-token", "", "Home Assistant long-lived access token")
	runCmd.Flags().BoolVar(&noCache, "no-cache", false, "Re-render every bitmap instead of reusing cached ones")
	runCmd.Flags().StringVar(&stdioLog, "stdio-log", "", "Redirect stdout+stderr (including panics) to this file; also via HOMEDECK_STDIO_LOG")
}

func runDeck(cmd *cobra.Command, args []string) error {
	// With the framebuffer driver the console sits in graphics mode, so
	// panics would be invisible without a redirect target.
	logPath := stdioLog
	if logPath == "" {
		logPath = os.Getenv("HOMEDECK_STDIO_LOG")
	}
	if err := redirectStdIO(logPath); err != nil {
		fmt.Fprintln(os.Stderr, "stdio log redirect error:", err)
	}

	if err := logging.InitializeFromEnv(); err != nil {
		return err
	}
	defer logging.Sync()

	if haHost == "" {
		haHost = os.Getenv("HA_HOST")
	}
	if haToken == "" {
		haToken = os.Getenv("HA_ACCESS_TOKEN")
	}
	if fontsDir == "" {
		fontsDir = filepath.Join(cacheDir, "fonts")
	}

	var driver deckdev.Driver
	switch driverName {
	case "noop":
		driver = deckdev.NewNoopDriver()
	case "framebuffer":
		driver = deckdev.NewFramebufferDriver(cache.GeneratedDirFor(cacheDir))
	default:
		return fmt.Errorf("unknown driver %q (want noop or framebuffer)", driverName)
	}

	session, err := app.New(app.Options{
		ConfigPath: configPath,
		CacheDir:   cacheDir,
		FontsDir:   fontsDir,
		Driver:     driver,
		HAHost:     haHost,
		HAToken:    haToken,
		CacheReads: !noCache,
	})
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	err = session.Start(ctx)
	if err == context.Canceled {
		return nil
	}
	return err
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("homedeck %s\n", Version)
	},
}
