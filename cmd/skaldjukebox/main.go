package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/friendsincode/skald_jukebox/internal/calibration"
	"github.com/friendsincode/skald_jukebox/internal/catalog"
	"github.com/friendsincode/skald_jukebox/internal/config"
	"github.com/friendsincode/skald_jukebox/internal/display"
	"github.com/friendsincode/skald_jukebox/internal/eventbus"
	"github.com/friendsincode/skald_jukebox/internal/events"
	"github.com/friendsincode/skald_jukebox/internal/history"
	"github.com/friendsincode/skald_jukebox/internal/ledger"
	"github.com/friendsincode/skald_jukebox/internal/logging"
	"github.com/friendsincode/skald_jukebox/internal/scheduler"
	"github.com/friendsincode/skald_jukebox/internal/scheduler/state"
	"github.com/friendsincode/skald_jukebox/internal/session"
	"github.com/friendsincode/skald_jukebox/internal/surface"
)

var (
	logger zerolog.Logger
	cfg    *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "skaldjukebox",
	Short: "Skald Jukebox - Shared playlist jukebox for YouTube and Spotify",
	Long:  "Skald Jukebox plays shared YouTube and Spotify playlists through a browser, rotating fairly through every track and following playlist edits live.",
}

var playCmd = &cobra.Command{
	Use:   "play",
	Short: "Start the jukebox",
	Long:  "Load the configured playlists, start the display server, and play tracks with the interactive console",
	RunE:  runPlay,
}

func init() {
	rootCmd.AddCommand(playCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func loadConfig() error {
	// Optional .env for local runs; environment wins over the file.
	_ = godotenv.Load()

	var err error
	cfg, err = config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger = logging.Setup(cfg.Environment)
	return nil
}

func runPlay(cmd *cobra.Command, args []string) error {
	if err := loadConfig(); err != nil {
		return err
	}

	logger.Info().Msg("Skald Jukebox starting")

	counts := ledger.NewFileStore(filepath.Join(cfg.StateDir, "play_counts.json"))
	loaded, err := counts.Load()
	if err != nil {
		logger.Warn().Err(err).Msg("play counts unreadable, starting fresh")
	}
	store := state.NewStore(ledger.FromCounts(loaded))

	hist, err := history.Open(filepath.Join(cfg.StateDir, "history.db"))
	if err != nil {
		return fmt.Errorf("open history: %w", err)
	}
	defer hist.Close()

	calib, err := calibration.Open(filepath.Join(cfg.StateDir, "vr_calibration.json"))
	if err != nil {
		logger.Warn().Err(err).Msg("calibration file unreadable, starting fresh")
	}

	bus := events.NewBus()

	var driver surface.Driver
	browser, err := surface.Connect(cfg.BrowserControlURL, logger)
	if err != nil {
		logger.Warn().Err(err).Msg("no browser available, playback surface disabled")
		driver = surface.Noop{}
	} else {
		defer browser.Close()
		driver = browser
	}

	ctrl := session.NewController(store, driver, bus, counts, hist, logger)
	sched := scheduler.NewService(store, ctrl, bus, logger)

	providers, err := buildProviders()
	if err != nil {
		return err
	}
	sync := catalog.NewSynchronizer(store, providers, bus, cfg.RefreshInterval(), logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Initial load is loud: unreachable playlists at startup are fatal.
	if err := sync.Cycle(ctx, false); err != nil {
		return fmt.Errorf("initial catalog load: %w", err)
	}
	logger.Info().Int("queued", len(sched.QueueSnapshot())).Msg("catalog loaded")

	go sync.Run(ctx)

	if cfg.NATSEnabled {
		relay, err := eventbus.NewRelay(cfg.NATSURL, bus, logger)
		if err != nil {
			logger.Warn().Err(err).Msg("event relay unavailable")
		} else {
			defer relay.Close()
		}
	}

	httpServer := &http.Server{
		Addr:    cfg.HTTPAddr(),
		Handler: display.NewService(sched, bus, hist, calib, cfg.ShowAdder, logger).Router(),
	}
	go func() {
		logger.Info().Str("addr", httpServer.Addr).Msg("display server listening")
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("http server error")
		}
	}()

	// The console owns stdin until the user quits or the context ends.
	runConsole(ctx, sched)

	logger.Info().Msg("shutting down gracefully...")
	sched.Stop()

	timeoutCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(timeoutCtx); err != nil {
		logger.Error().Err(err).Msg("graceful shutdown failed")
	}

	logger.Info().Msg("Skald Jukebox stopped")
	return nil
}

func buildProviders() ([]catalog.Provider, error) {
	var providers []catalog.Provider

	if cfg.YouTubePlaylistURL != "" {
		yt, err := catalog.NewYouTube(cfg.YouTubePlaylistURL, cfg.YouTubeAPIKey)
		if err != nil {
			return nil, err
		}
		providers = append(providers, yt)
	}
	if cfg.SpotifyPlaylistURL != "" {
		sp, err := catalog.NewSpotify(cfg.SpotifyPlaylistURL, cfg.SpotifyClientID, cfg.SpotifyClientSecret)
		if err != nil {
			return nil, err
		}
		providers = append(providers, sp)
	}
	return providers, nil
}
