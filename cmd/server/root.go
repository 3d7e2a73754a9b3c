package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"hls-restream-panel/internal/panel"
	"hls-restream-panel/internal/platform/config"
	"hls-restream-panel/internal/platform/logger"
	"hls-restream-panel/internal/platform/metrics"
)

// app carries the settings shared by every subcommand.
type app struct {
	cfgFile string
	panel   config.Panel
	log     config.Log

	logger    *slog.Logger
	logCloser io.Closer
}

func newRootCommand() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:           "panel",
		Short:         "HLS re-broadcast control panel",
		Long:          `Edits the stream definitions, regenerates the master playlist and stops transcoders of deleted streams.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.preflight()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.logCloser != nil {
				a.logCloser.Close()
			}
		},
	}

	root.PersistentFlags().StringVar(&a.cfgFile, "config", "", "configuration file path")
	for _, f := range []config.Flags{&a.panel, &a.log} {
		if err := f.Init(root); err != nil {
			panic(err)
		}
	}

	root.AddCommand(newServeCommand(a), newPlaylistCommand(a))
	return root
}

func (a *app) preflight() error {
	if err := config.Load(); err != nil {
		return err
	}
	if err := config.Init(a.cfgFile); err != nil {
		return err
	}
	a.panel.Set()
	a.log.Set()

	a.logger, a.logCloser = logger.NewWithConfig(logger.Config{
		Level:      a.log.Level,
		Format:     a.log.Format,
		Console:    a.log.Console,
		File:       a.log.File,
		MaxSize:    a.log.MaxSize,
		MaxBackups: a.log.MaxBackups,
		MaxAge:     a.log.MaxAge,
	})
	return nil
}

// registry builds the stream registry from the panel settings and makes sure
// the directories it writes into exist.
func (a *app) registry(m *metrics.Metrics) (*panel.Registry, error) {
	cfg := a.panel

	assets := panel.NewAssetManager(panel.AssetConfig{
		Root:    cfg.AssetsRoot,
		BaseURL: cfg.AssetsBaseURL,
	})

	for _, dir := range []string{
		filepath.Dir(cfg.StorePath),
		filepath.Dir(cfg.PlaylistPath),
		assets.ImageDir(),
	} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create %s: %w", dir, err)
		}
	}

	store := panel.NewStore(panel.StoreConfig{
		Path:       cfg.StorePath,
		TempSuffix: cfg.StoreTempSuffix,
	})
	playlist := panel.NewPlaylist(panel.PlaylistConfig{
		Path:          cfg.PlaylistPath,
		TempSuffix:    cfg.StoreTempSuffix,
		BaseURL:       cfg.PlaylistBaseURL,
		EPGURL:        cfg.PlaylistEPGURL,
		GroupTitle:    cfg.PlaylistGroupTitle,
		DeriveLogoExt: cfg.PlaylistDeriveLogoExt,
	})
	reaper := panel.NewReaper(panel.ReaperConfig{PIDDir: cfg.PIDDir})

	return panel.NewRegistry(store, playlist, reaper, assets, cfg.HLSRoot, a.logger, m), nil
}
