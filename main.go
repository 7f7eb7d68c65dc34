package main

import (
	"context"
	"flag"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/stonetable/stonetable-db/internal/app"
	"github.com/stonetable/stonetable-db/internal/cluster"
	"github.com/stonetable/stonetable-db/internal/config"
	"github.com/stonetable/stonetable-db/internal/harness"
)

const defaultDir = ".stonetable"

func main() {
	configPath := flag.String("config", "", "path to a YAML config overriding the defaults")
	workDir := flag.String("dir", "", "working directory for cluster data (defaults to ~/"+defaultDir+")")
	runLoad := flag.Bool("load", false, "run the bulk load-and-verify pipeline instead of serving")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load config")
	}

	dir := *workDir
	if dir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to resolve home directory")
		}
		dir = filepath.Join(homeDir, defaultDir)
	}

	if *runLoad {
		if !loadAndVerify(cfg, dir) {
			os.Exit(1)
		}
		return
	}

	if err := serve(cfg, dir); err != nil {
		log.Fatal().Err(err).Msg("Cluster exited with error")
	}
}

// serve runs the embedded cluster until the process is signalled.
func serve(cfg *config.Config, dir string) error {
	c, err := cluster.New(&cluster.Config{
		Path:  dir,
		Nodes: cfg.Nodes,
	})
	if err != nil {
		return err
	}

	application, err := app.CreateApp(&app.Config{
		ServiceName: "stonetable-db",
		StopTimeout: 30 * time.Second,
	}, c)
	if err != nil {
		return err
	}
	return application.Run(context.Background())
}

// loadAndVerify runs the full pipeline once and reports whether every
// written row was read back.
func loadAndVerify(cfg *config.Config, dir string) bool {
	h, err := harness.New(cfg, dir)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create harness")
	}
	defer func() {
		if err := h.Teardown(); err != nil {
			log.Error().Err(err).Msg("Failed to tear down cluster")
		}
	}()

	if err := h.Bootstrap(); err != nil {
		log.Error().Err(err).Msg("Failed to bootstrap cluster")
		return false
	}

	report, err := h.Run()
	if err != nil {
		log.Error().Err(err).Msg("Load pipeline failed")
		return false
	}
	if !report.Passed() {
		log.Error().Msgf("Verification failed: %s", report)
		return false
	}
	log.Info().Msgf("Verification passed: %s", report)
	return true
}
