package main

import (
	"errors"
	"fmt"
	"strings"

	"fredcat/pkg/auth"
	"fredcat/pkg/checkpoint"
	"fredcat/pkg/config"
	"fredcat/pkg/fred"
	"fredcat/pkg/logger"
	"fredcat/pkg/ratelimit"
	"fredcat/pkg/storage"
)

// loadConfig loads configuration from every source and installs the global
// logger.
func loadConfig() (*config.Config, logger.Logger, error) {
	cfg, err := config.Load(configFile, config.Overrides{LogLevel: logLevel})
	if err != nil {
		return nil, nil, err
	}
	if err := logger.Initialize(&cfg.Logging); err != nil {
		return nil, nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return cfg, logger.GetLogger(), nil
}

// resolveAPIKey fills cfg.API.Key from the credential store when neither
// the config file nor the environment set it.
func resolveAPIKey(cfg *config.Config, log logger.Logger) error {
	if strings.TrimSpace(cfg.API.Key) != "" {
		return nil
	}

	manager, err := auth.NewManager()
	if err != nil {
		log.WithError(err).Warn("Credential store unavailable")
		return cfg.RequireAPIKey()
	}
	key, source, err := manager.Retrieve(auth.DefaultProfile)
	if err != nil {
		if !errors.Is(err, auth.ErrKeyNotFound) {
			log.WithError(err).Warn("Failed to read stored API key")
		}
		return cfg.RequireAPIKey()
	}

	log.WithField("source", source).Debug("Using stored API key")
	cfg.API.Key = key.Key
	return nil
}

// newClient builds a FRED client whose calls share one limiter configured
// from cfg.RateLimit.
func newClient(cfg *config.Config, log logger.Logger) (*fred.Client, error) {
	limiter, err := ratelimit.New(cfg.RateLimit.Strategy, cfg.RateLimit.Calls, cfg.RateLimit.Period, nil)
	if err != nil {
		return nil, err
	}
	return fred.NewClient(cfg.API, limiter, log), nil
}

// openStore builds the table store and the level checkpoint manager for the
// configured output directory.
func openStore(cfg *config.Config, log logger.Logger) (*storage.Store, *checkpoint.Manager, error) {
	codec, err := storage.CodecFor(cfg.Output.Format)
	if err != nil {
		return nil, nil, err
	}
	store := storage.NewStore(cfg.Output.Directory, codec, log)
	mgr, err := checkpoint.NewManager(store, cfg.Output.FilePattern, log)
	if err != nil {
		return nil, nil, err
	}
	return store, mgr, nil
}

// aggregateFilename adds the codec extension unless name already has it.
func aggregateFilename(name, ext string) string {
	if strings.HasSuffix(strings.ToLower(name), ext) {
		return name
	}
	return name + ext
}
