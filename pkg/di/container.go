// Package di wires the concrete implementations behind the CLI commands.
package di

import (
	"go.uber.org/zap"

	"github.com/k2shbwi/k2sh/pkg/config"
	"github.com/k2shbwi/k2sh/pkg/logger"
	"github.com/k2shbwi/k2sh/pkg/render"
	"github.com/k2shbwi/k2sh/pkg/storage"
)

// Container holds the dependencies shared by the CLI commands.
type Container struct {
	cfg *config.Config
	log *zap.Logger
}

// NewContainer builds a container from configuration.
func NewContainer(cfg *config.Config) *Container {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	return &Container{
		cfg: cfg,
		log: logger.New(cfg.Logging.Level, cfg.Logging.Format),
	}
}

// Config returns the active configuration.
func (c *Container) Config() *config.Config {
	return c.cfg
}

// Logger returns the shared logger.
func (c *Container) Logger() *zap.Logger {
	return c.log
}

// OpenStore opens the artifact store at the configured location.
func (c *Container) OpenStore() (*storage.ArtifactStore, error) {
	return storage.Open(c.cfg.StoreDir)
}

// Renderer returns the in-process renderer for format.
func (c *Container) Renderer(format string) (render.Renderer, bool) {
	return render.ByFormat(format)
}
