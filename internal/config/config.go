package config

import (
	"fmt"
	"strings"

	"github.com/abgdnv/catalog/internal/service"
	"github.com/abgdnv/catalog/pkg/config"
	"github.com/abgdnv/catalog/pkg/config/configloader"
)

var _ configloader.Validator = (*Config)(nil)

// CatalogConfig holds the product catalog behavior settings.
type CatalogConfig struct {
	// DeleteMode is "soft" (mark unavailable) or "hard" (delete the row).
	DeleteMode service.DeleteMode `koanf:"deleteMode"`
}

func (c *CatalogConfig) String() string {
	var b strings.Builder
	b.WriteString("\n--- Catalog ---\n")
	b.WriteString(fmt.Sprintf("  deleteMode: %s\n", c.DeleteMode))
	return b.String()
}

func (c *CatalogConfig) Validate() error {
	switch c.DeleteMode {
	case "":
		c.DeleteMode = service.DeleteSoft
	case service.DeleteSoft, service.DeleteHard:
	default:
		return fmt.Errorf("unknown catalog.deleteMode: %q", c.DeleteMode)
	}
	return nil
}

type Config struct {
	HTTPServer config.HTTPConfig       `koanf:"server"`
	Database   config.DatabaseConfig   `koanf:"database"`
	Log        config.LogConfig        `koanf:"log"`
	PProf      config.PProfConfig      `koanf:"pprof"`
	GRPC       config.GrpcServerConfig `koanf:"grpc"`
	Shutdown   config.ShutdownConfig   `koanf:"shutdown"`
	Telemetry  config.TelemetryConfig  `koanf:"telemetry"`
	NATS       config.NATSConfig       `koanf:"nats"`
	Health     config.HealthConfig     `koanf:"health"`
	Catalog    CatalogConfig           `koanf:"catalog"`
}

func (c *Config) String() string {
	var b strings.Builder
	b.WriteString(c.HTTPServer.String())
	b.WriteString(c.Database.String())
	b.WriteString(c.GRPC.String())
	b.WriteString(c.Log.String())
	b.WriteString(c.PProf.String())
	b.WriteString(c.Shutdown.String())
	b.WriteString(c.Telemetry.String())
	b.WriteString(c.NATS.String())
	b.WriteString(c.Health.String())
	b.WriteString(c.Catalog.String())
	return b.String()
}

// Validate checks if the configuration values are valid
func (c *Config) Validate() error {
	validators := []configloader.Validator{
		&c.HTTPServer,
		&c.Database,
		&c.Log,
		&c.PProf,
		&c.Shutdown,
		&c.GRPC,
		&c.Telemetry,
		&c.NATS,
		&c.Health,
		&c.Catalog,
	}
	for _, v := range validators {
		if err := v.Validate(); err != nil {
			return err
		}
	}
	return nil
}
