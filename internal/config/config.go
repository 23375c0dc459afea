package config

import (
	"fmt"

	"github.com/spf13/viper"

	"tessera/internal/metadata"
)

type Config struct {
	Server    ServerConfig   `mapstructure:"server"`
	Database  DatabaseConfig `mapstructure:"database"`
	Table     TableConfig    `mapstructure:"table"`
	Auth      AuthConfig     `mapstructure:"auth"`
	JWTSecret string         `mapstructure:"jwt_secret"`
}

type ServerConfig struct {
	Port int `mapstructure:"port"`
	// RequestLogSize is the capacity of the in-memory request event ring
	// served at /api/_admin/requests.
	RequestLogSize int `mapstructure:"request_log_size"`
}

type DatabaseConfig struct {
	Driver   string `mapstructure:"driver"` // postgres, sqlite or memory
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Name     string `mapstructure:"name"`
	PoolSize int    `mapstructure:"pool_size"`
	Path     string `mapstructure:"path"` // directory for SQLite database files
}

// TableConfig points the gateway at the one synthesized table it serves.
// The physical name and schema arrive as opaque deployment values; the
// gateway looks them up, it does not derive them.
type TableConfig struct {
	Name       string `mapstructure:"name"`
	SchemaFile string `mapstructure:"schema_file"`
}

// Principal is one credential the gateway may exchange for a role-scoped
// token: the principal's physical name, its bcrypt secret hash, and the
// role tier its synthesized grant carries.
type Principal struct {
	ID         string `mapstructure:"id"`
	SecretHash string `mapstructure:"secret_hash"`
	Role       string `mapstructure:"role"`
}

type AuthConfig struct {
	Principals []Principal `mapstructure:"principals"`
}

// Validate rejects principals whose role is outside the grant vocabulary.
// A typoed role must fail at startup, not pass read checks at request time.
func (a AuthConfig) Validate() error {
	for _, p := range a.Principals {
		switch metadata.Role(p.Role) {
		case metadata.RoleRead, metadata.RoleReadWrite:
		default:
			return fmt.Errorf("principal %s: unknown role %q", p.ID, p.Role)
		}
	}
	return nil
}

// DSN returns the driver-specific data source name.
func (d DatabaseConfig) DSN() string {
	if d.Driver == "sqlite" {
		return d.Path + "/" + d.Name + ".db"
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable",
		d.User, d.Password, d.Host, d.Port, d.Name)
}

// IsMemory returns true when the gateway runs on the in-memory backend.
func (d DatabaseConfig) IsMemory() bool {
	return d.Driver == "memory"
}

func Load() (*Config, error) {
	viper.SetConfigName("app")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("../..")

	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.request_log_size", 256)
	viper.SetDefault("database.driver", "postgres")
	viper.SetDefault("database.host", "localhost")
	viper.SetDefault("database.port", 5432)
	viper.SetDefault("database.pool_size", 10)
	viper.SetDefault("database.path", "./data")
	viper.SetDefault("jwt_secret", "changeme-secret")
	viper.SetDefault("table.schema_file", "./table.json")

	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.Auth.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}
