// Package config resolves the application's configuration at startup.
//
// Resolution is a single pass of independent fallbacks, in this order:
//
//  1. A local `.env` file, if present (development convenience).
//  2. An env-formatted settings blob fetched from secret storage, when
//     the deployment points at one. Values from the blob never override
//     values already present in the process environment.
//  3. `CLOUDNOTES_`-prefixed environment variables, decoded into the
//     Config struct and validated. Missing required values fail fast.
//  4. Platform discovery: region and project from the instance metadata
//     endpoint, service name from the platform-provided environment.
//     An unreachable metadata endpoint means "value unknown", never a
//     fatal error.
//  5. If project, region and service name are all known, one call to
//     the platform management API resolves the service's public URL,
//     which becomes the host allow-list. Otherwise the allow-list is
//     the wildcard.
//
// There are no retries and no ordering dependencies beyond value
// availability; every step either produces a value or falls through.
package config

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"

	// Side-effect import: if a `.env` file exists in the working
	// directory it is loaded into the process env before anything
	// reads it. Deployed instances have no `.env`; they get the same
	// values from the settings secret instead.
	_ "github.com/joho/godotenv/autoload"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"
)

// envPrefix namespaces the application's own variables so they cannot
// collide with the platform-provided ones (PORT, K_SERVICE, ...).
const envPrefix = "CLOUDNOTES_"

// Platform-contract variables. These are set by the execution
// environment, not by the operator, and are therefore unprefixed.
const (
	envPort    = "PORT"
	envService = "K_SERVICE"
	envProject = "GOOGLE_CLOUD_PROJECT"
)

// Config is the root configuration object for the application.
//
// The `koanf:"..."` tags map environment keys onto fields, and the
// `validate:"required"` tags make startup fail when a value is absent.
// Only secret key and database URL are hard requirements; everything
// else has a workable default or degrades gracefully.
type Config struct {
	// SecretKey signs session tokens. There is no default on purpose:
	// a process without key material must not come up.
	SecretKey string `koanf:"secret_key" validate:"required"`

	// Debug switches on console logging and SQL tracing. Never enable
	// in a deployed environment.
	Debug bool `koanf:"debug"`

	// SettingsName is the name of the secret holding the env-formatted
	// settings blob. Only consulted together with the project id.
	SettingsName string `koanf:"settings_name"`

	Server    ServerConfig    `koanf:"server"`
	Database  DatabaseConfig  `koanf:"database"`
	Bucket    BucketConfig    `koanf:"bucket"`
	Superuser SuperuserConfig `koanf:"superuser"`

	// Deployment holds the values discovered from the platform, not
	// read from the environment. See Resolve.
	Deployment Deployment `koanf:"-"`
}

// ServerConfig groups settings for the HTTP server runtime.
// Timeouts are whole seconds in the environment and converted where used.
type ServerConfig struct {
	Port               string   `koanf:"port"`
	ReadTimeout        int      `koanf:"read_timeout"`
	WriteTimeout       int      `koanf:"write_timeout"`
	IdleTimeout        int      `koanf:"idle_timeout"`
	CORSAllowedOrigins []string `koanf:"cors_allowed_origins"`
}

// DatabaseConfig holds the database connection string. A single URL
// (rather than discrete host/user/... fields) because the managed
// database is reached through a unix socket path that only a URL can
// express conveniently.
type DatabaseConfig struct {
	URL string `koanf:"url" validate:"required"`
}

// BucketConfig names the object-storage bucket for static assets and
// note attachments. Empty means "no bucket" (local development).
type BucketConfig struct {
	Name string `koanf:"name"`
}

// SuperuserConfig feeds the administrative account bootstrap job. The
// password arrives through the settings secret in production.
type SuperuserConfig struct {
	Name     string `koanf:"name"`
	Password string `koanf:"password"`
}

// Deployment describes where the process is running, as far as it was
// able to find out. Empty strings mean "unknown".
type Deployment struct {
	Project string
	Region  string
	Service string

	// ServiceURL is the externally visible URL of this deployment,
	// resolved from the management API. Empty when identity is not
	// fully known.
	ServiceURL string

	// AllowedHosts is the Host-header allow-list derived from
	// ServiceURL, or ["*"] when the URL could not be resolved.
	AllowedHosts []string
}

// configSections lists the nested config blocks. Used to translate env
// var names into koanf key paths: the underscore after a section name
// becomes the nesting delimiter, any later underscores stay literal.
//
//	CLOUDNOTES_SERVER_READ_TIMEOUT -> server.read_timeout
//	CLOUDNOTES_SECRET_KEY          -> secret_key
var configSections = []string{"server", "database", "bucket", "superuser"}

func envKeyToPath(s string) string {
	key := strings.ToLower(strings.TrimPrefix(s, envPrefix))
	for _, section := range configSections {
		if strings.HasPrefix(key, section+"_") {
			return strings.Replace(key, "_", ".", 1)
		}
	}
	return key
}

// envKeyValue maps one environment variable onto a koanf path and
// value. List-typed fields arrive as a single comma-separated var and
// must be split here; handing koanf the raw string would decode into a
// one-element slice holding the joined value.
func envKeyValue(key, value string) (string, interface{}) {
	path := envKeyToPath(key)

	if path == "server.cors_allowed_origins" {
		parts := strings.Split(value, ",")
		origins := make([]string, 0, len(parts))
		for _, part := range parts {
			if part = strings.TrimSpace(part); part != "" {
				origins = append(origins, part)
			}
		}
		return path, origins
	}

	return path, value
}

// Load reads, decodes and validates the configuration, then performs
// platform discovery through the given Platform.
//
// It returns an error instead of exiting so the entry points decide
// what a failure means (the serve command logs fatal; tests assert).
func Load(ctx context.Context, platform Platform) (*Config, error) {
	// Step 2: pull the settings secret into the environment first so
	// the regular env load below sees its values.
	if err := injectSettingsSecret(ctx, platform); err != nil {
		return nil, err
	}

	k := koanf.New(".")

	err := k.Load(env.ProviderWithValue(envPrefix, ".", envKeyValue), nil)
	if err != nil {
		return nil, fmt.Errorf("loading environment variables: %w", err)
	}

	cfg := &Config{
		Server: ServerConfig{
			Port:         "8080",
			ReadTimeout:  10,
			WriteTimeout: 30,
			IdleTimeout:  120,
		},
	}

	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("decoding configuration: %w", err)
	}

	// The platform tells the container which port to listen on. It
	// wins over anything the operator configured.
	if port := os.Getenv(envPort); port != "" {
		cfg.Server.Port = port
	}

	// Fail fast on missing required values. The validator reports all
	// missing fields at once, which beats fixing them one by one.
	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	// Steps 4 and 5: platform discovery.
	deployment, err := resolveDeployment(ctx, platform)
	if err != nil {
		return nil, err
	}
	cfg.Deployment = deployment

	return cfg, nil
}

// injectSettingsSecret fetches the env-formatted settings blob from
// secret storage and merges it into the process environment.
//
// It only acts when both the project id and the settings name are
// known. Values already present in the environment always win, so an
// operator (or a test) can override any single value from the blob.
func injectSettingsSecret(ctx context.Context, platform Platform) error {
	project := os.Getenv(envProject)
	name := os.Getenv(envPrefix + "SETTINGS_NAME")
	if project == "" || name == "" || platform.Secrets == nil {
		return nil
	}

	payload, err := platform.Secrets.Access(ctx, project, name)
	if err != nil {
		// A configured-but-unfetchable settings secret is a real
		// failure, unlike an absent one. Propagate.
		return fmt.Errorf("accessing settings secret %q: %w", name, err)
	}

	values, err := godotenv.Unmarshal(string(payload))
	if err != nil {
		return fmt.Errorf("parsing settings secret %q: %w", name, err)
	}

	for key, value := range values {
		if _, exists := os.LookupEnv(key); !exists {
			if err := os.Setenv(key, value); err != nil {
				return fmt.Errorf("applying settings secret value %q: %w", key, err)
			}
		}
	}

	return nil
}
