// Package config load server configuration from environment variables,
// an optional .env file and an optional YAML file.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/juju/errors"
	"gopkg.in/yaml.v3"

	// Load env file into environments.
	_ "github.com/joho/godotenv/autoload"
)

// Store backends
const (
	StorePostgres = "postgres"
	StoreMemory   = "memory"
)

// Resume storage backends
const (
	ResumeLocal = "local"
	ResumeGCS   = "gcs"
)

// DBConfig holds the configuration parameters for connecting to a database.
type DBConfig struct {
	Host      string `yaml:"host"`
	Port      string `yaml:"port"`
	User      string `yaml:"user"`
	Password  string `yaml:"password"`
	DBName    string `yaml:"name"`
	Constr    string `yaml:"connection_string"`
	UseConstr bool   `yaml:"use_connection_string"`
}

// Config is the whole server configuration
type Config struct {
	Port           int           `yaml:"port"`
	AllowOrigins   []string      `yaml:"allow_origins"`
	StoreBackend   string        `yaml:"store_backend"`
	DB             DBConfig      `yaml:"db"`
	SecretKey      string        `yaml:"secret_key"`
	JwtIssuer      string        `yaml:"jwt_issuer"`
	TokenTTL       time.Duration `yaml:"token_ttl"`
	RateLimit      uint          `yaml:"rate_limit_per_second"`
	ResumeBackend  string        `yaml:"resume_backend"`
	ResumeDir      string        `yaml:"resume_dir"`
	ResumeBucket   string        `yaml:"resume_bucket"`
	MaxResumeBytes int64         `yaml:"max_resume_bytes"`
	RequestTimeout time.Duration `yaml:"request_timeout"`
	LogLevel       string        `yaml:"log_level"`
}

// Default return configuration used when nothing is set
func Default() Config {
	return Config{
		Port:           8080,
		AllowOrigins:   []string{"http://localhost:5173"},
		StoreBackend:   StorePostgres,
		JwtIssuer:      "JobListingPortal",
		TokenTTL:       24 * time.Hour,
		RateLimit:      5,
		ResumeBackend:  ResumeLocal,
		ResumeDir:      "uploads",
		MaxResumeBytes: 5 << 20,
		RequestTimeout: 15 * time.Second,
		LogLevel:       "<root>=INFO",
	}
}

// Load build Config from defaults, then CONFIG_FILE (YAML) if set, then environment variables.
func Load() (Config, error) {
	return LoadFrom(os.Getenv("CONFIG_FILE"))
}

// LoadFrom is Load reading the YAML file at path instead of CONFIG_FILE. Empty path skips the file.
func LoadFrom(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		if err := cfg.loadFile(path); err != nil {
			return Config{}, errors.Trace(err)
		}
	}
	if err := cfg.loadEnv(); err != nil {
		return Config{}, errors.Trace(err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, errors.Trace(err)
	}
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	// #nosec G304 -- path is chosen by the operator
	b, err := os.ReadFile(path)
	if err != nil {
		return errors.Annotatef(err, "reading config file %q", path)
	}
	if err := yaml.Unmarshal(b, c); err != nil {
		return errors.Annotatef(err, "parsing config file %q", path)
	}
	return nil
}

func (c *Config) loadEnv() error {
	setString(&c.DB.DBName, "DB_DATABASE")
	setString(&c.DB.Password, "DB_PASSWORD")
	setString(&c.DB.User, "DB_USERNAME")
	setString(&c.DB.Port, "DB_PORT")
	setString(&c.DB.Host, "DB_HOST")
	setString(&c.DB.Constr, "DB_CONNECTION_STR")
	setString(&c.StoreBackend, "STORE_BACKEND")
	setString(&c.SecretKey, "SECRET_KEY")
	setString(&c.JwtIssuer, "JWT_ISSUER")
	setString(&c.ResumeBackend, "RESUME_BACKEND")
	setString(&c.ResumeDir, "RESUME_DIR")
	setString(&c.ResumeBucket, "RESUME_BUCKET")
	setString(&c.LogLevel, "LOG_LEVEL")

	if v := os.Getenv("ALLOW_ORIGIN"); v != "" {
		c.AllowOrigins = nil
		for _, o := range strings.Split(v, ",") {
			if o = strings.TrimSpace(o); o != "" {
				c.AllowOrigins = append(c.AllowOrigins, o)
			}
		}
	}

	if v := os.Getenv("USE_CONNECTION_STR"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return errors.NotValidf("USE_CONNECTION_STR %q", v)
		}
		c.DB.UseConstr = b
	}
	if v := os.Getenv("PORT"); v != "" {
		p, err := strconv.Atoi(v)
		if err != nil {
			return errors.NotValidf("PORT %q", v)
		}
		c.Port = p
	}
	if v := os.Getenv("RATE_LIMIT_REQUESTS_PER_SECOND"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return errors.NotValidf("RATE_LIMIT_REQUESTS_PER_SECOND %q", v)
		}
		c.RateLimit = uint(n)
	}
	if v := os.Getenv("MAX_RESUME_BYTES"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return errors.NotValidf("MAX_RESUME_BYTES %q", v)
		}
		c.MaxResumeBytes = n
	}
	if err := setDuration(&c.TokenTTL, "TOKEN_TTL"); err != nil {
		return err
	}
	return setDuration(&c.RequestTimeout, "REQUEST_TIMEOUT")
}

// Validate check that configuration is usable
func (c Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return errors.NotValidf("port %d", c.Port)
	}
	if c.SecretKey == "" {
		return errors.NotValidf("empty SECRET_KEY")
	}
	if c.TokenTTL <= 0 {
		return errors.NotValidf("token ttl %s", c.TokenTTL)
	}
	switch c.StoreBackend {
	case StorePostgres:
		if c.DB.UseConstr && c.DB.Constr == "" {
			return errors.NotValidf("empty DB_CONNECTION_STR")
		}
		if !c.DB.UseConstr && (c.DB.Host == "" || c.DB.Port == "" || c.DB.User == "" || c.DB.Password == "" || c.DB.DBName == "") {
			return errors.NotValidf("incomplete database configuration")
		}
	case StoreMemory:
	default:
		return errors.NotValidf("store backend %q", c.StoreBackend)
	}
	switch c.ResumeBackend {
	case ResumeLocal:
		if c.ResumeDir == "" {
			return errors.NotValidf("empty RESUME_DIR")
		}
	case ResumeGCS:
		if c.ResumeBucket == "" {
			return errors.NotValidf("empty RESUME_BUCKET")
		}
	default:
		return errors.NotValidf("resume backend %q", c.ResumeBackend)
	}
	if c.MaxResumeBytes <= 0 {
		return errors.NotValidf("max resume bytes %d", c.MaxResumeBytes)
	}
	return nil
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setDuration(dst *time.Duration, key string) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return errors.NotValidf("%s %q", key, v)
	}
	*dst = d
	return nil
}
