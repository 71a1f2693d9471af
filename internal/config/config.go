package config

import (
	_ "embed"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

type Config struct {
	Backend  BackendConfig
	Web      WebConfig
	Database DatabaseConfig
	Images   ImagesConfig
}

type BackendConfig struct {
	URL      string // attendance backend origin (e.g. http://127.0.0.1:8000)
	TokenDir string // override for the credential file directory (CLI)
}

type WebConfig struct {
	SessionDurationHours  int      `yaml:"session_duration_hours"`
	RequestTimeoutSeconds int      `yaml:"request_timeout_seconds"`
	MaxUploadBytes        int      `yaml:"max_upload_bytes"`
	AllowedOrigins        []string `yaml:"-"` // extra CORS origins, env-only
}

type DatabaseConfig struct {
	URL          string // PostgreSQL connection URL for session persistence (optional)
	MaxOpenConns int    // Maximum open connections (default 25)
	MaxIdleConns int    // Maximum idle connections (default 5)
}

type ImagesConfig struct {
	MaxEdge int `yaml:"max_edge"` // longer-edge bound applied before upload
}

// defaults mirrors the embedded defaults.yaml layout.
type defaults struct {
	Web    WebConfig    `yaml:"web"`
	Images ImagesConfig `yaml:"images"`
}

// envList reads a comma-separated environment variable, dropping empty entries.
func envList(key string) []string {
	var out []string
	for _, v := range strings.Split(os.Getenv(key), ",") {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

// envInt reads an environment variable and parses it as a positive integer.
// Returns the default value if the env var is unset, empty, or invalid.
func envInt(key string, defaultVal int) int {
	s := os.Getenv(key)
	if s == "" {
		return defaultVal
	}
	if n, err := strconv.Atoi(s); err == nil && n > 0 {
		return n
	}
	return defaultVal
}

func Load() *Config {
	var def defaults
	if err := yaml.Unmarshal(defaultsYAML, &def); err != nil {
		// Embedded file, so this can only be a build-time mistake.
		panic("failed to unmarshal embedded defaults.yaml: " + err.Error())
	}

	return &Config{
		Backend: BackendConfig{
			URL:      os.Getenv("ATTEND_API_URL"),
			TokenDir: os.Getenv("ATTEND_TOKEN_DIR"),
		},
		Web: WebConfig{
			SessionDurationHours:  envInt("WEB_SESSION_DURATION_HOURS", def.Web.SessionDurationHours),
			RequestTimeoutSeconds: envInt("WEB_REQUEST_TIMEOUT_SECONDS", def.Web.RequestTimeoutSeconds),
			MaxUploadBytes:        envInt("WEB_MAX_UPLOAD_BYTES", def.Web.MaxUploadBytes),
			AllowedOrigins:        envList("WEB_ALLOWED_ORIGINS"),
		},
		Database: DatabaseConfig{
			URL:          os.Getenv("DATABASE_URL"),
			MaxOpenConns: envInt("DATABASE_MAX_OPEN_CONNS", 25),
			MaxIdleConns: envInt("DATABASE_MAX_IDLE_CONNS", 5),
		},
		Images: ImagesConfig{
			MaxEdge: envInt("IMAGE_MAX_EDGE", def.Images.MaxEdge),
		},
	}
}
