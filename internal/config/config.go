// Package config loads notionqueue settings from the environment, an
// optional .env file and an optional .queue/config.yaml.
//
// Precedence, highest first: environment, .env, config.yaml, defaults.
// The resulting Config is passed explicitly to the engine; nothing else
// reads the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/daviddao/notionqueue/internal/auth"
	"github.com/daviddao/notionqueue/internal/notion"
	"github.com/daviddao/notionqueue/internal/state"
)

// DefaultCachePath is the SQLite ticket cache location.
const DefaultCachePath = ".queue/tickets.db"

// DefaultConfigFile is the optional yaml config location.
const DefaultConfigFile = ".queue/config.yaml"

// ErrMissingDatabase is returned when no database id is configured.
var ErrMissingDatabase = errors.New("no Notion database configured (set NOTION_DATABASE_ID)")

// Config is the full set of settings.
type Config struct {
	Token      string
	DatabaseID string
	BaseURL    string
	Version    string

	// TargetApp is the scope tag. Empty disables scope filtering.
	TargetApp string

	// AgentUserID is the acting identity. Empty makes every ticket
	// eligible.
	AgentUserID string

	// Assignees maps lower-cased human names to user ids.
	Assignees map[string]string

	StatePath string
	CachePath string
	LogLevel  string
}

// Options tweak Load.
type Options struct {
	// EnvFile is loaded with godotenv when present. Defaults to ".env".
	EnvFile string

	// ConfigFile is read when present. Defaults to DefaultConfigFile.
	ConfigFile string
}

// Load reads the configuration.
func Load(opts Options) (Config, error) {
	envFile := opts.EnvFile
	if envFile == "" {
		envFile = ".env"
	}
	if _, err := os.Stat(envFile); err == nil {
		if err := godotenv.Load(envFile); err != nil {
			return Config{}, fmt.Errorf("load %s: %w", envFile, err)
		}
	}

	v := viper.New()
	v.SetConfigType("yaml")

	v.SetDefault("base_url", notion.DefaultBaseURL)
	v.SetDefault("notion_version", notion.DefaultVersion)
	v.SetDefault("state_path", state.DefaultPath)
	v.SetDefault("cache_path", DefaultCachePath)
	v.SetDefault("log_level", "info")

	bindings := map[string]string{
		"token":           "NOTION_TOKEN",
		"database_id":     "NOTION_DATABASE_ID",
		"base_url":        "NOTION_BASE_URL",
		"notion_version":  "NOTION_VERSION",
		"target_app":      "TARGET_APP",
		"agent_user_id":   "AGENT_USER_ID",
		"human_assignees": "HUMAN_ASSIGNEES",
		"state_path":      "QUEUE_STATE_PATH",
		"cache_path":      "QUEUE_CACHE_PATH",
		"log_level":       "LOG_LEVEL",
	}
	for key, env := range bindings {
		if err := v.BindEnv(key, env); err != nil {
			return Config{}, fmt.Errorf("bind %s: %w", env, err)
		}
	}

	configFile := opts.ConfigFile
	if configFile == "" {
		configFile = DefaultConfigFile
	}
	if _, err := os.Stat(configFile); err == nil {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read %s: %w", configFile, err)
		}
	}

	assignees := map[string]string{}
	for name, id := range v.GetStringMapString("assignees") {
		assignees[strings.ToLower(name)] = id
	}
	parsed, err := ParseAssignees(v.GetString("human_assignees"))
	if err != nil {
		return Config{}, err
	}
	for name, id := range parsed {
		assignees[name] = id
	}

	return Config{
		Token:       strings.TrimSpace(v.GetString("token")),
		DatabaseID:  strings.TrimSpace(v.GetString("database_id")),
		BaseURL:     v.GetString("base_url"),
		Version:     v.GetString("notion_version"),
		TargetApp:   strings.TrimSpace(v.GetString("target_app")),
		AgentUserID: strings.TrimSpace(v.GetString("agent_user_id")),
		Assignees:   assignees,
		StatePath:   v.GetString("state_path"),
		CachePath:   v.GetString("cache_path"),
		LogLevel:    v.GetString("log_level"),
	}, nil
}

// ParseAssignees parses "name=id,name=id". Names are lower-cased.
func ParseAssignees(s string) (map[string]string, error) {
	out := map[string]string{}
	for _, pair := range strings.Split(s, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		name, id, ok := strings.Cut(pair, "=")
		name, id = strings.TrimSpace(name), strings.TrimSpace(id)
		if !ok || name == "" || id == "" {
			return nil, fmt.Errorf("invalid HUMAN_ASSIGNEES entry %q (want name=id)", pair)
		}
		out[strings.ToLower(name)] = id
	}
	return out, nil
}

// Validate checks the settings every remote call needs.
func (c Config) Validate() error {
	if c.Token == "" {
		return auth.ErrMissingToken
	}
	if c.DatabaseID == "" {
		return ErrMissingDatabase
	}
	return nil
}

// ResolveAssignee returns the user id for a human name, ignoring case.
func (c Config) ResolveAssignee(name string) (string, bool) {
	id, ok := c.Assignees[strings.ToLower(strings.TrimSpace(name))]
	return id, ok
}

// AssigneeNames returns the configured names in sorted order.
func (c Config) AssigneeNames() []string {
	names := make([]string, 0, len(c.Assignees))
	for name := range c.Assignees {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
