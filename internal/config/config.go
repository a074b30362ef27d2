// internal/config/config.go
//
// Runtime configuration for the game service and CLI.
// Sources, lowest to highest precedence:
//   1. DefaultConfig().
//   2. Optional YAML file (path from WOF_CONFIG or --config).
//   3. Environment variables (a .env file is loaded by main via godotenv).
//
// Environment variables:
//   LOG_LEVEL, STORE_BACKEND, SQLITE_PATH, REDIS_HOST, REDIS_PORT, REDIS_DB,
//   PUZZLES_FILE, WHEEL_FILE, PLAYER_NAMES ("AI1=Ava,AI2=Max,Human=Rich"),
//   VOWEL_STRATEGY, AI_RANDOMIZE_VOWEL_TIES, AI_SOLVE_THRESHOLD, PORT, JWT_SECRET, JWT_EXPIRES_HOURS,
//   ADMIN_PASSWORD_HASH, DAILY_SALT.

package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	LogLevel    string      `yaml:"log_level"`
	PuzzlesFile string      `yaml:"puzzles_file"`
	WheelFile   string      `yaml:"wheel_file"`
	Store       StoreConfig `yaml:"store"`
	Players     []Player    `yaml:"players"`
	AI          AIConfig    `yaml:"ai"`
	HTTP        HTTPConfig  `yaml:"http"`
	DailySalt   string      `yaml:"daily_salt"`
}

type StoreConfig struct {
	Backend    string `yaml:"backend"` // memory | sqlite | redis
	SQLitePath string `yaml:"sqlite_path"`
	RedisHost  string `yaml:"redis_host"`
	RedisPort  int    `yaml:"redis_port"`
	RedisDB    int    `yaml:"redis_db"`
}

// Player maps a stable player id to its display name.
type Player struct {
	ID   string `yaml:"id"`
	Name string `yaml:"name"`
}

type AIConfig struct {
	VowelStrategy string `yaml:"vowel_strategy"` // heuristic | random
	// RandomizeVowelTies makes the heuristic pick randomly among equally
	// scored vowels instead of taking the first in E A O I U order.
	RandomizeVowelTies bool    `yaml:"randomize_vowel_ties"`
	SolveThreshold     float64 `yaml:"solve_threshold"`
}

type HTTPConfig struct {
	Port              string        `yaml:"port"`
	JWTSecret         string        `yaml:"jwt_secret"`
	TokenTTL          time.Duration `yaml:"token_ttl"`
	AdminPasswordHash string        `yaml:"admin_password_hash"`
}

func DefaultConfig() *Config {
	return &Config{
		LogLevel: "info",
		Store: StoreConfig{
			Backend:    "sqlite",
			SQLitePath: "./data/wof.db",
			RedisHost:  "localhost",
			RedisPort:  6379,
		},
		Players: []Player{
			{ID: "AI1", Name: "AI1"},
			{ID: "AI2", Name: "AI2"},
			{ID: "Human", Name: "Human"},
		},
		AI: AIConfig{
			VowelStrategy:  "heuristic",
			SolveThreshold: 0.5,
		},
		HTTP: HTTPConfig{
			Port:      "5175",
			JWTSecret: "dev_secret_change_me",
			TokenTTL:  12 * time.Hour,
		},
		DailySalt: "local_dev_salt",
	}
}

// Load builds a Config from defaults, the optional YAML file at path and the
// environment.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(b, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	setStr(&c.LogLevel, "LOG_LEVEL")
	setStr(&c.PuzzlesFile, "PUZZLES_FILE")
	setStr(&c.WheelFile, "WHEEL_FILE")
	setStr(&c.Store.Backend, "STORE_BACKEND")
	setStr(&c.Store.SQLitePath, "SQLITE_PATH")
	setStr(&c.Store.RedisHost, "REDIS_HOST")
	setStr(&c.AI.VowelStrategy, "VOWEL_STRATEGY")
	setStr(&c.HTTP.Port, "PORT")
	setStr(&c.HTTP.JWTSecret, "JWT_SECRET")
	setStr(&c.HTTP.AdminPasswordHash, "ADMIN_PASSWORD_HASH")
	setStr(&c.DailySalt, "DAILY_SALT")

	if err := setInt(&c.Store.RedisPort, "REDIS_PORT"); err != nil {
		return err
	}
	if err := setInt(&c.Store.RedisDB, "REDIS_DB"); err != nil {
		return err
	}
	if v := os.Getenv("AI_RANDOMIZE_VOWEL_TIES"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("AI_RANDOMIZE_VOWEL_TIES: %w", err)
		}
		c.AI.RandomizeVowelTies = b
	}
	if v := os.Getenv("AI_SOLVE_THRESHOLD"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("AI_SOLVE_THRESHOLD: %w", err)
		}
		c.AI.SolveThreshold = f
	}
	if v := os.Getenv("JWT_EXPIRES_HOURS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("JWT_EXPIRES_HOURS: %w", err)
		}
		c.HTTP.TokenTTL = time.Duration(n) * time.Hour
	}
	if v := os.Getenv("PLAYER_NAMES"); v != "" {
		players, err := ParsePlayerNames(v)
		if err != nil {
			return err
		}
		c.Players = players
	}
	return nil
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	switch c.Store.Backend {
	case "memory", "sqlite", "redis":
	default:
		return fmt.Errorf("store backend %q: want memory, sqlite or redis", c.Store.Backend)
	}
	switch c.AI.VowelStrategy {
	case "heuristic", "random":
	default:
		return fmt.Errorf("vowel strategy %q: want heuristic or random", c.AI.VowelStrategy)
	}
	if c.AI.SolveThreshold < 0 || c.AI.SolveThreshold > 1 {
		return errors.New("ai solve threshold must be within [0, 1]")
	}
	if len(c.Players) == 0 {
		return errors.New("no players configured")
	}
	return nil
}

// PlayerNames returns the id -> display name mapping.
func (c *Config) PlayerNames() map[string]string {
	out := make(map[string]string, len(c.Players))
	for _, p := range c.Players {
		name := p.Name
		if name == "" {
			name = p.ID
		}
		out[p.ID] = name
	}
	return out
}

// ParsePlayerNames parses "AI1=Ava,AI2=Max,Human=Rich".
func ParsePlayerNames(s string) ([]Player, error) {
	var out []Player
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, name, ok := strings.Cut(part, "=")
		id, name = strings.TrimSpace(id), strings.TrimSpace(name)
		if !ok || id == "" || name == "" {
			return nil, fmt.Errorf("PLAYER_NAMES: bad entry %q", part)
		}
		out = append(out, Player{ID: id, Name: name})
	}
	return out, nil
}

func setStr(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	*dst = n
	return nil
}
