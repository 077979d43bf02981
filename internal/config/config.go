// Package config loads engine settings through viper: built-in defaults, an
// optional strike.cfg.json (or .yaml) file and STRIKE_* environment variables,
// in increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// ConfigName is the config file looked up in the config directory, without
// extension.
const ConfigName = "strike.cfg"

// EnvPrefix prefixes environment overrides, e.g. STRIKE_LOGLEVEL or
// STRIKE_STORAGE_TYPE.
const EnvPrefix = "STRIKE"

// NavigationConfig locates and tunes the navigation graph.
type NavigationConfig struct {
	Dir            string        `json:"dir" mapstructure:"dir"` // empty disables the navigator
	TopSpeed       float64       `json:"topSpeed" mapstructure:"topSpeed"`
	HeuristicSlack float64       `json:"heuristicSlack" mapstructure:"heuristicSlack"`
	MaxWeight      float32       `json:"maxWeight" mapstructure:"maxWeight"`
	LocalRange     float64       `json:"localRange" mapstructure:"localRange"`
	LocalSpeed     float64       `json:"localSpeed" mapstructure:"localSpeed"`
	WaitTimeout    time.Duration `json:"waitTimeout" mapstructure:"waitTimeout"`
}

// OptimizerConfig bounds the strike search grid.
type OptimizerConfig struct {
	Durations   []float64 `json:"durations" mapstructure:"durations"`
	DelayStep   float64   `json:"delayStep" mapstructure:"delayStep"`
	AngleStep   float64   `json:"angleStep" mapstructure:"angleStep"`
	AngleSteps  int       `json:"angleSteps" mapstructure:"angleSteps"`
	LongWindow  float64   `json:"longWindow" mapstructure:"longWindow"`
	TimeBudget  float64   `json:"timeBudget" mapstructure:"timeBudget"`
	ArenaMargin float64   `json:"arenaMargin" mapstructure:"arenaMargin"`
}

// AgentConfig tunes the agent's tick loop. Times are in seconds.
type AgentConfig struct {
	StrikeWindow      float64 `json:"strikeWindow" mapstructure:"strikeWindow"`
	SolveInterval     float64 `json:"solveInterval" mapstructure:"solveInterval"`
	ReplanInterval    float64 `json:"replanInterval" mapstructure:"replanInterval"`
	PredictionHorizon float64 `json:"predictionHorizon" mapstructure:"predictionHorizon"`
	MaxStrikeHeight   float64 `json:"maxStrikeHeight" mapstructure:"maxStrikeHeight"`
	RouteDistance     float64 `json:"routeDistance" mapstructure:"routeDistance"`
	RecoveryTime      float64 `json:"recoveryTime" mapstructure:"recoveryTime"`
}

// SQLiteConfig holds SQLite storage backend settings.
type SQLiteConfig struct {
	Path string `json:"path" mapstructure:"path"` // empty keeps the database in memory
}

// StorageConfig selects the solve recorder.
type StorageConfig struct {
	Type   string       `json:"type" mapstructure:"type"` // memory or sqlite
	SQLite SQLiteConfig `json:"sqlite" mapstructure:"sqlite"`
}

// Settings is the typed view of the whole configuration.
type Settings struct {
	TickRate   float64          `json:"tickRate" mapstructure:"tickRate"`
	LogLevel   string           `json:"logLevel" mapstructure:"logLevel"`
	LogFile    string           `json:"logFile" mapstructure:"logFile"`
	Optimizer  OptimizerConfig  `json:"optimizer" mapstructure:"optimizer"`
	Agent      AgentConfig      `json:"agent" mapstructure:"agent"`
	Navigation NavigationConfig `json:"navigation" mapstructure:"navigation"`
	Storage    StorageConfig    `json:"storage" mapstructure:"storage"`
}

// SetDefaults registers every default on the global viper instance.
func SetDefaults() {
	viper.SetDefault("tickRate", 120)
	viper.SetDefault("logLevel", "info")
	viper.SetDefault("logFile", "")

	viper.SetDefault("optimizer.durations", []float64{0.05, 0.2})
	viper.SetDefault("optimizer.delayStep", 1.0/30)
	viper.SetDefault("optimizer.angleStep", 0.2)
	viper.SetDefault("optimizer.angleSteps", 2)
	viper.SetDefault("optimizer.longWindow", 1.0)
	viper.SetDefault("optimizer.timeBudget", 1.0)
	viper.SetDefault("optimizer.arenaMargin", 0.0)

	viper.SetDefault("agent.strikeWindow", 1.0)
	viper.SetDefault("agent.solveInterval", 0.1)
	viper.SetDefault("agent.replanInterval", 0.5)
	viper.SetDefault("agent.predictionHorizon", 3.0)
	viper.SetDefault("agent.maxStrikeHeight", 300.0)
	viper.SetDefault("agent.routeDistance", 2500.0)
	viper.SetDefault("agent.recoveryTime", 1.0)

	viper.SetDefault("navigation.dir", "")
	viper.SetDefault("navigation.topSpeed", 2300)
	viper.SetDefault("navigation.heuristicSlack", 200)
	viper.SetDefault("navigation.maxWeight", 30)
	viper.SetDefault("navigation.localRange", 1500)
	viper.SetDefault("navigation.localSpeed", 1400)
	viper.SetDefault("navigation.waitTimeout", "30s")

	viper.SetDefault("storage.type", "memory")
	viper.SetDefault("storage.sqlite.path", "")
}

// Load sets defaults, binds the environment and reads strike.cfg from
// configDir. A missing file is not an error; a malformed one is.
func Load(configDir string) error {
	SetDefaults()

	viper.SetEnvPrefix(EnvPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if configDir == "" {
		return nil
	}
	viper.SetConfigName(ConfigName)
	viper.AddConfigPath(configDir)

	err := viper.ReadInConfig()
	var notFound viper.ConfigFileNotFoundError
	if errors.As(err, &notFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("error reading config file: %w", err)
	}
	return nil
}

// Get decodes the current configuration.
func Get() (Settings, error) {
	var s Settings
	if err := viper.Unmarshal(&s); err != nil {
		return Settings{}, fmt.Errorf("decoding settings: %w", err)
	}
	if s.TickRate <= 0 {
		return Settings{}, fmt.Errorf("tickRate must be positive, got %g", s.TickRate)
	}
	return s, nil
}

// GetStorageConfig returns the storage section.
func GetStorageConfig() StorageConfig {
	return StorageConfig{
		Type: viper.GetString("storage.type"),
		SQLite: SQLiteConfig{
			Path: viper.GetString("storage.sqlite.path"),
		},
	}
}

// GetString returns a string config value.
func GetString(key string) string {
	return viper.GetString(key)
}
