// Package config provides Viper-based configuration loading for the village
// simulation.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// DatabaseConfig holds PostgreSQL connection settings.
type DatabaseConfig struct {
	// Enabled turns on presence and ownership persistence.
	Enabled         bool          `mapstructure:"enabled"`
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	Name            string        `mapstructure:"name"`
	SSLMode         string        `mapstructure:"sslmode"`
	MaxConns        int32         `mapstructure:"max_conns"`
	MinConns        int32         `mapstructure:"min_conns"`
	MaxConnLifetime time.Duration `mapstructure:"max_conn_lifetime"`
	// JournalBuffer is the capacity of the ownership journal queue.
	JournalBuffer int `mapstructure:"journal_buffer"`
}

// DSN returns the PostgreSQL connection string.
//
// Precondition: Host, Port, User, and Name must be non-empty.
// Postcondition: Returns a valid PostgreSQL DSN string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, d.SSLMode,
	)
}

// LoggingConfig holds structured logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: "debug", "info", "warn", "error".
	Level string `mapstructure:"level"`
	// Format is the log output format: "json" or "console".
	Format string `mapstructure:"format"`
}

// SimulationConfig holds the village tick loop settings.
type SimulationConfig struct {
	// TickInterval is the wall-clock time between game ticks.
	TickInterval time.Duration `mapstructure:"tick_interval"`
	// Seed makes every roll reproducible; 0 uses a crypto source.
	Seed uint64 `mapstructure:"seed"`
	// ContentDir holds the species/ and items/ YAML directories.
	ContentDir string `mapstructure:"content_dir"`
	// Scenario is the village population file.
	Scenario string `mapstructure:"scenario"`
	// StartHour is the game hour the clock starts at.
	StartHour int `mapstructure:"start_hour"`
	// TicksPerHour is the number of ticks in one game hour.
	TicksPerHour int `mapstructure:"ticks_per_hour"`
	// MaxTicks stops the simulation after that many ticks; 0 runs until stopped.
	MaxTicks int64 `mapstructure:"max_ticks"`
	// PerceptionRadius is how far, in blocks, a villager sees animals.
	PerceptionRadius int `mapstructure:"perception_radius"`
}

// ScriptingConfig holds Lua hook settings.
type ScriptingConfig struct {
	// Dir holds the global *.lua scripts; empty disables scripting.
	Dir string `mapstructure:"dir"`
	// InstructionLimit caps the opcodes of one hook call; 0 uses the default.
	InstructionLimit int `mapstructure:"instruction_limit"`
}

// PetCareProfile configures the pet-care behavior for one species.
type PetCareProfile struct {
	Species        string   `mapstructure:"species"`
	TameItems      []string `mapstructure:"tame_items"`
	DistanceToTame int      `mapstructure:"distance_to_tame"`
	TameChance     int      `mapstructure:"tame_chance"`
	SpeedModifier  float64  `mapstructure:"speed_modifier"`
}

// PetCareConfig holds the pet-care knobs shared by every species.
type PetCareConfig struct {
	// TameCooldownTicks is how long a villager rests after a pet-care cycle;
	// 0 disables the cooldown.
	TameCooldownTicks int64 `mapstructure:"tame_cooldown_ticks"`
	// AdoptAbandonedPets lets villagers adopt pets whose villager owner is gone.
	AdoptAbandonedPets bool             `mapstructure:"adopt_abandoned_pets"`
	Profiles           []PetCareProfile `mapstructure:"profiles"`
}

// Config is the top-level application configuration.
type Config struct {
	Logging    LoggingConfig    `mapstructure:"logging"`
	Database   DatabaseConfig   `mapstructure:"database"`
	Simulation SimulationConfig `mapstructure:"simulation"`
	Scripting  ScriptingConfig  `mapstructure:"scripting"`
	PetCare    PetCareConfig    `mapstructure:"petcare"`
}

// Validate checks all configuration invariants.
//
// Postcondition: Returns nil if configuration is valid, or an error describing all violations.
func (c Config) Validate() error {
	var errs []string

	if err := validateLogging(c.Logging); err != nil {
		errs = append(errs, err.Error())
	}
	if c.Database.Enabled {
		if err := validateDatabase(c.Database); err != nil {
			errs = append(errs, err.Error())
		}
	}
	if err := validateSimulation(c.Simulation); err != nil {
		errs = append(errs, err.Error())
	}
	if c.Scripting.InstructionLimit < 0 {
		errs = append(errs, fmt.Sprintf("scripting.instruction_limit must be >= 0, got %d", c.Scripting.InstructionLimit))
	}
	if err := validatePetCare(c.PetCare); err != nil {
		errs = append(errs, err.Error())
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}

func validateDatabase(d DatabaseConfig) error {
	var errs []string
	if d.Host == "" {
		errs = append(errs, "database.host must not be empty")
	}
	if d.Port < 1 || d.Port > 65535 {
		errs = append(errs, fmt.Sprintf("database.port must be 1-65535, got %d", d.Port))
	}
	if d.User == "" {
		errs = append(errs, "database.user must not be empty")
	}
	if d.Name == "" {
		errs = append(errs, "database.name must not be empty")
	}
	validSSL := map[string]bool{"disable": true, "require": true, "verify-ca": true, "verify-full": true}
	if !validSSL[d.SSLMode] {
		errs = append(errs, fmt.Sprintf("database.sslmode must be one of [disable, require, verify-ca, verify-full], got %q", d.SSLMode))
	}
	if d.MaxConns < 1 {
		errs = append(errs, fmt.Sprintf("database.max_conns must be >= 1, got %d", d.MaxConns))
	}
	if d.MinConns < 0 {
		errs = append(errs, fmt.Sprintf("database.min_conns must be >= 0, got %d", d.MinConns))
	}
	if d.MinConns > d.MaxConns {
		errs = append(errs, "database.min_conns must not exceed database.max_conns")
	}
	if d.JournalBuffer < 1 {
		errs = append(errs, fmt.Sprintf("database.journal_buffer must be >= 1, got %d", d.JournalBuffer))
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

func validateLogging(l LoggingConfig) error {
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[l.Level] {
		return fmt.Errorf("logging.level must be one of [debug, info, warn, error], got %q", l.Level)
	}
	validFormats := map[string]bool{"json": true, "console": true}
	if !validFormats[l.Format] {
		return fmt.Errorf("logging.format must be one of [json, console], got %q", l.Format)
	}
	return nil
}

func validateSimulation(s SimulationConfig) error {
	var errs []string
	if s.TickInterval <= 0 {
		errs = append(errs, fmt.Sprintf("simulation.tick_interval must be > 0, got %s", s.TickInterval))
	}
	if s.ContentDir == "" {
		errs = append(errs, "simulation.content_dir must not be empty")
	}
	if s.Scenario == "" {
		errs = append(errs, "simulation.scenario must not be empty")
	}
	if s.StartHour < 0 || s.StartHour > 23 {
		errs = append(errs, fmt.Sprintf("simulation.start_hour must be 0-23, got %d", s.StartHour))
	}
	if s.TicksPerHour < 1 {
		errs = append(errs, fmt.Sprintf("simulation.ticks_per_hour must be >= 1, got %d", s.TicksPerHour))
	}
	if s.MaxTicks < 0 {
		errs = append(errs, fmt.Sprintf("simulation.max_ticks must be >= 0, got %d", s.MaxTicks))
	}
	if s.PerceptionRadius < 1 {
		errs = append(errs, fmt.Sprintf("simulation.perception_radius must be >= 1, got %d", s.PerceptionRadius))
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

func validatePetCare(p PetCareConfig) error {
	var errs []string
	if p.TameCooldownTicks < 0 {
		errs = append(errs, fmt.Sprintf("petcare.tame_cooldown_ticks must be >= 0, got %d", p.TameCooldownTicks))
	}
	if len(p.Profiles) == 0 {
		errs = append(errs, "petcare.profiles must not be empty")
	}
	seen := make(map[string]bool, len(p.Profiles))
	for i, prof := range p.Profiles {
		if err := validateProfile(prof); err != nil {
			errs = append(errs, fmt.Sprintf("petcare.profiles[%d]: %v", i, err))
		}
		if seen[prof.Species] {
			errs = append(errs, fmt.Sprintf("petcare.profiles[%d]: duplicate species %q", i, prof.Species))
		}
		seen[prof.Species] = true
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

func validateProfile(p PetCareProfile) error {
	var errs []error
	if p.Species == "" {
		errs = append(errs, errors.New("species must not be empty"))
	}
	if len(p.TameItems) == 0 {
		errs = append(errs, errors.New("tame_items must not be empty"))
	}
	if p.DistanceToTame < 1 {
		errs = append(errs, fmt.Errorf("distance_to_tame must be >= 1, got %d", p.DistanceToTame))
	}
	if p.TameChance < 1 {
		errs = append(errs, fmt.Errorf("tame_chance must be >= 1, got %d", p.TameChance))
	}
	if p.SpeedModifier <= 0 {
		errs = append(errs, fmt.Errorf("speed_modifier must be > 0, got %g", p.SpeedModifier))
	}
	return errors.Join(errs...)
}

// Load reads configuration from the given file path, applies environment variable
// overrides, and validates the result.
//
// Precondition: path must be a valid file path to a YAML configuration file.
// Postcondition: Returns a valid Config or a non-nil error.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetConfigFile(path)

	// Environment variable overrides with PETS_ prefix
	v.SetEnvPrefix("PETS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return Config{}, fmt.Errorf("reading config file: %w", err)
	}

	return LoadFromViper(v)
}

// LoadFromViper builds a Config from an already-configured Viper instance.
//
// Precondition: v must be non-nil and have configuration values set.
// Postcondition: Returns a valid Config or a non-nil error.
func LoadFromViper(v *viper.Viper) (Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshalling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	v.SetDefault("database.enabled", false)
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "pets")
	v.SetDefault("database.password", "pets")
	v.SetDefault("database.name", "pets")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_conns", 10)
	v.SetDefault("database.min_conns", 2)
	v.SetDefault("database.max_conn_lifetime", "1h")
	v.SetDefault("database.journal_buffer", 256)

	v.SetDefault("simulation.tick_interval", "50ms")
	v.SetDefault("simulation.seed", 0)
	v.SetDefault("simulation.content_dir", "content")
	v.SetDefault("simulation.scenario", "scenarios/village.yaml")
	v.SetDefault("simulation.start_hour", 6)
	v.SetDefault("simulation.ticks_per_hour", 1000)
	v.SetDefault("simulation.max_ticks", 0)
	v.SetDefault("simulation.perception_radius", 16)

	v.SetDefault("scripting.dir", "content/scripts")
	v.SetDefault("scripting.instruction_limit", 0)

	v.SetDefault("petcare.tame_cooldown_ticks", 6000)
	v.SetDefault("petcare.adopt_abandoned_pets", true)
	v.SetDefault("petcare.profiles", []map[string]any{
		{"species": "wolf", "tame_items": []string{"bone"}, "distance_to_tame": 2, "tame_chance": 3, "speed_modifier": 0.6},
		{"species": "cat", "tame_items": []string{"cod", "salmon"}, "distance_to_tame": 2, "tame_chance": 3, "speed_modifier": 0.6},
		{"species": "parrot", "tame_items": []string{"seeds"}, "distance_to_tame": 2, "tame_chance": 10, "speed_modifier": 0.6},
	})
}
