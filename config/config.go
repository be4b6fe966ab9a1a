package config

import (
	"errors"
	"fmt"
	"math"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
	"lukechampine.com/frand"

	"nogo/game"
)

var ErrInvalidConfig = errors.New("invalid config")

type Strategy string

const (
	StrategyMCTS   Strategy = "mcts"
	StrategyRandom Strategy = "random"
)

type EarlyMode string

const (
	EarlyOff        EarlyMode = "off"
	EarlyFixed      EarlyMode = "fixed"
	EarlyThroughput EarlyMode = "throughput"
)

// Early configures the early cutoff of the iteration loop.
type Early struct {
	Mode EarlyMode `mapstructure:"mode" yaml:"mode"`
	// Visit margin between the two most visited root children (fixed mode)
	Threshold int `mapstructure:"threshold" yaml:"threshold"`
	// Share of the iterations still expected this move (throughput mode)
	Ratio float64 `mapstructure:"ratio" yaml:"ratio"`
}

// Search holds every option recognised by a player.
type Search struct {
	Name     string   `mapstructure:"name" yaml:"name"`
	Role     string   `mapstructure:"role" yaml:"role"`
	Strategy Strategy `mapstructure:"strategy" yaml:"strategy"`

	Exploration float64 `mapstructure:"exploration" yaml:"exploration"`
	// Iteration cap per move. 0 means unbounded, only allowed with time management.
	SimCount int `mapstructure:"sim_count" yaml:"sim_count"`

	TimeManaged  bool          `mapstructure:"time_managed" yaml:"time_managed"`
	BasicConst   int           `mapstructure:"basic_const" yaml:"basic_const"`
	EnhancedPeak int           `mapstructure:"enhanced_peak" yaml:"enhanced_peak"`
	TimeBonus    float64       `mapstructure:"time_bonus" yaml:"time_bonus"`
	InitialTime  time.Duration `mapstructure:"initial_time" yaml:"initial_time"`

	Early        Early  `mapstructure:"early" yaml:"early"`
	Unstable     int    `mapstructure:"unstable" yaml:"unstable"`
	LeafParallel int    `mapstructure:"leaf_parallel" yaml:"leaf_parallel"`
	Seed         uint64 `mapstructure:"seed" yaml:"seed"`
}

func Default() Search {
	return Search{
		Name:        "mcts",
		Role:        game.Black.String(),
		Strategy:    StrategyMCTS,
		Exploration: Exploration,
		SimCount:    SimCount,
		BasicConst:  BasicConst,
		TimeBonus:   TimeBonus,
		InitialTime: InitialTime,
		Early: Early{
			Mode:      EarlyOff,
			Threshold: EarlyThreshold,
		},
	}
}

// Side returns the validated role.
func (s Search) Side() (game.Side, error) {
	side, err := game.ParseSide(s.Role)
	if err != nil {
		return game.Empty, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return side, nil
}

// Iterations returns the per-move iteration cap, with 0 resolved to unbounded.
func (s Search) Iterations() int {
	if s.SimCount <= 0 {
		return math.MaxInt
	}
	return s.SimCount
}

// ResolvedSeed returns the configured seed, or a random one if none was given.
func (s Search) ResolvedSeed() uint64 {
	if s.Seed != 0 {
		return s.Seed
	}
	return frand.Uint64n(math.MaxUint64) + 1
}

// Normalize switches an enhanced schedule to time management.
func (s Search) Normalize() Search {
	if s.EnhancedPeak > 0 {
		return s.Scheduled()
	}
	return s
}

// Scheduled returns s time-managed with an unbounded iteration cap.
func (s Search) Scheduled() Search {
	if !s.TimeManaged {
		s.TimeManaged = true
		s.SimCount = 0
	}
	return s
}

func (s Search) Validate() error {
	if s.Name == "" || strings.ContainsAny(s.Name, "[]():; ") {
		return fmt.Errorf("%w: invalid name %q", ErrInvalidConfig, s.Name)
	}
	if _, err := s.Side(); err != nil {
		return err
	}

	switch s.Strategy {
	case StrategyMCTS, StrategyRandom:
	default:
		return fmt.Errorf("%w: unknown strategy %q", ErrInvalidConfig, s.Strategy)
	}
	if s.Strategy == StrategyRandom {
		return nil
	}

	if s.Exploration < 0 {
		return fmt.Errorf("%w: exploration must not be negative, got %v", ErrInvalidConfig, s.Exploration)
	}
	if s.SimCount < 0 || (s.SimCount == 0 && !s.TimeManaged) {
		return fmt.Errorf("%w: sim_count must be positive without time management, got %d", ErrInvalidConfig, s.SimCount)
	}
	if s.TimeManaged {
		if s.BasicConst <= 0 {
			return fmt.Errorf("%w: basic_const must be positive, got %d", ErrInvalidConfig, s.BasicConst)
		}
		if s.EnhancedPeak < 0 {
			return fmt.Errorf("%w: enhanced_peak must not be negative, got %d", ErrInvalidConfig, s.EnhancedPeak)
		}
		if s.TimeBonus <= 0 {
			return fmt.Errorf("%w: time_bonus must be positive, got %v", ErrInvalidConfig, s.TimeBonus)
		}
		if s.InitialTime <= 0 {
			return fmt.Errorf("%w: initial_time must be positive, got %v", ErrInvalidConfig, s.InitialTime)
		}
	}

	switch s.Early.Mode {
	case EarlyOff:
	case EarlyFixed:
		if s.Early.Threshold <= 0 {
			return fmt.Errorf("%w: early threshold must be positive, got %d", ErrInvalidConfig, s.Early.Threshold)
		}
	case EarlyThroughput:
		if s.Early.Ratio <= 0 {
			return fmt.Errorf("%w: early ratio must be positive, got %v", ErrInvalidConfig, s.Early.Ratio)
		}
		if !s.TimeManaged {
			return fmt.Errorf("%w: throughput early cutoff needs time management", ErrInvalidConfig)
		}
	default:
		return fmt.Errorf("%w: unknown early mode %q", ErrInvalidConfig, s.Early.Mode)
	}

	if s.Unstable < 0 {
		return fmt.Errorf("%w: unstable must not be negative, got %d", ErrInvalidConfig, s.Unstable)
	}
	if s.LeafParallel < 0 {
		return fmt.Errorf("%w: leaf_parallel must not be negative, got %d", ErrInvalidConfig, s.LeafParallel)
	}
	return nil
}

// Load reads a YAML file (optional) layered over the defaults, with NOGO_*
// environment variables taking precedence, e.g. NOGO_EARLY_MODE=fixed.
func Load(path string) (Search, error) {
	v := viper.New()
	setDefaults(v, Default())

	v.SetEnvPrefix("nogo")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Search{}, fmt.Errorf("failed to read config %s: %w", path, err)
		}
	}

	var cfg Search
	if err := v.Unmarshal(&cfg); err != nil {
		return Search{}, fmt.Errorf("failed to decode config: %w", err)
	}
	// An explicit basic schedule selects time management like the enhanced one
	if v.InConfig("basic_const") || os.Getenv("NOGO_BASIC_CONST") != "" {
		cfg = cfg.Scheduled()
	}
	cfg = cfg.Normalize()
	if err := cfg.Validate(); err != nil {
		return Search{}, err
	}
	return cfg, nil
}

// Keys must be registered for AutomaticEnv to reach Unmarshal.
func setDefaults(v *viper.Viper, d Search) {
	v.SetDefault("name", d.Name)
	v.SetDefault("role", d.Role)
	v.SetDefault("strategy", string(d.Strategy))
	v.SetDefault("exploration", d.Exploration)
	v.SetDefault("sim_count", d.SimCount)
	v.SetDefault("time_managed", d.TimeManaged)
	v.SetDefault("basic_const", d.BasicConst)
	v.SetDefault("enhanced_peak", d.EnhancedPeak)
	v.SetDefault("time_bonus", d.TimeBonus)
	v.SetDefault("initial_time", d.InitialTime)
	v.SetDefault("early.mode", string(d.Early.Mode))
	v.SetDefault("early.threshold", d.Early.Threshold)
	v.SetDefault("early.ratio", d.Early.Ratio)
	v.SetDefault("unstable", d.Unstable)
	v.SetDefault("leaf_parallel", d.LeafParallel)
	v.SetDefault("seed", d.Seed)
}

func Marshal(cfgs ...Search) ([]byte, error) {
	out, err := yaml.Marshal(cfgs)
	if err != nil {
		return nil, fmt.Errorf("failed to encode config: %w", err)
	}
	return out, nil
}
