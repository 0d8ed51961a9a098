// Package config handles simulation configuration loading and management.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/Faultbox/stance-ik/internal/ik"
)

// Config holds all simulation settings.
type Config struct {
	IK         IKConfig          `yaml:"ik"`
	Characters []CharacterConfig `yaml:"characters"`
	Terrain    TerrainConfig     `yaml:"terrain"`
	Sim        SimConfig         `yaml:"sim"`
	Trace      TraceConfig       `yaml:"trace"`
	Telemetry  TelemetryConfig   `yaml:"telemetry"`
	Logging    LoggingConfig     `yaml:"logging"`
}

// IKConfig holds the solver tuning shared by every character.
type IKConfig struct {
	FootInterpSpeed  float32 `yaml:"foot_interp_speed"`
	HipInterpSpeed   float32 `yaml:"hip_interp_speed"`
	ProbeDistance    float32 `yaml:"probe_distance"`
	AdjustOffsetBias float32 `yaml:"adjust_offset_bias"`
	LeftSocket       string  `yaml:"left_socket"`
	RightSocket      string  `yaml:"right_socket"`
	StationarySpeed  float32 `yaml:"stationary_speed"`
	ResumeHysteresis float32 `yaml:"resume_hysteresis"`
}

// CharacterConfig describes one character and its movement script.
type CharacterConfig struct {
	Name              string                `yaml:"name"`
	Position          [2]float32            `yaml:"position"`
	Yaw               float32               `yaml:"yaw"`
	MoveSpeed         float32               `yaml:"move_speed"`
	CapsuleRadius     float32               `yaml:"capsule_radius"`
	CapsuleHalfHeight float32               `yaml:"capsule_half_height"`
	Sockets           map[string][3]float32 `yaml:"sockets,omitempty"` // Local offsets; defaults when empty
	Waypoints         []Waypoint            `yaml:"waypoints,omitempty"`
	Loop              bool                  `yaml:"loop"`
}

// Waypoint is a movement target followed by a pause.
type Waypoint struct {
	X    float32       `yaml:"x"`
	Y    float32       `yaml:"y"`
	Wait time.Duration `yaml:"wait"`
}

// Terrain kinds.
const (
	TerrainFlat    = "flat"
	TerrainSlope   = "slope"
	TerrainHeights = "heights"
)

// TerrainConfig describes the ground and static boxes.
type TerrainConfig struct {
	Name     string      `yaml:"name"`
	Kind     string      `yaml:"kind"`
	Cells    int         `yaml:"cells"`
	CellSize float32     `yaml:"cell_size"`
	Height   float32     `yaml:"height"`    // flat
	SlopeDeg float32     `yaml:"slope_deg"` // slope, rising along +X
	Rows     [][]float32 `yaml:"rows,omitempty"`
	Origin   [2]float32  `yaml:"origin"` // heights
	Boxes    []BoxConfig `yaml:"boxes,omitempty"`
}

// BoxConfig is a static axis-aligned box, such as a step or a rock.
type BoxConfig struct {
	Name string     `yaml:"name"`
	Min  [3]float32 `yaml:"min"`
	Max  [3]float32 `yaml:"max"`
}

// SimConfig holds tick loop settings.
type SimConfig struct {
	TickRateHz int  `yaml:"tick_rate_hz"`
	Ticks      int  `yaml:"ticks"`    // 0 runs until interrupted
	Realtime   bool `yaml:"realtime"` // Pace ticks to the wall clock
}

// TraceConfig holds frame recording settings.
type TraceConfig struct {
	Path   string `yaml:"path"`   // SQLite database; empty disables recording
	Export string `yaml:"export"` // zstd JSONL export written after the run
}

// TelemetryConfig holds live observer settings.
type TelemetryConfig struct {
	Addr string `yaml:"addr"` // Listen address; empty disables the server
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// DefaultCharacter returns the stock character standing at the origin.
func DefaultCharacter(name string) CharacterConfig {
	return CharacterConfig{
		Name:              name,
		MoveSpeed:         150,
		CapsuleRadius:     42,
		CapsuleHalfHeight: ik.DefaultBaseCapsuleHalfHeight,
	}
}

// Default returns a Config with sensible default values.
func Default() *Config {
	hero := DefaultCharacter("hero")
	hero.Yaw = 90
	hero.Waypoints = []Waypoint{
		{X: 0, Y: 0, Wait: 2 * time.Second},
		{X: 120, Y: 0, Wait: 2 * time.Second},
	}
	hero.Loop = true

	return &Config{
		IK: IKConfig{
			FootInterpSpeed:  ik.DefaultFootInterpSpeed,
			HipInterpSpeed:   ik.DefaultHipInterpSpeed,
			ProbeDistance:    ik.DefaultProbeDistance,
			AdjustOffsetBias: ik.DefaultAdjustOffsetBias,
			LeftSocket:       ik.DefaultLeftSocket,
			RightSocket:      ik.DefaultRightSocket,
			StationarySpeed:  ik.DefaultStationarySpeed,
		},
		Characters: []CharacterConfig{hero},
		Terrain: TerrainConfig{
			Name:     "hillside",
			Kind:     TerrainSlope,
			Cells:    32,
			CellSize: 25,
			SlopeDeg: 15,
		},
		Sim: SimConfig{
			TickRateHz: 60,
			Ticks:      0,
			Realtime:   true,
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}

// Tuning returns the solver tuning for a character.
func (c IKConfig) Tuning(ch CharacterConfig) ik.Tuning {
	return ik.Tuning{
		FootInterpSpeed:       c.FootInterpSpeed,
		HipInterpSpeed:        c.HipInterpSpeed,
		ProbeDistance:         c.ProbeDistance,
		AdjustOffsetBias:      c.AdjustOffsetBias,
		BaseCapsuleHalfHeight: ch.CapsuleHalfHeight,
		LeftSocket:            c.LeftSocket,
		RightSocket:           c.RightSocket,
		StationarySpeed:       c.StationarySpeed,
		ResumeHysteresis:      c.ResumeHysteresis,
	}
}

// Validate checks settings the schema cannot express.
func (c *Config) Validate() error {
	if c.Sim.TickRateHz <= 0 {
		return fmt.Errorf("sim.tick_rate_hz must be > 0, got %d", c.Sim.TickRateHz)
	}
	if len(c.Characters) == 0 {
		return errors.New("at least one character is required")
	}
	seen := make(map[string]bool, len(c.Characters))
	for i, ch := range c.Characters {
		if ch.Name == "" {
			return fmt.Errorf("characters[%d]: name is required", i)
		}
		if seen[ch.Name] {
			return fmt.Errorf("characters[%d]: duplicate name %q", i, ch.Name)
		}
		seen[ch.Name] = true
		if err := c.IK.Tuning(ch).Validate(); err != nil {
			return fmt.Errorf("character %q: %w", ch.Name, err)
		}
	}
	switch c.Terrain.Kind {
	case TerrainFlat, TerrainSlope:
		if c.Terrain.Cells < 1 || c.Terrain.CellSize <= 0 {
			return fmt.Errorf("terrain %q needs cells >= 1 and cell_size > 0", c.Terrain.Kind)
		}
	case TerrainHeights:
		if len(c.Terrain.Rows) < 2 {
			return errors.New("terrain heights needs at least 2 rows")
		}
	default:
		return fmt.Errorf("unknown terrain kind %q", c.Terrain.Kind)
	}
	return nil
}
