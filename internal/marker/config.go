package marker

import (
	"errors"
	"fmt"
)

// ErrInvalidConfig wraps every configuration validation failure.
var ErrInvalidConfig = errors.New("invalid detector configuration")

// Config holds the tunable thresholds of the pipeline.
type Config struct {
	// EpsilonRate is the polygon approximation tolerance as a fraction of the contour perimeter.
	EpsilonRate float64 `json:"epsilon_rate"`

	// DiagonalLimit is the minimum length in pixels of the shorter quad diagonal.
	DiagonalLimit int `json:"diagonal_limit"`

	// MatchLimit is the pixel agreement an entry must exceed to be accepted (0-1).
	MatchLimit float64 `json:"match_limit"`

	// SideLength is the resolution of the rectified patch.
	SideLength int `json:"side_length"`

	// Debug also returns the intermediate threshold image.
	Debug bool `json:"debug"`
}

// DefaultConfig returns the thresholds reference dictionaries were tuned with.
func DefaultConfig() Config {
	return Config{
		EpsilonRate:   0.01,
		DiagonalLimit: 32,
		MatchLimit:    0.85,
		SideLength:    42,
		Debug:         false,
	}
}

func (c Config) Validate() error {
	if c.EpsilonRate <= 0 {
		return fmt.Errorf("%w: epsilon_rate must be positive, got %v", ErrInvalidConfig, c.EpsilonRate)
	}
	if c.DiagonalLimit <= 0 {
		return fmt.Errorf("%w: diagonal_limit must be positive, got %d", ErrInvalidConfig, c.DiagonalLimit)
	}
	if c.MatchLimit < 0 || c.MatchLimit > 1 {
		return fmt.Errorf("%w: match_limit must be within [0,1], got %v", ErrInvalidConfig, c.MatchLimit)
	}
	if c.SideLength <= 0 {
		return fmt.Errorf("%w: side_length must be positive, got %d", ErrInvalidConfig, c.SideLength)
	}
	return nil
}

// ConfigFromParams overlays snake_case option names onto the defaults. Unknown keys and
// values of the wrong type are ignored.
func ConfigFromParams(params map[string]interface{}) Config {
	cfg := DefaultConfig()
	cfg.EpsilonRate = getFloatParam(params, "epsilon_rate", cfg.EpsilonRate)
	cfg.DiagonalLimit = getIntParam(params, "diagonal_limit", cfg.DiagonalLimit)
	cfg.MatchLimit = getFloatParam(params, "match_limit", cfg.MatchLimit)
	cfg.SideLength = getIntParam(params, "side_length", cfg.SideLength)
	cfg.Debug = getBoolParam(params, "debug", cfg.Debug)
	return cfg
}

func getIntParam(params map[string]interface{}, key string, defaultValue int) int {
	switch value := params[key].(type) {
	case int:
		return value
	case float64:
		if value == float64(int(value)) {
			return int(value)
		}
	}
	return defaultValue
}

func getFloatParam(params map[string]interface{}, key string, defaultValue float64) float64 {
	switch value := params[key].(type) {
	case float64:
		return value
	case int:
		return float64(value)
	}
	return defaultValue
}

func getBoolParam(params map[string]interface{}, key string, defaultValue bool) bool {
	if value, ok := params[key].(bool); ok {
		return value
	}
	return defaultValue
}
