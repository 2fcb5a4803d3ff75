package simulation

import (
	"errors"
	"os"
	"strconv"
)

// Config holds tariffs and device parameters of the reference engine.
type Config struct {
	// GridPrice is paid per kWh imported from the grid.
	GridPrice float64
	// FeedInPrice is earned per kWh exported to the grid.
	FeedInPrice float64
	// BatteryKWhPerMember sizes the shared battery.
	BatteryKWhPerMember float64
	// BatteryEfficiency applies on charge.
	BatteryEfficiency float64
	// SDFlexShare is the fraction of a smart-device member's daily load that can move.
	SDFlexShare float64
}

// DefaultConfig returns the engine defaults.
func DefaultConfig() Config {
	return Config{
		GridPrice:           0.30,
		FeedInPrice:         0.08,
		BatteryKWhPerMember: 5,
		BatteryEfficiency:   0.9,
		SDFlexShare:         0.2,
	}
}

// ConfigFromEnv overlays GRID_PRICE, FEED_IN_PRICE, BATTERY_KWH_PER_MEMBER,
// BATTERY_EFFICIENCY and SD_FLEX_SHARE on the defaults.
func ConfigFromEnv() Config {
	def := DefaultConfig()
	return Config{
		GridPrice:           getenvFloatDefault("GRID_PRICE", def.GridPrice),
		FeedInPrice:         getenvFloatDefault("FEED_IN_PRICE", def.FeedInPrice),
		BatteryKWhPerMember: getenvFloatDefault("BATTERY_KWH_PER_MEMBER", def.BatteryKWhPerMember),
		BatteryEfficiency:   getenvFloatDefault("BATTERY_EFFICIENCY", def.BatteryEfficiency),
		SDFlexShare:         getenvFloatDefault("SD_FLEX_SHARE", def.SDFlexShare),
	}
}

// Validate checks prices and device parameters.
func (c Config) Validate() error {
	if c.GridPrice < 0 || c.FeedInPrice < 0 {
		return errors.New("simulation config: prices must be >= 0")
	}
	if c.BatteryKWhPerMember < 0 {
		return errors.New("simulation config: battery capacity must be >= 0")
	}
	if c.BatteryEfficiency <= 0 || c.BatteryEfficiency > 1 {
		return errors.New("simulation config: battery efficiency must be in (0,1]")
	}
	if c.SDFlexShare < 0 || c.SDFlexShare > 1 {
		return errors.New("simulation config: sd flex share must be in [0,1]")
	}
	return nil
}

func getenvFloatDefault(key string, fallback float64) float64 {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return fallback
	}
	return parsed
}
