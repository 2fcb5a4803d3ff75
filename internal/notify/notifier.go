package notify

import (
	"context"
	"time"
)

// RunMessage summarizes a finished simulation run.
type RunMessage struct {
	RunID          string    `json:"run_id"`
	Season         string    `json:"season"`
	CommunitySize  int       `json:"community_size"`
	PVPercentage   int       `json:"pv_percentage"`
	SDPercentage   int       `json:"sd_percentage"`
	WithBattery    bool      `json:"with_battery"`
	Steps          int       `json:"steps"`
	CostWithLEC    float64   `json:"cost_with_lec"`
	CostWithoutLEC float64   `json:"cost_without_lec"`
	TradingVolume  float64   `json:"trading_volume"`
	FinishedAt     time.Time `json:"finished_at"`
}

// Notifier sends notifications.
type Notifier interface {
	Notify(ctx context.Context, msg RunMessage) error
}
