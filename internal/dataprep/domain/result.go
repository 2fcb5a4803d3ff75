package dataprep

import (
	"encoding/json"
	"errors"
)

// SimulationResult is returned by the simulation engine. The JSON layout is what the web frontend reads.
type SimulationResult struct {
	TradingNetwork TradingNetwork `json:"trading_network"`
	EnergyMetrics  EnergyMetrics  `json:"energy_metrics"`
	CostMetrics    CostMetrics    `json:"cost_metrics"`
	MarketMetrics  MarketMetrics  `json:"market_metrics"`
	Profiles       Profiles       `json:"profiles"`
	Warnings       []string       `json:"warnings"`
	Errors         []string       `json:"errors"`
}

// TradingNetwork describes energy traded between members.
type TradingNetwork struct {
	Nodes  []string              `json:"nodes"`
	Edges  []TradingEdge         `json:"edges"`
	Layout map[string][2]float64 `json:"layout"`
}

// TradingEdge is encoded as [from, to, volume].
type TradingEdge struct {
	From   string
	To     string
	Volume float64
}

// MarshalJSON encodes the edge as a three element array.
func (e TradingEdge) MarshalJSON() ([]byte, error) {
	return json.Marshal([]any{e.From, e.To, e.Volume})
}

// UnmarshalJSON decodes a three element array.
func (e *TradingEdge) UnmarshalJSON(data []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if len(raw) != 3 {
		return errors.New("dataprep: trading edge must have 3 elements")
	}
	if err := json.Unmarshal(raw[0], &e.From); err != nil {
		return err
	}
	if err := json.Unmarshal(raw[1], &e.To); err != nil {
		return err
	}
	return json.Unmarshal(raw[2], &e.Volume)
}

// EnergyMetrics are community totals in kWh.
type EnergyMetrics struct {
	TotalProduction  float64 `json:"total_production"`
	TotalConsumption float64 `json:"total_consumption"`
	TotalGridImport  float64 `json:"total_grid_import"`
	TotalGridExport  float64 `json:"total_grid_export"`
}

// CostMetrics compares community cost with and without local sharing.
type CostMetrics struct {
	CostWithLEC    float64 `json:"cost_with_lec"`
	CostWithoutLEC float64 `json:"cost_without_lec"`
}

// MarketMetrics summarize local trading.
type MarketMetrics struct {
	TradingVolume        float64 `json:"trading_volume"`
	RatioFulfilledDemand float64 `json:"ratio_fulfilled_demand"`
	RatioSoldSupply      float64 `json:"ratio_sold_supply"`
}

// Profiles hold mean community load and generation per hour of day.
type Profiles struct {
	LoadProfile []float64 `json:"load_profile"`
	GenProfile  []float64 `json:"gen_profile"`
}
