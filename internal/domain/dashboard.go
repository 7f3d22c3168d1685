package domain

// DashboardFilter narrows dashboard queries to one forecast horizon.
// An empty horizon means both.
type DashboardFilter struct {
	Horizon string `form:"horizon"`
}

// RiskSlice is one risk flag's share of the classified rows.
type RiskSlice struct {
	Flag       RiskFlag `json:"flag"`
	Count      int      `json:"count"`
	Percentage float64  `json:"percentage"`
}

// MaterialShortfall is one raw material whose projected drawdown exceeds
// its snapshot stock somewhere in the horizon.
type MaterialShortfall struct {
	RawMaterial    string  `json:"raw_material"`
	MaterialType   string  `json:"material_type"`
	Horizon        Horizon `json:"forecast_horizon"`
	FirstShortDate string  `json:"first_short_date"`
	WorstBalance   string  `json:"worst_balance"`
	TotalDemand    int64   `json:"total_demand"`
}

// MaterialTypeDemand aggregates forecast demand per material type.
type MaterialTypeDemand struct {
	MaterialType string  `json:"material_type"`
	Horizon      Horizon `json:"forecast_horizon"`
	TotalUnits   int64   `json:"total_units"`
}

// ForecastSummary aggregates the SKU forecast table for one horizon.
type ForecastSummary struct {
	Horizon    Horizon `json:"forecast_horizon"`
	SKUs       int     `json:"skus"`
	Stores     int     `json:"stores"`
	TotalUnits int64   `json:"total_units"`
	StartDate  string  `json:"start_date"`
	EndDate    string  `json:"end_date"`
}

// DashboardSummary is the full KPI payload served to the dashboard.
type DashboardSummary struct {
	RiskDistribution []RiskSlice          `json:"risk_distribution"`
	Shortfalls       []MaterialShortfall  `json:"shortfalls"`
	DemandByType     []MaterialTypeDemand `json:"demand_by_type"`
	Forecasts        []ForecastSummary    `json:"forecasts"`
}
