package models

// -----------------------------------------------------------------------------
// Profile aggregation output (one row per observed cycle group key)
// -----------------------------------------------------------------------------

// MProfileSummary holds the statistics computed for one cycle group.
// Averages over an empty side (no green rows, no rows with volatility data)
// are emitted as 0 so downstream formatting stays total.
type MProfileSummary struct {
	Key                     int     `json:"key"`
	Rows                    int     `json:"rows"`
	GreenProbability        float64 `json:"green_probability"`
	RedProbability          float64 `json:"red_probability"`
	AvgReturn               float64 `json:"avg_return"`
	ReturnStdDev            float64 `json:"return_stddev"`
	AvgVolatility           float64 `json:"avg_volatility"`
	ModalVolatilityCategory int     `json:"modal_volatility_category"`
	AvgGreenReturn          float64 `json:"avg_green_return"`
	AvgRedReturn            float64 `json:"avg_red_return"`
}

// -----------------------------------------------------------------------------
// Barcode positional mapping
// -----------------------------------------------------------------------------

// MBarcodeEntry marks where a reference date sits within one cyclical scale.
type MBarcodeEntry struct {
	Kind    string `json:"kind"`
	Current int    `json:"current"`
	Total   int    `json:"total"`
}
