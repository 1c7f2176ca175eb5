package models

// MProcessingMetrics represents the performance metrics of the last analysis run.
type MProcessingMetrics struct {
	AggregationTimeSeconds float64 `json:"aggregation_time_seconds"`
	RowsProcessed          int     `json:"rows_processed"`
	GroupsEmitted          int     `json:"groups_emitted"`
	LastTimeframe          string  `json:"last_timeframe"`
	LastProfileKind        string  `json:"last_profile_kind"`
	DatasetID              string  `json:"dataset_id"`
}
