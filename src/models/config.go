package models

// MConfig Structure
type MConfig struct {
	Name     string          `yaml:"name"`
	Host     string          `yaml:"host"`
	Port     int             `yaml:"port"`
	LogLevel string          `yaml:"log_level"`
	Analysis MAnalysisConfig `yaml:"analysis"`
	Storage  MStorageConfig  `yaml:"storage"`
	Data     MDataConfig     `yaml:"data"`
}

type MAnalysisConfig struct {
	VolatilityWindow int     `yaml:"volatility_window"` // rolling true-range window
	LowPercentile    float64 `yaml:"low_percentile"`    // fraction in [0,1]
	HighPercentile   float64 `yaml:"high_percentile"`   // fraction in [0,1]
	PatternLength    int     `yaml:"pattern_length"`    // sequential mining window
	PatternTopN      int     `yaml:"pattern_top_n"`
}

type MStorageConfig struct {
	SourceType         string `yaml:"source_type"` // csv, sqlite or postgres
	DataDir            string `yaml:"data_dir"`
	DBPath             string `yaml:"db_path"`
	DBConnectionString string `yaml:"db_connection_string"`
}

type MDataConfig struct {
	Timeframes   []string `yaml:"timeframes"`    // e.g. 1min, 1h, D, W, M
	SymbolPrefix string   `yaml:"symbol_prefix"` // keep only matching symbols, empty keeps all
	CalendarMIC  string   `yaml:"calendar_mic"`  // exchange calendar for data-quality checks
}
