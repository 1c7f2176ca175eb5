package server

import (
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"gold-cycles/src/analysis"
	datasource "gold-cycles/src/data_source"
	"gold-cycles/src/helpers"
	"gold-cycles/src/logger"
	"gold-cycles/src/models"
	"gold-cycles/src/utils"

	"github.com/gin-gonic/gin"
)

// -----------------------------------------------------------------------------
// AnalysisServer
// -----------------------------------------------------------------------------

type AnalysisServer struct {
	Config  *models.MConfig
	Logger  *logger.Logger
	Manager *datasource.DatasetManager
	Facade  *analysis.ProfileFacade
	engine  *gin.Engine

	// Metrics of the last aggregation served
	metrics     models.MProcessingMetrics
	metricsLock sync.RWMutex
}

// -----------------------------------------------------------------------------
// Constructor
// -----------------------------------------------------------------------------

func NewAnalysisServer(cfg *models.MConfig, log *logger.Logger, manager *datasource.DatasetManager, facade *analysis.ProfileFacade) *AnalysisServer {
	// Set Gin mode
	if cfg.LogLevel != "DEBUG" {
		gin.SetMode(gin.ReleaseMode)
	}

	s := &AnalysisServer{
		Config:  cfg,
		Logger:  log,
		Manager: manager,
		Facade:  facade,
		engine:  gin.Default(),
	}

	// Add CORS Middleware
	s.engine.Use(func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")
		if strings.HasPrefix(origin, "http://127.0.0.1:") {
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
		}
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	s.setupRoutes()
	return s
}

// -----------------------------------------------------------------------------
// Route Setup
// -----------------------------------------------------------------------------

func (s *AnalysisServer) setupRoutes() {
	s.engine.GET("/api/profile", s.getProfile)
	s.engine.GET("/api/patterns", s.getPatterns)
	s.engine.GET("/api/barcode", s.getBarcode)
	s.engine.GET("/api/timeframes", s.getTimeframes)
	s.engine.GET("/api/config", s.getConfig)
	s.engine.GET("/api/metrics", s.getMetrics)
	s.engine.GET("/api/health", s.getHealth)
}

// -----------------------------------------------------------------------------
// Server Lifecycle
// -----------------------------------------------------------------------------

func (s *AnalysisServer) Start() error {
	addr := fmt.Sprintf("%s:%d", s.Config.Host, s.Config.Port)
	s.Logger.Info("Starting server on %s", addr)
	return s.engine.Run(addr)
}

// -----------------------------------------------------------------------------
// Route Handlers
// -----------------------------------------------------------------------------

// getProfile computes cyclical profile statistics for one timeframe.
// Query: timeframe (required), kind (default month), start/end (optional,
// YYYY-MM-DD, inclusive).
func (s *AnalysisServer) getProfile(c *gin.Context) {
	bars, timeframe, ok := s.timeframeBars(c)
	if !ok {
		return
	}

	kind, err := analysis.ParseProfileKind(c.DefaultQuery("kind", "month"))
	if err != nil {
		s.respondError(c, err)
		return
	}

	dateRange, err := parseDateRange(c)
	if err != nil {
		s.respondError(c, err)
		return
	}

	started := time.Now()
	rows := s.Facade.Enrich(bars)
	summaries := s.Facade.Aggregate(rows, kind, dateRange)
	s.recordMetrics(timeframe, kind.String(), len(rows), len(summaries), time.Since(started))

	c.JSON(200, gin.H{
		"timeframe":  timeframe,
		"kind":       kind.String(),
		"dataset_id": s.Manager.LoadID(),
		"rows":       len(rows),
		"summaries":  summaries,
	})
}

// -----------------------------------------------------------------------------

// getPatterns mines recurring up/down sequences over the direction flags of a
// timeframe. Query: timeframe (required), length (default from config),
// top (default from config), start/end (optional).
func (s *AnalysisServer) getPatterns(c *gin.Context) {
	bars, timeframe, ok := s.timeframeBars(c)
	if !ok {
		return
	}

	length, err := intQuery(c, "length", s.Config.Analysis.PatternLength)
	if err != nil {
		s.respondError(c, err)
		return
	}
	top, err := intQuery(c, "top", s.Config.Analysis.PatternTopN)
	if err != nil {
		s.respondError(c, err)
		return
	}

	dateRange, err := parseDateRange(c)
	if err != nil {
		s.respondError(c, err)
		return
	}

	rows := s.Facade.Enrich(bars)
	series := make([]bool, 0, len(rows))
	for _, r := range rows {
		if dateRange != nil && !dateRange.Contains(r.Timestamp) {
			continue
		}
		series = append(series, r.IsUp)
	}

	patterns, err := analysis.MinePatterns(series, length)
	if err != nil {
		s.respondError(c, err)
		return
	}

	c.JSON(200, gin.H{
		"timeframe":         timeframe,
		"pattern_length":    length,
		"distinct_patterns": len(patterns),
		"patterns":          analysis.TopPatterns(patterns, top),
	})
}

// -----------------------------------------------------------------------------

// getBarcode maps a reference date onto every cyclical scale.
// Query: date (YYYY-MM-DD, default today).
func (s *AnalysisServer) getBarcode(c *gin.Context) {
	date := time.Now()
	if raw := c.Query("date"); raw != "" {
		parsed, err := time.Parse(utils.DateLayout, raw)
		if err != nil {
			s.respondError(c, helpers.NewConfigurationError("invalid date %q, expected %s", raw, utils.DateLayout))
			return
		}
		date = parsed
	}

	c.JSON(200, gin.H{
		"date":      date.Format(utils.DateLayout),
		"positions": analysis.BarcodePositions(date),
	})
}

// -----------------------------------------------------------------------------

func (s *AnalysisServer) getTimeframes(c *gin.Context) {
	c.JSON(200, gin.H{
		"timeframes": s.Manager.Timeframes(),
		"dataset_id": s.Manager.LoadID(),
	})
}

// -----------------------------------------------------------------------------

func (s *AnalysisServer) getConfig(c *gin.Context) {
	c.JSON(200, gin.H{
		"timeframes":        s.Config.Data.Timeframes,
		"volatility_window": s.Config.Analysis.VolatilityWindow,
		"low_percentile":    s.Config.Analysis.LowPercentile,
		"high_percentile":   s.Config.Analysis.HighPercentile,
		"pattern_length":    s.Config.Analysis.PatternLength,
		"pattern_top_n":     s.Config.Analysis.PatternTopN,
	})
}

// -----------------------------------------------------------------------------

func (s *AnalysisServer) getMetrics(c *gin.Context) {
	s.metricsLock.RLock()
	defer s.metricsLock.RUnlock()
	c.JSON(200, s.metrics)
}

// -----------------------------------------------------------------------------

func (s *AnalysisServer) getHealth(c *gin.Context) {
	loaded := s.Manager.Timeframes()
	status := "ok"
	if len(loaded) == 0 {
		status = "empty"
	}

	c.JSON(200, gin.H{
		"status":            status,
		"timeframes_loaded": len(loaded),
		"dataset_id":        s.Manager.LoadID(),
		"loaded_at":         s.Manager.LoadedAt().Unix(),
	})
}

// -----------------------------------------------------------------------------
// Helpers
// -----------------------------------------------------------------------------

// timeframeBars resolves the timeframe query parameter to its cached series,
// writing the error response itself when resolution fails.
func (s *AnalysisServer) timeframeBars(c *gin.Context) ([]models.MPriceBar, string, bool) {
	timeframe := c.Query("timeframe")
	if timeframe == "" {
		s.respondError(c, helpers.NewConfigurationError("missing required parameter 'timeframe'"))
		return nil, "", false
	}

	bars, ok := s.Manager.Bars(timeframe)
	if !ok {
		c.JSON(404, gin.H{"error": fmt.Sprintf("timeframe '%s' not loaded", timeframe)})
		return nil, "", false
	}

	return bars, timeframe, true
}

// -----------------------------------------------------------------------------

// parseDateRange builds the optional inclusive filter from start/end query
// parameters. A missing bound stays open on that side.
func parseDateRange(c *gin.Context) (*models.MDateRange, error) {
	rawStart := c.Query("start")
	rawEnd := c.Query("end")
	if rawStart == "" && rawEnd == "" {
		return nil, nil
	}

	// Open bounds default to the far past / far future.
	dr := &models.MDateRange{
		Start: time.Date(1, time.January, 1, 0, 0, 0, 0, time.UTC),
		End:   time.Date(9999, time.December, 31, 23, 59, 59, 0, time.UTC),
	}

	if rawStart != "" {
		t, err := time.Parse(utils.DateLayout, rawStart)
		if err != nil {
			return nil, helpers.NewConfigurationError("invalid start date %q, expected %s", rawStart, utils.DateLayout)
		}
		dr.Start = t
	}
	if rawEnd != "" {
		t, err := time.Parse(utils.DateLayout, rawEnd)
		if err != nil {
			return nil, helpers.NewConfigurationError("invalid end date %q, expected %s", rawEnd, utils.DateLayout)
		}
		// Inclusive: the whole end day belongs to the range.
		dr.End = t.Add(24*time.Hour - time.Second)
	}

	if dr.End.Before(dr.Start) {
		return nil, helpers.NewConfigurationError("end date before start date")
	}

	return dr, nil
}

// -----------------------------------------------------------------------------

func intQuery(c *gin.Context, name string, fallback int) (int, error) {
	raw := c.Query(name)
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, helpers.NewConfigurationError("invalid integer for '%s': %q", name, raw)
	}
	return v, nil
}

// -----------------------------------------------------------------------------

// respondError maps the error taxonomy onto HTTP statuses: configuration
// problems are the caller's fault (400), malformed input marks a bad dataset
// (422), anything else is internal.
func (s *AnalysisServer) respondError(c *gin.Context, err error) {
	switch {
	case helpers.IsConfigurationError(err):
		c.JSON(400, gin.H{"error": err.Error()})
	case helpers.IsMalformedInputError(err):
		c.JSON(422, gin.H{"error": err.Error()})
	default:
		s.Logger.Error("Request failed: %v", err)
		c.JSON(500, gin.H{"error": "internal error"})
	}
}

// -----------------------------------------------------------------------------

func (s *AnalysisServer) recordMetrics(timeframe, kind string, rows, groups int, elapsed time.Duration) {
	s.metricsLock.Lock()
	defer s.metricsLock.Unlock()
	s.metrics = models.MProcessingMetrics{
		AggregationTimeSeconds: elapsed.Seconds(),
		RowsProcessed:          rows,
		GroupsEmitted:          groups,
		LastTimeframe:          timeframe,
		LastProfileKind:        kind,
		DatasetID:              s.Manager.LoadID(),
	}
}
