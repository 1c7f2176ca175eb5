package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"gold-cycles/src/analysis"
	"gold-cycles/src/config"
	datasource "gold-cycles/src/data_source"
	csvsource "gold-cycles/src/data_source/csv"
	"gold-cycles/src/interfaces"
	"gold-cycles/src/logger"
	"gold-cycles/src/models"
	"gold-cycles/src/storage"
	"gold-cycles/src/utils"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/jedib0t/go-pretty/v6/table"
)

// -----------------------------------------------------------------------------
// Offline report renderer: tables to stdout, profile chart to HTML.
// Display labels live here, not in the analysis layer.
// -----------------------------------------------------------------------------

var kindLabels = map[string]string{
	"decennial":     "Decennial (Year Digit)",
	"presidential":  "Presidential Year",
	"quarter":       "Quarter",
	"month":         "Month",
	"week":          "Week of Year",
	"week_of_month": "Week of Month",
	"day":           "Day of Week",
	"session":       "Trading Session",
}

var timeframeLabels = map[string]string{
	"1min": "1 Minute", "5min": "5 Minutes", "10min": "10 Minutes",
	"15min": "15 Minutes", "30min": "30 Minutes", "1h": "1 Hour",
	"4h": "4 Hours", "D": "Daily", "W": "Weekly", "M": "Monthly",
}

var monthNames = []string{"Jan", "Feb", "Mar", "Apr", "May", "Jun", "Jul", "Aug", "Sep", "Oct", "Nov", "Dec"}
var dayNames = []string{"Mon", "Tue", "Wed", "Thu", "Fri"}
var sessionNames = []string{"Pre-market", "Regular", "Post-market"}

// -----------------------------------------------------------------------------

func main() {
	configPath := flag.String("config", "config/default.yaml", "path to config file")
	timeframe := flag.String("timeframe", "D", "timeframe to analyze")
	kindName := flag.String("kind", "month", "profile kind")
	start := flag.String("start", "", "start date (YYYY-MM-DD, optional)")
	end := flag.String("end", "", "end date (YYYY-MM-DD, optional)")
	barcodeDate := flag.String("barcode", "", "barcode reference date (YYYY-MM-DD, default today)")
	chartPath := flag.String("chart", "", "write profile chart HTML to this path")
	flag.Parse()

	cfg, err := config.NewConfig(*configPath)
	if err != nil {
		fmt.Printf("Error loading config: %v\n", err)
		os.Exit(1)
	}
	appLogger := logger.NewLogger(cfg.LogLevel, cfg.Name+"-report")

	kind, err := analysis.ParseProfileKind(*kindName)
	if err != nil {
		appLogger.Critical("%v", err)
	}

	dateRange, err := buildDateRange(*start, *end)
	if err != nil {
		appLogger.Critical("%v", err)
	}

	// Load the one requested timeframe.
	var source interfaces.IBarSource
	switch cfg.Storage.SourceType {
	case "sqlite":
		source, err = storage.NewSQLiteBarSource(cfg.MConfig, appLogger)
	case "postgres":
		source, err = storage.NewPostgresBarSource(cfg.MConfig, appLogger)
	default:
		source = csvsource.NewCSVBarSource(cfg.MConfig, appLogger)
	}
	if err != nil {
		appLogger.Critical("Failed to init bar source: %v", err)
	}

	// Critical exits the process, so close explicitly rather than defer.
	bars, err := source.FetchBars(*timeframe)
	if err != nil {
		source.Close()
		appLogger.Critical("Failed to load timeframe %s: %v", *timeframe, err)
	}
	if err := datasource.ValidateBars(*timeframe, bars); err != nil {
		source.Close()
		appLogger.Critical("%v", err)
	}
	source.Close()

	facade := analysis.NewProfileFacade(cfg.MConfig, appLogger)
	rows := facade.Enrich(bars)
	summaries := facade.Aggregate(rows, kind, dateRange)

	fmt.Printf("\n%s profile — %s (%d bars)\n\n", kindLabels[kind.String()], label(timeframeLabels, *timeframe), len(rows))
	if len(summaries) == 0 {
		fmt.Println("Not enough data in the selected range.")
	} else {
		renderProfileTable(kind, summaries)
	}

	renderPatternsTable(rows, dateRange, cfg.Analysis.PatternLength, cfg.Analysis.PatternTopN)
	renderBarcodeTable(*barcodeDate, appLogger)

	if *chartPath != "" && len(summaries) > 0 {
		if err := renderProfileChart(*chartPath, kind, *timeframe, summaries); err != nil {
			appLogger.Error("Failed to render chart: %v", err)
		} else {
			appLogger.Info("Chart written to %s", *chartPath)
		}
	}
}

// -----------------------------------------------------------------------------

func renderProfileTable(kind analysis.ProfileKind, summaries []models.MProfileSummary) {
	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{
		kindLabels[kind.String()], "Bars", "Green %", "Red %",
		"Avg Ret %", "Std Dev", "Avg Vol", "Vol Cat", "Avg Green %", "Avg Red %",
	})

	for _, s := range summaries {
		t.AppendRow(table.Row{
			keyLabel(kind, s.Key),
			s.Rows,
			fmt.Sprintf("%.1f", s.GreenProbability*100),
			fmt.Sprintf("%.1f", s.RedProbability*100),
			fmt.Sprintf("%.2f", s.AvgReturn),
			fmt.Sprintf("%.2f", s.ReturnStdDev),
			fmt.Sprintf("%.2f", s.AvgVolatility),
			volCatLabel(s.ModalVolatilityCategory),
			fmt.Sprintf("%.2f", s.AvgGreenReturn),
			fmt.Sprintf("%.2f", s.AvgRedReturn),
		})
	}
	t.Render()
}

// -----------------------------------------------------------------------------

func renderPatternsTable(rows []models.MDerivedRow, dateRange *models.MDateRange, length, top int) {
	series := make([]bool, 0, len(rows))
	for _, r := range rows {
		if dateRange != nil && !dateRange.Contains(r.Timestamp) {
			continue
		}
		series = append(series, r.IsUp)
	}

	patterns, err := analysis.MinePatterns(series, length)
	if err != nil || len(patterns) == 0 {
		return
	}

	fmt.Printf("\nTop %d sequential patterns (length %d)\n\n", top, length)
	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Pattern", "Occurrences"})
	for _, p := range analysis.TopPatterns(patterns, top) {
		t.AppendRow(table.Row{patternLabel(p.Values), p.Count})
	}
	t.Render()
}

// -----------------------------------------------------------------------------

func renderBarcodeTable(rawDate string, log *logger.Logger) {
	date := time.Now()
	if rawDate != "" {
		parsed, err := time.Parse(utils.DateLayout, rawDate)
		if err != nil {
			log.Error("Invalid barcode date %q: %v", rawDate, err)
			return
		}
		date = parsed
	}

	fmt.Printf("\nBarcode positions for %s\n\n", date.Format(utils.DateLayout))
	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Cycle", "Position"})
	for _, e := range analysis.BarcodePositions(date) {
		t.AppendRow(table.Row{kindLabels[e.Kind], fmt.Sprintf("%d of %d", e.Current, e.Total)})
	}
	t.Render()
}

// -----------------------------------------------------------------------------

func renderProfileChart(path string, kind analysis.ProfileKind, timeframe string, summaries []models.MProfileSummary) error {
	labels := make([]string, len(summaries))
	probs := make([]opts.BarData, len(summaries))
	returns := make([]opts.BarData, len(summaries))
	for i, s := range summaries {
		labels[i] = keyLabel(kind, s.Key)
		probs[i] = opts.BarData{Value: s.GreenProbability * 100}
		returns[i] = opts.BarData{Value: s.AvgReturn}
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{
			Title:    fmt.Sprintf("%s Profile", kindLabels[kind.String()]),
			Subtitle: fmt.Sprintf("Timeframe: %s", label(timeframeLabels, timeframe)),
		}),
	)
	bar.SetXAxis(labels).
		AddSeries("Green probability (%)", probs).
		AddSeries("Avg return (%)", returns)

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return bar.Render(f)
}

// -----------------------------------------------------------------------------

func keyLabel(kind analysis.ProfileKind, key int) string {
	switch kind {
	case analysis.ProfileMonth:
		if key >= 1 && key <= 12 {
			return monthNames[key-1]
		}
	case analysis.ProfileDay:
		if key >= 1 && key <= 5 {
			return dayNames[key-1]
		}
	case analysis.ProfileSession:
		if key >= 0 && key <= 2 {
			return sessionNames[key]
		}
	case analysis.ProfileQuarter:
		return fmt.Sprintf("Q%d", key)
	case analysis.ProfilePresidential:
		return fmt.Sprintf("Year %d", key)
	}
	return fmt.Sprintf("%d", key)
}

func volCatLabel(cat int) string {
	switch cat {
	case 1:
		return "Low"
	case 2:
		return "Average"
	case 3:
		return "High"
	}
	return "-"
}

func patternLabel(values []bool) string {
	out := make([]byte, 0, len(values)*2)
	for i, v := range values {
		if i > 0 {
			out = append(out, '-')
		}
		if v {
			out = append(out, 'G')
		} else {
			out = append(out, 'R')
		}
	}
	return string(out)
}

func label(m map[string]string, key string) string {
	if l, ok := m[key]; ok {
		return l
	}
	return key
}

// -----------------------------------------------------------------------------

func buildDateRange(start, end string) (*models.MDateRange, error) {
	if start == "" && end == "" {
		return nil, nil
	}

	dr := &models.MDateRange{
		Start: time.Date(1, time.January, 1, 0, 0, 0, 0, time.UTC),
		End:   time.Date(9999, time.December, 31, 23, 59, 59, 0, time.UTC),
	}
	if start != "" {
		t, err := time.Parse(utils.DateLayout, start)
		if err != nil {
			return nil, fmt.Errorf("invalid start date %q: %w", start, err)
		}
		dr.Start = t
	}
	if end != "" {
		t, err := time.Parse(utils.DateLayout, end)
		if err != nil {
			return nil, fmt.Errorf("invalid end date %q: %w", end, err)
		}
		dr.End = t.Add(24*time.Hour - time.Second)
	}
	return dr, nil
}
