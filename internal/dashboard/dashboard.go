// Package dashboard renders a live terminal view of a running benchmark.
package dashboard

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	ui "github.com/gizak/termui/v3"
	"github.com/gizak/termui/v3/widgets"

	"github.com/hurlbench/hurlbench/internal/metrics"
)

// RunConfig holds the benchmark parameters shown in the header.
type RunConfig struct {
	TargetURL   string
	Method      string
	Parallelism int
	Window      time.Duration
	Timeout     time.Duration
	ConfigFile  string
}

// Dashboard renders live latency statistics while the benchmark runs.
type Dashboard struct {
	agg          metrics.Aggregator
	ctx          context.Context
	cancel       context.CancelFunc
	shutdownFunc func()
	wg           sync.WaitGroup
	mu           sync.Mutex

	// Widgets
	grid           *ui.Grid
	latencySparkle *widgets.SparklineGroup
	latencyPara    *widgets.Paragraph
	windowGauge    *widgets.Gauge
	summaryPara    *widgets.Paragraph
	latencyHistory []float64
	startTime      time.Time
	prevCount      int64
	prevTime       time.Time
	runConfig      RunConfig
}

// New creates a new Dashboard. shutdownFunc is invoked when the user quits
// with q or Ctrl-C.
func New(agg metrics.Aggregator, cfg RunConfig, shutdownFunc func()) (*Dashboard, error) {
	if err := ui.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize termui: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())

	now := time.Now()
	d := &Dashboard{
		agg:            agg,
		ctx:            ctx,
		cancel:         cancel,
		shutdownFunc:   shutdownFunc,
		latencyHistory: make([]float64, 0, 100),
		startTime:      now,
		prevTime:       now,
		runConfig:      cfg,
	}

	d.initWidgets()
	d.setupGrid()

	return d, nil
}

// initWidgets initializes all dashboard widgets.
func (d *Dashboard) initWidgets() {
	sparkline := widgets.NewSparkline()
	sparkline.Title = "p50 (ms)"
	sparkline.LineColor = ui.ColorGreen
	sparkline.Data = []float64{0}

	d.latencySparkle = widgets.NewSparklineGroup(sparkline)
	d.latencySparkle.Title = "Real-time Latency"
	d.latencySparkle.BorderStyle.Fg = ui.ColorCyan

	d.latencyPara = widgets.NewParagraph()
	d.latencyPara.Title = "Latency Stats"
	d.latencyPara.Text = "Min: 0ms\nMax: 0ms\nP50: 0ms\nP95: 0ms\nP99: 0ms\nP99.9: 0ms"
	d.latencyPara.BorderStyle.Fg = ui.ColorCyan

	d.windowGauge = widgets.NewGauge()
	d.windowGauge.Title = "Window Progress"
	d.windowGauge.Percent = 0
	d.windowGauge.BarColor = ui.ColorBlue
	d.windowGauge.BorderStyle.Fg = ui.ColorCyan
	d.windowGauge.LabelStyle = ui.NewStyle(ui.ColorWhite)

	d.summaryPara = widgets.NewParagraph()
	d.summaryPara.Title = "Benchmark"
	d.summaryPara.Text = "Initializing..."
	d.summaryPara.BorderStyle.Fg = ui.ColorCyan
}

// setupGrid configures the layout grid.
func (d *Dashboard) setupGrid() {
	termWidth, termHeight := ui.TerminalDimensions()

	d.grid = ui.NewGrid()
	d.grid.SetRect(0, 0, termWidth, termHeight)

	d.grid.Set(
		ui.NewRow(0.2,
			ui.NewCol(1.0, d.summaryPara),
		),
		ui.NewRow(0.2,
			ui.NewCol(1.0, d.windowGauge),
		),
		ui.NewRow(0.6,
			ui.NewCol(0.65, d.latencySparkle),
			ui.NewCol(0.35, d.latencyPara),
		),
	)
}

// Start begins the dashboard update loop.
func (d *Dashboard) Start() {
	d.wg.Add(1)
	go d.run()
}

// Stop stops the dashboard and restores the terminal.
func (d *Dashboard) Stop() {
	d.cancel()
	d.wg.Wait()
	ui.Close()
	// Give terminal time to restore
	time.Sleep(100 * time.Millisecond)
}

// run is the main dashboard update loop.
func (d *Dashboard) run() {
	defer d.wg.Done()

	ticker := time.NewTicker(500 * time.Millisecond)
	defer ticker.Stop()

	uiEvents := ui.PollEvents()

	d.render()

	for {
		select {
		case <-d.ctx.Done():
			// Drain any remaining events
			for len(uiEvents) > 0 {
				<-uiEvents
			}
			return
		case e := <-uiEvents:
			select {
			case <-d.ctx.Done():
				return
			default:
			}

			switch e.ID {
			case "q", "<C-c>":
				if d.shutdownFunc != nil {
					d.shutdownFunc()
				}
				// Do not return here; wait for Stop() to cancel context
			case "<Resize>":
				payload := e.Payload.(ui.Resize)
				d.grid.SetRect(0, 0, payload.Width, payload.Height)
				ui.Clear()
				d.render()
			}
		case <-ticker.C:
			d.update()
			d.render()
		}
	}
}

// update refreshes all widget data from the aggregator.
func (d *Dashboard) update() {
	d.mu.Lock()
	defer d.mu.Unlock()

	now := time.Now()
	elapsed := now.Sub(d.startTime)
	summary := d.agg.Summary()

	rps := 0.0
	if tick := now.Sub(d.prevTime).Seconds(); tick > 0 {
		rps = float64(summary.Count-d.prevCount) / tick
	}
	d.prevCount = summary.Count
	d.prevTime = now

	if summary.Count > 0 {
		p50Ms := float64(summary.P50) / float64(time.Millisecond)
		d.latencyHistory = append(d.latencyHistory, p50Ms)
		if len(d.latencyHistory) > 100 {
			d.latencyHistory = d.latencyHistory[1:]
		}
		d.latencySparkle.Sparklines[0].Data = d.latencyHistory
		d.latencySparkle.Title = fmt.Sprintf(
			"Real-time Latency | p50: %.2fms | Min: %.2fms | Max: %.2fms",
			p50Ms,
			float64(summary.Min)/float64(time.Millisecond),
			float64(summary.Max)/float64(time.Millisecond),
		)
	}

	d.windowGauge.Percent = windowPercent(elapsed, d.runConfig.Window)
	d.windowGauge.Label = fmt.Sprintf("%.1fs / %.1fs | %.1f RPS",
		elapsed.Seconds(), d.runConfig.Window.Seconds(), rps)

	d.summaryPara.Text = fmt.Sprintf(
		"Target: %s\n%s\nElapsed: %s | Requests: %d",
		d.runConfig.TargetURL,
		formatRunParams(d.runConfig),
		elapsed.Round(time.Second),
		summary.Count,
	)

	d.latencyPara.Text = formatLatencyStats(summary)
}

// render draws all widgets to the screen.
func (d *Dashboard) render() {
	d.mu.Lock()
	defer d.mu.Unlock()

	ui.Render(d.grid)
}

// windowPercent maps elapsed time onto the gauge range.
func windowPercent(elapsed, window time.Duration) int {
	if window <= 0 {
		return 0
	}
	percent := int(elapsed * 100 / window)
	if percent > 100 {
		percent = 100
	}
	if percent < 0 {
		percent = 0
	}
	return percent
}

func formatLatencyStats(s metrics.Summary) string {
	ms := func(d time.Duration) float64 { return float64(d) / float64(time.Millisecond) }
	return fmt.Sprintf(
		"Min:   %.2fms\nMax:   %.2fms\nP50:   %.2fms\nP95:   %.2fms\nP99:   %.2fms\nP99.9: %.2fms",
		ms(s.Min), ms(s.Max), ms(s.P50), ms(s.P95), ms(s.P99), ms(s.P999),
	)
}

// formatRunParams formats the benchmark parameters for the header.
func formatRunParams(cfg RunConfig) string {
	var parts []string

	if cfg.Method != "" && cfg.Method != "GET" {
		parts = append(parts, fmt.Sprintf("Method: %s", cfg.Method))
	}
	if cfg.Parallelism > 0 {
		parts = append(parts, fmt.Sprintf("Workers: %d", cfg.Parallelism))
	}
	if cfg.Window > 0 {
		parts = append(parts, fmt.Sprintf("Window: %s", cfg.Window))
	}
	if cfg.Timeout > 0 {
		parts = append(parts, fmt.Sprintf("Timeout: %s", cfg.Timeout))
	}
	if cfg.ConfigFile != "" {
		parts = append(parts, fmt.Sprintf("Config: %s", cfg.ConfigFile))
	}

	return strings.Join(parts, " | ")
}
