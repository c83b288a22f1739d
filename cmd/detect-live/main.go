package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/Arkpointt/gangware-sub001/internal/config"
	"github.com/Arkpointt/gangware-sub001/internal/cv"
	"github.com/Arkpointt/gangware-sub001/internal/detect"
	"github.com/Arkpointt/gangware-sub001/internal/events"
	"github.com/Arkpointt/gangware-sub001/internal/history"
	"github.com/Arkpointt/gangware-sub001/internal/logging"
	"github.com/Arkpointt/gangware-sub001/internal/menus"
	"github.com/Arkpointt/gangware-sub001/internal/tasks"
	"github.com/Arkpointt/gangware-sub001/internal/window"
)

func main() {
	// Parse command line flags
	configPath := flag.String("config", "Settings.ini", "Path to settings file")
	duration := flag.Duration("duration", 0, "How long to run (0 = until interrupted)")
	interval := flag.Duration("interval", 0, "Poll interval override (0 = use settings)")
	process := flag.String("process", "", "Target process name override")
	noHistory := flag.Bool("no-history", false, "Disable SQLite detection history")
	flag.Parse()

	cfg := loadConfig(*configPath)
	if *process != "" {
		cfg.ProcessName = *process
	}
	pollInterval := time.Duration(cfg.PollIntervalMs) * time.Millisecond
	if *interval > 0 {
		pollInterval = *interval
	}

	logger := logging.NewLogger("detect-live").SetMinLevel(logging.ParseLevel(cfg.LogLevel))
	if !cfg.LoggingEnabled {
		logger.SetMinLevel(logging.LogLevelError)
	}

	catalogue, err := menus.LoadCatalogue(cfg.AnchorsPath, cfg.AssetsDir)
	if err != nil {
		log.Fatalf("Failed to load anchor catalogue: %v", err)
	}

	detector := menus.NewDetector(catalogue, cv.ParseTier(cfg.ScaleTier), cfg.BlackFrameStdDev, logger)
	suppressor := detect.NewSuppressor(cfg.ScoreDelta, time.Duration(cfg.HeartbeatMs)*time.Millisecond)
	printer := newPrinter()

	bus := events.NewEventBus(64)
	defer bus.Stop()

	// Persistence runs on the worker goroutine so a slow disk can never
	// stall the capture loop.
	queue := tasks.NewQueue(cfg.QueueCapacity)
	worker := tasks.NewWorker(queue, nil, nil, bus, logger)

	sinks := []detect.SampleSink{printer}
	emitted := 0
	var store *history.Store
	var sessionID int64
	if !*noHistory {
		store, err = history.Open(cfg.HistoryPath, logger)
		if err != nil {
			log.Fatalf("Failed to open history database: %v", err)
		}
		defer store.Close()
		sessionID, err = store.BeginSession(cfg.ProcessName)
		if err != nil {
			log.Fatalf("Failed to begin session: %v", err)
		}
		sinks = append(sinks, sinkFunc(func(sample menus.Sample) {
			accepted := queue.TryEnqueue(&tasks.Task{Run: func() error {
				return store.RecordSample(sample)
			}})
			if !accepted {
				logger.Warn("history queue full, dropping sample")
			}
		}))
	}
	sinks = append(sinks, sinkFunc(func(menus.Sample) { emitted++ }))
	worker.Start()

	loop := detect.NewLoop(detect.LoopConfig{
		ProcessName: cfg.ProcessName,
		Interval:    pollInterval,
		Resolver:    window.NewResolver(logger),
		Capturer:    cv.NewScreenCapture(logger),
		Detector:    detector,
		Suppressor:  suppressor,
		Sinks:       sinks,
		Bus:         bus,
		Log:         logger,
		OnFallback: func() {
			fmt.Println("[warn] target window not detected; capturing primary monitor.")
		},
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if *duration > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, *duration)
		defer cancel()
	}

	fmt.Printf("Watching %s every %s (tier=%s, anchors=%s)\n",
		cfg.ProcessName, pollInterval, cfg.ScaleTier, filepath.Base(cfg.AnchorsPath))

	loop.Run(ctx)
	worker.Stop()

	if store != nil {
		if err := store.EndSession(sessionID, emitted); err != nil {
			logger.Error("failed to end session", err)
		}
	}
	fmt.Printf("Done. %d samples emitted.\n", emitted)
}

// loadConfig reads the settings file, falling back to defaults when the
// file is absent so the tool runs out of the box.
func loadConfig(path string) *config.Config {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return config.NewDefaultConfig()
	}
	cfg, err := config.LoadFromINI(path)
	if err != nil {
		log.Fatalf("Failed to load settings: %v", err)
	}
	return cfg
}

// sinkFunc adapts a function to the SampleSink interface.
type sinkFunc func(menus.Sample)

func (f sinkFunc) HandleSample(sample menus.Sample) { f(sample) }

// printer writes one line per emitted sample, stamped with seconds since
// startup. Matched samples read "OK menu via anchor"; best guesses read
// ".. anchor in menu".
type printer struct {
	start time.Time
}

func newPrinter() *printer {
	return &printer{start: time.Now()}
}

func (p *printer) HandleSample(sample menus.Sample) {
	elapsed := sample.Time.Sub(p.start).Seconds()
	if sample.Matched {
		fmt.Printf("[%5.2fs] OK %s via %s score=%.3f\n", elapsed, sample.Menu, sample.Anchor, sample.Score)
		return
	}
	fmt.Printf("[%5.2fs] .. %s in %s score=%.3f\n", elapsed, sample.Anchor, sample.Menu, sample.Score)
}
