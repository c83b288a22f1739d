package detect

import (
	"context"
	"errors"
	"image"
	"time"

	"github.com/Arkpointt/gangware-sub001/internal/cv"
	"github.com/Arkpointt/gangware-sub001/internal/events"
	"github.com/Arkpointt/gangware-sub001/internal/logging"
	"github.com/Arkpointt/gangware-sub001/internal/menus"
	"github.com/Arkpointt/gangware-sub001/internal/window"
)

// DefaultPollInterval paces the capture-classify cycle.
const DefaultPollInterval = 250 * time.Millisecond

// WindowResolver locates the target application's window.
type WindowResolver interface {
	Resolve(processName string) (window.Region, error)
}

// Classifier turns a captured frame into a classification sample.
type Classifier interface {
	Detect(frame *image.Gray) menus.Sample
}

// SampleSink receives the samples the suppressor lets through.
type SampleSink interface {
	HandleSample(sample menus.Sample)
}

// LoopConfig wires a detection loop together. Resolver, Capturer, and
// Detector are required; everything else has a usable default.
type LoopConfig struct {
	ProcessName string
	Interval    time.Duration

	Resolver   WindowResolver
	Capturer   cv.Capturer
	Detector   Classifier
	Suppressor *Suppressor

	Sinks []SampleSink
	Bus   events.EventBus
	Log   *logging.Logger

	// OnFallback fires once each time the loop starts capturing the
	// primary display because the target window is gone.
	OnFallback func()
}

// Loop polls the screen on a fixed interval, classifies each frame, and
// forwards suppressed samples to its sinks. When the target window cannot
// be found it falls back to capturing the primary display so classification
// keeps running, and transitions are reported through the event bus.
type Loop struct {
	processName string
	interval    time.Duration

	resolver   WindowResolver
	capturer   cv.Capturer
	detector   Classifier
	suppressor *Suppressor

	sinks      []SampleSink
	bus        events.EventBus
	log        *logging.Logger
	onFallback func()

	windowPresent  bool
	warnedFallback bool
	lastMenu       string
}

// NewLoop creates a detection loop from the given configuration.
func NewLoop(cfg LoopConfig) *Loop {
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultPollInterval
	}
	if cfg.Suppressor == nil {
		cfg.Suppressor = NewSuppressor(DefaultScoreDelta, DefaultHeartbeat)
	}
	if cfg.Log == nil {
		cfg.Log = logging.NewLogger("detect")
	}
	return &Loop{
		processName: cfg.ProcessName,
		interval:    cfg.Interval,
		resolver:    cfg.Resolver,
		capturer:    cfg.Capturer,
		detector:    cfg.Detector,
		suppressor:  cfg.Suppressor,
		sinks:       cfg.Sinks,
		bus:         cfg.Bus,
		log:         cfg.Log,
		onFallback:  cfg.OnFallback,
	}
}

// Run polls until the context is cancelled. The first cycle runs
// immediately rather than waiting out the initial tick.
func (l *Loop) Run(ctx context.Context) error {
	ticker := time.NewTicker(l.interval)
	defer ticker.Stop()

	l.RunOnce()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			l.RunOnce()
		}
	}
}

// RunOnce executes a single resolve-capture-classify cycle. Failures are
// absorbed: a missing window falls back to the primary display and a failed
// capture skips the cycle, so the loop never dies mid-session.
func (l *Loop) RunOnce() {
	frame := l.captureFrame()
	if frame == nil {
		return
	}

	sample := l.detector.Detect(frame)
	if !l.suppressor.ShouldEmit(sample) {
		return
	}

	if sample.Matched && sample.Menu != l.lastMenu {
		if l.bus != nil {
			l.bus.PublishAsync(events.NewMenuChangedEvent(l.lastMenu, sample.Menu))
		}
		l.lastMenu = sample.Menu
	}
	if l.bus != nil {
		l.bus.PublishAsync(events.NewDetectionSampleEvent(sample.Menu, sample.Anchor, sample.Score, sample.Matched))
	}
	for _, sink := range l.sinks {
		sink.HandleSample(sample)
	}
}

// captureFrame resolves the target window and grabs its pixels, falling
// back to the primary display when the window is absent. Returns nil when
// no frame could be captured this cycle.
func (l *Loop) captureFrame() *image.Gray {
	region, err := l.resolver.Resolve(l.processName)
	switch {
	case err == nil:
		if !l.windowPresent {
			l.windowPresent = true
			l.warnedFallback = false
			if l.bus != nil {
				l.bus.PublishAsync(events.NewWindowFoundEvent(l.processName, region.String()))
			}
		}
		frame, err := l.capturer.CaptureRegion(region)
		if err != nil {
			l.log.DebugWithContext("capture failed, skipping cycle", map[string]interface{}{
				"region": region.String(), "error": err.Error(),
			})
			return nil
		}
		return frame

	case errors.Is(err, window.ErrWindowNotFound):
		if l.windowPresent {
			l.windowPresent = false
			if l.bus != nil {
				l.bus.PublishAsync(events.NewWindowLostEvent(l.processName))
			}
		}
		if !l.warnedFallback {
			l.warnedFallback = true
			l.log.Warn("target window not detected; capturing primary monitor")
			if l.onFallback != nil {
				l.onFallback()
			}
		}
		frame, err := l.capturer.CapturePrimary()
		if err != nil {
			l.log.DebugWithContext("primary capture failed, skipping cycle", map[string]interface{}{
				"error": err.Error(),
			})
			return nil
		}
		return frame

	default:
		l.log.Error("window resolution failed", err)
		return nil
	}
}
