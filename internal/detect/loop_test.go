package detect

import (
	"errors"
	"image"
	"testing"

	"github.com/Arkpointt/gangware-sub001/internal/menus"
	"github.com/Arkpointt/gangware-sub001/internal/window"
)

type fakeResolver struct {
	region window.Region
	err    error
	calls  int
}

func (r *fakeResolver) Resolve(string) (window.Region, error) {
	r.calls++
	return r.region, r.err
}

type fakeCapturer struct {
	frame        *image.Gray
	regionErr    error
	primaryErr   error
	regionCalls  int
	primaryCalls int
}

func (c *fakeCapturer) CaptureRegion(window.Region) (*image.Gray, error) {
	c.regionCalls++
	return c.frame, c.regionErr
}

func (c *fakeCapturer) CapturePrimary() (*image.Gray, error) {
	c.primaryCalls++
	return c.frame, c.primaryErr
}

type fakeClassifier struct {
	sample menus.Sample
	calls  int
}

func (d *fakeClassifier) Detect(*image.Gray) menus.Sample {
	d.calls++
	return d.sample
}

type recordingSink struct {
	samples []menus.Sample
}

func (s *recordingSink) HandleSample(sample menus.Sample) {
	s.samples = append(s.samples, sample)
}

func testLoop(resolver *fakeResolver, capturer *fakeCapturer, classifier *fakeClassifier) (*Loop, *recordingSink) {
	sink := &recordingSink{}
	loop := NewLoop(LoopConfig{
		ProcessName: "shootergame.exe",
		Resolver:    resolver,
		Capturer:    capturer,
		Detector:    classifier,
		Sinks:       []SampleSink{sink},
	})
	return loop, sink
}

func TestRunOnceDeliversSample(t *testing.T) {
	resolver := &fakeResolver{region: window.Region{Left: 0, Top: 0, Width: 800, Height: 600}}
	capturer := &fakeCapturer{frame: image.NewGray(image.Rect(0, 0, 800, 600))}
	classifier := &fakeClassifier{sample: menus.Sample{Menu: "main_menu", Anchor: "join_button", Score: 0.91, Matched: true}}

	loop, sink := testLoop(resolver, capturer, classifier)
	loop.RunOnce()

	if capturer.regionCalls != 1 || capturer.primaryCalls != 0 {
		t.Errorf("Expected one window capture, got region=%d primary=%d", capturer.regionCalls, capturer.primaryCalls)
	}
	if len(sink.samples) != 1 {
		t.Fatalf("Expected 1 delivered sample, got %d", len(sink.samples))
	}
	if sink.samples[0].Menu != "main_menu" || !sink.samples[0].Matched {
		t.Errorf("Unexpected sample: %+v", sink.samples[0])
	}
}

func TestRunOnceSuppressesRepeats(t *testing.T) {
	resolver := &fakeResolver{region: window.Region{Width: 800, Height: 600}}
	capturer := &fakeCapturer{frame: image.NewGray(image.Rect(0, 0, 800, 600))}
	classifier := &fakeClassifier{sample: menus.Sample{Menu: "main_menu", Anchor: "join_button", Score: 0.91, Matched: true}}

	loop, sink := testLoop(resolver, capturer, classifier)
	loop.RunOnce()
	loop.RunOnce()
	loop.RunOnce()

	if classifier.calls != 3 {
		t.Errorf("Every cycle should classify, got %d calls", classifier.calls)
	}
	if len(sink.samples) != 1 {
		t.Errorf("Repeat samples inside the heartbeat should be suppressed, got %d", len(sink.samples))
	}
}

func TestMissingWindowFallsBackToPrimary(t *testing.T) {
	resolver := &fakeResolver{err: window.ErrWindowNotFound}
	capturer := &fakeCapturer{frame: image.NewGray(image.Rect(0, 0, 1920, 1080))}
	classifier := &fakeClassifier{sample: menus.Sample{Menu: "main_menu", Score: 0.40}}

	loop, sink := testLoop(resolver, capturer, classifier)

	fallbacks := 0
	loop.onFallback = func() { fallbacks++ }

	loop.RunOnce()
	loop.RunOnce()

	if capturer.primaryCalls != 2 || capturer.regionCalls != 0 {
		t.Errorf("Expected primary-display captures, got region=%d primary=%d", capturer.regionCalls, capturer.primaryCalls)
	}
	if fallbacks != 1 {
		t.Errorf("Fallback notice should fire once, got %d", fallbacks)
	}
	if len(sink.samples) == 0 {
		t.Error("Classification should continue on the fallback path")
	}
}

func TestFallbackNoticeFiresAgainAfterWindowReturns(t *testing.T) {
	resolver := &fakeResolver{region: window.Region{Width: 800, Height: 600}}
	capturer := &fakeCapturer{frame: image.NewGray(image.Rect(0, 0, 800, 600))}
	classifier := &fakeClassifier{sample: menus.Sample{Menu: "main_menu", Score: 0.40}}

	loop, _ := testLoop(resolver, capturer, classifier)
	fallbacks := 0
	loop.onFallback = func() { fallbacks++ }

	resolver.err = window.ErrWindowNotFound
	loop.RunOnce()
	resolver.err = nil
	loop.RunOnce()
	resolver.err = window.ErrWindowNotFound
	loop.RunOnce()

	if fallbacks != 2 {
		t.Errorf("Fallback notice should rearm after the window returns, got %d", fallbacks)
	}
}

func TestCaptureFailureSkipsCycle(t *testing.T) {
	resolver := &fakeResolver{region: window.Region{Width: 800, Height: 600}}
	capturer := &fakeCapturer{regionErr: errors.New("screen capture failed")}
	classifier := &fakeClassifier{}

	loop, sink := testLoop(resolver, capturer, classifier)
	loop.RunOnce()

	if classifier.calls != 0 {
		t.Error("A failed capture should not reach the classifier")
	}
	if len(sink.samples) != 0 {
		t.Error("A failed capture should not produce samples")
	}
}
