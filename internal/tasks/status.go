package tasks

// StatusSink receives one-line progress text while a task runs. Implemented
// by whatever surface shows the operator what the worker is doing.
type StatusSink interface {
	SetStatus(text string)
}

// IndicatorFlasher briefly highlights the named indicator when a labeled
// task starts.
type IndicatorFlasher interface {
	FlashIndicator(name string)
}
