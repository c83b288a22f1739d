package config

// Config holds every tunable for a detection session.
type Config struct {
	// Target
	ProcessName string

	// Loop pacing
	PollIntervalMs int
	HeartbeatMs    int
	ScoreDelta     float64

	// Matching
	ScaleTier        string
	MatchThreshold   float64
	RelaxedFloor     float64
	BlackFrameStdDev float64

	// Paths
	AnchorsPath string
	AssetsDir   string
	HistoryPath string

	// Task queue
	QueueCapacity int

	// Debug
	LogLevel       string
	LoggingEnabled bool
}

// NewDefaultConfig creates a config with default values
func NewDefaultConfig() *Config {
	return &Config{
		ProcessName:      "shootergame.exe",
		PollIntervalMs:   250,
		HeartbeatMs:      2000,
		ScoreDelta:       0.05,
		ScaleTier:        "fast",
		MatchThreshold:   0.80,
		RelaxedFloor:     0.15,
		BlackFrameStdDev: 1.0,
		AnchorsPath:      "configs/anchors.yaml",
		AssetsDir:        "assets",
		HistoryPath:      "detections.db",
		QueueCapacity:    32,
		LogLevel:         "INFO",
		LoggingEnabled:   true,
	}
}
