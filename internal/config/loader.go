package config

import (
	"fmt"

	"gopkg.in/ini.v1"
)

// LoadFromINI loads configuration from Settings.ini file
func LoadFromINI(path string) (*Config, error) {
	cfg, err := ini.Load(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load config file: %w", err)
	}

	section := cfg.Section("UserSettings")
	defaults := NewDefaultConfig()
	config := &Config{}

	// Target
	config.ProcessName = section.Key("processName").MustString(defaults.ProcessName)

	// Loop pacing
	config.PollIntervalMs = section.Key("pollIntervalMs").MustInt(defaults.PollIntervalMs)
	config.HeartbeatMs = section.Key("heartbeatMs").MustInt(defaults.HeartbeatMs)
	config.ScoreDelta = section.Key("scoreDelta").MustFloat64(defaults.ScoreDelta)

	// Matching
	config.ScaleTier = section.Key("scaleTier").MustString(defaults.ScaleTier)
	config.MatchThreshold = section.Key("matchThreshold").MustFloat64(defaults.MatchThreshold)
	config.RelaxedFloor = section.Key("relaxedFloor").MustFloat64(defaults.RelaxedFloor)
	config.BlackFrameStdDev = section.Key("blackFrameStdDev").MustFloat64(defaults.BlackFrameStdDev)

	// Paths
	config.AnchorsPath = section.Key("anchorsPath").MustString(defaults.AnchorsPath)
	config.AssetsDir = section.Key("assetsDir").MustString(defaults.AssetsDir)
	config.HistoryPath = section.Key("historyPath").MustString(defaults.HistoryPath)

	// Task queue
	config.QueueCapacity = section.Key("queueCapacity").MustInt(defaults.QueueCapacity)

	// Debug
	config.LogLevel = section.Key("logLevel").MustString(defaults.LogLevel)
	config.LoggingEnabled = section.Key("loggingEnabled").MustBool(defaults.LoggingEnabled)

	return config, nil
}

// SaveToINI saves configuration to an INI file
func SaveToINI(config *Config, path string) error {
	cfg := ini.Empty()
	section := cfg.Section("UserSettings")

	section.Key("processName").SetValue(config.ProcessName)

	section.Key("pollIntervalMs").SetValue(fmt.Sprintf("%d", config.PollIntervalMs))
	section.Key("heartbeatMs").SetValue(fmt.Sprintf("%d", config.HeartbeatMs))
	section.Key("scoreDelta").SetValue(fmt.Sprintf("%g", config.ScoreDelta))

	section.Key("scaleTier").SetValue(config.ScaleTier)
	section.Key("matchThreshold").SetValue(fmt.Sprintf("%g", config.MatchThreshold))
	section.Key("relaxedFloor").SetValue(fmt.Sprintf("%g", config.RelaxedFloor))
	section.Key("blackFrameStdDev").SetValue(fmt.Sprintf("%g", config.BlackFrameStdDev))

	section.Key("anchorsPath").SetValue(config.AnchorsPath)
	section.Key("assetsDir").SetValue(config.AssetsDir)
	section.Key("historyPath").SetValue(config.HistoryPath)

	section.Key("queueCapacity").SetValue(fmt.Sprintf("%d", config.QueueCapacity))

	section.Key("logLevel").SetValue(config.LogLevel)
	section.Key("loggingEnabled").SetValue(fmt.Sprintf("%t", config.LoggingEnabled))

	return cfg.SaveTo(path)
}
