package config

import (
	"os"
	"runtime"
	"strconv"
	"time"
)

// Config holds analyzer defaults loaded from environment variables.
// Command-line flags override these.
type Config struct {
	SearchTime time.Duration // wall-clock budget per analysis
	Threads    int           // parallel search workers
	Samples    int           // joint actions queued per movement node
	MaxDepth   int           // rollout depth in movement steps
}

// Load reads configuration from environment variables with sensible defaults.
func Load() *Config {
	return &Config{
		SearchTime: durationOrDefault("STABALYZER_SEARCH_TIME", 60*time.Second),
		Threads:    intOrDefault("STABALYZER_THREADS", runtime.NumCPU()),
		Samples:    intOrDefault("STABALYZER_SAMPLES", 30),
		MaxDepth:   intOrDefault("STABALYZER_MAX_DEPTH", 6),
	}
}

func intOrDefault(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}

func durationOrDefault(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	if secs, err := strconv.Atoi(v); err == nil && secs > 0 {
		return time.Duration(secs) * time.Second
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}
