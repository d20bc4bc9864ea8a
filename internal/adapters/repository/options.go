package repository

import "time"

// Option applies a configuration option to the MemoryStore.
type Option func(*MemoryStore)

// WithMetricsUpdateInterval sets the interval for background metrics updates.
func WithMetricsUpdateInterval(interval time.Duration) Option {
	return func(s *MemoryStore) {
		if interval > 0 {
			s.metricsUpdateInterval = interval
		}
	}
}

// WithTeamSizeDefaults sets the team size bounds applied to hackathons
// that leave them unset.
func WithTeamSizeDefaults(minSize, maxSize int) Option {
	return func(s *MemoryStore) {
		if minSize > 0 && maxSize >= minSize {
			s.defaultMinTeamSize = minSize
			s.defaultMaxTeamSize = maxSize
		}
	}
}
