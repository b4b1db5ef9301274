package repository

import (
	"time"

	"github.com/JericNisperos/pvparena/pkg/logger"
)

// SQLOption applies a configuration option to the SQLStore.
type SQLOption func(*SQLStore)

// WithPingTimeout sets the liveness check timeout applied before each
// operation.
func WithPingTimeout(d time.Duration) SQLOption {
	return func(s *SQLStore) {
		if d > 0 {
			s.pingTimeout = d
		}
	}
}

// WithLogger sets a custom logger for the store.
func WithLogger(l logger.Logger) SQLOption {
	return func(s *SQLStore) {
		if l != nil {
			s.logger = l
		}
	}
}
