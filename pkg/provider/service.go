package provider

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/urmzd/voicelink/pkg/device"
)

// Options configures a Service
type Options struct {
	// Strict rejects the whole device list when one device is malformed.
	// Otherwise malformed devices are skipped with a warning.
	Strict bool
	Logger zerolog.Logger
}

// Service answers the platform's device list, query and action requests
// for a user, using the devices supplied by a Source.
type Service struct {
	source device.Source
	strict bool
	logger zerolog.Logger
}

// New creates a new Service
func New(source device.Source, opts Options) *Service {
	return &Service{
		source: source,
		strict: opts.Strict,
		logger: opts.Logger,
	}
}

// Devices returns the normalized device list of a user
func (s *Service) Devices(ctx context.Context, userID string) ([]device.Device, error) {
	raw, err := s.source.Devices(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load devices of user %s: %w", userID, err)
	}

	return device.Normalize(raw, device.NormalizeOptions{
		Strict: s.strict,
		Logger: s.logger,
	})
}

// guard runs fn and turns a panic into an error
func guard(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("hook panicked: %v", r)
		}
	}()
	return fn()
}
