package config

import "errors"

// Configuration validation errors returned by Config.Validate.
var (
	// ErrInvalidWorkers is returned when fewer than one worker is configured.
	ErrInvalidWorkers = errors.New("invalid workers: must be at least 1")

	// ErrInvalidResampler is returned for an unknown resampler name.
	ErrInvalidResampler = errors.New("invalid resampler: must be imaging, bild or sample")

	// ErrInvalidLogLevel is returned when the log level is not a logrus level.
	ErrInvalidLogLevel = errors.New("invalid log level")

	// ErrInvalidLogFormat is returned when the log format is neither text nor json.
	ErrInvalidLogFormat = errors.New("invalid log format: must be text or json")

	// ErrInvalidMaxUploadBytes is returned when the upload limit is not positive.
	ErrInvalidMaxUploadBytes = errors.New("invalid max upload bytes: must be positive")

	// ErrInvalidMaxPixels is returned when the pixel limit is not positive.
	ErrInvalidMaxPixels = errors.New("invalid max pixels: must be positive")
)
