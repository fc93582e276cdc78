package drill2exc

import "errors"

// Sentinel errors for library operations.
var (
	// Text buffer errors.
	ErrNotFound         = errors.New("pattern not found")
	ErrCapacityExceeded = errors.New("buffer capacity exceeded")
	ErrIndexOutOfRange  = errors.New("buffer index out of range")

	// Converter errors.
	ErrSentinelNotFound = errors.New("header sentinel not found before end of input")
	ErrLineTooLong      = errors.New("line exceeds maximum length")
	ErrEmptySentinel    = errors.New("sentinel cannot be empty")
	ErrEmptyPattern     = errors.New("replacement pattern cannot be empty")

	// Artifact path errors.
	ErrInvalidBoardPath = errors.New("invalid board path")

	// Board validation errors.
	ErrInvalidBoard = errors.New("invalid board file")

	// Exporter errors.
	ErrExporterNotFound = errors.New("exporter executable not found")
	ErrExporterStart    = errors.New("failed to start exporter")
	ErrExporterFailed   = errors.New("exporter exited with non-zero status")
	ErrExporterTimeout  = errors.New("exporter timed out")
	ErrExportMissing    = errors.New("exporter produced no drill file")

	// Pipeline errors.
	ErrRelocateExport = errors.New("failed to relocate exported drill file")
	ErrWriteOutput    = errors.New("failed to write converted file")
)
