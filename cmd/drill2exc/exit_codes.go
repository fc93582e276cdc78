package main

import (
	"errors"
	"os"

	drill2exc "github.com/alnah/go-drill2exc"
	"github.com/alnah/go-drill2exc/internal/config"
	"github.com/alnah/go-drill2exc/internal/fileutil"
	"github.com/alnah/go-drill2exc/internal/resolve"
)

// Exit codes for drill2exc CLI.
// Follows Unix conventions: 0=success, 1=general, 2=usage, and custom codes < 126.
const (
	ExitSuccess    = 0 // Successful conversion
	ExitGeneral    = 1 // General/unexpected error
	ExitUsage      = 2 // Invalid flags, config, or input
	ExitIO         = 3 // File not found, permission denied, write failure
	ExitExporter   = 4 // kicad-cli missing, failed, or timed out
	ExitConversion = 5 // Drill file structure not as expected
)

// ErrUsage marks command line errors.
var ErrUsage = errors.New("usage error")

// exitCodeFor returns the appropriate exit code for an error.
// It uses errors.Is to check wrapped errors, so callers must use fmt.Errorf("%w", err).
func exitCodeFor(err error) int {
	if err == nil {
		return ExitSuccess
	}

	// Exporter errors (exit 4)
	if errors.Is(err, drill2exc.ErrExporterNotFound) ||
		errors.Is(err, drill2exc.ErrExporterStart) ||
		errors.Is(err, drill2exc.ErrExporterFailed) ||
		errors.Is(err, drill2exc.ErrExporterTimeout) ||
		errors.Is(err, drill2exc.ErrExportMissing) {
		return ExitExporter
	}

	// Conversion structure errors (exit 5)
	if errors.Is(err, drill2exc.ErrSentinelNotFound) ||
		errors.Is(err, drill2exc.ErrLineTooLong) ||
		errors.Is(err, drill2exc.ErrCapacityExceeded) ||
		errors.Is(err, drill2exc.ErrIndexOutOfRange) {
		return ExitConversion
	}

	// I/O errors (exit 3)
	if errors.Is(err, os.ErrNotExist) ||
		errors.Is(err, os.ErrPermission) ||
		errors.Is(err, resolve.ErrNoInput) ||
		errors.Is(err, drill2exc.ErrRelocateExport) ||
		errors.Is(err, drill2exc.ErrWriteOutput) {
		return ExitIO
	}

	// Usage/config/validation errors (exit 2)
	if errors.Is(err, ErrUsage) ||
		errors.Is(err, ErrInvalidEnv) ||
		errors.Is(err, config.ErrConfigNotFound) ||
		errors.Is(err, config.ErrConfigParse) ||
		errors.Is(err, config.ErrEmptyConfigName) ||
		errors.Is(err, config.ErrInvalidValue) ||
		errors.Is(err, resolve.ErrAmbiguousInput) ||
		errors.Is(err, drill2exc.ErrInvalidBoard) ||
		errors.Is(err, drill2exc.ErrInvalidBoardPath) ||
		errors.Is(err, drill2exc.ErrEmptySentinel) ||
		errors.Is(err, drill2exc.ErrEmptyPattern) ||
		errors.Is(err, fileutil.ErrExtensionEmpty) ||
		errors.Is(err, fileutil.ErrExtensionPathTraversal) {
		return ExitUsage
	}

	return ExitGeneral
}
