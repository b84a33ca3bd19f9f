package commands

import (
	"context"
	"time"

	command "github.com/goliatone/go-command"
	goerrors "github.com/goliatone/go-errors"

	"github.com/goliatone/go-portfolio/internal/logging"
	"github.com/goliatone/go-portfolio/pkg/interfaces"
)

// SlowCommandThreshold marks successful commands that should be logged at warn level.
const SlowCommandThreshold = 2 * time.Second

// TelemetryStatus is the outcome bucket reported for one execution.
type TelemetryStatus string

const (
	TelemetryStatusSuccess      TelemetryStatus = "success"
	TelemetryStatusFailed       TelemetryStatus = "failed"
	TelemetryStatusContextError TelemetryStatus = "context_error"
)

// TelemetryInfo describes a finished execution.
type TelemetryInfo struct {
	Command   string
	Operation string
	Fields    map[string]any
	Duration  time.Duration
	Error     error
	Status    TelemetryStatus
	Logger    interfaces.Logger
}

// Telemetry is invoked once per execution, after the command returns.
type Telemetry[T command.Message] func(ctx context.Context, msg T, info TelemetryInfo)

// DefaultTelemetry logs outcomes with duration. Caller mistakes (validation,
// not found, auth) are warnings; everything else that fails is an error.
func DefaultTelemetry[T command.Message](logger interfaces.Logger) Telemetry[T] {
	if logger == nil {
		logger = logging.NoOp()
	}
	return func(_ context.Context, _ T, info TelemetryInfo) {
		entry := logger
		if len(info.Fields) > 0 {
			entry = logging.WithFields(entry, info.Fields)
		}
		args := []any{"duration_ms", info.Duration.Milliseconds()}
		if info.Status == TelemetryStatusSuccess {
			if info.Duration >= SlowCommandThreshold {
				entry.Warn("command.execute.slow", args...)
				return
			}
			entry.Info("command.execute.success", args...)
			return
		}

		args = append(args, "error", info.Error)
		switch {
		case info.Status == TelemetryStatusContextError:
			entry.Warn("command.execute.context_error", args...)
		case callerFault(info.Error):
			entry.Warn("command.execute.rejected", args...)
		default:
			entry.Error("command.execute.failed", args...)
		}
	}
}

func callerFault(err error) bool {
	return goerrors.HasCategory(err, goerrors.CategoryValidation) ||
		goerrors.HasCategory(err, goerrors.CategoryNotFound) ||
		goerrors.HasCategory(err, goerrors.CategoryAuth) ||
		goerrors.HasCategory(err, goerrors.CategoryAuthz) ||
		goerrors.HasCategory(err, goerrors.CategoryConflict)
}
