package logging

import (
	"context"
	"maps"
	"strings"

	"github.com/goliatone/go-portfolio/pkg/interfaces"
)

const rootModule = "portfolio"

// ModuleLogger returns the logger registered for module, tagged with a
// "module" field. Without a provider it returns a no-op logger.
func ModuleLogger(provider interfaces.LoggerProvider, module string) interfaces.Logger {
	module = strings.TrimSpace(module)
	if module == "" {
		module = rootModule
	} else if module != rootModule && !strings.HasPrefix(module, rootModule+".") {
		module = rootModule + "." + module
	}

	logger := NoOp()
	if provider != nil {
		if provided := provider.GetLogger(module); provided != nil {
			logger = provided
		}
	}
	return WithFields(logger, map[string]any{"module": module})
}

// WithFields attaches fields when the logger supports it and returns the
// logger unchanged otherwise.
func WithFields(logger interfaces.Logger, fields map[string]any) interfaces.Logger {
	if logger == nil {
		return NoOp()
	}
	if len(fields) == 0 {
		return logger
	}
	if fieldsLogger, ok := logger.(interfaces.FieldsLogger); ok {
		copied := make(map[string]any, len(fields))
		maps.Copy(copied, fields)
		return fieldsLogger.WithFields(copied)
	}
	return logger
}

// WithPortfolio scopes a logger to one portfolio. Empty values are skipped.
func WithPortfolio(logger interfaces.Logger, portfolioID, section string) interfaces.Logger {
	fields := map[string]any{}
	if trimmed := strings.TrimSpace(portfolioID); trimmed != "" {
		fields["portfolio_id"] = trimmed
	}
	if trimmed := strings.TrimSpace(section); trimmed != "" {
		fields["section"] = trimmed
	}
	return WithFields(logger, fields)
}

// NoOp returns a logger that drops every entry.
func NoOp() interfaces.Logger {
	return noopLogger{}
}

type noopLogger struct{}

var _ interfaces.Logger = noopLogger{}

func (noopLogger) Trace(string, ...any) {}
func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}
func (noopLogger) Fatal(string, ...any) {}

func (n noopLogger) WithFields(map[string]any) interfaces.Logger { return n }

func (n noopLogger) WithContext(context.Context) interfaces.Logger { return n }
