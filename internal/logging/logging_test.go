package logging

import (
	"context"
	"testing"

	"github.com/goliatone/go-portfolio/pkg/interfaces"
)

type fieldsRecorder struct {
	fields []map[string]any
}

func (r *fieldsRecorder) Trace(string, ...any) {}
func (r *fieldsRecorder) Debug(string, ...any) {}
func (r *fieldsRecorder) Info(string, ...any)  {}
func (r *fieldsRecorder) Warn(string, ...any)  {}
func (r *fieldsRecorder) Error(string, ...any) {}
func (r *fieldsRecorder) Fatal(string, ...any) {}

func (r *fieldsRecorder) WithFields(fields map[string]any) interfaces.Logger {
	r.fields = append(r.fields, fields)
	return r
}

func (r *fieldsRecorder) WithContext(context.Context) interfaces.Logger { return r }

type namedProvider struct {
	names  []string
	logger interfaces.Logger
}

func (p *namedProvider) GetLogger(name string) interfaces.Logger {
	p.names = append(p.names, name)
	return p.logger
}

func TestModuleLoggerWithoutProviderIsNoOp(t *testing.T) {
	logger := ModuleLogger(nil, "sections")
	if _, ok := logger.(noopLogger); !ok {
		t.Fatalf("expected noop logger, got %T", logger)
	}
	logger.WithContext(context.Background()).Info("ignored")
}

func TestModuleLoggerPrefixesModule(t *testing.T) {
	recorder := &fieldsRecorder{}
	provider := &namedProvider{logger: recorder}

	ModuleLogger(provider, "render")
	ModuleLogger(provider, "portfolio.http")
	ModuleLogger(provider, "")

	want := []string{"portfolio.render", "portfolio.http", "portfolio"}
	for i, name := range want {
		if provider.names[i] != name {
			t.Fatalf("expected logger %q, got %q", name, provider.names[i])
		}
		if recorder.fields[i]["module"] != name {
			t.Fatalf("expected module field %q, got %v", name, recorder.fields[i]["module"])
		}
	}
}

func TestWithFieldsCopiesInput(t *testing.T) {
	recorder := &fieldsRecorder{}
	fields := map[string]any{"portfolio_id": "p1"}

	WithFields(recorder, fields)
	fields["portfolio_id"] = "p2"

	if recorder.fields[0]["portfolio_id"] != "p1" {
		t.Fatalf("expected copied fields, got %v", recorder.fields[0])
	}
}

func TestWithPortfolioSkipsBlankValues(t *testing.T) {
	recorder := &fieldsRecorder{}

	WithPortfolio(recorder, " ", "tracks")

	if len(recorder.fields) != 1 {
		t.Fatalf("expected one WithFields call, got %d", len(recorder.fields))
	}
	if _, ok := recorder.fields[0]["portfolio_id"]; ok {
		t.Fatalf("expected blank portfolio id skipped, got %v", recorder.fields[0])
	}
	if recorder.fields[0]["section"] != "tracks" {
		t.Fatalf("expected section field, got %v", recorder.fields[0])
	}
}
