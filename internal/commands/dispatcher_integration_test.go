package commands

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/goliatone/go-command/dispatcher"
	"github.com/goliatone/go-command/runner"
	goerrors "github.com/goliatone/go-errors"
)

type retryProbeCommand struct {
	Slug string
}

func (retryProbeCommand) Type() string { return "portfolio.test.retry_probe" }

func (retryProbeCommand) Validate() error { return nil }

type rejectedProbeCommand struct{}

func (rejectedProbeCommand) Type() string { return "portfolio.test.rejected_probe" }

func (rejectedProbeCommand) Validate() error { return errors.New("slug missing") }

func TestDispatchRetriesTransientPublishFailure(t *testing.T) {
	var slugs []string
	handler := NewHandler(func(_ context.Context, msg retryProbeCommand) error {
		slugs = append(slugs, msg.Slug)
		if len(slugs) < 3 {
			return errors.New("database busy")
		}
		return nil
	}, WithTimeout[retryProbeCommand](time.Second))

	sub := dispatcher.SubscribeCommand[retryProbeCommand](handler, runner.WithMaxRetries(2))
	t.Cleanup(sub.Unsubscribe)

	if err := dispatcher.Dispatch(context.Background(), retryProbeCommand{Slug: "night-owls"}); err != nil {
		t.Fatalf("dispatch: %v", err)
	}
	if len(slugs) != 3 || slugs[2] != "night-owls" {
		t.Fatalf("expected three attempts with the same message, got %v", slugs)
	}
}

func TestDispatchSurfacesValidationCategory(t *testing.T) {
	var calls int
	handler := NewHandler(func(context.Context, rejectedProbeCommand) error {
		calls++
		return nil
	})

	sub := dispatcher.SubscribeCommand[rejectedProbeCommand](handler)
	t.Cleanup(sub.Unsubscribe)

	err := dispatcher.Dispatch(context.Background(), rejectedProbeCommand{})
	if err == nil {
		t.Fatal("expected validation failure")
	}
	if !goerrors.IsCategory(err, goerrors.CategoryValidation) {
		t.Fatalf("expected validation category through the dispatcher, got %v", err)
	}
	if calls != 0 {
		t.Fatalf("invalid message must not reach the handler, ran %d times", calls)
	}
}
