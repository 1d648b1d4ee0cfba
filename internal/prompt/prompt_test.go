package prompt

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/AlecAivazis/survey/v2/terminal"
)

func TestTranslateSurveyErr(t *testing.T) {
	if got := translateSurveyErr(terminal.InterruptErr); !errors.Is(got, ErrAborted) {
		t.Fatalf("expected ErrAborted, got %v", got)
	}
	wrapped := fmt.Errorf("ask: %w", terminal.InterruptErr)
	if got := translateSurveyErr(wrapped); !errors.Is(got, ErrAborted) {
		t.Fatalf("expected ErrAborted for wrapped interrupt, got %v", got)
	}
	other := errors.New("tty closed")
	if got := translateSurveyErr(other); got != other {
		t.Fatalf("expected passthrough, got %v", got)
	}
}

func TestSurveyDriver_InfoWritesLine(t *testing.T) {
	var buf bytes.Buffer
	d := NewSurveyDriver(&buf)

	if err := d.Info(context.Background(), "hello"); err != nil {
		t.Fatalf("info: %v", err)
	}
	if buf.String() != "hello\n" {
		t.Fatalf("unexpected output %q", buf.String())
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := d.Info(ctx, "late"); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestSurveyDriver_HonoursCancelledContext(t *testing.T) {
	d := NewSurveyDriver(nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := d.Input(ctx, InputConfig{Message: "x"}); !errors.Is(err, context.Canceled) {
		t.Fatalf("input: expected context.Canceled, got %v", err)
	}
	if _, err := d.Confirm(ctx, ConfirmConfig{Message: "x"}); !errors.Is(err, context.Canceled) {
		t.Fatalf("confirm: expected context.Canceled, got %v", err)
	}
	if _, err := d.Select(ctx, SelectConfig{Message: "x", Options: []string{"a"}}); !errors.Is(err, context.Canceled) {
		t.Fatalf("select: expected context.Canceled, got %v", err)
	}
}
