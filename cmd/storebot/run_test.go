package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"strings"
	"testing"
)

type appStub struct {
	startErr error
	stopErr  error
	done     chan os.Signal
	stopped  bool
}

func (a *appStub) Start(context.Context) error { return a.startErr }

func (a *appStub) Stop(context.Context) error {
	a.stopped = true
	return a.stopErr
}

func (a *appStub) Done() <-chan os.Signal { return a.done }

func TestRunStopsOnContextCancel(t *testing.T) {
	app := &appStub{done: make(chan os.Signal)}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if code := runWithOutput(ctx, app, &bytes.Buffer{}); code != 0 {
		t.Fatalf("expected exit code 0, got %d", code)
	}
	if !app.stopped {
		t.Fatal("expected app to be stopped")
	}
}

func TestRunStopsOnAppDone(t *testing.T) {
	app := &appStub{done: make(chan os.Signal, 1)}
	app.done <- os.Interrupt

	if code := runWithOutput(context.Background(), app, &bytes.Buffer{}); code != 0 {
		t.Fatalf("expected exit code 0, got %d", code)
	}
}

func TestRunReportsFailures(t *testing.T) {
	var out bytes.Buffer
	app := &appStub{startErr: errors.New("no db"), done: make(chan os.Signal)}
	if code := runWithOutput(context.Background(), app, &out); code != 1 {
		t.Fatalf("expected exit code 1, got %d", code)
	}
	if !strings.Contains(out.String(), "failed to start application") {
		t.Fatalf("unexpected output %q", out.String())
	}

	out.Reset()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	app = &appStub{stopErr: errors.New("timeout"), done: make(chan os.Signal)}
	if code := runWithOutput(ctx, app, &out); code != 1 {
		t.Fatalf("expected exit code 1, got %d", code)
	}
}
