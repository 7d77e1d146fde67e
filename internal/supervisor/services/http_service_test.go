// Atlasboard - Geospatial Dashboard Backend
// Copyright 2026 MkMeheran
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/MkMeheran/atlasboard

package services

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"
)

// fakeServer blocks in ListenAndServe until Shutdown.
type fakeServer struct {
	started  chan struct{}
	release  chan error
	shutdown chan struct{}
}

func newFakeServer() *fakeServer {
	return &fakeServer{
		started:  make(chan struct{}),
		release:  make(chan error, 1),
		shutdown: make(chan struct{}, 1),
	}
}

func (s *fakeServer) ListenAndServe() error {
	close(s.started)
	return <-s.release
}

func (s *fakeServer) Shutdown(ctx context.Context) error {
	s.shutdown <- struct{}{}
	s.release <- http.ErrServerClosed
	return nil
}

func TestHTTPServiceGracefulShutdown(t *testing.T) {
	t.Parallel()

	server := newFakeServer()
	svc := NewHTTPServerService(server, time.Second)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- svc.Serve(ctx) }()

	<-server.started
	cancel()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Expected context.Canceled, got %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Service did not stop")
	}

	select {
	case <-server.shutdown:
	default:
		t.Error("Shutdown was never called")
	}
}

func TestHTTPServiceCrashPropagates(t *testing.T) {
	t.Parallel()

	server := newFakeServer()
	svc := NewHTTPServerService(server, time.Second)

	done := make(chan error, 1)
	go func() { done <- svc.Serve(context.Background()) }()

	<-server.started
	server.release <- errors.New("bind failed")

	select {
	case err := <-done:
		if err == nil {
			t.Error("Expected crash error, got nil")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Service did not return after crash")
	}
}

func TestHTTPServiceName(t *testing.T) {
	t.Parallel()

	if got := NewHTTPServerService(newFakeServer(), 0).String(); got != "http-server" {
		t.Errorf("Unexpected service name %q", got)
	}
}

// hubFunc adapts a function to ContextHub.
type hubFunc func(ctx context.Context) error

func (f hubFunc) RunWithContext(ctx context.Context) error { return f(ctx) }

func TestWebSocketHubServiceDelegates(t *testing.T) {
	t.Parallel()

	ran := false
	svc := NewWebSocketHubService(hubFunc(func(ctx context.Context) error {
		ran = true
		return ctx.Err()
	}))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := svc.Serve(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context error, got %v", err)
	}
	if !ran {
		t.Error("Hub run loop was never invoked")
	}
	if svc.String() != "websocket-hub" {
		t.Errorf("Unexpected service name %q", svc.String())
	}
}
