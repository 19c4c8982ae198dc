// Package server provides the telnet game server and the lifecycle runner
// that supervises it alongside the autosave and reload services.
package server

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"go.uber.org/zap"
)

// Service is a long-running component supervised by the Lifecycle.
type Service interface {
	// Start runs the service and blocks until Stop is called or the service
	// fails.
	Start() error
	// Stop asks the service to shut down; Start returns afterwards.
	Stop()
}

// FuncService adapts a start/stop function pair into a Service.
type FuncService struct {
	StartFn func() error
	StopFn  func()
}

// Start runs StartFn.
func (f *FuncService) Start() error { return f.StartFn() }

// Stop runs StopFn.
func (f *FuncService) Stop() { f.StopFn() }

// lifecycleEntry pairs a service with the name it is logged under.
type lifecycleEntry struct {
	name string
	svc  Service
}

// Lifecycle supervises a set of services: each runs in its own goroutine,
// startup order is registration order, and shutdown walks the set in reverse.
// Shutdown is triggered by SIGINT or SIGTERM, by context cancellation, or by
// the first service failure.
type Lifecycle struct {
	logger *zap.Logger

	mu       sync.Mutex
	entries  []lifecycleEntry
	stopOnce sync.Once
}

// NewLifecycle creates a Lifecycle with no registered services.
//
// Precondition: logger must not be nil.
func NewLifecycle(logger *zap.Logger) *Lifecycle {
	return &Lifecycle{logger: logger}
}

// Add registers a service under the given name.
//
// Precondition: name is non-empty, svc is non-nil, and Run has not started.
func (l *Lifecycle) Add(name string, svc Service) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, lifecycleEntry{name: name, svc: svc})
}

// Run launches every registered service and blocks until a termination signal
// arrives, the context is cancelled, or a service fails. It then stops the
// services in reverse registration order and waits for their goroutines.
//
// Postcondition: returns the first service failure, or nil for a signal or
// context shutdown.
func (l *Lifecycle) Run(ctx context.Context) error {
	began := time.Now()

	l.mu.Lock()
	entries := l.entries
	l.mu.Unlock()

	failures := make(chan error, len(entries))
	var wg sync.WaitGroup
	for _, e := range entries {
		e := e
		wg.Add(1)
		go func() {
			defer wg.Done()
			l.logger.Info("service starting", zap.String("name", e.name))
			if err := e.svc.Start(); err != nil {
				failures <- fmt.Errorf("server: Lifecycle.Run: service %s: %w", e.name, err)
			}
		}()
	}
	l.logger.Info("services launched", zap.Int("services", len(entries)))

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	var firstErr error
	select {
	case sig := <-sigCh:
		l.logger.Info("termination signal", zap.String("signal", sig.String()))
	case <-ctx.Done():
		l.logger.Info("context cancelled")
	case firstErr = <-failures:
		l.logger.Error("service failed", zap.Error(firstErr))
	}

	l.stopAll(entries)
	wg.Wait()

	// A failure that raced the shutdown trigger still surfaces.
	if firstErr == nil {
		select {
		case firstErr = <-failures:
		default:
		}
	}

	l.logger.Info("lifecycle finished",
		zap.Duration("uptime", time.Since(began)),
		zap.Bool("clean", firstErr == nil),
	)
	return firstErr
}

// stopAll stops the services in reverse registration order, exactly once.
func (l *Lifecycle) stopAll(entries []lifecycleEntry) {
	l.stopOnce.Do(func() {
		for i := len(entries) - 1; i >= 0; i-- {
			e := entries[i]
			l.logger.Info("service stopping", zap.String("name", e.name))
			e.svc.Stop()
		}
	})
}
