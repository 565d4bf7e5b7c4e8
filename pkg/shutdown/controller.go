// Package shutdown implements graceful termination for kinda's long-running
// CLI sessions (serve-metrics): a stop-file poll
// plus SIGINT/SIGTERM handling, with registered callbacks run exactly once,
// each bounded by its own timeout so one wedged callback (e.g. an HTTP
// server stuck draining a slow request) can't block every callback after it.
package shutdown

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/jihwankim/kinda/pkg/reporting"
)

// Controller watches for a stop condition and runs registered callbacks once
// when it fires.
type Controller struct {
	stopFile        string
	stopCh          chan struct{}
	stopped         bool
	mutex           sync.RWMutex
	callbacks       []func(context.Context)
	pollInterval    time.Duration
	signalHandlers  bool
	callbackTimeout time.Duration
	log             *reporting.Logger
}

// Config contains shutdown controller configuration.
type Config struct {
	// StopFile is the path to watch for a manual stop request.
	StopFile string

	// PollInterval for checking the stop file.
	PollInterval time.Duration

	// EnableSignalHandlers enables SIGINT/SIGTERM handling.
	EnableSignalHandlers bool

	// CallbackTimeout bounds how long a single OnStop callback may run
	// before the controller gives up waiting on it and moves to the next.
	CallbackTimeout time.Duration

	// Logger receives structured shutdown events. A nil Logger gets a
	// default info-level logger rather than falling silent.
	Logger *reporting.Logger
}

// New creates a new shutdown controller.
func New(config Config) *Controller {
	if config.StopFile == "" {
		config.StopFile = "/tmp/kinda-stop"
	}

	if config.PollInterval == 0 {
		config.PollInterval = 1 * time.Second
	}

	if config.CallbackTimeout == 0 {
		config.CallbackTimeout = 10 * time.Second
	}

	log := config.Logger
	if log == nil {
		log = reporting.NewLogger(reporting.LoggerConfig{Level: reporting.LogLevelInfo})
	}

	return &Controller{
		stopFile:        config.StopFile,
		stopCh:          make(chan struct{}),
		callbacks:       make([]func(context.Context), 0),
		pollInterval:    config.PollInterval,
		signalHandlers:  config.EnableSignalHandlers,
		callbackTimeout: config.CallbackTimeout,
		log:             log,
	}
}

// Start begins monitoring for stop conditions.
func (c *Controller) Start(ctx context.Context) {
	go c.watchStopFile(ctx)

	if c.signalHandlers {
		go c.watchSignals(ctx)
	}
}

// watchStopFile polls for the existence of the stop file.
func (c *Controller) watchStopFile(ctx context.Context) {
	ticker := time.NewTicker(c.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if c.checkStopFile() {
				c.log.Info("stop file detected", "path", c.stopFile)
				c.triggerStop("stop file detected")
				return
			}
		}
	}
}

// watchSignals listens for OS signals.
func (c *Controller) watchSignals(ctx context.Context) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-ctx.Done():
		signal.Stop(sigCh)
		return
	case sig := <-sigCh:
		c.log.Info("stop signal received", "signal", sig.String())
		c.triggerStop(fmt.Sprintf("signal: %v", sig))
		signal.Stop(sigCh)
		return
	}
}

// checkStopFile checks if the stop file exists.
func (c *Controller) checkStopFile() bool {
	_, err := os.Stat(c.stopFile)
	return err == nil
}

// triggerStop runs every registered callback exactly once, each bounded by
// callbackTimeout. A callback that doesn't return in time is logged and
// abandoned — its goroutine keeps running detached rather than blocking the
// remaining callbacks, since there's no way to cancel arbitrary caller code
// from here short of the context it was handed.
func (c *Controller) triggerStop(reason string) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if c.stopped {
		return
	}

	c.stopped = true
	close(c.stopCh)

	c.log.Info("shutdown triggered", "reason", reason, "callbacks", len(c.callbacks))

	for i, callback := range c.callbacks {
		c.runCallback(i, callback)
	}
}

// runCallback invokes one OnStop callback with a fresh context bounded by
// callbackTimeout, logging whether it finished in time.
func (c *Controller) runCallback(index int, callback func(context.Context)) {
	ctx, cancel := context.WithTimeout(context.Background(), c.callbackTimeout)
	defer cancel()

	done := make(chan struct{})
	go func() {
		callback(ctx)
		close(done)
	}()

	select {
	case <-done:
		c.log.Debug("shutdown callback completed", "index", index, "total", len(c.callbacks))
	case <-ctx.Done():
		c.log.Warn("shutdown callback timed out", "index", index, "total", len(c.callbacks), "timeout", c.callbackTimeout.String())
	}
}

// Stop manually triggers shutdown.
func (c *Controller) Stop(reason string) {
	c.triggerStop(reason)
}

// IsStopped returns true if shutdown has been triggered.
func (c *Controller) IsStopped() bool {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	return c.stopped
}

// StopChannel returns a channel that closes when shutdown is triggered.
func (c *Controller) StopChannel() <-chan struct{} {
	return c.stopCh
}

// OnStop registers a callback to run when shutdown is triggered. callback
// receives a context that expires after CallbackTimeout, so long-running
// cleanup (draining an HTTP server, flushing a session to disk) should
// respect ctx.Done() rather than assuming unbounded time.
func (c *Controller) OnStop(callback func(ctx context.Context)) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.callbacks = append(c.callbacks, callback)
}

// CreateStopFile creates the stop file.
func (c *Controller) CreateStopFile() error {
	f, err := os.Create(c.stopFile)
	if err != nil {
		return fmt.Errorf("failed to create stop file: %w", err)
	}
	defer f.Close()

	_, err = f.WriteString(fmt.Sprintf("stop requested at %s\n", time.Now().Format(time.RFC3339)))
	if err != nil {
		return fmt.Errorf("failed to write to stop file: %w", err)
	}

	return nil
}

// RemoveStopFile removes the stop file.
func (c *Controller) RemoveStopFile() error {
	err := os.Remove(c.stopFile)
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove stop file: %w", err)
	}
	return nil
}

// GetStopFilePath returns the path to the stop file.
func (c *Controller) GetStopFilePath() string {
	return c.stopFile
}
