package jobs

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Task is one run of a periodic job
type Task func(ctx context.Context) error

// Processor runs a task on a fixed interval until stopped
type Processor struct {
	name     string
	task     Task
	interval time.Duration
	delay    time.Duration
	timeout  time.Duration

	stopCh  chan struct{}
	wg      sync.WaitGroup
	running bool
	mu      sync.Mutex
}

// ProcessorConfig holds processor configuration
type ProcessorConfig struct {
	Name     string
	Task     Task
	Interval time.Duration // Default: 1 minute
	Delay    time.Duration // Wait before the first run
	Timeout  time.Duration // Per-run deadline, default: the interval
}

// NewProcessor creates a new periodic job
func NewProcessor(cfg ProcessorConfig) *Processor {
	if cfg.Interval <= 0 {
		cfg.Interval = time.Minute
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = cfg.Interval
	}
	return &Processor{
		name:     cfg.Name,
		task:     cfg.Task,
		interval: cfg.Interval,
		delay:    cfg.Delay,
		timeout:  cfg.Timeout,
		stopCh:   make(chan struct{}),
	}
}

// Start begins running the job. Starting a running job does nothing.
func (p *Processor) Start() {
	p.mu.Lock()
	if p.running {
		p.mu.Unlock()
		return
	}
	p.running = true
	p.mu.Unlock()

	p.wg.Add(1)
	go p.run()
	slog.Info("job started", slog.String("job", p.name), slog.Duration("interval", p.interval))
}

// Stop stops the job and waits for an in-flight run to finish
func (p *Processor) Stop() {
	p.mu.Lock()
	if !p.running {
		p.mu.Unlock()
		return
	}
	p.running = false
	p.mu.Unlock()

	close(p.stopCh)
	p.wg.Wait()
	slog.Info("job stopped", slog.String("job", p.name))
}

func (p *Processor) run() {
	defer p.wg.Done()

	if p.delay > 0 {
		select {
		case <-time.After(p.delay):
		case <-p.stopCh:
			return
		}
	}
	p.runOnce()

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			p.runOnce()
		case <-p.stopCh:
			return
		}
	}
}

func (p *Processor) runOnce() {
	ctx, cancel := context.WithTimeout(context.Background(), p.timeout)
	defer cancel()

	if err := p.task(ctx); err != nil {
		slog.Error("job failed", slog.String("job", p.name), slog.String("error", err.Error()))
	}
}
