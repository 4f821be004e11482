package server

import (
	"context"
	"time"

	"github.com/johnstarich/tally/pipeline"
	"github.com/patrickmn/go-cache"
	"go.uber.org/atomic"
	"go.uber.org/zap"
)

const resultKey = "result"

// syncer runs at most one ingestion at a time and keeps the latest successful result
type syncer struct {
	ctx     context.Context
	runner  Runner
	logger  *zap.Logger
	running *atomic.Bool
	lastErr *atomic.Error
	results *cache.Cache
	done    chan struct{}
}

func newSyncer(ctx context.Context, runner Runner, logger *zap.Logger) *syncer {
	return &syncer{
		ctx:     ctx,
		runner:  runner,
		logger:  logger,
		running: atomic.NewBool(false),
		lastErr: atomic.NewError(nil),
		results: cache.New(cache.NoExpiration, 0),
		done:    make(chan struct{}, 1),
	}
}

// Start begins a run in the background. Returns false if a run is already in progress.
func (s *syncer) Start() bool {
	if !s.running.CAS(false, true) {
		return false
	}
	go func() {
		s.sync()
		s.running.Store(false)
		select {
		case s.done <- struct{}{}:
		default:
		}
	}()
	return true
}

func (s *syncer) sync() {
	result, err := s.runner.Run(s.ctx)
	s.lastErr.Store(err)
	if err != nil {
		s.logger.Error("Sync failed", zap.Error(err))
		return
	}
	s.results.SetDefault(resultKey, result)
	s.logger.Info("Sync completed successfully", zap.String("run", result.RunID))
}

func (s *syncer) loop(ctx context.Context, interval time.Duration) {
	s.Start()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if !s.Start() {
				s.logger.Info("Skipping scheduled sync, previous sync still running")
			}
		}
	}
}

// Running returns true while a run is in progress
func (s *syncer) Running() bool {
	return s.running.Load()
}

// LastError returns the error of the most recently completed run
func (s *syncer) LastError() error {
	return s.lastErr.Load()
}

// Result returns the latest successful result, if any
func (s *syncer) Result() (pipeline.Result, bool) {
	result, found := s.results.Get(resultKey)
	if !found {
		return pipeline.Result{}, false
	}
	return result.(pipeline.Result), true
}
