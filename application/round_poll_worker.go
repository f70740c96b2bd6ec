package application

import (
	"context"
	"sync"
	"time"

	"ronlotto/domain/interfaces"

	log "github.com/sirupsen/logrus"
)

// RoundPollWorker invokes the round controller on a fixed interval, for
// deployments without an external scheduler
type RoundPollWorker struct {
	controller interfaces.RoundController
	interval   time.Duration
}

// NewRoundPollWorker creates a new round poll worker
func NewRoundPollWorker(controller interfaces.RoundController, interval time.Duration) *RoundPollWorker {
	return &RoundPollWorker{
		controller: controller,
		interval:   interval,
	}
}

// Start begins polling and returns a function that stops the worker.
// Stopping waits for an in-flight invocation to finish and is safe to call
// more than once.
func (w *RoundPollWorker) Start(ctx context.Context) func() {
	stopChan := make(chan struct{})
	done := make(chan struct{})

	go func() {
		defer close(done)
		log.WithField("interval", w.interval).Info("Round poll worker started")

		ticker := time.NewTicker(w.interval)
		defer ticker.Stop()

		for {
			w.poll(ctx)

			select {
			case <-ctx.Done():
				log.Info("Round poll worker shutting down (context cancelled)...")
				return
			case <-stopChan:
				log.Info("Round poll worker shutting down (stop requested)...")
				return
			case <-ticker.C:
			}
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() { close(stopChan) })
		<-done
	}
}

// poll runs one controller invocation. Errors are logged, the next tick retries.
func (w *RoundPollWorker) poll(ctx context.Context) {
	result, err := w.controller.Advance(ctx)
	if err != nil {
		if ctx.Err() == nil {
			log.WithError(err).Error("Round poll failed")
		}
		return
	}

	entry := log.WithFields(log.Fields{
		"action":   result.Action,
		"round_id": result.RoundID,
	})
	switch result.Action {
	case interfaces.RoundActionNotReady, interfaces.RoundActionCooldown, interfaces.RoundActionAlreadyApplied:
		entry.Debug(result.Message)
	default:
		entry.Info(result.Message)
	}
}
