package worker

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/vnmap-dataprep/internal/metrics"
)

const (
	// shutdownTimeout - максимальное время ожидания завершения задачи после отмены
	shutdownTimeout = 30 * time.Second
)

// Runner запускает задачу, ждёт её завершения и публикует метрики
type Runner struct {
	logger          *zap.Logger
	runID           string
	pushgatewayURL  string
	shutdownTimeout time.Duration
}

// NewRunner создает новый Runner. Пустой pushgatewayURL отключает публикацию метрик.
func NewRunner(logger *zap.Logger, runID, pushgatewayURL string) *Runner {
	return &Runner{
		logger:          logger,
		runID:           runID,
		pushgatewayURL:  pushgatewayURL,
		shutdownTimeout: shutdownTimeout,
	}
}

// Run executes job. After ctx is cancelled the job gets shutdownTimeout to
// return before Run gives up on it.
func (r *Runner) Run(ctx context.Context, job Job) error {
	r.logger.Info("Starting job", zap.String("name", job.Name()))
	start := time.Now()

	done := make(chan error, 1)
	go func() {
		done <- job.Run(ctx)
	}()

	var err error
	select {
	case err = <-done:
	case <-ctx.Done():
		r.logger.Info("Received shutdown signal, waiting for job", zap.String("name", job.Name()))
		select {
		case err = <-done:
		case <-time.After(r.shutdownTimeout):
			r.logger.Warn("Job shutdown timed out, some tasks may not have completed",
				zap.Duration("timeout", r.shutdownTimeout))
			err = fmt.Errorf("job %s shutdown timed out after %v: %w", job.Name(), r.shutdownTimeout, ctx.Err())
		}
	}

	elapsed := time.Since(start)
	if err != nil {
		r.logger.Error("Job failed",
			zap.String("name", job.Name()),
			zap.Duration("elapsed", elapsed),
			zap.Error(err))
	} else {
		r.logger.Info("Job finished",
			zap.String("name", job.Name()),
			zap.Duration("elapsed", elapsed))
	}

	r.pushMetrics(job.Name())
	return err
}

func (r *Runner) pushMetrics(job string) {
	if r.pushgatewayURL == "" {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := metrics.Push(ctx, r.pushgatewayURL, job, r.runID); err != nil {
		r.logger.Warn("Failed to push metrics", zap.String("url", r.pushgatewayURL), zap.Error(err))
		return
	}
	r.logger.Debug("Metrics pushed", zap.String("url", r.pushgatewayURL))
}
