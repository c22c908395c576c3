package worker

import (
	"context"
)

// Job - одна пакетная задача (один запуск инструмента)
type Job interface {
	// Name возвращает имя задачи
	Name() string

	// Run выполняет задачу до конца или до отмены ctx
	Run(ctx context.Context) error
}

type funcJob struct {
	name string
	run  func(ctx context.Context) error
}

// NewJob оборачивает функцию в Job
func NewJob(name string, run func(ctx context.Context) error) Job {
	return &funcJob{name: name, run: run}
}

func (j *funcJob) Name() string {
	return j.name
}

func (j *funcJob) Run(ctx context.Context) error {
	return j.run(ctx)
}
