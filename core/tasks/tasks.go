package tasks

import (
	"baybook/core/config"

	"github.com/hibiken/asynq"
)

func redisOpt(cfg config.RedisConfig) asynq.RedisClientOpt {
	return asynq.RedisClientOpt{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	}
}

// NewClient returns the enqueue-side asynq client. Modules use it for
// fire-and-forget work such as confirmation emails.
func NewClient(cfg config.RedisConfig) *asynq.Client {
	return asynq.NewClient(redisOpt(cfg))
}

// NewServer returns the worker that processes queued tasks.
func NewServer(cfg config.RedisConfig) *asynq.Server {
	return asynq.NewServer(redisOpt(cfg), asynq.Config{
		Concurrency: 5,
		Queues: map[string]int{
			"default": 5,
			"email":   3,
		},
	})
}

// NewScheduler returns the periodic-task scheduler that fires the booking
// cleanup sweep.
func NewScheduler(cfg config.RedisConfig) *asynq.Scheduler {
	return asynq.NewScheduler(redisOpt(cfg), nil)
}
