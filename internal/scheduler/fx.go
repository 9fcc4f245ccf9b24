package scheduler

import (
	"context"

	"github.com/go-co-op/gocron/v2"
	"github.com/tiketin/tiketin/internal/config"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("scheduler",
	fx.Provide(NewReminderJob),
	fx.Invoke(run),
)

func run(lc fx.Lifecycle, cfg config.Config, log *zap.Logger, job *ReminderJob) error {
	s, err := gocron.NewScheduler()
	if err != nil {
		return err
	}

	hour := cfg.ReminderHour
	if hour < 0 || hour > 23 {
		hour = 9
	}

	_, err = s.NewJob(
		gocron.DailyJob(1, gocron.NewAtTimes(gocron.NewAtTime(uint(hour), 0, 0))),
		gocron.NewTask(func() {
			if err := job.RunOnce(context.Background()); err != nil {
				log.Error("reminder run failed", zap.Error(err))
			}
		}),
		gocron.WithName("event-reminder"),
	)
	if err != nil {
		return err
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			s.Start()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return s.Shutdown()
		},
	})
	return nil
}
