package scheduler

import (
	"context"
	"time"

	"github.com/tiketin/tiketin/internal/clock"
	eventdomain "github.com/tiketin/tiketin/internal/event/domain"
	notificationdomain "github.com/tiketin/tiketin/internal/notification/domain"
	ticketdomain "github.com/tiketin/tiketin/internal/ticket/domain"
	userdomain "github.com/tiketin/tiketin/internal/user/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type ReminderParams struct {
	fx.In

	DB            *gorm.DB
	Log           *zap.Logger
	Clock         clock.Clock
	Events        eventdomain.Service
	Tickets       ticketdomain.Repository
	Users         userdomain.Service
	Notifications notificationdomain.Service
}

// ReminderJob emails every active ticket holder the day before their
// event starts.
type ReminderJob struct {
	db            *gorm.DB
	log           *zap.Logger
	clock         clock.Clock
	events        eventdomain.Service
	tickets       ticketdomain.Repository
	users         userdomain.Service
	notifications notificationdomain.Service
}

func NewReminderJob(p ReminderParams) *ReminderJob {
	return &ReminderJob{
		db:            p.DB,
		log:           p.Log.Named("scheduler.reminder"),
		clock:         p.Clock,
		events:        p.Events,
		tickets:       p.Tickets,
		users:         p.Users,
		notifications: p.Notifications,
	}
}

// RunOnce sends reminders for all published events starting tomorrow.
// Already-notified users are skipped, so reruns on the same day are safe.
func (j *ReminderJob) RunOnce(ctx context.Context) error {
	now := j.clock.Now()
	startOfTomorrow := now.Truncate(24 * time.Hour).Add(24 * time.Hour)
	endOfTomorrow := startOfTomorrow.Add(24 * time.Hour)

	events, err := j.events.ListStartingBetween(ctx, startOfTomorrow, endOfTomorrow)
	if err != nil {
		return err
	}

	var sent int
	for _, event := range events {
		ownerIDs, err := j.tickets.ListActiveOwnerIDsByEvent(ctx, j.db, event.ID)
		if err != nil {
			j.log.Error("list ticket holders",
				zap.String("event_id", event.ID.String()),
				zap.Error(err),
			)
			continue
		}

		for _, ownerID := range ownerIDs {
			user, err := j.users.GetByID(ctx, userdomain.GetUserRequest{ID: ownerID.String()})
			if err != nil {
				j.log.Error("load ticket holder",
					zap.String("user_id", ownerID.String()),
					zap.Error(err),
				)
				continue
			}

			_, delivered := j.notifications.NotifyEventReminder(ctx, notificationdomain.EventReminderNotice{
				UserID:     user.ID,
				EventID:    event.ID,
				Name:       user.Name,
				Email:      user.Email,
				EventTitle: event.Title,
				Venue:      event.Venue,
				StartsAt:   event.StartsAt,
			})
			if delivered {
				sent++
			}
		}
	}

	j.log.Info("reminder run finished",
		zap.Int("events", len(events)),
		zap.Int("reminders_sent", sent),
	)
	return nil
}
