// Package reminders delivers one-shot user reminders through the shared
// timer scheduler, persisted so they survive restarts.
package reminders

import (
	"context"
	"fmt"
	"time"

	"sweeper/internal/storage"
	"sweeper/internal/timers"

	"go.uber.org/zap"
)

// Notifier delivers a fired reminder. The bot adapts discordgo; a DM is
// attempted first and the origin channel is the fallback.
type Notifier interface {
	DirectMessage(ctx context.Context, userID, content string) error
	ChannelMessage(ctx context.Context, channelID, content string) error
}

type Service struct {
	store    *storage.Store
	sched    *timers.Scheduler
	notifier Notifier
	logger   *zap.Logger
}

func NewService(store *storage.Store, sched *timers.Scheduler, notifier Notifier, logger *zap.Logger) *Service {
	return &Service{store: store, sched: sched, notifier: notifier, logger: logger}
}

func timerKey(id int64) string {
	return fmt.Sprintf("reminder:%d", id)
}

func (s *Service) Create(ctx context.Context, reminder storage.Reminder) (int64, error) {
	id, err := s.store.AddReminder(ctx, reminder)
	if err != nil {
		return 0, fmt.Errorf("persist reminder: %w", err)
	}
	reminder.ID = id
	s.schedule(reminder)
	return id, nil
}

func (s *Service) List(ctx context.Context, guildID, targetID string) ([]storage.Reminder, error) {
	return s.store.ListReminders(ctx, guildID, targetID)
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	s.sched.Cancel(timerKey(id))
	return s.store.DeleteReminder(ctx, id)
}

// Reload rebuilds reminder timers from storage; reminders that came due
// while the process was down fire immediately.
func (s *Service) Reload(ctx context.Context) error {
	all, err := s.store.AllReminders(ctx)
	if err != nil {
		return fmt.Errorf("load reminders: %w", err)
	}
	for _, reminder := range all {
		s.schedule(reminder)
	}
	s.logger.Info("reminder timers reloaded", zap.Int("count", len(all)))
	return nil
}

func (s *Service) schedule(reminder storage.Reminder) {
	s.sched.Schedule(timerKey(reminder.ID), reminder.CreatedAt, reminder.ExpiresAt, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		s.deliver(ctx, reminder)
	})
}

func (s *Service) deliver(ctx context.Context, reminder storage.Reminder) {
	content := fmt.Sprintf("Reminder: %s", reminder.Text)
	if err := s.notifier.DirectMessage(ctx, reminder.TargetID, content); err != nil {
		if reminder.ChannelID == "" {
			s.logger.Warn("reminder undeliverable", zap.Int64("id", reminder.ID), zap.Error(err))
		} else if err := s.notifier.ChannelMessage(ctx, reminder.ChannelID, fmt.Sprintf("<@%s> %s", reminder.TargetID, content)); err != nil {
			s.logger.Warn("reminder channel fallback failed", zap.Int64("id", reminder.ID), zap.Error(err))
		}
	}
	if err := s.store.DeleteReminder(ctx, reminder.ID); err != nil {
		s.logger.Warn("reminder cleanup failed", zap.Int64("id", reminder.ID), zap.Error(err))
	}
}
