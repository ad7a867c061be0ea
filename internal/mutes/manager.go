// Package mutes owns the timed-mute lifecycle: role snapshot, muted-role
// swap, the deferred unmute timer, and reconciliation with persisted rows at
// startup.
package mutes

import (
	"context"
	"fmt"
	"time"

	"sweeper/internal/modules/audit"
	"sweeper/internal/storage"
	"sweeper/internal/timers"

	"go.uber.org/zap"
)

// Platform is the slice of the chat client the mute lifecycle needs. The bot
// package adapts discordgo to it; tests use fakes.
type Platform interface {
	// SnapshotRoles returns the member's removable roles (managed roles and
	// @everyone excluded).
	SnapshotRoles(ctx context.Context, guildID, userID string) ([]string, error)
	// SetRoles replaces the member's removable roles wholesale.
	SetRoles(ctx context.Context, guildID, userID string, roles []string, reason string) error
	DirectMessage(ctx context.Context, userID, content string) error
	ChannelMessage(ctx context.Context, channelID, content string) error
}

type SettingsFunc func(ctx context.Context, guildID string) (storage.GuildSettings, error)

type Manager struct {
	store    *storage.Store
	sched    *timers.Scheduler
	platform Platform
	settings SettingsFunc
	audit    *audit.Logger
	logger   *zap.Logger
	dmOnMute bool
}

func NewManager(store *storage.Store, sched *timers.Scheduler, platform Platform, settings SettingsFunc, auditLogger *audit.Logger, logger *zap.Logger, dmOnMute bool) *Manager {
	return &Manager{
		store:    store,
		sched:    sched,
		platform: platform,
		settings: settings,
		audit:    auditLogger,
		logger:   logger,
		dmOnMute: dmOnMute,
	}
}

func timerKey(guildID, userID string) string {
	return "mute:" + guildID + ":" + userID
}

// Mute applies the muted role and schedules the unmute. Muting an already
// muted user cancels the previous timer, keeps the originally saved pre-mute
// role set, and extends to the new expiry; roles are never re-snapshotted
// from the muted state, which would lose them.
func (m *Manager) Mute(ctx context.Context, guildID, userID, modID, reason string, expiresAt time.Time) error {
	settings, err := m.settings(ctx, guildID)
	if err != nil {
		return fmt.Errorf("guild settings: %w", err)
	}
	if settings.MutedRole == "" {
		return fmt.Errorf("muted role not configured for guild %s", guildID)
	}

	existing, muted, err := m.store.GetMute(ctx, guildID, userID)
	if err != nil {
		return fmt.Errorf("lookup mute: %w", err)
	}

	var oldRoles []string
	if muted {
		oldRoles = existing.OldRoles
		m.sched.Cancel(timerKey(guildID, userID))
	} else {
		oldRoles, err = m.platform.SnapshotRoles(ctx, guildID, userID)
		if err != nil {
			return fmt.Errorf("snapshot roles: %w", err)
		}
		auditReason := fmt.Sprintf("muted by %s", modID)
		if err := m.platform.SetRoles(ctx, guildID, userID, []string{settings.MutedRole}, auditReason); err != nil {
			return fmt.Errorf("apply muted role: %w", err)
		}
	}

	if _, err := m.store.UpsertMute(ctx, storage.Mute{
		GuildID:   guildID,
		UserID:    userID,
		Reason:    reason,
		OldRoles:  oldRoles,
		ExpiresAt: expiresAt,
	}); err != nil {
		return fmt.Errorf("persist mute: %w", err)
	}

	m.schedule(guildID, userID, m.sched.Now(), expiresAt)
	m.audit.Log(ctx, audit.LevelWarn, guildID, userID, "mute",
		fmt.Sprintf("muted until %s by %s: %s", expiresAt.UTC().Format(time.RFC3339), modID, reason))

	m.inform(ctx, settings, userID,
		fmt.Sprintf("You have been muted until %s. Reason: %s", expiresAt.UTC().Format(time.RFC3339), reason))
	return nil
}

// Unmute restores the saved pre-mute roles and closes the persisted row.
// Safe to call when no mute exists.
func (m *Manager) Unmute(ctx context.Context, guildID, userID, by string) error {
	m.sched.Cancel(timerKey(guildID, userID))

	mute, ok, err := m.store.GetMute(ctx, guildID, userID)
	if err != nil {
		return fmt.Errorf("lookup mute: %w", err)
	}
	if !ok {
		return nil
	}

	reason := fmt.Sprintf("unmuted by %s", by)
	if err := m.platform.SetRoles(ctx, guildID, userID, mute.OldRoles, reason); err != nil {
		// The row stays so a retry (or the next startup reconciliation) can
		// still restore the roles.
		return fmt.Errorf("restore roles: %w", err)
	}
	if err := m.store.DeleteMute(ctx, guildID, userID); err != nil {
		return fmt.Errorf("delete mute: %w", err)
	}

	m.audit.Log(ctx, audit.LevelInfo, guildID, userID, "unmute", reason)
	if settings, err := m.settings(ctx, guildID); err == nil {
		m.inform(ctx, settings, userID, "Your mute has been lifted.")
	}
	return nil
}

// Reload rebuilds timers from persisted rows at startup. Rows already past
// expiry fire their unmute immediately instead of being dropped.
func (m *Manager) Reload(ctx context.Context) error {
	all, err := m.store.AllMutes(ctx)
	if err != nil {
		return fmt.Errorf("load mutes: %w", err)
	}
	for _, mute := range all {
		m.schedule(mute.GuildID, mute.UserID, mute.CreatedAt, mute.ExpiresAt)
	}
	m.logger.Info("mute timers reloaded", zap.Int("count", len(all)))
	return nil
}

func (m *Manager) schedule(guildID, userID string, createdAt, expiresAt time.Time) {
	m.sched.Schedule(timerKey(guildID, userID), createdAt, expiresAt, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := m.Unmute(ctx, guildID, userID, "timer"); err != nil {
			m.logger.Error("timed unmute failed",
				zap.String("guild_id", guildID), zap.String("user_id", userID), zap.Error(err))
		}
	})
}

// inform is best effort: DM first, mod channel as fallback, and the mute
// itself never depends on either landing.
func (m *Manager) inform(ctx context.Context, settings storage.GuildSettings, userID, content string) {
	if m.dmOnMute {
		if err := m.platform.DirectMessage(ctx, userID, content); err == nil {
			return
		}
	}
	if settings.ModChannel == "" {
		return
	}
	if err := m.platform.ChannelMessage(ctx, settings.ModChannel, fmt.Sprintf("<@%s> could not be notified: %s", userID, content)); err != nil {
		m.logger.Warn("mod channel notify failed", zap.String("guild_id", settings.GuildID), zap.Error(err))
	}
}
