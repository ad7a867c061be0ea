package storage

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

// Mute rows are the durable source of truth for timed mutes; the in-memory
// timers are rebuilt from them at startup. Expiry is stored as UTC unix
// seconds so comparisons survive restarts in a single time base.
type Mute struct {
	ID        int64
	GuildID   string
	UserID    string
	Reason    string
	OldRoles  []string
	ExpiresAt time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
}

type Reminder struct {
	ID        int64
	GuildID   string
	ChannelID string
	CreatorID string
	TargetID  string
	Text      string
	ExpiresAt time.Time
	CreatedAt time.Time
}

func (s *Store) UpsertMute(ctx context.Context, mute Mute) (int64, error) {
	now := time.Now().UTC()
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO mutes (guild_id, user_id, reason, old_roles, expires_at, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(guild_id, user_id) DO UPDATE SET
			reason = excluded.reason,
			expires_at = excluded.expires_at,
			updated_at = excluded.updated_at
	`, mute.GuildID, mute.UserID, mute.Reason, encodeList(mute.OldRoles),
		mute.ExpiresAt.UTC().Unix(), now.Unix(), now.Unix())
	if err != nil {
		return 0, err
	}
	if id, err := res.LastInsertId(); err == nil && id > 0 {
		return id, nil
	}
	row := s.db.QueryRowContext(ctx, `SELECT id FROM mutes WHERE guild_id = ? AND user_id = ?`, mute.GuildID, mute.UserID)
	var id int64
	if err := row.Scan(&id); err != nil {
		return 0, err
	}
	return id, nil
}

func (s *Store) GetMute(ctx context.Context, guildID, userID string) (Mute, bool, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, guild_id, user_id, COALESCE(reason, ''), old_roles, expires_at, created_at, updated_at
		FROM mutes WHERE guild_id = ? AND user_id = ?
	`, guildID, userID)
	mute, err := scanMute(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Mute{}, false, nil
		}
		return Mute{}, false, err
	}
	return mute, true, nil
}

// ActiveMutes returns rows whose expiry is still in the future relative to now.
func (s *Store) ActiveMutes(ctx context.Context, now time.Time) ([]Mute, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, guild_id, user_id, COALESCE(reason, ''), old_roles, expires_at, created_at, updated_at
		FROM mutes WHERE expires_at > ?
	`, now.UTC().Unix())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var mutes []Mute
	for rows.Next() {
		mute, err := scanMute(rows)
		if err != nil {
			return nil, err
		}
		mutes = append(mutes, mute)
	}
	return mutes, rows.Err()
}

// AllMutes returns every persisted row, expired ones included, so startup
// reconciliation can fire catch-up unmutes instead of dropping them.
func (s *Store) AllMutes(ctx context.Context) ([]Mute, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, guild_id, user_id, COALESCE(reason, ''), old_roles, expires_at, created_at, updated_at
		FROM mutes
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var mutes []Mute
	for rows.Next() {
		mute, err := scanMute(rows)
		if err != nil {
			return nil, err
		}
		mutes = append(mutes, mute)
	}
	return mutes, rows.Err()
}

func (s *Store) DeleteMute(ctx context.Context, guildID, userID string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM mutes WHERE guild_id = ? AND user_id = ?`, guildID, userID)
	return err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanMute(row rowScanner) (Mute, error) {
	var mute Mute
	var oldRoles string
	var expires, created, updated int64
	if err := row.Scan(&mute.ID, &mute.GuildID, &mute.UserID, &mute.Reason, &oldRoles, &expires, &created, &updated); err != nil {
		return Mute{}, err
	}
	mute.OldRoles = decodeList(oldRoles)
	mute.ExpiresAt = time.Unix(expires, 0).UTC()
	mute.CreatedAt = time.Unix(created, 0).UTC()
	mute.UpdatedAt = time.Unix(updated, 0).UTC()
	return mute, nil
}

func (s *Store) AddReminder(ctx context.Context, reminder Reminder) (int64, error) {
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO reminders (guild_id, channel_id, creator_id, target_id, text, expires_at, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, reminder.GuildID, reminder.ChannelID, reminder.CreatorID, reminder.TargetID,
		reminder.Text, reminder.ExpiresAt.UTC().Unix(), time.Now().UTC().Unix())
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func (s *Store) AllReminders(ctx context.Context) ([]Reminder, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, guild_id, channel_id, creator_id, target_id, text, expires_at, created_at
		FROM reminders ORDER BY expires_at ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanReminders(rows)
}

func (s *Store) ListReminders(ctx context.Context, guildID, targetID string) ([]Reminder, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, guild_id, channel_id, creator_id, target_id, text, expires_at, created_at
		FROM reminders WHERE guild_id = ? AND target_id = ? ORDER BY expires_at ASC
	`, guildID, targetID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanReminders(rows)
}

func scanReminders(rows *sql.Rows) ([]Reminder, error) {
	var reminders []Reminder
	for rows.Next() {
		var reminder Reminder
		var expires, created int64
		if err := rows.Scan(&reminder.ID, &reminder.GuildID, &reminder.ChannelID, &reminder.CreatorID,
			&reminder.TargetID, &reminder.Text, &expires, &created); err != nil {
			return nil, err
		}
		reminder.ExpiresAt = time.Unix(expires, 0).UTC()
		reminder.CreatedAt = time.Unix(created, 0).UTC()
		reminders = append(reminders, reminder)
	}
	return reminders, rows.Err()
}

func (s *Store) DeleteReminder(ctx context.Context, id int64) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM reminders WHERE id = ?`, id)
	return err
}
