package storage

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"path"
	"sort"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var migrations embed.FS

type Store struct {
	db *sql.DB
}

type GuildSettings struct {
	GuildID          string
	ModChannel       string
	MutedRole        string
	BypassRole       string
	BoardChannel     string
	ModmailChannel   string
	AntiSpamQuickMsg bool
	// Zero means "use the global default" for all three.
	CooldownRate    int
	CooldownSeconds int
	MuteMinutes     int
}

type AuditLog struct {
	ID        int64
	GuildID   string
	UserID    string
	Level     string
	Event     string
	Details   string
	CreatedAt time.Time
}

func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, err
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() {
	if s.db != nil {
		_ = s.db.Close()
	}
}

func (s *Store) Migrate() error {
	entries, err := migrations.ReadDir("migrations")
	if err != nil {
		return err
	}

	var files []string
	for _, entry := range entries {
		files = append(files, entry.Name())
	}
	sort.Strings(files)

	for _, file := range files {
		content, err := migrations.ReadFile(path.Join("migrations", file))
		if err != nil {
			return err
		}
		if _, err := s.db.Exec(string(content)); err != nil {
			if isIgnorableMigrationError(err) {
				continue
			}
			return fmt.Errorf("migration %s failed: %w", file, err)
		}
	}
	return nil
}

func (s *Store) GetGuildSettings(ctx context.Context, guildID string) (GuildSettings, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT mod_channel, muted_role, bypass_role, board_channel, modmail_channel,
		antispam_quickmsg, cooldown_rate, cooldown_seconds, mute_minutes
		FROM guild_settings WHERE guild_id = ?`, guildID)

	result := GuildSettings{GuildID: guildID}
	var quickmsg int
	err := row.Scan(
		&result.ModChannel,
		&result.MutedRole,
		&result.BypassRole,
		&result.BoardChannel,
		&result.ModmailChannel,
		&quickmsg,
		&result.CooldownRate,
		&result.CooldownSeconds,
		&result.MuteMinutes,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return result, nil
		}
		return GuildSettings{}, err
	}
	result.AntiSpamQuickMsg = quickmsg == 1
	return result, nil
}

func (s *Store) UpsertGuildSettings(ctx context.Context, settings GuildSettings) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO guild_settings (
			guild_id, mod_channel, muted_role, bypass_role, board_channel, modmail_channel,
			antispam_quickmsg, cooldown_rate, cooldown_seconds, mute_minutes
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(guild_id) DO UPDATE SET
			mod_channel = excluded.mod_channel,
			muted_role = excluded.muted_role,
			bypass_role = excluded.bypass_role,
			board_channel = excluded.board_channel,
			modmail_channel = excluded.modmail_channel,
			antispam_quickmsg = excluded.antispam_quickmsg,
			cooldown_rate = excluded.cooldown_rate,
			cooldown_seconds = excluded.cooldown_seconds,
			mute_minutes = excluded.mute_minutes
	`,
		settings.GuildID,
		settings.ModChannel,
		settings.MutedRole,
		settings.BypassRole,
		settings.BoardChannel,
		settings.ModmailChannel,
		boolToInt(settings.AntiSpamQuickMsg),
		settings.CooldownRate,
		settings.CooldownSeconds,
		settings.MuteMinutes,
	)
	return err
}

func (s *Store) ListGuildSettings(ctx context.Context) ([]GuildSettings, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT guild_id, mod_channel, muted_role, bypass_role, board_channel, modmail_channel,
		antispam_quickmsg, cooldown_rate, cooldown_seconds, mute_minutes
		FROM guild_settings`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var all []GuildSettings
	for rows.Next() {
		var settings GuildSettings
		var quickmsg int
		if err := rows.Scan(
			&settings.GuildID,
			&settings.ModChannel,
			&settings.MutedRole,
			&settings.BypassRole,
			&settings.BoardChannel,
			&settings.ModmailChannel,
			&quickmsg,
			&settings.CooldownRate,
			&settings.CooldownSeconds,
			&settings.MuteMinutes,
		); err != nil {
			return nil, err
		}
		settings.AntiSpamQuickMsg = quickmsg == 1
		all = append(all, settings)
	}
	return all, rows.Err()
}

func (s *Store) AddAuditLog(ctx context.Context, log AuditLog) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO audit_logs (guild_id, user_id, level, event, details, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, log.GuildID, log.UserID, log.Level, log.Event, log.Details, log.CreatedAt.Unix())
	return err
}

func (s *Store) ListAuditLogs(ctx context.Context, guildID string, since time.Time) ([]AuditLog, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, guild_id, user_id, level, event, details, created_at
		FROM audit_logs
		WHERE guild_id = ? AND created_at >= ?
		ORDER BY created_at DESC
	`, guildID, since.Unix())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var logs []AuditLog
	for rows.Next() {
		var log AuditLog
		var created int64
		if err := rows.Scan(&log.ID, &log.GuildID, &log.UserID, &log.Level, &log.Event, &log.Details, &created); err != nil {
			return nil, err
		}
		log.CreatedAt = time.Unix(created, 0)
		logs = append(logs, log)
	}
	return logs, rows.Err()
}

func boolToInt(value bool) int {
	if value {
		return 1
	}
	return 0
}

func isIgnorableMigrationError(err error) bool {
	if err == nil {
		return false
	}
	message := err.Error()
	return strings.Contains(message, "duplicate column name") || strings.Contains(message, "already exists")
}

// List columns (channel ids, role snapshots, match lists) are stored as JSON text.

func encodeList(values []string) string {
	if len(values) == 0 {
		return "[]"
	}
	data, err := json.Marshal(values)
	if err != nil {
		return "[]"
	}
	return string(data)
}

func decodeList(raw string) []string {
	if raw == "" {
		return nil
	}
	var values []string
	if err := json.Unmarshal([]byte(raw), &values); err != nil {
		return nil
	}
	if len(values) == 0 {
		return nil
	}
	return values
}
