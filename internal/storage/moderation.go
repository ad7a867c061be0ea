package storage

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

type Infraction struct {
	ID        int64
	GuildID   string
	UserID    string
	ModID     string
	Kind      string
	Reason    string
	CreatedAt time.Time
}

type Tag struct {
	GuildID   string
	Name      string
	Content   string
	CreatorID string
}

type Request struct {
	ID        int64
	GuildID   string
	UserID    string
	MessageID string
	Text      string
	Open      bool
	CreatedAt time.Time
}

type ReactionRole struct {
	GuildID   string
	MessageID string
	Emoji     string
	RoleID    string
}

func (s *Store) AddInfraction(ctx context.Context, inf Infraction) (int64, error) {
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO infractions (guild_id, user_id, mod_id, kind, reason, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, inf.GuildID, inf.UserID, inf.ModID, inf.Kind, inf.Reason, time.Now().UTC().Unix())
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func (s *Store) ListInfractions(ctx context.Context, guildID, userID string) ([]Infraction, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, guild_id, user_id, mod_id, kind, COALESCE(reason, ''), created_at
		FROM infractions
		WHERE guild_id = ? AND user_id = ?
		ORDER BY created_at DESC
	`, guildID, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var infractions []Infraction
	for rows.Next() {
		var inf Infraction
		var created int64
		if err := rows.Scan(&inf.ID, &inf.GuildID, &inf.UserID, &inf.ModID, &inf.Kind, &inf.Reason, &created); err != nil {
			return nil, err
		}
		inf.CreatedAt = time.Unix(created, 0).UTC()
		infractions = append(infractions, inf)
	}
	return infractions, rows.Err()
}

func (s *Store) SetTag(ctx context.Context, tag Tag) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO tags (guild_id, name, content, creator_id)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(guild_id, name) DO UPDATE SET
			content = excluded.content,
			creator_id = excluded.creator_id
	`, tag.GuildID, tag.Name, tag.Content, tag.CreatorID)
	return err
}

func (s *Store) GetTag(ctx context.Context, guildID, name string) (Tag, bool, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT guild_id, name, content, creator_id FROM tags WHERE guild_id = ? AND name = ?
	`, guildID, name)
	var tag Tag
	if err := row.Scan(&tag.GuildID, &tag.Name, &tag.Content, &tag.CreatorID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Tag{}, false, nil
		}
		return Tag{}, false, err
	}
	return tag, true, nil
}

func (s *Store) DeleteTag(ctx context.Context, guildID, name string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM tags WHERE guild_id = ? AND name = ?`, guildID, name)
	return err
}

func (s *Store) ListTags(ctx context.Context, guildID string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT name FROM tags WHERE guild_id = ? ORDER BY name`, guildID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

func (s *Store) AddRequest(ctx context.Context, req Request) (int64, error) {
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO requests (guild_id, user_id, message_id, text, open, created_at)
		VALUES (?, ?, ?, ?, 1, ?)
	`, req.GuildID, req.UserID, req.MessageID, req.Text, time.Now().UTC().Unix())
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func (s *Store) ListOpenRequests(ctx context.Context, guildID string) ([]Request, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, guild_id, user_id, message_id, text, open, created_at
		FROM requests WHERE guild_id = ? AND open = 1 ORDER BY created_at ASC
	`, guildID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var requests []Request
	for rows.Next() {
		var req Request
		var open int
		var created int64
		if err := rows.Scan(&req.ID, &req.GuildID, &req.UserID, &req.MessageID, &req.Text, &open, &created); err != nil {
			return nil, err
		}
		req.Open = open == 1
		req.CreatedAt = time.Unix(created, 0).UTC()
		requests = append(requests, req)
	}
	return requests, rows.Err()
}

func (s *Store) CloseRequest(ctx context.Context, guildID string, id int64) error {
	_, err := s.db.ExecContext(ctx, `UPDATE requests SET open = 0 WHERE guild_id = ? AND id = ?`, guildID, id)
	return err
}

func (s *Store) SetReactionRole(ctx context.Context, rr ReactionRole) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO reaction_roles (guild_id, message_id, emoji, role_id)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(guild_id, message_id, emoji) DO UPDATE SET role_id = excluded.role_id
	`, rr.GuildID, rr.MessageID, rr.Emoji, rr.RoleID)
	return err
}

func (s *Store) GetReactionRole(ctx context.Context, guildID, messageID, emoji string) (string, bool, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT role_id FROM reaction_roles WHERE guild_id = ? AND message_id = ? AND emoji = ?
	`, guildID, messageID, emoji)
	var roleID string
	if err := row.Scan(&roleID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", false, nil
		}
		return "", false, err
	}
	return roleID, true, nil
}

func (s *Store) DeleteReactionRole(ctx context.Context, guildID, messageID, emoji string) error {
	_, err := s.db.ExecContext(ctx, `
		DELETE FROM reaction_roles WHERE guild_id = ? AND message_id = ? AND emoji = ?
	`, guildID, messageID, emoji)
	return err
}
