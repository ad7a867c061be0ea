package storage

import (
	"context"
	"database/sql"
	"errors"
)

type SpamService struct {
	ID          int64
	Name        string
	Regex       string
	Enabled     bool
	Description string
}

// SpamRule rows are external configuration written by admin commands and
// read-only to the evaluator. Several rules may target the same
// (guild, service) pair; the evaluator applies them ordered by RuleKind.
type SpamRule struct {
	ID         int64
	GuildID    string
	ServiceID  int64
	RuleKind   int
	MatchText  []string
	MatchIDs   []string
	ChannelIDs []string
	UserIDs    []string
	Value      int64
}

type CooldownSetting struct {
	Name       string
	Rate       int
	PerSeconds int
}

func (s *Store) ListServices(ctx context.Context) ([]SpamService, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, service, regex, enabled, COALESCE(description, '')
		FROM antispam_services
		ORDER BY id ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var services []SpamService
	for rows.Next() {
		var svc SpamService
		var enabled int
		if err := rows.Scan(&svc.ID, &svc.Name, &svc.Regex, &enabled, &svc.Description); err != nil {
			return nil, err
		}
		svc.Enabled = enabled == 1
		services = append(services, svc)
	}
	return services, rows.Err()
}

func (s *Store) UpsertService(ctx context.Context, svc SpamService) (int64, error) {
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO antispam_services (service, regex, enabled, description)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(service) DO UPDATE SET
			regex = excluded.regex,
			enabled = excluded.enabled,
			description = excluded.description
	`, svc.Name, svc.Regex, boolToInt(svc.Enabled), svc.Description)
	if err != nil {
		return 0, err
	}
	if id, err := res.LastInsertId(); err == nil && id > 0 {
		return id, nil
	}
	row := s.db.QueryRowContext(ctx, `SELECT id FROM antispam_services WHERE service = ?`, svc.Name)
	var id int64
	if err := row.Scan(&id); err != nil {
		return 0, err
	}
	return id, nil
}

func (s *Store) ListRules(ctx context.Context, guildID string, serviceID int64) ([]SpamRule, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, guild_id, service_id, rule_kind, match_text, match_ids, channel_ids, user_ids, value
		FROM antispam_rules
		WHERE guild_id = ? AND service_id = ?
		ORDER BY rule_kind ASC, id ASC
	`, guildID, serviceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanRules(rows)
}

func (s *Store) ListGuildRules(ctx context.Context, guildID string) ([]SpamRule, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, guild_id, service_id, rule_kind, match_text, match_ids, channel_ids, user_ids, value
		FROM antispam_rules
		WHERE guild_id = ?
		ORDER BY service_id ASC, rule_kind ASC, id ASC
	`, guildID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanRules(rows)
}

func scanRules(rows *sql.Rows) ([]SpamRule, error) {
	var rules []SpamRule
	for rows.Next() {
		var rule SpamRule
		var matchText, matchIDs, channelIDs, userIDs string
		if err := rows.Scan(&rule.ID, &rule.GuildID, &rule.ServiceID, &rule.RuleKind,
			&matchText, &matchIDs, &channelIDs, &userIDs, &rule.Value); err != nil {
			return nil, err
		}
		rule.MatchText = decodeList(matchText)
		rule.MatchIDs = decodeList(matchIDs)
		rule.ChannelIDs = decodeList(channelIDs)
		rule.UserIDs = decodeList(userIDs)
		rules = append(rules, rule)
	}
	return rules, rows.Err()
}

func (s *Store) AddRule(ctx context.Context, rule SpamRule) (int64, error) {
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO antispam_rules (guild_id, service_id, rule_kind, match_text, match_ids, channel_ids, user_ids, value)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, rule.GuildID, rule.ServiceID, rule.RuleKind,
		encodeList(rule.MatchText), encodeList(rule.MatchIDs),
		encodeList(rule.ChannelIDs), encodeList(rule.UserIDs), rule.Value)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func (s *Store) DeleteRule(ctx context.Context, guildID string, ruleID int64) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM antispam_rules WHERE guild_id = ? AND id = ?`, guildID, ruleID)
	return err
}

func (s *Store) GetCooldownSetting(ctx context.Context, name string) (CooldownSetting, bool, error) {
	row := s.db.QueryRowContext(ctx, `SELECT name, message_rate, cooldown_seconds FROM cooldown_settings WHERE name = ?`, name)
	var setting CooldownSetting
	if err := row.Scan(&setting.Name, &setting.Rate, &setting.PerSeconds); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return CooldownSetting{}, false, nil
		}
		return CooldownSetting{}, false, err
	}
	return setting, true, nil
}

func (s *Store) UpsertCooldownSetting(ctx context.Context, setting CooldownSetting) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO cooldown_settings (name, message_rate, cooldown_seconds)
		VALUES (?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET
			message_rate = excluded.message_rate,
			cooldown_seconds = excluded.cooldown_seconds
	`, setting.Name, setting.Rate, setting.PerSeconds)
	return err
}
