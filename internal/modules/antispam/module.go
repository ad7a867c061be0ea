package antispam

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"
	"unicode/utf8"

	"sweeper/internal/config"
	"sweeper/internal/keyed"
	"sweeper/internal/modules/audit"
	"sweeper/internal/storage"
	"sweeper/internal/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ErrForbidden marks a platform permission failure; adapters translate the
// client's error kind to it so the pipeline can fall back to notifying the
// mod channel instead of failing.
var ErrForbidden = errors.New("missing permissions")

// Actions is the slice of the chat client the pipeline side-effects through.
type Actions interface {
	DeleteMessage(ctx context.Context, channelID, messageID string) error
	ChannelMessage(ctx context.Context, channelID, content string) error
}

// InviteResolver turns an invite code into its target guild id. A bad or
// expired code is (_, false, nil): an expected outcome, not an error.
type InviteResolver interface {
	ResolveInvite(ctx context.Context, code string) (string, bool, error)
}

type Muter interface {
	Mute(ctx context.Context, guildID, userID, modID, reason string, expiresAt time.Time) error
}

// Message is the inbound event as the orchestrator sees it; the bot layer
// fills in the permission bit and role list so exemption can be decided here.
type Message struct {
	GuildID           string
	ChannelID         string
	UserID            string
	MessageID         string
	Content           string
	HasManageMessages bool
	Roles             []string
}

const pendingMuteTTL = time.Minute

// Module wires cooldown check, URL extraction, service matching, rule
// evaluation, and enforcement. Service patterns, cooldown settings, and
// guild settings are cached and swapped wholesale on a periodic refresh.
type Module struct {
	cfg       config.AntiSpamConfig
	store     *storage.Store
	cooldowns *CooldownSet
	resolver  *utils.Resolver
	invites   InviteResolver
	actions   Actions
	muter     Muter
	pending   keyed.Store
	audit     *audit.Logger
	logger    *zap.Logger

	mu         sync.RWMutex
	matcher    *Matcher
	settings   map[string]storage.GuildSettings
	globalRate int
	globalPer  time.Duration
}

func New(cfg config.AntiSpamConfig, store *storage.Store, resolver *utils.Resolver, invites InviteResolver, actions Actions, muter Muter, pending keyed.Store, auditLogger *audit.Logger, logger *zap.Logger) *Module {
	return &Module{
		cfg:        cfg,
		store:      store,
		cooldowns:  NewCooldownSet(cfg.BucketCacheSize),
		resolver:   resolver,
		invites:    invites,
		actions:    actions,
		muter:      muter,
		pending:    pending,
		audit:      auditLogger,
		logger:     logger,
		matcher:    NewMatcher(nil, logger),
		settings:   make(map[string]storage.GuildSettings),
		globalRate: cfg.MessageRate,
		globalPer:  time.Duration(cfg.CooldownSeconds) * time.Second,
	}
}

// Refresh reloads service patterns, the global cooldown setting, and guild
// settings from storage and swaps the caches in wholesale; readers never see
// a partially updated cache.
func (m *Module) Refresh(ctx context.Context) error {
	services, err := m.store.ListServices(ctx)
	if err != nil {
		return fmt.Errorf("load services: %w", err)
	}
	matcher := NewMatcher(services, m.logger)

	globalRate := m.cfg.MessageRate
	globalPer := time.Duration(m.cfg.CooldownSeconds) * time.Second
	if setting, ok, err := m.store.GetCooldownSetting(ctx, "antispam_on_message"); err != nil {
		m.logger.Warn("cooldown setting load failed, keeping defaults", zap.Error(err))
	} else if ok && setting.Rate > 0 && setting.PerSeconds > 0 {
		globalRate = setting.Rate
		globalPer = time.Duration(setting.PerSeconds) * time.Second
	}

	all, err := m.store.ListGuildSettings(ctx)
	if err != nil {
		return fmt.Errorf("load guild settings: %w", err)
	}
	settings := make(map[string]storage.GuildSettings, len(all))
	for _, s := range all {
		settings[s.GuildID] = s
	}

	m.mu.Lock()
	m.matcher = matcher
	m.settings = settings
	m.globalRate = globalRate
	m.globalPer = globalPer
	m.mu.Unlock()

	m.logger.Info("antispam caches refreshed",
		zap.Int("services", matcher.Len()), zap.Int("guilds", len(settings)))
	return nil
}

// Run refreshes the caches on the configured cycle until ctx is cancelled.
func (m *Module) Run(ctx context.Context) {
	interval := time.Duration(m.cfg.ReloadMinutes) * time.Minute
	if interval <= 0 {
		interval = 10 * time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := m.Refresh(ctx); err != nil {
				m.logger.Warn("antispam refresh failed", zap.Error(err))
			}
		}
	}
}

// Process runs the full pipeline for one inbound message. All enforcement is
// side-effecting; failures degrade toward allowing the message, since
// deleting legitimate content is worse than missing spam.
func (m *Module) Process(ctx context.Context, msg Message) {
	log := m.logger.With(
		zap.String("trace_id", uuid.NewString()),
		zap.String("guild_id", msg.GuildID),
		zap.String("user_id", msg.UserID),
		zap.String("message_id", msg.MessageID),
	)

	settings := m.guildSettings(msg.GuildID)
	if m.exempt(msg, settings) {
		log.Debug("author exempt from antispam")
		return
	}

	if settings.AntiSpamQuickMsg {
		rateN, period := m.cooldownFor(settings)
		if retryAfter, limited := m.cooldowns.Check(msg.GuildID, msg.UserID, rateN, period); limited {
			m.handleRateLimited(ctx, msg, settings, retryAfter, log)
			return
		}
	}

	urls := utils.ExtractURLs(msg.Content)
	if len(urls) == 0 {
		return
	}

	matcher := m.currentMatcher()
	for _, raw := range urls {
		resolved := m.resolver.Resolve(ctx, raw)
		match, ok := matcher.Match(resolved)
		if !ok {
			log.Debug("no service pattern matched", zap.String("url", resolved))
			continue
		}

		targetID := ""
		if IsInviteService(match) {
			guildID, found, err := m.invites.ResolveInvite(ctx, InviteCode(match.Text))
			if err != nil {
				log.Warn("invite lookup failed, allowing", zap.String("match", match.Text), zap.Error(err))
				continue
			}
			if !found {
				// Expired or bogus invite: never punish on unresolvable data.
				log.Debug("invite not found, allowing", zap.String("match", match.Text))
				continue
			}
			targetID = guildID
		}

		rules, err := m.store.ListRules(ctx, msg.GuildID, match.ServiceID)
		if err != nil {
			log.Warn("rule load failed, allowing", zap.Error(err))
			continue
		}
		if len(rules) == 0 {
			continue
		}

		allowed := Evaluate(rules, Context{
			ChannelID: msg.ChannelID,
			UserID:    msg.UserID,
			Match:     match.Text,
			TargetID:  targetID,
		}, log)
		if allowed {
			continue
		}

		m.enforce(ctx, msg, settings, match, resolved, log)
		// One action per message; stop looping over the remaining URLs.
		return
	}
}

func (m *Module) handleRateLimited(ctx context.Context, msg Message, settings storage.GuildSettings, retryAfter time.Duration, log *zap.Logger) {
	if err := m.actions.DeleteMessage(ctx, msg.ChannelID, msg.MessageID); err != nil {
		log.Debug("rate-limited message delete failed", zap.Error(err))
	}

	// Claim the pending mute before acting so a burst cannot mute twice.
	key := "pending_mute:" + msg.GuildID + ":" + msg.UserID
	won, err := m.pending.TrySet(ctx, key, msg.MessageID, pendingMuteTTL)
	if err != nil {
		log.Warn("pending mute claim failed", zap.Error(err))
		return
	}
	if !won {
		log.Debug("mute already pending, ignoring")
		return
	}
	defer func() {
		if err := m.pending.Delete(ctx, key); err != nil {
			log.Warn("pending mute clear failed", zap.Error(err))
		}
	}()

	minutes := settings.MuteMinutes
	if minutes <= 0 {
		minutes = m.cfg.MuteMinutes
	}
	expires := time.Now().UTC().Add(time.Duration(minutes) * time.Minute)

	log.Info("rate limit exceeded, muting",
		zap.Duration("retry_after", retryAfter), zap.Time("expires", expires))
	if err := m.muter.Mute(ctx, msg.GuildID, msg.UserID, "antispam", "Sending too many messages too quickly.", expires); err != nil {
		log.Error("antispam mute failed", zap.Error(err))
		return
	}

	m.audit.Log(ctx, audit.LevelWarn, msg.GuildID, msg.UserID, "antispam_rate_limit",
		fmt.Sprintf("muted for %dm after message burst (retry_after=%.2fs)", minutes, retryAfter.Seconds()))

	if settings.ModChannel != "" {
		content := fmt.Sprintf("Automatically muted <@%s> for spam. Last message (%s):\n> %s",
			msg.UserID, msg.MessageID, truncate(msg.Content, 1700))
		if err := m.actions.ChannelMessage(ctx, settings.ModChannel, content); err != nil {
			log.Warn("mod channel notify failed", zap.Error(err))
		}
	}
}

func (m *Module) enforce(ctx context.Context, msg Message, settings storage.GuildSettings, match Match, url string, log *zap.Logger) {
	// The punycoded host pins down internationalized lookalike domains in
	// the audit trail.
	m.audit.Log(ctx, audit.LevelWarn, msg.GuildID, msg.UserID, "antispam_block",
		fmt.Sprintf("service=%s match=%s url=%s host=%s channel=%s",
			match.ServiceName, match.Text, url, utils.Hostname(url), msg.ChannelID))

	err := m.actions.DeleteMessage(ctx, msg.ChannelID, msg.MessageID)
	if err == nil {
		return
	}
	if errors.Is(err, ErrForbidden) && settings.ModChannel != "" {
		content := fmt.Sprintf("A message from <@%s> is blocked by the %s antispam rules but I could not remove it (message %s in <#%s>).",
			msg.UserID, match.ServiceName, msg.MessageID, msg.ChannelID)
		if err := m.actions.ChannelMessage(ctx, settings.ModChannel, content); err != nil {
			log.Warn("mod channel notify failed", zap.Error(err))
		}
		return
	}
	// Already deleted or transient platform failure; nothing more to do.
	log.Debug("blocked message delete failed", zap.Error(err))
}

func (m *Module) exempt(msg Message, settings storage.GuildSettings) bool {
	if msg.HasManageMessages {
		return true
	}
	if settings.BypassRole == "" {
		return false
	}
	return contains(msg.Roles, settings.BypassRole)
}

func (m *Module) guildSettings(guildID string) storage.GuildSettings {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if settings, ok := m.settings[guildID]; ok {
		return settings
	}
	return storage.GuildSettings{GuildID: guildID}
}

func (m *Module) cooldownFor(settings storage.GuildSettings) (int, time.Duration) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if settings.CooldownRate > 0 && settings.CooldownSeconds > 0 {
		return settings.CooldownRate, time.Duration(settings.CooldownSeconds) * time.Second
	}
	return m.globalRate, m.globalPer
}

func (m *Module) currentMatcher() *Matcher {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.matcher
}

// truncate cuts s to at most n bytes without splitting a rune.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}
