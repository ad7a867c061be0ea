// Package bot owns the Discord session: gateway handlers, slash commands,
// and the adapters that expose the session to the engine packages.
package bot

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"sweeper/internal/config"
	"sweeper/internal/keyed"
	"sweeper/internal/modules/antispam"
	"sweeper/internal/modules/audit"
	"sweeper/internal/mutes"
	"sweeper/internal/reminders"
	"sweeper/internal/storage"
	"sweeper/internal/timers"
	"sweeper/internal/utils"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"
)

type Bot struct {
	cfg       config.Config
	logger    *zap.Logger
	store     *storage.Store
	session   *discordgo.Session
	antispam  *antispam.Module
	mutes     *mutes.Manager
	reminders *reminders.Service
	audit     *audit.Logger
}

func New(cfg config.Config, logger *zap.Logger, store *storage.Store, sched *timers.Scheduler, pending keyed.Store, auditLogger *audit.Logger) (*Bot, error) {
	session, err := discordgo.New("Bot " + cfg.DiscordToken)
	if err != nil {
		return nil, err
	}

	session.Identify.Intents = discordgo.IntentsGuilds |
		discordgo.IntentsGuildMessages |
		discordgo.IntentsGuildMembers |
		discordgo.IntentsGuildMessageReactions |
		discordgo.IntentsDirectMessages |
		discordgo.IntentsMessageContent

	b := &Bot{
		cfg:     cfg,
		logger:  logger,
		store:   store,
		session: session,
		audit:   auditLogger,
	}

	platform := &sessionAdapter{session: session}
	b.mutes = mutes.NewManager(store, sched, platform, b.settingsFor, auditLogger, logger, cfg.Notifications.DMOnMute)
	b.reminders = reminders.NewService(store, sched, platform, logger)

	resolver := utils.NewResolver(time.Duration(cfg.AntiSpam.RedirectTimeoutSeconds) * time.Second)
	b.antispam = antispam.New(cfg.AntiSpam, store, resolver, platform, platform, b.mutes, pending, auditLogger, logger)

	auditLogger.SetNotifier(b.notifyAudit)

	return b, nil
}

// notifyAudit mirrors WARN and CRIT audit entries into the guild's mod
// channel. INFO entries stay in storage and the process log only.
func (b *Bot) notifyAudit(ctx context.Context, entry storage.AuditLog) {
	if entry.Level == audit.LevelInfo {
		return
	}
	settings := b.guildSettings(ctx, entry.GuildID)
	if settings.ModChannel == "" {
		return
	}
	content := fmt.Sprintf("[%s] %s <@%s>: %s", entry.Level, entry.Event, entry.UserID, entry.Details)
	if _, err := b.session.ChannelMessageSend(settings.ModChannel, content); err != nil {
		b.logger.Warn("audit notify failed", zap.String("guild_id", entry.GuildID), zap.Error(err))
	}
}

// Mutes exposes the mute manager for startup reconciliation.
func (b *Bot) Mutes() *mutes.Manager { return b.mutes }

// Reminders exposes the reminder service for startup reconciliation.
func (b *Bot) Reminders() *reminders.Service { return b.reminders }

// AntiSpam exposes the antispam module for the refresh loop.
func (b *Bot) AntiSpam() *antispam.Module { return b.antispam }

func (b *Bot) Start() error {
	b.session.AddHandler(b.onReady)
	b.session.AddHandler(b.onMessageCreate)
	b.session.AddHandler(b.onMessageReactionAdd)
	b.session.AddHandler(b.onMessageReactionRemove)
	b.session.AddHandler(b.onInteractionCreate)

	if err := b.session.Open(); err != nil {
		return err
	}

	if err := b.registerCommands(); err != nil {
		return err
	}

	return nil
}

func (b *Bot) Close(ctx context.Context) {
	_ = ctx
	if b.session != nil {
		_ = b.session.Close()
	}
}

func (b *Bot) onReady(session *discordgo.Session, event *discordgo.Ready) {
	b.logger.Info("discord ready",
		zap.String("user", session.State.User.Username),
		zap.Int("guilds", len(event.Guilds)))
}

func (b *Bot) onMessageCreate(session *discordgo.Session, msg *discordgo.MessageCreate) {
	if msg.Author == nil || msg.Author.Bot {
		return
	}

	ctx := context.Background()
	if msg.GuildID == "" {
		b.relayModmail(ctx, msg)
		return
	}

	inbound := antispam.Message{
		GuildID:   msg.GuildID,
		ChannelID: msg.ChannelID,
		UserID:    msg.Author.ID,
		MessageID: msg.ID,
		Content:   msg.Content,
	}
	if msg.Member != nil {
		inbound.Roles = msg.Member.Roles
	}
	if perms, err := session.State.UserChannelPermissions(msg.Author.ID, msg.ChannelID); err == nil {
		inbound.HasManageMessages = perms&discordgo.PermissionManageMessages != 0
	}

	b.antispam.Process(ctx, inbound)
}

// relayModmail forwards a direct message to the modmail channel of every
// mutual guild that has one configured.
func (b *Bot) relayModmail(ctx context.Context, msg *discordgo.MessageCreate) {
	for _, guild := range b.session.State.Guilds {
		settings := b.guildSettings(ctx, guild.ID)
		if settings.ModmailChannel == "" {
			continue
		}
		if _, err := b.session.State.Member(guild.ID, msg.Author.ID); err != nil {
			if _, err := b.session.GuildMember(guild.ID, msg.Author.ID); err != nil {
				continue
			}
		}
		content := fmt.Sprintf("Modmail from %s (<@%s>):\n> %s",
			msg.Author.Username, msg.Author.ID, msg.Content)
		if _, err := b.session.ChannelMessageSend(settings.ModmailChannel, content); err != nil {
			b.logger.Warn("modmail relay failed",
				zap.String("guild_id", guild.ID), zap.Error(err))
		}
	}
}

func (b *Bot) onMessageReactionAdd(session *discordgo.Session, event *discordgo.MessageReactionAdd) {
	if event.GuildID == "" || event.UserID == session.State.User.ID {
		return
	}
	roleID, ok := b.reactionRole(event.GuildID, event.MessageID, event.Emoji.Name)
	if !ok {
		return
	}
	if err := session.GuildMemberRoleAdd(event.GuildID, event.UserID, roleID); err != nil {
		b.logger.Warn("reaction role grant failed",
			zap.String("guild_id", event.GuildID), zap.String("role_id", roleID), zap.Error(err))
	}
}

func (b *Bot) onMessageReactionRemove(session *discordgo.Session, event *discordgo.MessageReactionRemove) {
	if event.GuildID == "" || event.UserID == session.State.User.ID {
		return
	}
	roleID, ok := b.reactionRole(event.GuildID, event.MessageID, event.Emoji.Name)
	if !ok {
		return
	}
	if err := session.GuildMemberRoleRemove(event.GuildID, event.UserID, roleID); err != nil {
		b.logger.Warn("reaction role revoke failed",
			zap.String("guild_id", event.GuildID), zap.String("role_id", roleID), zap.Error(err))
	}
}

func (b *Bot) reactionRole(guildID, messageID, emoji string) (string, bool) {
	roleID, ok, err := b.store.GetReactionRole(context.Background(), guildID, messageID, emoji)
	if err != nil {
		b.logger.Warn("reaction role lookup failed", zap.Error(err))
		return "", false
	}
	return roleID, ok
}

func (b *Bot) guildSettings(ctx context.Context, guildID string) storage.GuildSettings {
	settings, err := b.store.GetGuildSettings(ctx, guildID)
	if err != nil {
		b.logger.Warn("guild settings load failed",
			zap.String("guild_id", guildID), zap.Error(err))
		return storage.GuildSettings{GuildID: guildID}
	}
	return settings
}

func (b *Bot) settingsFor(ctx context.Context, guildID string) (storage.GuildSettings, error) {
	return b.store.GetGuildSettings(ctx, guildID)
}

// sessionAdapter narrows the discordgo session to the interfaces the engine
// packages consume.
type sessionAdapter struct {
	session *discordgo.Session
}

func (a *sessionAdapter) SnapshotRoles(_ context.Context, guildID, userID string) ([]string, error) {
	member, err := a.session.State.Member(guildID, userID)
	if err != nil {
		member, err = a.session.GuildMember(guildID, userID)
		if err != nil {
			return nil, err
		}
	}

	managed := make(map[string]bool)
	guild, err := a.session.State.Guild(guildID)
	if err != nil {
		guild, err = a.session.Guild(guildID)
		if err != nil {
			return nil, err
		}
	}
	for _, role := range guild.Roles {
		if role.Managed || role.ID == guildID {
			managed[role.ID] = true
		}
	}

	roles := make([]string, 0, len(member.Roles))
	for _, roleID := range member.Roles {
		if !managed[roleID] {
			roles = append(roles, roleID)
		}
	}
	return roles, nil
}

func (a *sessionAdapter) SetRoles(_ context.Context, guildID, userID string, roles []string, reason string) error {
	_, err := a.session.GuildMemberEdit(guildID, userID,
		&discordgo.GuildMemberParams{Roles: &roles},
		discordgo.WithAuditLogReason(reason))
	return err
}

func (a *sessionAdapter) DirectMessage(_ context.Context, userID, content string) error {
	channel, err := a.session.UserChannelCreate(userID)
	if err != nil {
		return err
	}
	_, err = a.session.ChannelMessageSend(channel.ID, content)
	return err
}

func (a *sessionAdapter) ChannelMessage(_ context.Context, channelID, content string) error {
	_, err := a.session.ChannelMessageSend(channelID, content)
	return err
}

func (a *sessionAdapter) DeleteMessage(_ context.Context, channelID, messageID string) error {
	err := a.session.ChannelMessageDelete(channelID, messageID)
	if err == nil {
		return nil
	}
	var restErr *discordgo.RESTError
	if errors.As(err, &restErr) && restErr.Response != nil && restErr.Response.StatusCode == http.StatusForbidden {
		return fmt.Errorf("delete message %s: %w", messageID, antispam.ErrForbidden)
	}
	return err
}

func (a *sessionAdapter) ResolveInvite(_ context.Context, code string) (string, bool, error) {
	invite, err := a.session.Invite(code)
	if err != nil {
		var restErr *discordgo.RESTError
		if errors.As(err, &restErr) && restErr.Response != nil && restErr.Response.StatusCode == http.StatusNotFound {
			return "", false, nil
		}
		return "", false, err
	}
	if invite.Guild == nil {
		return "", false, nil
	}
	return invite.Guild.ID, true, nil
}
