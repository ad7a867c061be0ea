package bot

import (
	"context"
	"fmt"
	"strings"
	"time"

	"sweeper/internal/modules/audit"
	"sweeper/internal/storage"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"
)

func (b *Bot) onInteractionCreate(session *discordgo.Session, interaction *discordgo.InteractionCreate) {
	if interaction.Type != discordgo.InteractionApplicationCommand {
		return
	}
	if interaction.GuildID == "" {
		b.respond(session, interaction, "This command only works inside a server.", true)
		return
	}

	ctx := context.Background()
	data := interaction.ApplicationCommandData()
	opts := optionMap(data.Options)

	switch data.Name {
	case "mute":
		b.handleMute(ctx, session, interaction, opts)
	case "unmute":
		b.handleUnmute(ctx, session, interaction, opts)
	case "mutes":
		b.handleMuteList(ctx, session, interaction)
	case "warn":
		b.handleInfraction(ctx, session, interaction, opts, "warn")
	case "kick":
		b.handleInfraction(ctx, session, interaction, opts, "kick")
	case "ban":
		b.handleInfraction(ctx, session, interaction, opts, "ban")
	case "infractions":
		b.handleInfractionList(ctx, session, interaction, opts)
	case "remind":
		b.handleRemind(ctx, session, interaction, opts)
	case "tag":
		b.handleTag(ctx, session, interaction, opts)
	case "request":
		b.handleRequest(ctx, session, interaction, opts)
	case "antispam":
		b.handleAntiSpam(ctx, session, interaction, opts)
	case "modmail":
		b.handleModmailReply(ctx, session, interaction, opts)
	case "reactionrole":
		b.handleReactionRole(ctx, session, interaction, opts)
	case "settings":
		b.handleSettings(ctx, session, interaction, opts)
	}
}

func (b *Bot) handleMute(ctx context.Context, session *discordgo.Session, interaction *discordgo.InteractionCreate, opts options) {
	target := opts.user(session, "user")
	minutes := opts.integer("minutes")
	if target == nil || minutes <= 0 {
		b.respondError(session, interaction, "A user and a positive minute count are required.")
		return
	}
	reason := opts.text("reason")
	if reason == "" {
		reason = "No reason given."
	}

	modID := invokerID(interaction)
	expires := time.Now().UTC().Add(time.Duration(minutes) * time.Minute)
	if err := b.mutes.Mute(ctx, interaction.GuildID, target.ID, modID, reason, expires); err != nil {
		b.logger.Warn("mute command failed", zap.Error(err))
		b.respondError(session, interaction, "Mute failed: "+err.Error())
		return
	}
	if _, err := b.store.AddInfraction(ctx, storage.Infraction{
		GuildID: interaction.GuildID, UserID: target.ID, ModID: modID, Kind: "mute", Reason: reason,
	}); err != nil {
		b.logger.Warn("infraction record failed", zap.Error(err))
	}

	b.respondEmbed(session, interaction, b.commandEmbed("Member muted",
		fmt.Sprintf("<@%s> is muted until %s.", target.ID, expires.Format(time.RFC3339)),
		b.cfg.Notifications.EmbedColors.Action, nil), false)
}

func (b *Bot) handleUnmute(ctx context.Context, session *discordgo.Session, interaction *discordgo.InteractionCreate, opts options) {
	target := opts.user(session, "user")
	if target == nil {
		b.respondError(session, interaction, "A user is required.")
		return
	}
	if err := b.mutes.Unmute(ctx, interaction.GuildID, target.ID, invokerID(interaction)); err != nil {
		b.respondError(session, interaction, "Unmute failed: "+err.Error())
		return
	}
	b.respondEmbed(session, interaction, b.commandEmbed("Member unmuted",
		fmt.Sprintf("<@%s> can speak again.", target.ID),
		b.cfg.Notifications.EmbedColors.Action, nil), false)
}

func (b *Bot) handleMuteList(ctx context.Context, session *discordgo.Session, interaction *discordgo.InteractionCreate) {
	rows, err := b.store.ActiveMutes(ctx, time.Now().UTC())
	if err != nil {
		b.logger.Warn("active mute lookup failed", zap.Error(err))
		b.respondError(session, interaction, "Could not load active mutes.")
		return
	}

	var lines []string
	for _, row := range rows {
		if row.GuildID != interaction.GuildID {
			continue
		}
		lines = append(lines, fmt.Sprintf("<@%s> until %s: %s",
			row.UserID, row.ExpiresAt.Format(time.RFC3339), orNotSet(row.Reason)))
	}
	body := "No active mutes."
	if len(lines) > 0 {
		body = strings.Join(lines, "\n")
	}
	b.respondEmbed(session, interaction, b.commandEmbed("Active mutes", body,
		b.cfg.Notifications.EmbedColors.Action, nil), true)
}

func (b *Bot) handleInfraction(ctx context.Context, session *discordgo.Session, interaction *discordgo.InteractionCreate, opts options, kind string) {
	target := opts.user(session, "user")
	if target == nil {
		b.respondError(session, interaction, "A user is required.")
		return
	}
	reason := opts.text("reason")
	if reason == "" && kind == "warn" {
		b.respondError(session, interaction, "A reason is required.")
		return
	}
	if reason == "" {
		reason = "No reason given."
	}
	modID := invokerID(interaction)

	switch kind {
	case "kick":
		if err := session.GuildMemberDeleteWithReason(interaction.GuildID, target.ID, reason); err != nil {
			b.respondError(session, interaction, "Kick failed: "+err.Error())
			return
		}
	case "ban":
		days := int(opts.integer("purge_days"))
		if days < 0 || days > 7 {
			days = 0
		}
		if err := session.GuildBanCreateWithReason(interaction.GuildID, target.ID, reason, days); err != nil {
			b.respondError(session, interaction, "Ban failed: "+err.Error())
			return
		}
	}

	if _, err := b.store.AddInfraction(ctx, storage.Infraction{
		GuildID: interaction.GuildID, UserID: target.ID, ModID: modID, Kind: kind, Reason: reason,
	}); err != nil {
		b.logger.Warn("infraction record failed", zap.Error(err))
	}
	b.audit.Log(ctx, audit.LevelWarn, interaction.GuildID, target.ID, kind,
		fmt.Sprintf("by %s: %s", modID, reason))

	b.respondEmbed(session, interaction, b.commandEmbed("Infraction recorded",
		fmt.Sprintf("%s for <@%s>: %s", kind, target.ID, reason),
		b.cfg.Notifications.EmbedColors.Warning, nil), false)
}

func (b *Bot) handleInfractionList(ctx context.Context, session *discordgo.Session, interaction *discordgo.InteractionCreate, opts options) {
	target := opts.user(session, "user")
	if target == nil {
		b.respondError(session, interaction, "A user is required.")
		return
	}
	infractions, err := b.store.ListInfractions(ctx, interaction.GuildID, target.ID)
	if err != nil {
		b.respondError(session, interaction, "Lookup failed.")
		return
	}
	if len(infractions) == 0 {
		b.respond(session, interaction, fmt.Sprintf("<@%s> has a clean record.", target.ID), true)
		return
	}

	var lines []string
	for _, inf := range infractions {
		lines = append(lines, fmt.Sprintf("#%d %s by <@%s> on %s: %s",
			inf.ID, inf.Kind, inf.ModID, inf.CreatedAt.Format("2006-01-02"), inf.Reason))
	}
	b.respondEmbed(session, interaction, b.commandEmbed(
		fmt.Sprintf("Infractions for %s", target.Username),
		strings.Join(lines, "\n"),
		b.cfg.Notifications.EmbedColors.Warning, nil), true)
}

func (b *Bot) handleRemind(ctx context.Context, session *discordgo.Session, interaction *discordgo.InteractionCreate, opts options) {
	invoker := invokerID(interaction)
	switch opts.text("action") {
	case "add":
		minutes := opts.integer("minutes")
		text := opts.text("text")
		if minutes <= 0 || text == "" {
			b.respondError(session, interaction, "Minutes and text are required.")
			return
		}
		targetID := invoker
		if target := opts.user(session, "user"); target != nil {
			targetID = target.ID
		}
		id, err := b.reminders.Create(ctx, storage.Reminder{
			GuildID:   interaction.GuildID,
			ChannelID: interaction.ChannelID,
			CreatorID: invoker,
			TargetID:  targetID,
			Text:      text,
			ExpiresAt: time.Now().UTC().Add(time.Duration(minutes) * time.Minute),
		})
		if err != nil {
			b.respondError(session, interaction, "Could not save the reminder.")
			return
		}
		b.respond(session, interaction, fmt.Sprintf("Reminder #%d set for <@%s> in %dm.", id, targetID, minutes), true)
	case "list":
		reminders, err := b.reminders.List(ctx, interaction.GuildID, invoker)
		if err != nil {
			b.respondError(session, interaction, "Lookup failed.")
			return
		}
		if len(reminders) == 0 {
			b.respond(session, interaction, "No reminders pending.", true)
			return
		}
		var lines []string
		for _, r := range reminders {
			lines = append(lines, fmt.Sprintf("#%d at %s: %s", r.ID, r.ExpiresAt.Format(time.RFC3339), r.Text))
		}
		b.respond(session, interaction, strings.Join(lines, "\n"), true)
	case "delete":
		id := opts.integer("id")
		if id <= 0 {
			b.respondError(session, interaction, "A reminder id is required.")
			return
		}
		if err := b.reminders.Delete(ctx, id); err != nil {
			b.respondError(session, interaction, "Delete failed.")
			return
		}
		b.respond(session, interaction, fmt.Sprintf("Reminder #%d deleted.", id), true)
	}
}

func (b *Bot) handleTag(ctx context.Context, session *discordgo.Session, interaction *discordgo.InteractionCreate, opts options) {
	name := strings.ToLower(opts.text("name"))
	switch opts.text("action") {
	case "get":
		tag, ok, err := b.store.GetTag(ctx, interaction.GuildID, name)
		if err != nil || !ok {
			b.respond(session, interaction, "No such tag.", true)
			return
		}
		b.respond(session, interaction, tag.Content, false)
	case "set":
		content := opts.text("content")
		if name == "" || content == "" {
			b.respondError(session, interaction, "Name and content are required.")
			return
		}
		if err := b.store.SetTag(ctx, storage.Tag{
			GuildID: interaction.GuildID, Name: name, Content: content, CreatorID: invokerID(interaction),
		}); err != nil {
			b.respondError(session, interaction, "Could not save the tag.")
			return
		}
		b.respond(session, interaction, fmt.Sprintf("Tag %q saved.", name), true)
	case "delete":
		if err := b.store.DeleteTag(ctx, interaction.GuildID, name); err != nil {
			b.respondError(session, interaction, "Delete failed.")
			return
		}
		b.respond(session, interaction, fmt.Sprintf("Tag %q deleted.", name), true)
	case "list":
		names, err := b.store.ListTags(ctx, interaction.GuildID)
		if err != nil {
			b.respondError(session, interaction, "Lookup failed.")
			return
		}
		if len(names) == 0 {
			b.respond(session, interaction, "No tags yet.", true)
			return
		}
		b.respond(session, interaction, strings.Join(names, ", "), true)
	}
}

func (b *Bot) handleRequest(ctx context.Context, session *discordgo.Session, interaction *discordgo.InteractionCreate, opts options) {
	settings := b.guildSettings(ctx, interaction.GuildID)
	switch opts.text("action") {
	case "add":
		text := opts.text("text")
		if text == "" {
			b.respondError(session, interaction, "Request text is required.")
			return
		}
		req := storage.Request{
			GuildID: interaction.GuildID,
			UserID:  invokerID(interaction),
			Text:    text,
			Open:    true,
		}
		if settings.BoardChannel != "" {
			posted, err := session.ChannelMessageSend(settings.BoardChannel,
				fmt.Sprintf("Request from <@%s>: %s", req.UserID, text))
			if err == nil {
				req.MessageID = posted.ID
			}
		}
		id, err := b.store.AddRequest(ctx, req)
		if err != nil {
			b.respondError(session, interaction, "Could not save the request.")
			return
		}
		b.respond(session, interaction, fmt.Sprintf("Request #%d filed.", id), true)
	case "list":
		requests, err := b.store.ListOpenRequests(ctx, interaction.GuildID)
		if err != nil {
			b.respondError(session, interaction, "Lookup failed.")
			return
		}
		if len(requests) == 0 {
			b.respond(session, interaction, "No open requests.", true)
			return
		}
		var lines []string
		for _, req := range requests {
			lines = append(lines, fmt.Sprintf("#%d by <@%s>: %s", req.ID, req.UserID, req.Text))
		}
		b.respond(session, interaction, strings.Join(lines, "\n"), true)
	case "close":
		id := opts.integer("id")
		if id <= 0 {
			b.respondError(session, interaction, "A request id is required.")
			return
		}
		if err := b.store.CloseRequest(ctx, interaction.GuildID, id); err != nil {
			b.respondError(session, interaction, "Close failed.")
			return
		}
		b.respond(session, interaction, fmt.Sprintf("Request #%d closed.", id), true)
	}
}

func (b *Bot) handleAntiSpam(ctx context.Context, session *discordgo.Session, interaction *discordgo.InteractionCreate, opts options) {
	settings := b.guildSettings(ctx, interaction.GuildID)
	switch opts.text("action") {
	case "quickmsg":
		settings.AntiSpamQuickMsg = opts.boolean("enabled")
		if err := b.store.UpsertGuildSettings(ctx, settings); err != nil {
			b.respondError(session, interaction, "Update failed.")
			return
		}
		b.refreshAntiSpam(ctx)
		b.respond(session, interaction, fmt.Sprintf("Quick-message detection: %t.", settings.AntiSpamQuickMsg), true)
	case "cooldown":
		rate := int(opts.integer("rate"))
		seconds := int(opts.integer("seconds"))
		if rate <= 0 || seconds <= 0 {
			b.respondError(session, interaction, "Positive rate and seconds are required.")
			return
		}
		settings.CooldownRate = rate
		settings.CooldownSeconds = seconds
		if err := b.store.UpsertGuildSettings(ctx, settings); err != nil {
			b.respondError(session, interaction, "Update failed.")
			return
		}
		b.refreshAntiSpam(ctx)
		b.respond(session, interaction, fmt.Sprintf("Cooldown set to %d messages per %ds.", rate, seconds), true)
	case "global-cooldown":
		rate := int(opts.integer("rate"))
		seconds := int(opts.integer("seconds"))
		if rate <= 0 || seconds <= 0 {
			b.respondError(session, interaction, "Positive rate and seconds are required.")
			return
		}
		if err := b.store.UpsertCooldownSetting(ctx, storage.CooldownSetting{
			Name: "antispam_on_message", Rate: rate, PerSeconds: seconds,
		}); err != nil {
			b.respondError(session, interaction, "Update failed.")
			return
		}
		b.refreshAntiSpam(ctx)
		b.respond(session, interaction, fmt.Sprintf("Global cooldown set to %d messages per %ds.", rate, seconds), true)
	case "rule-add":
		serviceID := opts.integer("service")
		kind := int(opts.integer("kind"))
		if serviceID <= 0 || kind < 1 || kind > 8 {
			b.respondError(session, interaction, "A service id and a rule kind from 1 to 8 are required.")
			return
		}
		id, err := b.store.AddRule(ctx, storage.SpamRule{
			GuildID:    interaction.GuildID,
			ServiceID:  serviceID,
			RuleKind:   kind,
			MatchText:  splitList(opts.text("match")),
			MatchIDs:   splitList(opts.text("ids")),
			ChannelIDs: splitList(opts.text("channels")),
			UserIDs:    splitList(opts.text("users")),
		})
		if err != nil {
			b.respondError(session, interaction, "Could not save the rule.")
			return
		}
		b.respond(session, interaction, fmt.Sprintf("Rule #%d added.", id), true)
	case "rule-del":
		id := opts.integer("rule")
		if id <= 0 {
			b.respondError(session, interaction, "A rule id is required.")
			return
		}
		if err := b.store.DeleteRule(ctx, interaction.GuildID, id); err != nil {
			b.respondError(session, interaction, "Delete failed.")
			return
		}
		b.respond(session, interaction, fmt.Sprintf("Rule #%d deleted.", id), true)
	case "rule-list":
		rules, err := b.store.ListGuildRules(ctx, interaction.GuildID)
		if err != nil {
			b.respondError(session, interaction, "Lookup failed.")
			return
		}
		if len(rules) == 0 {
			b.respond(session, interaction, "No rules configured.", true)
			return
		}
		var lines []string
		for _, rule := range rules {
			lines = append(lines, fmt.Sprintf("#%d service=%d kind=%d match=%v ids=%v channels=%v users=%v",
				rule.ID, rule.ServiceID, rule.RuleKind, rule.MatchText, rule.MatchIDs, rule.ChannelIDs, rule.UserIDs))
		}
		b.respond(session, interaction, strings.Join(lines, "\n"), true)
	case "service-add":
		name := opts.text("name")
		regex := opts.text("regex")
		if name == "" || regex == "" {
			b.respondError(session, interaction, "Name and regex are required.")
			return
		}
		id, err := b.store.UpsertService(ctx, storage.SpamService{Name: name, Regex: regex, Enabled: true})
		if err != nil {
			b.respondError(session, interaction, "Could not save the service.")
			return
		}
		b.refreshAntiSpam(ctx)
		b.respond(session, interaction, fmt.Sprintf("Service #%d saved.", id), true)
	case "reload":
		b.refreshAntiSpam(ctx)
		b.respond(session, interaction, "Antispam caches reloaded.", true)
	}
}

func (b *Bot) refreshAntiSpam(ctx context.Context) {
	if err := b.antispam.Refresh(ctx); err != nil {
		b.logger.Warn("antispam refresh failed", zap.Error(err))
	}
}

func (b *Bot) handleModmailReply(ctx context.Context, session *discordgo.Session, interaction *discordgo.InteractionCreate, opts options) {
	target := opts.user(session, "user")
	text := opts.text("text")
	if target == nil || text == "" {
		b.respondError(session, interaction, "A user and reply text are required.")
		return
	}
	channel, err := session.UserChannelCreate(target.ID)
	if err != nil {
		b.respondError(session, interaction, "Could not open a DM with that user.")
		return
	}
	if _, err := session.ChannelMessageSend(channel.ID,
		fmt.Sprintf("Reply from the %s moderators:\n> %s", guildName(session, interaction.GuildID), text)); err != nil {
		b.respondError(session, interaction, "Delivery failed; the user may have DMs closed.")
		return
	}
	b.audit.Log(ctx, audit.LevelInfo, interaction.GuildID, target.ID, "modmail_reply",
		fmt.Sprintf("by %s", invokerID(interaction)))
	b.respond(session, interaction, "Reply delivered.", true)
}

func guildName(session *discordgo.Session, guildID string) string {
	if guild, err := session.State.Guild(guildID); err == nil && guild.Name != "" {
		return guild.Name
	}
	return "server"
}

func (b *Bot) handleReactionRole(ctx context.Context, session *discordgo.Session, interaction *discordgo.InteractionCreate, opts options) {
	messageID := opts.text("message")
	emoji := opts.text("emoji")
	switch opts.text("action") {
	case "add":
		role := opts.role(session, interaction.GuildID, "role")
		if role == nil {
			b.respondError(session, interaction, "A role is required.")
			return
		}
		if err := b.store.SetReactionRole(ctx, storage.ReactionRole{
			GuildID: interaction.GuildID, MessageID: messageID, Emoji: emoji, RoleID: role.ID,
		}); err != nil {
			b.respondError(session, interaction, "Could not save the binding.")
			return
		}
		b.respond(session, interaction, fmt.Sprintf("Reacting with %s on %s now grants <@&%s>.", emoji, messageID, role.ID), true)
	case "remove":
		if err := b.store.DeleteReactionRole(ctx, interaction.GuildID, messageID, emoji); err != nil {
			b.respondError(session, interaction, "Delete failed.")
			return
		}
		b.respond(session, interaction, "Binding removed.", true)
	}
}

func (b *Bot) handleSettings(ctx context.Context, session *discordgo.Session, interaction *discordgo.InteractionCreate, opts options) {
	settings := b.guildSettings(ctx, interaction.GuildID)
	key := opts.text("key")

	if key == "show" {
		fields := []*discordgo.MessageEmbedField{
			{Name: "Mod channel", Value: orNotSet(settings.ModChannel), Inline: true},
			{Name: "Muted role", Value: orNotSet(settings.MutedRole), Inline: true},
			{Name: "Bypass role", Value: orNotSet(settings.BypassRole), Inline: true},
			{Name: "Board channel", Value: orNotSet(settings.BoardChannel), Inline: true},
			{Name: "Modmail channel", Value: orNotSet(settings.ModmailChannel), Inline: true},
			{Name: "Quick-message detection", Value: fmt.Sprintf("%t", settings.AntiSpamQuickMsg), Inline: true},
			{Name: "Mute minutes", Value: fmt.Sprintf("%d", settings.MuteMinutes), Inline: true},
		}
		b.respondEmbed(session, interaction, b.commandEmbed("Guild settings", "",
			b.cfg.Notifications.EmbedColors.Action, fields), true)
		return
	}

	switch key {
	case "mod-channel", "board-channel", "modmail-channel":
		channel := opts.channel(session, "channel")
		if channel == nil {
			b.respondError(session, interaction, "A channel is required.")
			return
		}
		switch key {
		case "mod-channel":
			settings.ModChannel = channel.ID
		case "board-channel":
			settings.BoardChannel = channel.ID
		case "modmail-channel":
			settings.ModmailChannel = channel.ID
		}
	case "muted-role", "bypass-role":
		role := opts.role(session, interaction.GuildID, "role")
		if role == nil {
			b.respondError(session, interaction, "A role is required.")
			return
		}
		if key == "muted-role" {
			settings.MutedRole = role.ID
		} else {
			settings.BypassRole = role.ID
		}
	case "mute-minutes":
		minutes := int(opts.integer("minutes"))
		if minutes < 0 {
			b.respondError(session, interaction, "Minutes must not be negative.")
			return
		}
		settings.MuteMinutes = minutes
	default:
		b.respondError(session, interaction, "Unknown setting.")
		return
	}

	if err := b.store.UpsertGuildSettings(ctx, settings); err != nil {
		b.respondError(session, interaction, "Update failed.")
		return
	}
	b.refreshAntiSpam(ctx)
	b.respond(session, interaction, fmt.Sprintf("Setting %q updated.", key), true)
}

type options map[string]*discordgo.ApplicationCommandInteractionDataOption

func optionMap(opts []*discordgo.ApplicationCommandInteractionDataOption) options {
	m := make(options, len(opts))
	for _, opt := range opts {
		m[opt.Name] = opt
	}
	return m
}

func (o options) text(name string) string {
	if opt, ok := o[name]; ok {
		return opt.StringValue()
	}
	return ""
}

func (o options) integer(name string) int64 {
	if opt, ok := o[name]; ok {
		return opt.IntValue()
	}
	return 0
}

func (o options) boolean(name string) bool {
	if opt, ok := o[name]; ok {
		return opt.BoolValue()
	}
	return false
}

func (o options) user(session *discordgo.Session, name string) *discordgo.User {
	if opt, ok := o[name]; ok {
		return opt.UserValue(session)
	}
	return nil
}

func (o options) channel(session *discordgo.Session, name string) *discordgo.Channel {
	if opt, ok := o[name]; ok {
		return opt.ChannelValue(session)
	}
	return nil
}

func (o options) role(session *discordgo.Session, guildID, name string) *discordgo.Role {
	if opt, ok := o[name]; ok {
		return opt.RoleValue(session, guildID)
	}
	return nil
}

func invokerID(interaction *discordgo.InteractionCreate) string {
	if interaction.Member != nil && interaction.Member.User != nil {
		return interaction.Member.User.ID
	}
	if interaction.User != nil {
		return interaction.User.ID
	}
	return ""
}

func splitList(raw string) []string {
	if raw == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func orNotSet(value string) string {
	if value == "" {
		return "not set"
	}
	return value
}

func (b *Bot) commandEmbed(title, description string, color int, fields []*discordgo.MessageEmbedField) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Title:       title,
		Description: description,
		Color:       color,
		Timestamp:   time.Now().Format(time.RFC3339),
		Fields:      fields,
	}
}

func (b *Bot) respond(session *discordgo.Session, interaction *discordgo.InteractionCreate, content string, ephemeral bool) {
	flags := discordgo.MessageFlags(0)
	if ephemeral {
		flags = discordgo.MessageFlagsEphemeral
	}
	_ = session.InteractionRespond(interaction.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: content,
			Flags:   flags,
		},
	})
}

func (b *Bot) respondEmbed(session *discordgo.Session, interaction *discordgo.InteractionCreate, embed *discordgo.MessageEmbed, ephemeral bool) {
	flags := discordgo.MessageFlags(0)
	if ephemeral {
		flags = discordgo.MessageFlagsEphemeral
	}
	_ = session.InteractionRespond(interaction.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Embeds: []*discordgo.MessageEmbed{embed},
			Flags:  flags,
		},
	})
}

func (b *Bot) respondError(session *discordgo.Session, interaction *discordgo.InteractionCreate, message string) {
	b.respondEmbed(session, interaction, b.commandEmbed("Error", message,
		b.cfg.Notifications.EmbedColors.Error, nil), true)
}
