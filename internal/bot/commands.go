package bot

import "github.com/bwmarrin/discordgo"

var (
	modPermissions   int64 = discordgo.PermissionManageMessages
	adminPermissions int64 = discordgo.PermissionManageServer
)

func (b *Bot) registerCommands() error {
	commands := []*discordgo.ApplicationCommand{
		{
			Name:                     "mute",
			Description:              "Mute a member for a while",
			DefaultMemberPermissions: &modPermissions,
			Options: []*discordgo.ApplicationCommandOption{
				{Type: discordgo.ApplicationCommandOptionUser, Name: "user", Description: "member to mute", Required: true},
				{Type: discordgo.ApplicationCommandOptionInteger, Name: "minutes", Description: "mute length in minutes", Required: true},
				{Type: discordgo.ApplicationCommandOptionString, Name: "reason", Description: "reason", Required: false},
			},
		},
		{
			Name:                     "unmute",
			Description:              "Lift a mute early",
			DefaultMemberPermissions: &modPermissions,
			Options: []*discordgo.ApplicationCommandOption{
				{Type: discordgo.ApplicationCommandOptionUser, Name: "user", Description: "member to unmute", Required: true},
			},
		},
		{
			Name:                     "mutes",
			Description:              "List active mutes in this server",
			DefaultMemberPermissions: &modPermissions,
		},
		{
			Name:                     "warn",
			Description:              "Record a warning for a member",
			DefaultMemberPermissions: &modPermissions,
			Options: []*discordgo.ApplicationCommandOption{
				{Type: discordgo.ApplicationCommandOptionUser, Name: "user", Description: "member to warn", Required: true},
				{Type: discordgo.ApplicationCommandOptionString, Name: "reason", Description: "reason", Required: true},
			},
		},
		{
			Name:                     "kick",
			Description:              "Kick a member",
			DefaultMemberPermissions: &modPermissions,
			Options: []*discordgo.ApplicationCommandOption{
				{Type: discordgo.ApplicationCommandOptionUser, Name: "user", Description: "member to kick", Required: true},
				{Type: discordgo.ApplicationCommandOptionString, Name: "reason", Description: "reason", Required: false},
			},
		},
		{
			Name:                     "ban",
			Description:              "Ban a member",
			DefaultMemberPermissions: &modPermissions,
			Options: []*discordgo.ApplicationCommandOption{
				{Type: discordgo.ApplicationCommandOptionUser, Name: "user", Description: "member to ban", Required: true},
				{Type: discordgo.ApplicationCommandOptionString, Name: "reason", Description: "reason", Required: false},
				{Type: discordgo.ApplicationCommandOptionInteger, Name: "purge_days", Description: "days of messages to purge (0-7)", Required: false},
			},
		},
		{
			Name:                     "infractions",
			Description:              "List a member's recorded infractions",
			DefaultMemberPermissions: &modPermissions,
			Options: []*discordgo.ApplicationCommandOption{
				{Type: discordgo.ApplicationCommandOptionUser, Name: "user", Description: "member to look up", Required: true},
			},
		},
		{
			Name:        "remind",
			Description: "Create, list, or delete reminders",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type: discordgo.ApplicationCommandOptionString, Name: "action", Description: "what to do", Required: true,
					Choices: []*discordgo.ApplicationCommandOptionChoice{
						{Name: "add", Value: "add"},
						{Name: "list", Value: "list"},
						{Name: "delete", Value: "delete"},
					},
				},
				{Type: discordgo.ApplicationCommandOptionInteger, Name: "minutes", Description: "minutes from now", Required: false},
				{Type: discordgo.ApplicationCommandOptionString, Name: "text", Description: "reminder text", Required: false},
				{Type: discordgo.ApplicationCommandOptionUser, Name: "user", Description: "remind someone else", Required: false},
				{Type: discordgo.ApplicationCommandOptionInteger, Name: "id", Description: "reminder id to delete", Required: false},
			},
		},
		{
			Name:        "tag",
			Description: "Stored canned responses",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type: discordgo.ApplicationCommandOptionString, Name: "action", Description: "what to do", Required: true,
					Choices: []*discordgo.ApplicationCommandOptionChoice{
						{Name: "get", Value: "get"},
						{Name: "set", Value: "set"},
						{Name: "delete", Value: "delete"},
						{Name: "list", Value: "list"},
					},
				},
				{Type: discordgo.ApplicationCommandOptionString, Name: "name", Description: "tag name", Required: false},
				{Type: discordgo.ApplicationCommandOptionString, Name: "content", Description: "tag content", Required: false},
			},
		},
		{
			Name:        "request",
			Description: "Track requests on the request board",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type: discordgo.ApplicationCommandOptionString, Name: "action", Description: "what to do", Required: true,
					Choices: []*discordgo.ApplicationCommandOptionChoice{
						{Name: "add", Value: "add"},
						{Name: "list", Value: "list"},
						{Name: "close", Value: "close"},
					},
				},
				{Type: discordgo.ApplicationCommandOptionString, Name: "text", Description: "request text", Required: false},
				{Type: discordgo.ApplicationCommandOptionInteger, Name: "id", Description: "request id to close", Required: false},
			},
		},
		{
			Name:                     "antispam",
			Description:              "Configure the antispam engine",
			DefaultMemberPermissions: &adminPermissions,
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type: discordgo.ApplicationCommandOptionString, Name: "action", Description: "what to do", Required: true,
					Choices: []*discordgo.ApplicationCommandOptionChoice{
						{Name: "quickmsg", Value: "quickmsg"},
						{Name: "cooldown", Value: "cooldown"},
						{Name: "global-cooldown", Value: "global-cooldown"},
						{Name: "rule-add", Value: "rule-add"},
						{Name: "rule-del", Value: "rule-del"},
						{Name: "rule-list", Value: "rule-list"},
						{Name: "service-add", Value: "service-add"},
						{Name: "reload", Value: "reload"},
					},
				},
				{Type: discordgo.ApplicationCommandOptionBoolean, Name: "enabled", Description: "quickmsg on or off", Required: false},
				{Type: discordgo.ApplicationCommandOptionInteger, Name: "rate", Description: "messages per window", Required: false},
				{Type: discordgo.ApplicationCommandOptionInteger, Name: "seconds", Description: "window length in seconds", Required: false},
				{Type: discordgo.ApplicationCommandOptionInteger, Name: "service", Description: "service id for rules", Required: false},
				{Type: discordgo.ApplicationCommandOptionInteger, Name: "kind", Description: "rule kind (1-8)", Required: false},
				{Type: discordgo.ApplicationCommandOptionString, Name: "match", Description: "comma separated match texts", Required: false},
				{Type: discordgo.ApplicationCommandOptionString, Name: "ids", Description: "comma separated match ids", Required: false},
				{Type: discordgo.ApplicationCommandOptionString, Name: "channels", Description: "comma separated channel ids", Required: false},
				{Type: discordgo.ApplicationCommandOptionString, Name: "users", Description: "comma separated user ids", Required: false},
				{Type: discordgo.ApplicationCommandOptionInteger, Name: "rule", Description: "rule id to delete", Required: false},
				{Type: discordgo.ApplicationCommandOptionString, Name: "name", Description: "service name", Required: false},
				{Type: discordgo.ApplicationCommandOptionString, Name: "regex", Description: "service pattern", Required: false},
			},
		},
		{
			Name:                     "modmail",
			Description:              "Reply to a modmail thread",
			DefaultMemberPermissions: &modPermissions,
			Options: []*discordgo.ApplicationCommandOption{
				{Type: discordgo.ApplicationCommandOptionUser, Name: "user", Description: "user to reply to", Required: true},
				{Type: discordgo.ApplicationCommandOptionString, Name: "text", Description: "reply text", Required: true},
			},
		},
		{
			Name:                     "reactionrole",
			Description:              "Bind or unbind a reaction to a role",
			DefaultMemberPermissions: &adminPermissions,
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type: discordgo.ApplicationCommandOptionString, Name: "action", Description: "what to do", Required: true,
					Choices: []*discordgo.ApplicationCommandOptionChoice{
						{Name: "add", Value: "add"},
						{Name: "remove", Value: "remove"},
					},
				},
				{Type: discordgo.ApplicationCommandOptionString, Name: "message", Description: "message id", Required: true},
				{Type: discordgo.ApplicationCommandOptionString, Name: "emoji", Description: "emoji name", Required: true},
				{Type: discordgo.ApplicationCommandOptionRole, Name: "role", Description: "role to grant", Required: false},
			},
		},
		{
			Name:                     "settings",
			Description:              "Configure guild channels and roles",
			DefaultMemberPermissions: &adminPermissions,
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type: discordgo.ApplicationCommandOptionString, Name: "key", Description: "setting to change", Required: true,
					Choices: []*discordgo.ApplicationCommandOptionChoice{
						{Name: "mod-channel", Value: "mod-channel"},
						{Name: "muted-role", Value: "muted-role"},
						{Name: "bypass-role", Value: "bypass-role"},
						{Name: "board-channel", Value: "board-channel"},
						{Name: "modmail-channel", Value: "modmail-channel"},
						{Name: "mute-minutes", Value: "mute-minutes"},
						{Name: "show", Value: "show"},
					},
				},
				{Type: discordgo.ApplicationCommandOptionChannel, Name: "channel", Description: "channel value", Required: false},
				{Type: discordgo.ApplicationCommandOptionRole, Name: "role", Description: "role value", Required: false},
				{Type: discordgo.ApplicationCommandOptionInteger, Name: "minutes", Description: "numeric value", Required: false},
			},
		},
	}

	_, err := b.session.ApplicationCommandBulkOverwrite(b.session.State.User.ID, "", commands)
	return err
}
