package vantha

import "github.com/bwmarrin/discordgo"

// applicationCommands returns the bot's full slash-command surface, used
// for bulk registration at startup.
func applicationCommands() []*discordgo.ApplicationCommand {
	manageGuild := int64(discordgo.PermissionManageServer)
	kickMembers := int64(discordgo.PermissionKickMembers)
	banMembers := int64(discordgo.PermissionBanMembers)
	moderateMembers := int64(discordgo.PermissionModerateMembers)
	manageMessages := int64(discordgo.PermissionManageMessages)
	administrator := int64(discordgo.PermissionAdministrator)

	userOption := func(name, description string, required bool) *discordgo.ApplicationCommandOption {
		return &discordgo.ApplicationCommandOption{
			Type:        discordgo.ApplicationCommandOptionUser,
			Name:        name,
			Description: description,
			Required:    required,
		}
	}
	intOption := func(name, description string, required bool) *discordgo.ApplicationCommandOption {
		return &discordgo.ApplicationCommandOption{
			Type:        discordgo.ApplicationCommandOptionInteger,
			Name:        name,
			Description: description,
			Required:    required,
		}
	}
	stringOption := func(name, description string, required bool) *discordgo.ApplicationCommandOption {
		return &discordgo.ApplicationCommandOption{
			Type:        discordgo.ApplicationCommandOptionString,
			Name:        name,
			Description: description,
			Required:    required,
		}
	}

	return []*discordgo.ApplicationCommand{
		{
			Name:        "balance",
			Description: "Check your or another user's balance",
			Options: []*discordgo.ApplicationCommandOption{
				userOption("user", "User to check (defaults to you)", false),
			},
		},
		{
			Name:        "daily",
			Description: "Claim your daily reward",
		},
		{
			Name:        "work",
			Description: "Work to earn money",
		},
		{
			Name:        "pay",
			Description: "Pay another user",
			Options: []*discordgo.ApplicationCommandOption{
				userOption("user", "Who to pay", true),
				intOption("amount", "How much to pay", true),
			},
		},
		{
			Name:        "gamble",
			Description: "Gamble your money (50/50 chance)",
			Options: []*discordgo.ApplicationCommandOption{
				intOption("amount", "How much to bet", true),
			},
		},
		{
			Name:        "shop",
			Description: "Browse the shop",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "category",
					Description: "Category to browse",
					Choices: []*discordgo.ApplicationCommandOptionChoice{
						{Name: "Color Roles", Value: shopCategoryColors},
						{Name: "Special Roles", Value: shopCategorySpecial},
						{Name: "Perks", Value: shopCategoryPerks},
						{Name: "Items", Value: shopCategoryItems},
					},
				},
			},
		},
		{
			Name:        "buy",
			Description: "Buy an item from the shop",
			Options: []*discordgo.ApplicationCommandOption{
				stringOption("item", "Item ID (see /shop)", true),
			},
		},
		{
			Name:        "sell",
			Description: "Sell an item back to the shop for half price",
			Options: []*discordgo.ApplicationCommandOption{
				stringOption("item", "Item ID (see /inventory)", true),
			},
		},
		{
			Name:        "inventory",
			Description: "View your inventory",
		},
		{
			Name:                     "eco",
			Description:              "Admin economy adjustments",
			DefaultMemberPermissions: &administrator,
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "give",
					Description: "Give money to a user",
					Options: []*discordgo.ApplicationCommandOption{
						userOption("user", "User to credit", true),
						intOption("amount", "How much to give", true),
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "take",
					Description: "Take money from a user",
					Options: []*discordgo.ApplicationCommandOption{
						userOption("user", "User to debit", true),
						intOption("amount", "How much to take", true),
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "set",
					Description: "Set a user's balance to an exact amount",
					Options: []*discordgo.ApplicationCommandOption{
						userOption("user", "User to adjust", true),
						intOption("amount", "New balance", true),
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "reset",
					Description: "Wipe a user's economy record entirely",
					Options: []*discordgo.ApplicationCommandOption{
						userOption("user", "User to reset", true),
					},
				},
			},
		},
		{
			Name:        "leaderboard",
			Description: "View the money leaderboard",
			Options: []*discordgo.ApplicationCommandOption{
				intOption("page", "Page number", false),
			},
		},
		{
			Name:                     "warn",
			Description:              "Warn a user",
			DefaultMemberPermissions: &kickMembers,
			Options: []*discordgo.ApplicationCommandOption{
				userOption("user", "User to warn", true),
				stringOption("reason", "Reason for the warning", true),
			},
		},
		{
			Name:                     "warnings",
			Description:              "List a user's warnings in this server",
			DefaultMemberPermissions: &kickMembers,
			Options: []*discordgo.ApplicationCommandOption{
				userOption("user", "User to look up", true),
			},
		},
		{
			Name:                     "kick",
			Description:              "Kick a user from the server",
			DefaultMemberPermissions: &kickMembers,
			Options: []*discordgo.ApplicationCommandOption{
				userOption("user", "User to kick", true),
				stringOption("reason", "Reason for the kick", false),
			},
		},
		{
			Name:                     "ban",
			Description:              "Ban a user from the server",
			DefaultMemberPermissions: &banMembers,
			Options: []*discordgo.ApplicationCommandOption{
				userOption("user", "User to ban", true),
				stringOption("reason", "Reason for the ban", false),
				intOption("delete_days", "Days of messages to delete (0-7)", false),
			},
		},
		{
			Name:                     "unban",
			Description:              "Unban a user by ID",
			DefaultMemberPermissions: &banMembers,
			Options: []*discordgo.ApplicationCommandOption{
				stringOption("user_id", "ID of the banned user", true),
				stringOption("reason", "Reason for the unban", false),
			},
		},
		{
			Name:                     "purge",
			Description:              "Bulk delete recent messages in this channel",
			DefaultMemberPermissions: &manageMessages,
			Options: []*discordgo.ApplicationCommandOption{
				intOption("amount", "How many messages to delete (1-100)", true),
				userOption("user", "Only delete this user's messages", false),
			},
		},
		{
			Name:                     "mute",
			Description:              "Mute a user, optionally for a limited time",
			DefaultMemberPermissions: &moderateMembers,
			Options: []*discordgo.ApplicationCommandOption{
				userOption("user", "User to mute", true),
				stringOption("duration", "Duration like 10m, 2h, 1d (empty = indefinite)", false),
				stringOption("reason", "Reason for the mute", false),
			},
		},
		{
			Name:                     "unmute",
			Description:              "Unmute a user",
			DefaultMemberPermissions: &moderateMembers,
			Options: []*discordgo.ApplicationCommandOption{
				userOption("user", "User to unmute", true),
			},
		},
		{
			Name:                     "trigger",
			Description:              "Manage auto-responses",
			DefaultMemberPermissions: &manageGuild,
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "add",
					Description: "Add an auto-response",
					Options: []*discordgo.ApplicationCommandOption{
						stringOption("trigger", "Text that triggers the response", true),
						stringOption("response", "What the bot replies with", true),
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "remove",
					Description: "Remove an auto-response",
					Options: []*discordgo.ApplicationCommandOption{
						stringOption("trigger", "Trigger to remove", true),
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "list",
					Description: "List this server's auto-responses",
				},
			},
		},
		{
			Name:        "poll",
			Description: "Start a reaction poll",
			Options: []*discordgo.ApplicationCommandOption{
				stringOption("question", "What to ask", true),
				stringOption("options", "Comma-separated choices (empty = yes/no)", false),
			},
		},
		{
			Name:        "flip",
			Description: "Flip a coin",
		},
		{
			Name:        "roll",
			Description: "Roll a die",
			Options: []*discordgo.ApplicationCommandOption{
				intOption("sides", "Number of sides (default 6)", false),
			},
		},
		{
			Name:        "choose",
			Description: "Let the bot pick from comma-separated options",
			Options: []*discordgo.ApplicationCommandOption{
				stringOption("options", "Comma-separated choices", true),
			},
		},
		{
			Name:        "8ball",
			Description: "Consult the magic 8-ball",
			Options: []*discordgo.ApplicationCommandOption{
				stringOption("question", "Your yes/no question", true),
			},
		},
		{
			Name:                     "reply",
			Description:              "Reply to the modmail ticket in this channel",
			DefaultMemberPermissions: &manageGuild,
			Options: []*discordgo.ApplicationCommandOption{
				stringOption("message", "Message to send to the user", true),
			},
		},
		{
			Name:        "close",
			Description: "Close the modmail ticket in this channel",
		},
		{
			Name:                     "settings",
			Description:              "Update this server's bot settings",
			DefaultMemberPermissions: &manageGuild,
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "set",
					Description: "Set a channel or role setting",
					Options: []*discordgo.ApplicationCommandOption{
						{
							Type:        discordgo.ApplicationCommandOptionString,
							Name:        "key",
							Description: "Which setting to change",
							Required:    true,
							Choices: []*discordgo.ApplicationCommandOptionChoice{
								{Name: "Mod log channel", Value: settingModLogChannel},
								{Name: "Modmail log channel", Value: settingModmailLogChannel},
								{Name: "Modmail category", Value: settingModmailCategory},
								{Name: "Mute role", Value: settingMuteRole},
								{Name: "Auto role", Value: settingAutoRole},
								{Name: "Welcome channel", Value: settingWelcomeChannel},
								{Name: "Welcome template", Value: settingWelcomeTemplate},
								{Name: "Prefix", Value: settingPrefix},
							},
						},
						stringOption("value", "New value (channel/role ID or text)", true),
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "show",
					Description: "Show this server's settings",
				},
			},
		},
	}
}

// Setting keys accepted by /settings set.
const (
	settingModLogChannel     = "mod_log_channel"
	settingModmailLogChannel = "modmail_log_channel"
	settingModmailCategory   = "modmail_category"
	settingMuteRole          = "mute_role"
	settingAutoRole          = "auto_role"
	settingWelcomeChannel    = "welcome_channel"
	settingWelcomeTemplate   = "welcome_template"
	settingPrefix            = "prefix"
)
