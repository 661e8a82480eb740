package bot

import (
	"context"
	"log"

	"github.com/bwmarrin/discordgo"
	"github.com/samber/lo"
)

// SlashCommands mirrors the text commands
var SlashCommands = []*discordgo.ApplicationCommand{
	{
		Name:        "register-prefix",
		Description: "Set your personal 2-character emote prefix",
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionString,
				Name:        "prefix",
				Description: "Exactly 2 characters",
				Required:    true,
			},
		},
	},
	{
		Name:        "add-emote",
		Description: "Save an emote under your prefix",
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionString,
				Name:        "name",
				Description: "Emote name, without your prefix",
				Required:    true,
			},
			{
				Type:        discordgo.ApplicationCommandOptionString,
				Name:        "content",
				Description: "Text or URL to post when the emote is used",
			},
		},
	},
	{
		Name:        "delete-emote",
		Description: "Delete one of your emotes",
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionString,
				Name:        "name",
				Description: "Emote name, without your prefix",
				Required:    true,
			},
		},
	},
	{
		Name:        "list-emotes",
		Description: "List your saved emotes",
	},
}

// SlashCommandHandlers maps command names to their handler functions
var SlashCommandHandlers = map[string]func(h *Handler, ctx context.Context, c caller, opts map[string]string) string{
	"register-prefix": func(h *Handler, ctx context.Context, c caller, opts map[string]string) string {
		return h.RegisterPrefix(ctx, c.UserID, opts["prefix"])
	},
	"add-emote": func(h *Handler, ctx context.Context, c caller, opts map[string]string) string {
		var content *string
		if v, ok := opts["content"]; ok && v != "" {
			content = &v
		}
		return h.AddEmote(ctx, c.UserID, c.DisplayName, opts["name"], content)
	},
	"delete-emote": func(h *Handler, ctx context.Context, c caller, opts map[string]string) string {
		return h.DeleteEmote(ctx, c.UserID, c.DisplayName, opts["name"])
	},
	"list-emotes": func(h *Handler, ctx context.Context, c caller, opts map[string]string) string {
		return h.ListEmotes(c.UserID)
	},
}

// InteractionCreate handles all slash command interactions
func (h *Handler) InteractionCreate(s *discordgo.Session, i *discordgo.InteractionCreate) {
	h.HandleInteraction(&DiscordSession{s}, i)
}

func (h *Handler) HandleInteraction(s Session, i *discordgo.InteractionCreate) {
	// Only handle application commands (slash commands)
	if i.Type != discordgo.InteractionApplicationCommand {
		return
	}

	data := i.ApplicationCommandData()
	handler, ok := SlashCommandHandlers[data.Name]
	if !ok {
		log.Printf("Unknown slash command: %s", data.Name)
		return
	}

	userID, userName, err := getUserFromInteraction(i)
	if err != nil {
		log.Printf("Error handling /%s: %v", data.Name, err)
		return
	}

	opts := lo.SliceToMap(data.Options, func(o *discordgo.ApplicationCommandInteractionDataOption) (string, string) {
		return o.Name, o.StringValue()
	})

	reply := handler(h, context.Background(), caller{UserID: userID, DisplayName: userName}, opts)
	parts := splitMessage(reply, maxMessageLength)
	if len(parts) == 0 {
		parts = []string{reply}
	}

	err = s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: parts[0],
			Flags:   discordgo.MessageFlagsEphemeral, // Only visible to the user who ran the command
		},
	})
	if err != nil {
		log.Printf("Error responding to /%s: %v", data.Name, err)
		return
	}

	// Discord caps a response at 2000 characters, the rest goes out as followups
	for _, part := range parts[1:] {
		_, err := s.FollowupMessageCreate(i.Interaction, true, &discordgo.WebhookParams{
			Content: part,
			Flags:   discordgo.MessageFlagsEphemeral,
		})
		if err != nil {
			log.Printf("Error sending followup for /%s: %v", data.Name, err)
			return
		}
	}
}

// RegisterSlashCommands registers all slash commands with Discord
func RegisterSlashCommands(s *discordgo.Session, guildID string) ([]*discordgo.ApplicationCommand, error) {
	log.Println("Registering slash commands...")

	registeredCommands := make([]*discordgo.ApplicationCommand, len(SlashCommands))

	for i, cmd := range SlashCommands {
		// Register globally (guildID = "") or for a specific guild
		registeredCmd, err := s.ApplicationCommandCreate(s.State.User.ID, guildID, cmd)
		if err != nil {
			log.Printf("Cannot create '%s' command: %v", cmd.Name, err)
			return nil, err
		}
		registeredCommands[i] = registeredCmd
		log.Printf("Registered command: %s", cmd.Name)
	}

	return registeredCommands, nil
}

// UnregisterSlashCommands removes all registered slash commands
func UnregisterSlashCommands(s *discordgo.Session, guildID string, commands []*discordgo.ApplicationCommand) error {
	log.Println("Unregistering slash commands...")

	for _, cmd := range commands {
		err := s.ApplicationCommandDelete(s.State.User.ID, guildID, cmd.ID)
		if err != nil {
			log.Printf("Cannot delete '%s' command: %v", cmd.Name, err)
			return err
		}
		log.Printf("Unregistered command: %s", cmd.Name)
	}

	return nil
}
