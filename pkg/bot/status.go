package bot

import (
	"fmt"
	"log"

	"github.com/bwmarrin/discordgo"
)

// StatusUpdater is satisfied by *discordgo.Session.
type StatusUpdater interface {
	UpdateStatusComplex(usd discordgo.UpdateStatusData) error
}

func statusData(commandPrefix string) discordgo.UpdateStatusData {
	return discordgo.UpdateStatusData{
		Activities: []*discordgo.Activity{
			{
				Name:  "Custom Status",
				Type:  discordgo.ActivityTypeCustom,
				State: fmt.Sprintf("%shelp for emote commands", commandPrefix),
				Emoji: discordgo.Emoji{Name: "✨"},
			},
		},
		Status: "online",
	}
}

// UpdateStatus advertises the help command in the bot's custom status.
func (h *Handler) UpdateStatus(s StatusUpdater) {
	if err := s.UpdateStatusComplex(statusData(h.commandPrefix)); err != nil {
		log.Printf("Error setting custom status: %v", err)
	}
}
