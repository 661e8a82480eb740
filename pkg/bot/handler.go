package bot

import (
	"context"
	"fmt"
	"log"
	"strings"

	"emotebot/pkg/emote"

	"github.com/bwmarrin/discordgo"
)

// PrefixStore is the part of emote.PrefixStore the handler uses.
type PrefixStore interface {
	SetPrefix(ctx context.Context, userID, prefix string) error
	GetPrefix(userID string) (string, bool)
}

// EmoteStore is the part of emote.EmoteStore the handler uses.
type EmoteStore interface {
	AddEmote(ctx context.Context, userID, prefix, name string, code *string) (emote.Emote, error)
	DeleteEmote(ctx context.Context, userID, prefix, name string) (emote.Emote, error)
	Lookup(userID, fullName string) (emote.Emote, bool)
	ListForUser(userID, prefix string) []emote.Emote
	Count(userID string) int
}

type Handler struct {
	prefixes      PrefixStore
	emotes        EmoteStore
	commandPrefix string
	botID         string
}

func NewHandler(prefixes PrefixStore, emotes EmoteStore, commandPrefix string) *Handler {
	return &Handler{
		prefixes:      prefixes,
		emotes:        emotes,
		commandPrefix: commandPrefix,
	}
}

func (h *Handler) SetBotID(id string) {
	h.botID = id
}

func (h *Handler) MessageCreate(s *discordgo.Session, m *discordgo.MessageCreate) {
	h.HandleMessage(&DiscordSession{s}, m)
}

// HandleMessage routes one inbound message. Known text commands win; anything
// else is checked against the author's own prefix for a direct invocation.
func (h *Handler) HandleMessage(s Session, m *discordgo.MessageCreate) {
	if m.Author == nil || m.Author.ID == h.botID {
		return
	}

	ctx := context.Background()

	if cmd, args, ok := h.parseCommand(m.Content); ok {
		reply := cmd.run(h, ctx, caller{
			UserID:      m.Author.ID,
			DisplayName: displayName(m.Author, m.Member),
		}, args)
		h.send(s, m.ChannelID, reply)
		return
	}

	if reply, ok := h.directInvocation(m.Author.ID, m.Content); ok {
		h.send(s, m.ChannelID, reply)
	}
}

// directInvocation resolves text starting with the user's prefix to one of
// their own emotes. ok is false when the text does not start with the prefix.
func (h *Handler) directInvocation(userID, content string) (reply string, ok bool) {
	prefix, found := h.prefixes.GetPrefix(userID)
	if !found || !strings.HasPrefix(content, prefix) {
		return "", false
	}

	suffix := strings.TrimSpace(content[len(prefix):])
	return h.ShowEmote(userID, prefix, suffix), true
}

// ShowEmote renders the content of prefix+suffix for userID.
func (h *Handler) ShowEmote(userID, prefix, suffix string) string {
	e, found := h.emotes.Lookup(userID, emote.FullName(prefix, suffix))
	if !found {
		return fmt.Sprintf("Emote `%s` not found under your prefix `%s`.", suffix, prefix)
	}
	if e.Code == nil || *e.Code == "" {
		return fmt.Sprintf("Emote `%s` has no content saved.", e.Name)
	}
	return *e.Code
}

func (h *Handler) send(s Session, channelID, content string) {
	for _, part := range splitMessage(content, maxMessageLength) {
		if _, err := s.ChannelMessageSend(channelID, part); err != nil {
			log.Printf("Error sending message: %v", err)
		}
	}
}

func displayName(u *discordgo.User, member *discordgo.Member) string {
	if member != nil && member.Nick != "" {
		return member.Nick
	}
	if u.GlobalName != "" {
		return u.GlobalName
	}
	return u.Username
}
