package bot

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"strings"

	"emotebot/pkg/emote"

	"github.com/samber/lo"
)

const persistFailureReply = "Something went wrong saving that, please try again later."

// caller identifies who invoked a command.
type caller struct {
	UserID      string
	DisplayName string
}

type textCommand struct {
	name        string
	usage       string
	description string
	run         func(h *Handler, ctx context.Context, c caller, args string) string
}

var (
	textCommands   []*textCommand
	commandsByName map[string]*textCommand
)

// Built in init: help reads textCommands.
func init() {
	textCommands = []*textCommand{
		{
			name:        "register-prefix",
			usage:       "register-prefix <2 characters>",
			description: "Set your personal emote prefix",
			run: func(h *Handler, ctx context.Context, c caller, args string) string {
				prefix, _ := splitFirst(args)
				if prefix == "" {
					return h.usage("register-prefix")
				}
				return h.RegisterPrefix(ctx, c.UserID, prefix)
			},
		},
		{
			name:        "add-emote",
			usage:       "add-emote <name> [content]",
			description: "Save an emote under your prefix",
			run: func(h *Handler, ctx context.Context, c caller, args string) string {
				name, rest := splitFirst(args)
				if name == "" {
					return h.usage("add-emote")
				}
				var content *string
				if rest != "" {
					content = &rest
				}
				return h.AddEmote(ctx, c.UserID, c.DisplayName, name, content)
			},
		},
		{
			name:        "delete-emote",
			usage:       "delete-emote <name>",
			description: "Delete one of your emotes",
			run: func(h *Handler, ctx context.Context, c caller, args string) string {
				name, _ := splitFirst(args)
				if name == "" {
					return h.usage("delete-emote")
				}
				return h.DeleteEmote(ctx, c.UserID, c.DisplayName, name)
			},
		},
		{
			name:        "list-emotes",
			usage:       "list-emotes",
			description: "List your saved emotes",
			run: func(h *Handler, ctx context.Context, c caller, args string) string {
				return h.ListEmotes(c.UserID)
			},
		},
		{
			name:        "emote",
			usage:       "emote <name>",
			description: "Show one of your emotes",
			run: func(h *Handler, ctx context.Context, c caller, args string) string {
				name, _ := splitFirst(args)
				if name == "" {
					return h.usage("emote")
				}
				prefix, err := h.requirePrefix(c.UserID)
				if err != nil {
					return h.describe(err, c, "")
				}
				return h.ShowEmote(c.UserID, prefix, name)
			},
		},
		{
			name:        "help",
			usage:       "help",
			description: "Show this message",
			run: func(h *Handler, ctx context.Context, c caller, args string) string {
				return h.help()
			},
		},
	}
	commandsByName = lo.KeyBy(textCommands, func(c *textCommand) string { return c.name })
}

// Names used by earlier versions of the bot.
var commandAliases = map[string]string{
	"set_custom_prefix":   "register-prefix",
	"set_prefix":          "register-prefix",
	"add_custom_emote":    "add-emote",
	"add_emote":           "add-emote",
	"delete_custom_emote": "delete-emote",
	"delete_emote":        "delete-emote",
	"list_emotes":         "list-emotes",
	"view_emotes":         "list-emotes",
}

func lookupCommand(keyword string) (*textCommand, bool) {
	if canonical, ok := commandAliases[keyword]; ok {
		keyword = canonical
	}
	cmd, ok := commandsByName[keyword]
	return cmd, ok
}

// parseCommand splits "<commandPrefix><keyword> <args>". Keywords are case-sensitive.
func (h *Handler) parseCommand(content string) (*textCommand, string, bool) {
	if h.commandPrefix == "" || !strings.HasPrefix(content, h.commandPrefix) {
		return nil, "", false
	}
	keyword, args := splitFirst(content[len(h.commandPrefix):])
	if keyword == "" {
		return nil, "", false
	}
	cmd, ok := lookupCommand(keyword)
	if !ok {
		return nil, "", false
	}
	return cmd, args, true
}

// splitFirst returns the first whitespace-delimited word of s and the trimmed remainder.
func splitFirst(s string) (string, string) {
	s = strings.TrimSpace(s)
	idx := strings.IndexFunc(s, isSpace)
	if idx < 0 {
		return s, ""
	}
	return s[:idx], strings.TrimSpace(s[idx:])
}

func isSpace(r rune) bool {
	return r == ' ' || r == '\t' || r == '\n' || r == '\r'
}

// requirePrefix is the gate in front of every emote management operation.
func (h *Handler) requirePrefix(userID string) (string, error) {
	prefix, ok := h.prefixes.GetPrefix(userID)
	if !ok || prefix == "" {
		return "", emote.ErrPrefixRequired
	}
	return prefix, nil
}

func (h *Handler) RegisterPrefix(ctx context.Context, userID, prefix string) string {
	err := h.prefixes.SetPrefix(ctx, userID, prefix)
	switch {
	case err == nil:
		return fmt.Sprintf("Your new prefix has been set to `%s`!", prefix)
	case errors.Is(err, emote.ErrInvalidLength):
		return "Your prefix must be exactly 2 characters long. Please choose a different one."
	case errors.Is(err, emote.ErrPrefixTaken):
		return fmt.Sprintf("Sorry, the prefix `%s` is already in use by another user.", prefix)
	default:
		log.Printf("Error setting prefix for user %s: %v", userID, err)
		return persistFailureReply
	}
}

func (h *Handler) AddEmote(ctx context.Context, userID, displayName, name string, content *string) string {
	c := caller{UserID: userID, DisplayName: displayName}
	prefix, err := h.requirePrefix(userID)
	if err != nil {
		return h.describe(err, c, "")
	}

	e, err := h.emotes.AddEmote(ctx, userID, prefix, name, content)
	if err != nil {
		return h.describe(err, c, e.Name)
	}
	return fmt.Sprintf("Emote `%s` added for %s!", e.Name, displayName)
}

func (h *Handler) DeleteEmote(ctx context.Context, userID, displayName, name string) string {
	c := caller{UserID: userID, DisplayName: displayName}
	prefix, err := h.requirePrefix(userID)
	if err != nil {
		return h.describe(err, c, "")
	}

	if h.emotes.Count(userID) == 0 {
		return h.describe(emote.ErrEmptyCollection, c, "")
	}

	e, err := h.emotes.DeleteEmote(ctx, userID, prefix, name)
	if err != nil {
		return h.describe(err, c, e.Name)
	}
	return fmt.Sprintf("Emote `%s` deleted for %s.", e.Name, displayName)
}

func (h *Handler) ListEmotes(userID string) string {
	prefix, err := h.requirePrefix(userID)
	if err != nil {
		return h.describe(err, caller{UserID: userID}, "")
	}

	if h.emotes.Count(userID) == 0 {
		return h.describe(emote.ErrEmptyCollection, caller{UserID: userID}, "")
	}

	list := h.emotes.ListForUser(userID, prefix)
	if len(list) == 0 {
		return "You have no saved emotes under your prefix."
	}

	names := lo.Map(list, func(e emote.Emote, _ int) string { return e.Name })
	return "Your saved emotes:\n```\n" + strings.Join(names, "\n") + "\n```"
}

// describe turns a store error into the reply shown to the user.
func (h *Handler) describe(err error, c caller, name string) string {
	switch {
	case errors.Is(err, emote.ErrPrefixRequired):
		return fmt.Sprintf("You must set a prefix using `%sregister-prefix` before managing emotes.", h.commandPrefix)
	case errors.Is(err, emote.ErrAlreadyExists):
		return fmt.Sprintf("Emote `%s` is already saved for %s.", name, c.DisplayName)
	case errors.Is(err, emote.ErrNotFound):
		return fmt.Sprintf("Emote `%s` not found in your saved emotes.", name)
	case errors.Is(err, emote.ErrEmptyCollection):
		return "You have no saved emotes."
	default:
		log.Printf("Error updating emotes for user %s: %v", c.UserID, err)
		return persistFailureReply
	}
}

func (h *Handler) usage(name string) string {
	cmd, _ := lookupCommand(name)
	return fmt.Sprintf("Usage: `%s%s`", h.commandPrefix, cmd.usage)
}

func (h *Handler) help() string {
	lines := lo.Map(textCommands, func(c *textCommand, _ int) string {
		return fmt.Sprintf("`%s%s` - %s", h.commandPrefix, c.usage, c.description)
	})
	aliases := lo.Keys(commandAliases)
	sort.Strings(aliases)
	lines = append(lines, "", "Type your prefix followed by an emote name to post it.")
	lines = append(lines, "Also accepted: "+strings.Join(aliases, ", "))
	return strings.Join(lines, "\n")
}
