package bot

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/bwmarrin/discordgo"
	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func interaction(name string, user *discordgo.User, opts map[string]string) *discordgo.InteractionCreate {
	var options []*discordgo.ApplicationCommandInteractionDataOption
	for k, v := range opts {
		options = append(options, &discordgo.ApplicationCommandInteractionDataOption{
			Name:  k,
			Type:  discordgo.ApplicationCommandOptionString,
			Value: v,
		})
	}
	return &discordgo.InteractionCreate{
		Interaction: &discordgo.Interaction{
			Type: discordgo.InteractionApplicationCommand,
			Data: discordgo.ApplicationCommandInteractionData{
				Name:    name,
				Options: options,
			},
			Member: &discordgo.Member{User: user},
		},
	}
}

func (b *testBot) slash(name, userID string, opts map[string]string) string {
	s := &MockSession{}
	b.handler.HandleInteraction(s, interaction(name, &discordgo.User{ID: userID, Username: "user_" + userID}, opts))
	if len(s.Responses) == 0 {
		return ""
	}
	return s.Responses[0].Data.Content
}

func TestSlashCommands_Flow(t *testing.T) {
	b := newTestBot(t)

	assert.Contains(t, b.slash("add-emote", "A", map[string]string{"name": "smile", "content": "😀"}), "You must set a prefix")
	assert.Equal(t, "Your new prefix has been set to `ab`!", b.slash("register-prefix", "A", map[string]string{"prefix": "ab"}))
	assert.Equal(t, "Emote `absmile` added for user_A!", b.slash("add-emote", "A", map[string]string{"name": "smile", "content": "😀"}))
	assert.Equal(t, "Emote `abblank` added for user_A!", b.slash("add-emote", "A", map[string]string{"name": "blank"}))
	assert.Equal(t, "Your saved emotes:\n```\nabsmile\nabblank\n```", b.slash("list-emotes", "A", nil))
	assert.Equal(t, "Emote `absmile` deleted for user_A.", b.slash("delete-emote", "A", map[string]string{"name": "smile"}))

	e, ok := b.emotes.Lookup("A", "abblank")
	require.True(t, ok)
	assert.Nil(t, e.Code)
}

func TestSlashCommands_Ephemeral(t *testing.T) {
	b := newTestBot(t)
	s := &MockSession{}

	b.handler.HandleInteraction(s, interaction("list-emotes", &discordgo.User{ID: "A"}, nil))
	require.Len(t, s.Responses, 1)
	assert.Equal(t, discordgo.InteractionResponseChannelMessageWithSource, s.Responses[0].Type)
	assert.Equal(t, discordgo.MessageFlagsEphemeral, s.Responses[0].Data.Flags)
}

func TestSlashCommands_UnknownAndNonCommand(t *testing.T) {
	b := newTestBot(t)
	s := &MockSession{}

	b.handler.HandleInteraction(s, interaction("nope", &discordgo.User{ID: "A"}, nil))
	assert.Empty(t, s.Responses)

	ping := &discordgo.InteractionCreate{Interaction: &discordgo.Interaction{Type: discordgo.InteractionPing}}
	b.handler.HandleInteraction(s, ping)
	assert.Empty(t, s.Responses)
}

func TestSlashCommandsMatchHandlers(t *testing.T) {
	for _, cmd := range SlashCommands {
		_, ok := SlashCommandHandlers[cmd.Name]
		assert.True(t, ok, "no handler for /%s", cmd.Name)
	}
	assert.Len(t, SlashCommandHandlers, len(SlashCommands))
}

func TestGetUserFromInteraction(t *testing.T) {
	t.Run("Guild member with nick", func(t *testing.T) {
		i := &discordgo.InteractionCreate{Interaction: &discordgo.Interaction{
			Member: &discordgo.Member{Nick: "Nick", User: &discordgo.User{ID: "1", Username: "user"}},
		}}
		id, name, err := getUserFromInteraction(i)
		require.NoError(t, err)
		assert.Equal(t, "1", id)
		assert.Equal(t, "Nick", name)
	})

	t.Run("DM user with global name", func(t *testing.T) {
		i := &discordgo.InteractionCreate{Interaction: &discordgo.Interaction{
			User: &discordgo.User{ID: "2", Username: "user", GlobalName: "Global"},
		}}
		id, name, err := getUserFromInteraction(i)
		require.NoError(t, err)
		assert.Equal(t, "2", id)
		assert.Equal(t, "Global", name)
	})

	t.Run("No user", func(t *testing.T) {
		_, _, err := getUserFromInteraction(&discordgo.InteractionCreate{Interaction: &discordgo.Interaction{}})
		assert.Error(t, err)
	})
}

func addManyEmotes(t *testing.T, b *testBot, userID, prefix string, n int) []string {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, b.prefixes.SetPrefix(ctx, userID, prefix))

	names := make([]string, 0, n)
	for i := 0; i < n; i++ {
		e, err := b.emotes.AddEmote(ctx, userID, prefix, fmt.Sprintf("emote%03d", i), lo.ToPtr("x"))
		require.NoError(t, err)
		names = append(names, e.Name)
	}
	return names
}

func TestSlashCommands_LongListUsesFollowups(t *testing.T) {
	b := newTestBot(t)
	names := addManyEmotes(t, b, "A", "ab", 300)

	s := &MockSession{}
	b.handler.HandleInteraction(s, interaction("list-emotes", &discordgo.User{ID: "A"}, nil))

	require.Len(t, s.Responses, 1)
	require.NotEmpty(t, s.Followups)

	all := []string{s.Responses[0].Data.Content}
	for _, f := range s.Followups {
		assert.Equal(t, discordgo.MessageFlagsEphemeral, f.Flags)
		all = append(all, f.Content)
	}

	for _, part := range all {
		assert.LessOrEqual(t, utf8.RuneCountInString(part), maxMessageLength)
		assert.Equal(t, 0, strings.Count(part, "```")%2, "unbalanced code fence in %q", part)
	}

	joined := strings.Join(all, "\n")
	for _, name := range names {
		assert.Contains(t, joined, name)
	}
}
