package bot

import (
	"errors"
	"testing"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockStatus struct {
	updates []discordgo.UpdateStatusData
	err     error
}

func (m *mockStatus) UpdateStatusComplex(usd discordgo.UpdateStatusData) error {
	m.updates = append(m.updates, usd)
	return m.err
}

func TestUpdateStatus(t *testing.T) {
	h := NewHandler(nil, nil, "?")
	s := &mockStatus{}

	h.UpdateStatus(s)
	require.Len(t, s.updates, 1)
	require.Len(t, s.updates[0].Activities, 1)
	assert.Equal(t, "?help for emote commands", s.updates[0].Activities[0].State)
	assert.Equal(t, discordgo.ActivityTypeCustom, s.updates[0].Activities[0].Type)

	// Errors are logged, not returned
	s.err = errors.New("not connected")
	h.UpdateStatus(s)
	assert.Len(t, s.updates, 2)
}
