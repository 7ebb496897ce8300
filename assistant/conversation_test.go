package assistant

import (
	"testing"

	"wayfare/apperr"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddNormalizesWhitespace(t *testing.T) {
	conv := NewConversation(ItinerarySchema())
	conv.Add(RoleUser, "  In May \n\t I'm visiting   Paris  solo.  ")

	require.Len(t, conv.Messages, 1)
	assert.Equal(t, RoleUser, conv.Messages[0].Role)
	assert.Equal(t, "In May I'm visiting Paris solo.", conv.Messages[0].Content)
}

func TestAddFromRequiresRoleAndContent(t *testing.T) {
	conv := NewConversation(DocsSchema())

	err := conv.AddFrom(map[string]string{"content": "hello"})
	assert.ErrorIs(t, err, apperr.ErrMissingField)

	err = conv.AddFrom(map[string]string{"role": RoleSystem})
	assert.ErrorIs(t, err, apperr.ErrMissingField)

	err = conv.AddFrom(map[string]string{"role": RoleSystem, "content": "be\n helpful"})
	require.NoError(t, err)
	require.Len(t, conv.Messages, 1)
	assert.Equal(t, "be helpful", conv.Messages[0].Content)
}

func TestMessagesKeepOrder(t *testing.T) {
	conv := NewConversation(ItinerarySchema())
	conv.Add(RoleSystem, "a")
	conv.Add(RoleUser, "b")
	conv.Add(RoleAssistant, "c")
	conv.Add(RoleUser, "d")

	roles := make([]string, 0, len(conv.Messages))
	for _, m := range conv.Messages {
		roles = append(roles, m.Role)
	}
	assert.Equal(t, []string{RoleSystem, RoleUser, RoleAssistant, RoleUser}, roles)
}
