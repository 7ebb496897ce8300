package assistant

import (
	"regexp"
	"strings"

	"wayfare/apperr"
)

// Conversation roles.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

var whitespaceRuns = regexp.MustCompile(`\s+`)

type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Schema names the structured shape the model must answer with.
type Schema struct {
	Name       string
	Definition map[string]any
}

// Conversation is the ordered turn sequence for one generation run, bound to
// the response schema of the next ask. It lives in memory only; durable
// progress is checkpointed on the request document by the caller.
type Conversation struct {
	Schema   Schema
	Messages []Message
}

func NewConversation(schema Schema) *Conversation {
	return &Conversation{Schema: schema}
}

// Add normalizes content and appends a turn.
func (c *Conversation) Add(role, content string) {
	c.Messages = append(c.Messages, Message{Role: role, Content: Encode(content)})
}

// AddFrom appends a prebuilt turn, failing when role or content is absent.
func (c *Conversation) AddFrom(element map[string]string) error {
	role, okRole := element["role"]
	content, okContent := element["content"]
	if !okRole || !okContent {
		return apperr.ErrMissingField
	}
	c.Messages = append(c.Messages, Message{Role: role, Content: Encode(content)})
	return nil
}

// NewMessage builds a normalized turn without attaching it to a conversation.
func NewMessage(role, content string) map[string]string {
	return map[string]string{"role": role, "content": Encode(content)}
}

// Encode collapses whitespace runs to single spaces and trims the ends, so
// multi-line prompt literals reach the model as one clean line.
func Encode(content string) string {
	return strings.TrimSpace(whitespaceRuns.ReplaceAllString(content, " "))
}
