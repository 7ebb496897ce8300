package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeMailer struct {
	to, subject, body string
	calls             int
}

func (f *fakeMailer) Send(to, subject, body string) error {
	f.to, f.subject, f.body = to, subject, body
	f.calls++
	return nil
}

func TestSignupConfirmationMail(t *testing.T) {
	t.Setenv("PUBLIC_BASE_URL", "https://wayfare.example")

	fm := &fakeMailer{}
	old := Mail
	Mail = fm
	defer func() { Mail = old }()

	sendSignupConfirmation("ada@example.com")

	require.Equal(t, 1, fm.calls)
	assert.Equal(t, "ada@example.com", fm.to)
	assert.Equal(t, "Signup confirmation!", fm.subject)
	assert.Contains(t, fm.body, "https://wayfare.example/profile")
	assert.Contains(t, fm.body, "Your registration has been confirmed!")
}
