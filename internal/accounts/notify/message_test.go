package notify

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestVerificationMessage(t *testing.T) {
	t.Parallel()

	t.Run("with origin links to the verify page", func(t *testing.T) {
		msg, err := VerificationMessage("a@x.com", "abc123", "https://app.example.com")
		require.NoError(t, err)
		require.Equal(t, "a@x.com", msg.To)
		require.Equal(t, SubjectVerifyEmail, msg.Subject)
		require.Contains(t, msg.HTML, `href="https://app.example.com/account/verify-email?token=abc123"`)
		require.Contains(t, msg.HTML, "Thanks for registering!")
	})

	t.Run("without origin quotes the token", func(t *testing.T) {
		msg, err := VerificationMessage("a@x.com", "abc123", "")
		require.NoError(t, err)
		require.Contains(t, msg.HTML, "<code>abc123</code>")
		require.Contains(t, msg.HTML, "<code>/account/verify-email</code>")
		require.NotContains(t, msg.HTML, "href=")
	})
}

func TestAlreadyRegisteredMessage(t *testing.T) {
	t.Parallel()

	msg, err := AlreadyRegisteredMessage("a@x.com", "https://app.example.com")
	require.NoError(t, err)
	require.Equal(t, SubjectAlreadyRegistered, msg.Subject)
	require.Contains(t, msg.HTML, "<strong>a@x.com</strong>")
	require.Contains(t, msg.HTML, `href="https://app.example.com/account/forgot-password"`)

	msg, err = AlreadyRegisteredMessage("a@x.com", "")
	require.NoError(t, err)
	require.Contains(t, msg.HTML, "<code>/account/forgot-password</code>")
}

func TestPasswordResetMessage(t *testing.T) {
	t.Parallel()

	msg, err := PasswordResetMessage("a@x.com", "tok", "https://app.example.com")
	require.NoError(t, err)
	require.Equal(t, SubjectResetPassword, msg.Subject)
	require.Contains(t, msg.HTML, "valid for 1 day")
	require.Contains(t, msg.HTML, `href="https://app.example.com/account/reset-password?token=tok"`)

	msg, err = PasswordResetMessage("a@x.com", "tok", "")
	require.NoError(t, err)
	require.Contains(t, msg.HTML, "<code>tok</code>")
}

func TestMessagesEscapeInput(t *testing.T) {
	t.Parallel()

	msg, err := AlreadyRegisteredMessage("<script>@x.com", "javascript:alert(1)")
	require.NoError(t, err)
	require.NotContains(t, msg.HTML, "<script>")
	require.NotContains(t, msg.HTML, "javascript:alert")
}
