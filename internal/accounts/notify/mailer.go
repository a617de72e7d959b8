package notify

import "context"

// Mailer renders the account emails and passes them to a Sender.
type Mailer struct {
	Sender Sender
}

func NewMailer(sender Sender) *Mailer {
	return &Mailer{Sender: sender}
}

func (m *Mailer) SendVerification(ctx context.Context, to, token, origin string) error {
	msg, err := VerificationMessage(to, token, origin)
	if err != nil {
		return err
	}
	return m.Sender.Send(ctx, msg)
}

func (m *Mailer) SendAlreadyRegistered(ctx context.Context, to, origin string) error {
	msg, err := AlreadyRegisteredMessage(to, origin)
	if err != nil {
		return err
	}
	return m.Sender.Send(ctx, msg)
}

func (m *Mailer) SendPasswordReset(ctx context.Context, to, token, origin string) error {
	msg, err := PasswordResetMessage(to, token, origin)
	if err != nil {
		return err
	}
	return m.Sender.Send(ctx, msg)
}
