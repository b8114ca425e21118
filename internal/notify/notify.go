// Package notify holds the completion-side notifications the server
// wires into the provisioning hook. Sends are soft-fail: a finished
// run is never affected by a notification error.
package notify

import (
	"context"

	"github.com/plantit/plantit/internal/domain/types"
	"github.com/plantit/plantit/internal/observability/logger"
	"github.com/plantit/plantit/internal/provision"
)

// Sender envía un email con contenido HTML y texto plano.
type Sender interface {
	Send(to, subject, htmlBody, textBody string) error
}

// WelcomeHook builds a provision.Hook that sends a welcome email to
// newly provisioned users. A nil sender yields a hook that only logs.
func WelcomeHook(sender Sender) provision.Hook {
	return func(ctx context.Context, id types.UserIdentity) {
		log := logger.From(ctx).With(
			logger.Component("notify.welcome"),
			logger.UserID(id.UserID),
		)
		if sender == nil {
			log.Debug("no mail sender configured, skipping welcome email")
			return
		}
		err := sender.Send(
			id.Email,
			"Welcome to Plantit",
			welcomeHTML,
			welcomeText,
		)
		if err != nil {
			// soft fail: the account is provisioned either way
			log.Warn("welcome email failed (soft)", logger.Err(err))
			return
		}
		log.Debug("welcome email sent")
	}
}

const welcomeText = `Welcome to Plantit!

Your account is ready. Open the app to browse cultivation guides for
your plants and states.`

const welcomeHTML = `<p>Welcome to <strong>Plantit</strong>!</p>
<p>Your account is ready. Open the app to browse cultivation guides
for your plants and states.</p>`
