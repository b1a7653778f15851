// internal/app/system/mailer/notifier.go
package mailer

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/dalemusser/papilloncast/internal/domain/models"
	"go.uber.org/zap"
)

const sendTimeout = 30 * time.Second

// Notifier emails people about account state changes. It satisfies
// access.Observer. Sends run in their own goroutine and failures are only
// logged.
type Notifier struct {
	sender      Sender
	appName     string
	baseURL     string
	notifyEmail string
	log         *zap.Logger
	wg          sync.WaitGroup
}

// NewNotifier creates a Notifier. An empty notifyEmail disables signup
// notifications to the admin.
func NewNotifier(sender Sender, appName, baseURL, notifyEmail string, log *zap.Logger) *Notifier {
	return &Notifier{
		sender:      sender,
		appName:     appName,
		baseURL:     strings.TrimRight(baseURL, "/"),
		notifyEmail: notifyEmail,
		log:         log,
	}
}

// Joined tells the admin inbox about a new waitlist signup.
func (n *Notifier) Joined(email string) {
	if n.notifyEmail == "" {
		return
	}
	subject, text, html := WaitlistSignupEmail(WaitlistSignupEmailData{
		AppName:  n.appName,
		Email:    email,
		AdminURL: n.baseURL + "/admin",
	})
	n.send(Email{To: n.notifyEmail, Subject: subject, TextBody: text, HTMLBody: html})
}

// StatusChanged tells a user their account became active.
func (n *Notifier) StatusChanged(actor, target, from, to string) {
	if to != models.StatusActive || from == models.StatusActive {
		return
	}
	subject, text, html := AccessGrantedEmail(AccessGrantedEmailData{
		AppName:   n.appName,
		SignInURL: n.baseURL + "/auth/signin",
	})
	n.send(Email{To: target, Subject: subject, TextBody: text, HTMLBody: html})
}

// Wait blocks until in-flight sends finish. Shutdown calls it.
func (n *Notifier) Wait() {
	n.wg.Wait()
}

func (n *Notifier) send(email Email) {
	n.wg.Add(1)
	go func() {
		defer n.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), sendTimeout)
		defer cancel()
		if err := n.sender.Send(ctx, email); err != nil {
			n.log.Warn("notification not sent",
				zap.String("to", email.To),
				zap.String("subject", email.Subject),
				zap.Error(err))
		}
	}()
}
