package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/adverto/adboard-backend/internal/data/repos"
	types "github.com/adverto/adboard-backend/internal/domain"
	"github.com/adverto/adboard-backend/internal/platform/logger"
	"github.com/adverto/adboard-backend/internal/platform/sendgrid"
)

// Notifier sends best-effort user notifications. Every method is fire and
// forget: delivery failures are logged and never surfaced to the caller.
type Notifier interface {
	CategoryRestored(ctx context.Context, category *types.Category, version *types.CategoryVersion)
	AdSuspended(ctx context.Context, ad *types.Advertisement, reason string)
}

type emailNotifier struct {
	log      *logger.Logger
	mail     sendgrid.Client
	userRepo repos.UserRepo
}

func NewEmailNotifier(baseLog *logger.Logger, mail sendgrid.Client, userRepo repos.UserRepo) Notifier {
	return &emailNotifier{
		log:      baseLog.With("service", "EmailNotifier"),
		mail:     mail,
		userRepo: userRepo,
	}
}

func (n *emailNotifier) CategoryRestored(ctx context.Context, category *types.Category, version *types.CategoryVersion) {
	if n == nil || n.mail == nil || category == nil || version == nil {
		return
	}
	go n.deliver(category.CreatorID,
		"Category restored",
		fmt.Sprintf("The category %q was restored and is live again as version %d.",
			version.Name, version.VersionNumber))
}

func (n *emailNotifier) AdSuspended(ctx context.Context, ad *types.Advertisement, reason string) {
	if n == nil || n.mail == nil || ad == nil {
		return
	}
	go n.deliver(ad.OwnerID,
		"Your advertisement was suspended",
		fmt.Sprintf("Your advertisement %q was suspended.\n\nReason: %s", ad.Title, reason))
}

func (n *emailNotifier) deliver(userID uuid.UUID, subject, body string) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	u, err := n.userRepo.GetByID(ctx, nil, userID)
	if err != nil || u == nil || u.Email == "" {
		n.log.Warn("notification recipient lookup failed", "user_id", userID, "error", err)
		return
	}
	_, err = n.mail.Send(ctx, sendgrid.SendEmailRequest{
		To:      []sendgrid.EmailAddress{{Email: u.Email, Name: u.FirstName + " " + u.LastName}},
		Subject: subject,
		Text:    body,
	})
	if err != nil {
		n.log.Warn("notification delivery failed", "user_id", userID, "subject", subject, "error", err)
		return
	}
	n.log.Debug("notification sent", "user_id", userID, "subject", subject)
}

// noopNotifier keeps the notification path optional when SendGrid is not
// configured.
type noopNotifier struct{}

func NewNoopNotifier() Notifier { return noopNotifier{} }

func (noopNotifier) CategoryRestored(context.Context, *types.Category, *types.CategoryVersion) {}
func (noopNotifier) AdSuspended(context.Context, *types.Advertisement, string)                 {}
