package notifications

import (
	"context"
	"fmt"
	"time"

	"clubmatch/internal/domain/clubs"
	"clubmatch/internal/domain/conflicts"
	"clubmatch/internal/domain/eventreviews"
	"clubmatch/internal/domain/reviewtokens"
	"clubmatch/internal/mailer"

	"go.uber.org/zap"
)

// EmailNotifier fans review lifecycle events out to club admins over email.
type EmailNotifier struct {
	mailer         mailer.Client
	clubs          clubs.Store
	platformEmails []string
	frontendURL    string
	logger         *zap.SugaredLogger
	sendTimeout    time.Duration
}

func NewEmailNotifier(client mailer.Client, clubStore clubs.Store, platformEmails []string, frontendURL string, logger *zap.SugaredLogger) *EmailNotifier {
	return &EmailNotifier{
		mailer:         client,
		clubs:          clubStore,
		platformEmails: platformEmails,
		frontendURL:    frontendURL,
		logger:         logger,
		sendTimeout:    30 * time.Second,
	}
}

func (n *EmailNotifier) ReviewInvited(ctx context.Context, token *reviewtokens.Token, plainToken string) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), n.sendTimeout)
		defer cancel()

		targetName, err := n.clubs.ClubName(ctx, token.TargetClubID)
		if err != nil {
			n.logger.Errorw("looking up club name", "club_id", token.TargetClubID, "error", err)
			return
		}
		emails, err := n.clubs.AdminEmails(ctx, token.ReviewerClubID)
		if err != nil {
			n.logger.Errorw("looking up club admin emails", "club_id", token.ReviewerClubID, "error", err)
			return
		}

		data := map[string]any{
			"Username":       "club admin",
			"TargetClubName": targetName,
			"ReviewURL":      fmt.Sprintf("%s/review/%s", n.frontendURL, plainToken),
			"ExpiresAt":      token.ExpiresAt.Format("2 Jan 2006"),
		}
		n.deliver(mailer.ReviewInviteTemplate, emails, data)
	}()
}

func (n *EmailNotifier) ReviewPublished(ctx context.Context, review *eventreviews.Review) {
	data := map[string]any{
		"Username":         "club admin",
		"ReviewerClubName": review.ReviewerClubName,
		"Rating":           review.Rating,
		"Content":          deref(review.Content),
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), n.sendTimeout)
		defer cancel()

		emails, err := n.clubs.AdminEmails(ctx, review.TargetClubID)
		if err != nil {
			n.logger.Errorw("looking up club admin emails", "club_id", review.TargetClubID, "error", err)
			return
		}
		n.deliver(mailer.ReviewPublishedTemplate, emails, data)
	}()
}

func (n *EmailNotifier) DisputeOpened(ctx context.Context, review *eventreviews.Review, conflict *conflicts.Conflict) {
	data := map[string]any{
		"Username":   "club admin",
		"EventDate":  review.CreatedAt.Format("2 Jan 2006"),
		"Rating":     review.Rating,
		"ConflictID": conflict.ID,
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), n.sendTimeout)
		defer cancel()

		recipients := append([]string{}, n.platformEmails...)
		for _, clubID := range []int64{review.ReviewerClubID, review.TargetClubID} {
			emails, err := n.clubs.AdminEmails(ctx, clubID)
			if err != nil {
				n.logger.Errorw("looking up club admin emails", "club_id", clubID, "error", err)
				continue
			}
			recipients = append(recipients, emails...)
		}
		n.deliver(mailer.DisputeOpenedTemplate, recipients, data)
	}()
}

func (n *EmailNotifier) deliver(templateFile string, emails []string, data map[string]any) {
	for _, email := range emails {
		if _, err := n.mailer.Send(templateFile, data["Username"].(string), email, data); err != nil {
			n.logger.Errorw("sending notification email", "template", templateFile, "email", email, "error", err)
		}
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
