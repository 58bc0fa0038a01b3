package mailer

import "embed"

const (
	FromName                = "ClubMatch"
	maxRetires              = 3
	ReviewInviteTemplate    = "review_invite.tmpl"
	ReviewPublishedTemplate = "review_published.tmpl"
	DisputeOpenedTemplate   = "dispute_opened.tmpl"
)

//go:embed "templates"
var FS embed.FS

type Client interface {
	Send(templateFile, username, email string, data any) (int, error)
}
