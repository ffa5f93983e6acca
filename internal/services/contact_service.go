package services

import (
	"context"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"
	"unicode"

	"github.com/sidharth07/verbiforge-sub000/internal/models"
	"github.com/sidharth07/verbiforge-sub000/internal/notify"
)

const (
	maxContactMessage  = 5000
	defaultContactPage = 50
)

type ContactRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Message string `json:"message"`
}

type ContactService struct {
	store    ContactStore
	notifier notify.Notifier
	log      *slog.Logger
}

func NewContactService(store ContactStore, notifier notify.Notifier, log *slog.Logger) *ContactService {
	return &ContactService{store: store, notifier: notifier, log: log}
}

// Submit records a public contact-form message and forwards it to the
// operator. A failed notification does not fail the submission.
func (s *ContactService) Submit(ctx context.Context, req ContactRequest) (*models.ContactSubmission, error) {
	name := strings.TrimSpace(req.Name)
	email := strings.TrimSpace(req.Email)
	message := strings.TrimSpace(req.Message)

	if name == "" {
		return nil, invalidInput("name is required")
	}
	if strings.ContainsFunc(name, unicode.IsControl) {
		return nil, invalidInput("name must not contain control characters")
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, invalidInput("a valid email address is required")
	}
	if message == "" {
		return nil, invalidInput("message is required")
	}
	if len(message) > maxContactMessage {
		return nil, invalidInput("message must be at most %d characters", maxContactMessage)
	}

	submission := &models.ContactSubmission{Name: name, Email: email, Message: message}
	if err := s.store.Create(ctx, submission); err != nil {
		return nil, fmt.Errorf("store contact submission: %w", err)
	}

	res := s.notifier.Notify(ctx, notify.Event{
		Kind: notify.EventContactReceived,
		Data: map[string]string{
			"name":    name,
			"email":   email,
			"message": message,
		},
	})
	if !res.Success {
		s.log.WarnContext(ctx, "contact notification failed", "error", res.Err)
	}
	return submission, nil
}

// Recent lists the latest submissions for operators.
func (s *ContactService) Recent(ctx context.Context, actor models.Actor, limit int) ([]models.ContactSubmission, error) {
	if !actor.IsAdmin() {
		return nil, forbidden("admin privileges required")
	}
	if limit <= 0 || limit > defaultContactPage {
		limit = defaultContactPage
	}
	submissions, err := s.store.Recent(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("list contact submissions: %w", err)
	}
	return submissions, nil
}
