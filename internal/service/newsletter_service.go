package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/mail"
	"strings"

	dom "Newsroom/internal/domain"
	"Newsroom/internal/mailer"
	"Newsroom/internal/repo"

	"golang.org/x/sync/singleflight"
)

// ErrEmptyIssue: an issue needs a title and at least one content body.
var ErrEmptyIssue = errors.New("issue title and content are required")

// DeliveryReport counts the outcome of one fan-out. Attempted = Delivered + Failed;
// Skipped counts recipients whose stored address did not parse.
type DeliveryReport struct {
	Attempted int
	Delivered int
	Failed    int
	Skipped   int
}

// ConfirmedRecipientsCache holds the confirmed email list between publishes.
// Get returns nil on a miss; a cached empty list comes back as a non-nil
// empty slice.
type ConfirmedRecipientsCache interface {
	Get(ctx context.Context) ([]string, error)
	Set(ctx context.Context, emails []string) error
}

// NewsletterService fans an issue out to confirmed subscribers, one send per
// recipient, best effort. A failed or skipped recipient never aborts the batch.
type NewsletterService struct {
	repo   repo.SubscriberRepo
	cache  ConfirmedRecipientsCache
	mailer mailer.Mailer
	sf     singleflight.Group
}

// NewNewsletterService creates a NewsletterService. If c is nil, caching is disabled.
func NewNewsletterService(r repo.SubscriberRepo, c ConfirmedRecipientsCache, m mailer.Mailer) *NewsletterService {
	return &NewsletterService{repo: r, cache: c, mailer: m}
}

// Publish delivers issue to every confirmed subscriber. It fails hard only
// when the recipient list itself cannot be fetched; individual delivery
// failures are logged and tallied in the report.
func (s *NewsletterService) Publish(ctx context.Context, issue dom.Issue) (DeliveryReport, error) {
	if strings.TrimSpace(issue.Title) == "" {
		return DeliveryReport{}, ErrEmptyIssue
	}
	if strings.TrimSpace(issue.TextContent) == "" && strings.TrimSpace(issue.HTMLContent) == "" {
		return DeliveryReport{}, ErrEmptyIssue
	}

	emails, err := s.confirmedEmails(ctx)
	if err != nil {
		return DeliveryReport{}, fmt.Errorf("list confirmed subscribers: %w", err)
	}

	var report DeliveryReport
	for _, email := range emails {
		if _, err := mail.ParseAddress(email); err != nil {
			log.Printf("skipping subscriber with invalid stored email: %v", err)
			report.Skipped++
			continue
		}
		report.Attempted++
		if err := s.mailer.Send(ctx, email, issue.Title, issue.TextContent, issue.HTMLContent); err != nil {
			log.Printf("newsletter delivery failed: %v", err)
			report.Failed++
			continue
		}
		report.Delivered++
	}
	return report, nil
}

func (s *NewsletterService) confirmedEmails(ctx context.Context) ([]string, error) {
	if s.cache == nil {
		return s.repo.ListConfirmedEmails(ctx)
	}
	v, err, _ := s.sf.Do("confirmed_emails", func() (interface{}, error) {
		if emails, err := s.cache.Get(ctx); err == nil && emails != nil {
			return emails, nil
		}
		emails, err := s.repo.ListConfirmedEmails(ctx)
		if err != nil {
			return nil, err
		}
		_ = s.cache.Set(ctx, emails)
		return emails, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]string), nil
}
