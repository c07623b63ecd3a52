package service

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"

	dom "Newsroom/internal/domain"
	"Newsroom/internal/mailer"
	"Newsroom/internal/repo"
	"Newsroom/internal/utils"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

var (
	ErrTokenNotFound     = errors.New("confirmation token not found")
	ErrInvalidSubscriber = errors.New("name and a valid email are required")
	ErrAlreadySubscribed = errors.New("email already subscribed")
)

// ConfirmedRecipientsInvalidator is notified when the confirmed set changes.
type ConfirmedRecipientsInvalidator interface {
	Invalidate(ctx context.Context) error
}

// SubscriptionService handles double opt-in: subscribe creates a pending
// record and mails the confirmation link; Confirm redeems the token.
type SubscriptionService struct {
	repo    repo.SubscriberRepo
	mailer  mailer.Mailer
	cache   ConfirmedRecipientsInvalidator
	baseURL string
}

// NewSubscriptionService creates a SubscriptionService. cache may be nil.
func NewSubscriptionService(r repo.SubscriberRepo, m mailer.Mailer, cache ConfirmedRecipientsInvalidator, baseURL string) *SubscriptionService {
	return &SubscriptionService{repo: r, mailer: m, cache: cache, baseURL: strings.TrimRight(baseURL, "/")}
}

// Subscribe stores a pending subscriber and sends the confirmation email.
func (s *SubscriptionService) Subscribe(ctx context.Context, name, email string) (dom.Subscriber, error) {
	name = strings.TrimSpace(name)
	email = strings.TrimSpace(email)
	if name == "" {
		return dom.Subscriber{}, ErrInvalidSubscriber
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return dom.Subscriber{}, ErrInvalidSubscriber
	}

	sub, err := s.repo.Create(ctx, dom.Subscriber{
		ID:                uuid.NewString(),
		Email:             email,
		Name:              name,
		Status:            dom.StatusPendingConfirmation,
		ConfirmationToken: uuid.NewString(),
	})
	if err != nil {
		if utils.IsPGUniqueViolation(err) {
			return dom.Subscriber{}, ErrAlreadySubscribed
		}
		return dom.Subscriber{}, fmt.Errorf("create subscriber: %w", err)
	}

	link := s.baseURL + "/subscriptions/confirm?token=" + sub.ConfirmationToken
	text := fmt.Sprintf("Welcome to our newsletter!\nVisit %s to confirm your subscription.", link)
	html := fmt.Sprintf(`Welcome to our newsletter!<br/>Click <a href="%s">here</a> to confirm your subscription.`, link)
	if err := s.mailer.Send(ctx, sub.Email, "Welcome!", text, html); err != nil {
		return dom.Subscriber{}, fmt.Errorf("confirmation email: %w", err)
	}
	return sub, nil
}

// Confirm redeems a confirmation token. Redeeming an already-confirmed
// subscriber's token is a success with no further writes.
func (s *SubscriptionService) Confirm(ctx context.Context, token string) error {
	sub, err := s.repo.GetByToken(ctx, token)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrTokenNotFound
		}
		return fmt.Errorf("lookup token: %w", err)
	}
	if sub.Status == dom.StatusConfirmed {
		return nil
	}
	if err := s.repo.Confirm(ctx, token); err != nil {
		return fmt.Errorf("confirm subscriber: %w", err)
	}
	if s.cache != nil {
		_ = s.cache.Invalidate(ctx)
	}
	return nil
}
