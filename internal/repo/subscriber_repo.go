package repo

import (
	"context"

	dom "Newsroom/internal/domain"

	"github.com/jackc/pgx/v5/pgxpool"
)

// SubscriberRepo provides subscriber persistence.
type SubscriberRepo interface {
	Create(ctx context.Context, s dom.Subscriber) (dom.Subscriber, error)
	GetByToken(ctx context.Context, token string) (dom.Subscriber, error)
	// Confirm flips a pending subscriber to confirmed. The WHERE clause keeps
	// concurrent redemptions of the same token down to a single row write.
	Confirm(ctx context.Context, token string) error
	// ListConfirmedEmails returns the addresses of confirmed subscribers only.
	ListConfirmedEmails(ctx context.Context) ([]string, error)
}

// PGSubscriberRepo implements SubscriberRepo with Postgres.
type PGSubscriberRepo struct {
	db *pgxpool.Pool
}

// NewPGSubscriberRepo returns a new PGSubscriberRepo.
func NewPGSubscriberRepo(db *pgxpool.Pool) *PGSubscriberRepo {
	return &PGSubscriberRepo{db: db}
}

func (r *PGSubscriberRepo) Create(ctx context.Context, s dom.Subscriber) (dom.Subscriber, error) {
	query := `
		INSERT INTO subscriptions (id, email, name, status, confirmation_token)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, email, name, status, confirmation_token, subscribed_at`
	var out dom.Subscriber
	err := r.db.QueryRow(ctx, query, s.ID, s.Email, s.Name, s.Status, s.ConfirmationToken).Scan(
		&out.ID, &out.Email, &out.Name, &out.Status, &out.ConfirmationToken, &out.SubscribedAt,
	)
	return out, err
}

func (r *PGSubscriberRepo) GetByToken(ctx context.Context, token string) (dom.Subscriber, error) {
	query := `
		SELECT id, email, name, status, confirmation_token, subscribed_at
		FROM subscriptions WHERE confirmation_token = $1`
	var s dom.Subscriber
	err := r.db.QueryRow(ctx, query, token).Scan(
		&s.ID, &s.Email, &s.Name, &s.Status, &s.ConfirmationToken, &s.SubscribedAt,
	)
	return s, err
}

func (r *PGSubscriberRepo) Confirm(ctx context.Context, token string) error {
	_, err := r.db.Exec(ctx,
		`UPDATE subscriptions SET status = $2 WHERE confirmation_token = $1 AND status = $3`,
		token, dom.StatusConfirmed, dom.StatusPendingConfirmation,
	)
	return err
}

func (r *PGSubscriberRepo) ListConfirmedEmails(ctx context.Context) ([]string, error) {
	rows, err := r.db.Query(ctx,
		`SELECT email FROM subscriptions WHERE status = $1 ORDER BY subscribed_at ASC`,
		dom.StatusConfirmed,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var emails []string
	for rows.Next() {
		var e string
		if err := rows.Scan(&e); err != nil {
			return nil, err
		}
		emails = append(emails, e)
	}
	return emails, rows.Err()
}
