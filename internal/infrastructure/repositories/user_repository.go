package repositories

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/folio-service/folio_service/internal/domain/entities"
)

// uniqueViolation is the postgres SQLSTATE for unique constraint errors.
const uniqueViolation = "23505"

func isUniqueViolation(err error) bool {
	if pqErr, ok := err.(*pq.Error); ok {
		return pqErr.Code == uniqueViolation
	}
	return false
}

// UserRepository anchors externally-issued identities to local user rows.
type UserRepository struct {
	db     *sqlx.DB
	logger *zap.Logger
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *sqlx.DB, logger *zap.Logger) *UserRepository {
	return &UserRepository{db: db, logger: logger}
}

// EnsureBySubject returns the user row for an external subject, inserting it
// on first sight. The no-op DO UPDATE makes RETURNING yield the existing row
// under concurrent first requests instead of racing a select against an
// insert.
func (r *UserRepository) EnsureBySubject(ctx context.Context, subject string) (*entities.User, error) {
	query := `
		INSERT INTO users (id, external_subject)
		VALUES ($1, $2)
		ON CONFLICT (external_subject) DO UPDATE SET external_subject = EXCLUDED.external_subject
		RETURNING id, external_subject, created_at
	`

	user := &entities.User{}
	err := r.db.QueryRowContext(ctx, query, uuid.New(), subject).Scan(
		&user.ID,
		&user.ExternalSubject,
		&user.CreatedAt,
	)
	if err != nil {
		r.logger.Error("failed to ensure user",
			zap.Error(err),
			zap.String("subject", subject),
		)
		return nil, fmt.Errorf("failed to ensure user: %w", err)
	}

	return user, nil
}
