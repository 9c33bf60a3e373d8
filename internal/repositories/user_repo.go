package repositories

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/pixele/identity/internal/database"
	"github.com/pixele/identity/internal/models"
)

// UserRepository handles the local users table and its game_stats rows.
type UserRepository struct {
	db *database.DB
}

func NewUserRepository(db *database.DB) *UserRepository {
	return &UserRepository{db: db}
}

// CreateWithGameStats inserts the user row plus one game_stats row per game,
// then runs enroll inside the same transaction. enroll is where the caller
// registers the account with the identity provider: if it fails, the local
// rows roll back with it, so the two systems cannot diverge on existence.
func (r *UserRepository) CreateWithGameStats(ctx context.Context, username string, enroll func(ctx context.Context) error) (*models.User, error) {
	user := &models.User{}

	err := r.db.WithTransaction(ctx, func(tx pgx.Tx) error {
		err := tx.QueryRow(ctx,
			`INSERT INTO users (id, username) VALUES ($1, $2)
			 RETURNING id, username, confirmed, created_at`,
			uuid.New().String(), username,
		).Scan(&user.ID, &user.Username, &user.Confirmed, &user.CreatedAt)
		if err != nil {
			return err
		}

		_, err = tx.Exec(ctx,
			`INSERT INTO game_stats (user_id, game_id)
			 SELECT $1, id FROM games`,
			user.ID,
		)
		if err != nil {
			return err
		}

		return enroll(ctx)
	})
	if err != nil {
		return nil, database.MapPostgresError(err)
	}

	return user, nil
}

// Confirm marks the user verified. Returns ErrNotFound when no row matches.
func (r *UserRepository) Confirm(ctx context.Context, username string) error {
	err := r.db.WithTransaction(ctx, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx,
			`UPDATE users SET confirmed = TRUE WHERE username = $1`,
			username,
		)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return models.ErrNotFound
		}
		return nil
	})
	if err != nil {
		return database.MapPostgresError(err)
	}
	return nil
}

func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	user := &models.User{}

	err := r.db.Pool.QueryRow(ctx,
		`SELECT id, username, confirmed, created_at, last_login
		 FROM users WHERE username = $1`,
		username,
	).Scan(&user.ID, &user.Username, &user.Confirmed, &user.CreatedAt, &user.LastLogin)
	if err != nil {
		return nil, database.MapPostgresError(err)
	}

	return user, nil
}
