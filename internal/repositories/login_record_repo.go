package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pixele/identity/internal/database"
	"github.com/pixele/identity/internal/models"
)

// LoginRecordRepository is the lockout ledger: per-account failed-attempt
// counters in the login_records table. Every operation runs inside an
// explicit transaction; storage failures surface as *models.StorageError
// and always roll back first, because a partial update would corrupt the
// lockout invariant.
type LoginRecordRepository struct {
	db     *database.DB
	policy models.LockoutPolicy
	now    func() time.Time
}

func NewLoginRecordRepository(db *database.DB, policy models.LockoutPolicy) *LoginRecordRepository {
	return &LoginRecordRepository{
		db:     db,
		policy: policy,
		now:    time.Now,
	}
}

// GetLockState reads the account's failure state and computes whether it is
// locked. Expired failure state is reset opportunistically on read (lazy
// expiry); the locked read (FOR UPDATE) keeps the reset race-free.
func (r *LoginRecordRepository) GetLockState(ctx context.Context, accountID string) (models.LockState, error) {
	var state models.LockState

	err := r.db.WithTransaction(ctx, func(tx pgx.Tx) error {
		rec := &models.LoginRecord{AccountID: accountID}

		err := tx.QueryRow(ctx,
			`SELECT failed_attempts, last_failed_at, last_login_at
			 FROM login_records WHERE account_id = $1 FOR UPDATE`,
			accountID,
		).Scan(&rec.FailedAttempts, &rec.LastFailedAt, &rec.LastLoginAt)
		if errors.Is(err, pgx.ErrNoRows) {
			// No record yet reads as unlocked with zero failures.
			return nil
		}
		if err != nil {
			return err
		}

		var expired bool
		state, expired = r.policy.Evaluate(rec, r.now())
		if !expired {
			return nil
		}

		_, err = tx.Exec(ctx,
			`UPDATE login_records SET failed_attempts = 0, last_failed_at = NULL
			 WHERE account_id = $1`,
			accountID,
		)
		return err
	})
	if err != nil {
		return models.LockState{}, &models.StorageError{Op: "get lock state", Err: err}
	}

	return state, nil
}

// RecordSuccess resets the failure counter and stamps the login time, on
// both the ledger row and the mirrored users row. Idempotent.
func (r *LoginRecordRepository) RecordSuccess(ctx context.Context, accountID string) error {
	err := r.db.WithTransaction(ctx, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx,
			`INSERT INTO login_records (account_id, failed_attempts, last_failed_at, last_login_at)
			 VALUES ($1, 0, NULL, NOW())
			 ON CONFLICT (account_id) DO UPDATE
			 SET failed_attempts = 0, last_failed_at = NULL, last_login_at = NOW()`,
			accountID,
		)
		if err != nil {
			return err
		}

		_, err = tx.Exec(ctx,
			`UPDATE users SET last_login = NOW() WHERE username = $1`,
			accountID,
		)
		return err
	})
	if err != nil {
		return &models.StorageError{Op: "record success", Err: err}
	}
	return nil
}

// RecordFailure atomically increments the failure counter and stamps the
// failure time in a single upsert, so concurrent attempts cannot lose
// increments. Returns the post-increment count for threshold decisions.
func (r *LoginRecordRepository) RecordFailure(ctx context.Context, accountID string) (int, error) {
	var count int

	err := r.db.WithTransaction(ctx, func(tx pgx.Tx) error {
		return tx.QueryRow(ctx,
			`INSERT INTO login_records (account_id, failed_attempts, last_failed_at)
			 VALUES ($1, 1, NOW())
			 ON CONFLICT (account_id) DO UPDATE
			 SET failed_attempts = login_records.failed_attempts + 1, last_failed_at = NOW()
			 RETURNING failed_attempts`,
			accountID,
		).Scan(&count)
	})
	if err != nil {
		return 0, &models.StorageError{Op: "record failure", Err: err}
	}

	return count, nil
}

// Get returns the raw ledger row, or ErrNotFound.
func (r *LoginRecordRepository) Get(ctx context.Context, accountID string) (*models.LoginRecord, error) {
	rec := &models.LoginRecord{AccountID: accountID}

	err := r.db.Pool.QueryRow(ctx,
		`SELECT failed_attempts, last_failed_at, last_login_at
		 FROM login_records WHERE account_id = $1`,
		accountID,
	).Scan(&rec.FailedAttempts, &rec.LastFailedAt, &rec.LastLoginAt)
	if err != nil {
		return nil, database.MapPostgresError(err)
	}

	return rec, nil
}

// ResetStale clears failure state whose lockout window expired before the
// cutoff. A background complement to the lazy expiry in GetLockState,
// keeping rows for dormant accounts from carrying stale counters forever.
func (r *LoginRecordRepository) ResetStale(ctx context.Context, cutoff time.Time) (int64, error) {
	tag, err := r.db.Pool.Exec(ctx,
		`UPDATE login_records SET failed_attempts = 0, last_failed_at = NULL
		 WHERE failed_attempts > 0 AND last_failed_at IS NOT NULL AND last_failed_at <= $1`,
		cutoff,
	)
	if err != nil {
		return 0, &models.StorageError{Op: "reset stale records", Err: err}
	}
	return tag.RowsAffected(), nil
}
