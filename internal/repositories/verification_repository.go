// file: internal/repositories/verification_repository.go
package repositories

import (
	"context"
	"database/sql"
	"fmt"

	"engagehub/internal/database"
	"engagehub/internal/models"

	"go.uber.org/zap"
)

// verificationRepository implements VerificationRepository
type verificationRepository struct {
	*BaseRepository
}

// NewVerificationRepository creates a new verification repository
func NewVerificationRepository(db *database.Manager, logger *zap.Logger) VerificationRepository {
	return &verificationRepository{
		BaseRepository: NewBaseRepository(db, logger),
	}
}

const applicationColumns = `
	id, applicant_id, community_name, motivation, status, notes, reason,
	created_community_id, reviewed_by, reviewed_at, created_at`

func scanApplication(row interface {
	Scan(dest ...interface{}) error
}) (*models.CommunityManagerApplication, error) {
	var app models.CommunityManagerApplication
	err := row.Scan(
		&app.ID, &app.ApplicantID, &app.CommunityName, &app.Motivation,
		&app.Status, &app.Notes, &app.Reason, &app.CreatedCommunityID,
		&app.ReviewedBy, &app.ReviewedAt, &app.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &app, nil
}

// ===============================
// MANAGER APPLICATIONS
// ===============================

// CreateApplication inserts a pending application. The partial unique index
// on pending applications per applicant turns a concurrent duplicate into
// ErrDuplicate.
func (r *verificationRepository) CreateApplication(ctx context.Context, app *models.CommunityManagerApplication) error {
	err := r.QueryRowContext(ctx, `
		INSERT INTO manager_applications (applicant_id, community_name, motivation, status)
		VALUES ($1, $2, $3, 'pending')
		RETURNING id, created_at`,
		app.ApplicantID, app.CommunityName, app.Motivation,
	).Scan(&app.ID, &app.CreatedAt)
	if err != nil {
		return r.MapUniqueViolation(err)
	}
	app.Status = models.VerificationPending

	r.GetLogger().Info("Manager application created",
		zap.Int64("application_id", app.ID),
		zap.Int64("applicant_id", app.ApplicantID),
	)

	return nil
}

// GetApplication retrieves an application by id
func (r *verificationRepository) GetApplication(ctx context.Context, id int64) (*models.CommunityManagerApplication, error) {
	row := r.QueryRowContext(ctx,
		`SELECT`+applicationColumns+` FROM manager_applications WHERE id = $1`, id)

	app, err := scanApplication(row)
	if err != nil {
		if r.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get application: %w", err)
	}
	return app, nil
}

// LatestApplicationByApplicant returns the applicant's most recent
// application, or (nil, nil) when they have never applied.
func (r *verificationRepository) LatestApplicationByApplicant(ctx context.Context, applicantID int64) (*models.CommunityManagerApplication, error) {
	row := r.QueryRowContext(ctx, `
		SELECT`+applicationColumns+`
		FROM manager_applications
		WHERE applicant_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT 1`,
		applicantID,
	)

	app, err := scanApplication(row)
	if err != nil {
		if r.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get latest application: %w", err)
	}
	return app, nil
}

// ApproveApplication performs the full approval in one transaction: the
// guarded status update, the verified community creation, the reward ledger
// seed, the founding membership and the applicant's promotion. Any failure
// rolls the whole decision back.
func (r *verificationRepository) ApproveApplication(ctx context.Context, id, reviewerID int64, notes *string) (*models.CommunityManagerApplication, *models.Community, error) {
	var app *models.CommunityManagerApplication
	var community *models.Community

	err := r.WithTransaction(ctx, func(tx *sql.Tx) error {
		row := tx.QueryRowContext(ctx, `
			UPDATE manager_applications
			SET status = 'approved', notes = $2, reviewed_by = $3,
				reviewed_at = CURRENT_TIMESTAMP
			WHERE id = $1 AND status = 'pending'
			RETURNING`+applicationColumns,
			id, notes, reviewerID,
		)

		var err error
		app, err = scanApplication(row)
		if err != nil {
			if r.IsNotFound(err) {
				return r.applicationFailure(ctx, tx, id)
			}
			return fmt.Errorf("failed to approve application: %w", err)
		}

		community = &models.Community{
			Name:               app.CommunityName,
			CreatedBy:          app.ApplicantID,
			VerificationStatus: models.VerificationVerified,
		}
		err = tx.QueryRowContext(ctx, `
			INSERT INTO communities (name, created_by, verification_status, member_count)
			VALUES ($1, $2, 'verified', 1)
			RETURNING id, created_at, updated_at`,
			community.Name, community.CreatedBy,
		).Scan(&community.ID, &community.CreatedAt, &community.UpdatedAt)
		if err != nil {
			return fmt.Errorf("failed to create community: %w", err)
		}
		community.MemberCount = 1

		if _, err := tx.ExecContext(ctx, `
			INSERT INTO community_rewards (community_id, total_points, current_level, community_tier)
			VALUES ($1, 0, 1, 'Bronze')`,
			community.ID,
		); err != nil {
			return fmt.Errorf("failed to seed community rewards: %w", err)
		}

		if _, err := tx.ExecContext(ctx, `
			INSERT INTO community_members (community_id, user_id)
			VALUES ($1, $2)`,
			community.ID, app.ApplicantID,
		); err != nil {
			return fmt.Errorf("failed to add founding member: %w", err)
		}

		// Admins keep their role; everyone else becomes a moderator.
		if _, err := tx.ExecContext(ctx, `
			UPDATE users SET role = 'moderator', updated_at = CURRENT_TIMESTAMP
			WHERE id = $1 AND role = 'user'`,
			app.ApplicantID,
		); err != nil {
			return fmt.Errorf("failed to promote applicant: %w", err)
		}

		if _, err := tx.ExecContext(ctx, `
			UPDATE manager_applications SET created_community_id = $1 WHERE id = $2`,
			community.ID, id,
		); err != nil {
			return fmt.Errorf("failed to link created community: %w", err)
		}
		app.CreatedCommunityID = &community.ID

		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	r.GetLogger().Info("Manager application approved",
		zap.Int64("application_id", id),
		zap.Int64("community_id", community.ID),
		zap.Int64("reviewer_id", reviewerID),
	)

	return app, community, nil
}

// RejectApplication transitions a pending application to rejected with the
// reviewer's reason.
func (r *verificationRepository) RejectApplication(ctx context.Context, id, reviewerID int64, reason string) (*models.CommunityManagerApplication, error) {
	row := r.QueryRowContext(ctx, `
		UPDATE manager_applications
		SET status = 'rejected', reason = $2, reviewed_by = $3,
			reviewed_at = CURRENT_TIMESTAMP
		WHERE id = $1 AND status = 'pending'
		RETURNING`+applicationColumns,
		id, reason, reviewerID,
	)

	app, err := scanApplication(row)
	if err != nil {
		if r.IsNotFound(err) {
			return nil, r.applicationFailure(ctx, r.BaseRepository, id)
		}
		return nil, fmt.Errorf("failed to reject application: %w", err)
	}
	return app, nil
}

// rowQuerier is satisfied by both *BaseRepository and *sql.Tx.
type rowQuerier interface {
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

func (r *verificationRepository) applicationFailure(ctx context.Context, q rowQuerier, id int64) error {
	var exists bool
	if err := q.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM manager_applications WHERE id = $1)`, id,
	).Scan(&exists); err != nil {
		return fmt.Errorf("failed to check application: %w", err)
	}
	if !exists {
		return ErrNotFound
	}
	return ErrInvalidTransition
}

// ===============================
// COMMUNITY VERIFICATION
// ===============================

const verificationColumns = `
	id, community_id, submitted_by, status, notes, reason,
	reviewed_by, reviewed_at, created_at`

func scanVerification(row interface {
	Scan(dest ...interface{}) error
}) (*models.CommunityVerification, error) {
	var v models.CommunityVerification
	err := row.Scan(
		&v.ID, &v.CommunityID, &v.SubmittedBy, &v.Status, &v.Notes,
		&v.Reason, &v.ReviewedBy, &v.ReviewedAt, &v.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// CreateVerification submits a community for verification and marks the
// community pending in the same transaction. A second open request for the
// same community surfaces as ErrDuplicate.
func (r *verificationRepository) CreateVerification(ctx context.Context, v *models.CommunityVerification) error {
	return r.WithTransaction(ctx, func(tx *sql.Tx) error {
		err := tx.QueryRowContext(ctx, `
			INSERT INTO community_verifications (community_id, submitted_by, status, notes)
			VALUES ($1, $2, 'pending', $3)
			RETURNING id, created_at`,
			v.CommunityID, v.SubmittedBy, v.Notes,
		).Scan(&v.ID, &v.CreatedAt)
		if err != nil {
			return r.MapUniqueViolation(err)
		}
		v.Status = models.VerificationPending

		if _, err := tx.ExecContext(ctx, `
			UPDATE communities SET verification_status = 'pending',
				updated_at = CURRENT_TIMESTAMP
			WHERE id = $1 AND verification_status <> 'verified'`,
			v.CommunityID,
		); err != nil {
			return fmt.Errorf("failed to mark community pending: %w", err)
		}

		return nil
	})
}

// GetVerification retrieves a verification request by id
func (r *verificationRepository) GetVerification(ctx context.Context, id int64) (*models.CommunityVerification, error) {
	row := r.QueryRowContext(ctx,
		`SELECT`+verificationColumns+` FROM community_verifications WHERE id = $1`, id)

	v, err := scanVerification(row)
	if err != nil {
		if r.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get verification: %w", err)
	}
	return v, nil
}

// ReviewVerification decides a pending verification request and writes the
// outcome onto the community in the same transaction.
func (r *verificationRepository) ReviewVerification(ctx context.Context, id, reviewerID int64, approve bool, note string) (*models.CommunityVerification, error) {
	var v *models.CommunityVerification

	err := r.WithTransaction(ctx, func(tx *sql.Tx) error {
		status := models.VerificationRejected
		communityStatus := "rejected"
		if approve {
			status = models.VerificationVerified
			communityStatus = "verified"
		}

		row := tx.QueryRowContext(ctx, `
			UPDATE community_verifications
			SET status = $2, reason = $3, reviewed_by = $4,
				reviewed_at = CURRENT_TIMESTAMP
			WHERE id = $1 AND status = 'pending'
			RETURNING`+verificationColumns,
			id, status, note, reviewerID,
		)

		var err error
		v, err = scanVerification(row)
		if err != nil {
			if r.IsNotFound(err) {
				var exists bool
				if scanErr := tx.QueryRowContext(ctx,
					`SELECT EXISTS(SELECT 1 FROM community_verifications WHERE id = $1)`, id,
				).Scan(&exists); scanErr != nil {
					return fmt.Errorf("failed to check verification: %w", scanErr)
				}
				if !exists {
					return ErrNotFound
				}
				return ErrInvalidTransition
			}
			return fmt.Errorf("failed to review verification: %w", err)
		}

		if _, err := tx.ExecContext(ctx, `
			UPDATE communities SET verification_status = $1,
				updated_at = CURRENT_TIMESTAMP
			WHERE id = $2`,
			communityStatus, v.CommunityID,
		); err != nil {
			return fmt.Errorf("failed to update community status: %w", err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	r.GetLogger().Info("Community verification reviewed",
		zap.Int64("verification_id", id),
		zap.Int64("community_id", v.CommunityID),
		zap.Bool("approved", approve),
	)

	return v, nil
}
