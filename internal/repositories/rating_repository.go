// file: internal/repositories/rating_repository.go
package repositories

import (
	"context"
	"fmt"

	"engagehub/internal/database"
	"engagehub/internal/models"

	"go.uber.org/zap"
)

// ratingRepository implements RatingRepository
type ratingRepository struct {
	*BaseRepository
}

// NewRatingRepository creates a new rating repository
func NewRatingRepository(db *database.Manager, logger *zap.Logger) RatingRepository {
	return &ratingRepository{
		BaseRepository: NewBaseRepository(db, logger),
	}
}

// entityTables maps a rateable entity type to the table carrying its rating
// aggregate columns. Adding a rateable entity means adding a row here and
// nothing else in this file changes.
var entityTables = map[models.EntityType]string{
	models.EntityCommunity: "communities",
	models.EntityEvent:     "events",
}

const ratingColumns = `
	id, rated_by, entity_type, entity_id, rating, review,
	is_verified_participant, helpful_count, unhelpful_count,
	created_at, updated_at`

func scanRating(row interface {
	Scan(dest ...interface{}) error
}) (*models.Rating, error) {
	var rt models.Rating
	err := row.Scan(
		&rt.ID, &rt.RatedBy, &rt.EntityType, &rt.EntityID, &rt.Rating,
		&rt.Review, &rt.IsVerifiedParticipant, &rt.HelpfulCount,
		&rt.UnhelpfulCount, &rt.CreatedAt, &rt.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &rt, nil
}

// ===============================
// CRUD
// ===============================

// Create inserts a rating. The unique index on (rated_by, entity_type,
// entity_id) makes a second rating by the same user surface as ErrDuplicate.
func (r *ratingRepository) Create(ctx context.Context, rating *models.Rating) error {
	err := r.QueryRowContext(ctx, `
		INSERT INTO ratings (rated_by, entity_type, entity_id, rating, review, is_verified_participant)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, helpful_count, unhelpful_count, created_at, updated_at`,
		rating.RatedBy, rating.EntityType, rating.EntityID,
		rating.Rating, rating.Review, rating.IsVerifiedParticipant,
	).Scan(&rating.ID, &rating.HelpfulCount, &rating.UnhelpfulCount, &rating.CreatedAt, &rating.UpdatedAt)
	if err != nil {
		return r.MapUniqueViolation(err)
	}

	r.GetLogger().Info("Rating created",
		zap.Int64("rating_id", rating.ID),
		zap.String("entity_type", rating.EntityType),
		zap.Int64("entity_id", rating.EntityID),
		zap.Int("value", rating.Rating),
	)

	return nil
}

// GetByID retrieves a rating by id
func (r *ratingRepository) GetByID(ctx context.Context, id int64) (*models.Rating, error) {
	row := r.QueryRowContext(ctx,
		`SELECT`+ratingColumns+` FROM ratings WHERE id = $1`, id)

	rt, err := scanRating(row)
	if err != nil {
		if r.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get rating: %w", err)
	}
	return rt, nil
}

// Update changes the value and review of an existing rating. The
// is_verified_participant flag is deliberately not touchable here.
func (r *ratingRepository) Update(ctx context.Context, id int64, value int, review *string) (*models.Rating, error) {
	row := r.QueryRowContext(ctx, `
		UPDATE ratings
		SET rating = $2, review = $3, updated_at = CURRENT_TIMESTAMP
		WHERE id = $1
		RETURNING`+ratingColumns,
		id, value, review,
	)

	rt, err := scanRating(row)
	if err != nil {
		if r.IsNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to update rating: %w", err)
	}
	return rt, nil
}

// Delete removes a rating and returns the deleted row so the caller can
// recompute the entity's aggregate.
func (r *ratingRepository) Delete(ctx context.Context, id int64) (*models.Rating, error) {
	row := r.QueryRowContext(ctx,
		`DELETE FROM ratings WHERE id = $1 RETURNING`+ratingColumns, id)

	rt, err := scanRating(row)
	if err != nil {
		if r.IsNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to delete rating: %w", err)
	}
	return rt, nil
}

// ListForEntity returns a page of ratings for an entity, newest first.
func (r *ratingRepository) ListForEntity(ctx context.Context, entityType models.EntityType, entityID int64, p models.PaginationParams) ([]*models.Rating, error) {
	p.Normalize()

	rows, err := r.QueryContext(ctx, `
		SELECT`+ratingColumns+`
		FROM ratings
		WHERE entity_type = $1 AND entity_id = $2
		ORDER BY created_at DESC, id DESC
		LIMIT $3 OFFSET $4`,
		entityType, entityID, p.Limit, p.Offset,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list ratings: %w", err)
	}
	defer rows.Close()

	var ratings []*models.Rating
	for rows.Next() {
		rt, err := scanRating(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan rating: %w", err)
		}
		ratings = append(ratings, rt)
	}
	return ratings, rows.Err()
}

// ===============================
// AGGREGATE RECOMPUTATION
// ===============================

// Recompute derives the aggregate from the complete rating set and writes it
// back onto the rated entity in a single statement. Incremental updates drift
// under concurrent edits; a full recompute cannot.
func (r *ratingRepository) Recompute(ctx context.Context, entityType models.EntityType, entityID int64) (*models.RatingAggregate, error) {
	table, ok := entityTables[entityType]
	if !ok {
		return nil, fmt.Errorf("unknown entity type %q", entityType)
	}

	var agg models.RatingAggregate
	err := r.QueryRowContext(ctx, fmt.Sprintf(`
		UPDATE %s SET
			avg_rating = sub.avg_rating,
			total_ratings = sub.total_ratings,
			updated_at = CURRENT_TIMESTAMP
		FROM (
			SELECT
				COALESCE(ROUND(AVG(rating)::numeric, 1), 0) AS avg_rating,
				COUNT(*) AS total_ratings
			FROM ratings
			WHERE entity_type = $1 AND entity_id = $2
		) sub
		WHERE id = $2
		RETURNING sub.avg_rating, sub.total_ratings`, table),
		entityType, entityID,
	).Scan(&agg.AvgRating, &agg.TotalRatings)
	if err != nil {
		if r.IsNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to recompute rating aggregate: %w", err)
	}

	r.GetLogger().Debug("Rating aggregate recomputed",
		zap.String("entity_type", string(entityType)),
		zap.Int64("entity_id", entityID),
		zap.Float64("avg_rating", agg.AvgRating),
		zap.Int("total_ratings", agg.TotalRatings),
	)

	return &agg, nil
}

// Vote atomically increments one of the helpfulness counters.
func (r *ratingRepository) Vote(ctx context.Context, id int64, helpful bool) (*models.Rating, error) {
	column := "unhelpful_count"
	if helpful {
		column = "helpful_count"
	}

	row := r.QueryRowContext(ctx, fmt.Sprintf(`
		UPDATE ratings
		SET %s = %s + 1, updated_at = CURRENT_TIMESTAMP
		WHERE id = $1
		RETURNING`+ratingColumns, column, column),
		id,
	)

	rt, err := scanRating(row)
	if err != nil {
		if r.IsNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to record rating vote: %w", err)
	}
	return rt, nil
}
