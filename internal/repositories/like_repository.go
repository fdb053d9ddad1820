package repositories

import (
	"errors"

	"github.com/lumagram/backend/internal/errs"
	"github.com/lumagram/backend/internal/models"
	"gorm.io/gorm"
)

// LikeRepository defines the interface for like data operations
type LikeRepository interface {
	CreateLike(like *models.Like) error
	// DeleteLike removes the (post, user) like if present. Removing an
	// absent like is a no-op, not an error.
	DeleteLike(postID string, userID uint) error
	HasUserLikedPost(postID string, userID uint) (bool, error)
	// CountByPostIDs returns like counts grouped by post id for the given
	// post set in one query. Posts with no likes are absent from the map.
	CountByPostIDs(postIDs []string) (map[string]int64, error)
	// LikedPostIDs returns which of the given posts the user has liked.
	LikedPostIDs(userID uint, postIDs []string) (map[string]bool, error)
}

// PostgresLikeRepository implements LikeRepository for PostgreSQL
type PostgresLikeRepository struct {
	db *gorm.DB
}

// NewPostgresLikeRepository creates a new PostgresLikeRepository
func NewPostgresLikeRepository(db *gorm.DB) *PostgresLikeRepository {
	return &PostgresLikeRepository{db: db}
}

// CreateLike creates a new like in PostgreSQL. The unique index on
// (post_id, user_id) guarantees a retried like never produces a second row.
func (r *PostgresLikeRepository) CreateLike(like *models.Like) error {
	if err := r.db.Create(like).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return errs.Duplicate
		}
		return err
	}
	return nil
}

// DeleteLike deletes a like from PostgreSQL
func (r *PostgresLikeRepository) DeleteLike(postID string, userID uint) error {
	return r.db.Where("post_id = ? AND user_id = ?", postID, userID).Delete(&models.Like{}).Error
}

// HasUserLikedPost checks if a user has liked a specific post
func (r *PostgresLikeRepository) HasUserLikedPost(postID string, userID uint) (bool, error) {
	var count int64
	if err := r.db.Model(&models.Like{}).Where("post_id = ? AND user_id = ?", postID, userID).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// CountByPostIDs retrieves like counts for a set of posts in one query
func (r *PostgresLikeRepository) CountByPostIDs(postIDs []string) (map[string]int64, error) {
	counts := make(map[string]int64)
	if len(postIDs) == 0 {
		return counts, nil
	}

	var rows []struct {
		PostID string
		Total  int64
	}
	err := r.db.Model(&models.Like{}).
		Select("post_id, COUNT(*) AS total").
		Where("post_id IN ?", postIDs).
		Group("post_id").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	for _, row := range rows {
		counts[row.PostID] = row.Total
	}
	return counts, nil
}

// LikedPostIDs retrieves the subset of posts the user has liked
func (r *PostgresLikeRepository) LikedPostIDs(userID uint, postIDs []string) (map[string]bool, error) {
	liked := make(map[string]bool)
	if len(postIDs) == 0 {
		return liked, nil
	}

	var likes []models.Like
	err := r.db.Where("user_id = ? AND post_id IN ?", userID, postIDs).Find(&likes).Error
	if err != nil {
		return nil, err
	}

	for _, l := range likes {
		liked[l.PostID] = true
	}
	return liked, nil
}
