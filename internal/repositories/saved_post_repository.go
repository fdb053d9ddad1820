package repositories

import (
	"errors"

	"github.com/lumagram/backend/internal/errs"
	"github.com/lumagram/backend/internal/models"
	"gorm.io/gorm"
)

// SavedPostRepository defines the interface for saved-post data operations
type SavedPostRepository interface {
	CreateSavedPost(saved *models.SavedPost) error
	// DeleteSavedPost removes the bookmark if present; absent is a no-op.
	DeleteSavedPost(postID string, userID uint) error
	// SavedPostIDs returns which of the given posts the user has saved.
	SavedPostIDs(userID uint, postIDs []string) (map[string]bool, error)
}

// PostgresSavedPostRepository implements SavedPostRepository for PostgreSQL
type PostgresSavedPostRepository struct {
	db *gorm.DB
}

// NewPostgresSavedPostRepository creates a new PostgresSavedPostRepository
func NewPostgresSavedPostRepository(db *gorm.DB) *PostgresSavedPostRepository {
	return &PostgresSavedPostRepository{db: db}
}

func (r *PostgresSavedPostRepository) CreateSavedPost(saved *models.SavedPost) error {
	if err := r.db.Create(saved).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return errs.Duplicate
		}
		return err
	}
	return nil
}

func (r *PostgresSavedPostRepository) DeleteSavedPost(postID string, userID uint) error {
	return r.db.Where("post_id = ? AND user_id = ?", postID, userID).Delete(&models.SavedPost{}).Error
}

func (r *PostgresSavedPostRepository) SavedPostIDs(userID uint, postIDs []string) (map[string]bool, error) {
	saved := make(map[string]bool)
	if len(postIDs) == 0 {
		return saved, nil
	}

	var rows []models.SavedPost
	err := r.db.Where("user_id = ? AND post_id IN ?", userID, postIDs).Find(&rows).Error
	if err != nil {
		return nil, err
	}

	for _, row := range rows {
		saved[row.PostID] = true
	}
	return saved, nil
}
