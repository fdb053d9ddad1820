package repositories

import (
	"errors"

	"github.com/lumagram/backend/internal/errs"
	"github.com/lumagram/backend/internal/models"
	"gorm.io/gorm"
)

// ProfileRepository defines the interface for profile data operations
type ProfileRepository interface {
	CreateProfile(profile *models.Profile) error
	GetProfileByID(id uint) (*models.Profile, error)
	GetProfileByUsername(username string) (*models.Profile, error)
	GetProfileByFirebaseUID(firebaseUID string) (*models.Profile, error)
	// GetProfilesByIDs returns the profiles for the given id set in one
	// batched read. Missing ids are simply absent from the result.
	GetProfilesByIDs(ids []uint) ([]models.Profile, error)
	UpdateProfile(profile *models.Profile) error
	SearchProfiles(query string, limit int) ([]models.Profile, error)
}

// PostgresProfileRepository implements ProfileRepository for PostgreSQL
type PostgresProfileRepository struct {
	db *gorm.DB
}

// NewPostgresProfileRepository creates a new PostgresProfileRepository
func NewPostgresProfileRepository(db *gorm.DB) *PostgresProfileRepository {
	return &PostgresProfileRepository{db: db}
}

// CreateProfile creates a new profile in PostgreSQL
func (r *PostgresProfileRepository) CreateProfile(profile *models.Profile) error {
	if err := r.db.Create(profile).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return errs.UsernameTaken
		}
		return err
	}
	return nil
}

// GetProfileByID retrieves a profile by ID from PostgreSQL
func (r *PostgresProfileRepository) GetProfileByID(id uint) (*models.Profile, error) {
	var profile models.Profile
	if err := r.db.First(&profile, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NotFound
		}
		return nil, err
	}
	return &profile, nil
}

// GetProfileByUsername retrieves a profile by its unique handle
func (r *PostgresProfileRepository) GetProfileByUsername(username string) (*models.Profile, error) {
	var profile models.Profile
	if err := r.db.Where("username = ?", username).First(&profile).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NotFound
		}
		return nil, err
	}
	return &profile, nil
}

// GetProfileByFirebaseUID retrieves a profile by Firebase UID from PostgreSQL
func (r *PostgresProfileRepository) GetProfileByFirebaseUID(firebaseUID string) (*models.Profile, error) {
	var profile models.Profile
	if err := r.db.Where("firebase_uid = ?", firebaseUID).First(&profile).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NotFound
		}
		return nil, err
	}
	return &profile, nil
}

// GetProfilesByIDs retrieves profiles for a set of ids in one query
func (r *PostgresProfileRepository) GetProfilesByIDs(ids []uint) ([]models.Profile, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var profiles []models.Profile
	if err := r.db.Where("id IN ?", ids).Find(&profiles).Error; err != nil {
		return nil, err
	}
	return profiles, nil
}

// UpdateProfile updates an existing profile in PostgreSQL
func (r *PostgresProfileRepository) UpdateProfile(profile *models.Profile) error {
	if err := r.db.Save(profile).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return errs.UsernameTaken
		}
		return err
	}
	return nil
}

// SearchProfiles searches profiles by username substring (case-insensitive)
func (r *PostgresProfileRepository) SearchProfiles(query string, limit int) ([]models.Profile, error) {
	var profiles []models.Profile
	err := r.db.
		Where("LOWER(username) LIKE LOWER(?)", "%"+query+"%").
		Limit(limit).
		Find(&profiles).Error
	if err != nil {
		return nil, err
	}
	return profiles, nil
}
