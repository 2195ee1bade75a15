package storage

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/abhiram-FWD/ResloveX-Complain-portal/internal/models"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

var (
	// ErrNotFound is returned when the requested record does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicateID is returned when a create hits a unique constraint
	// (used by the id generator's collision fallback).
	ErrDuplicateID = errors.New("duplicate identifier")
	// ErrVersionConflict is returned when a conditional update lost the
	// race: the complaint changed since the caller loaded it.
	ErrVersionConflict = errors.New("complaint was modified concurrently")
)

// HandlerStatDelta is the set of performance-counter increments applied to
// an authority account inside a transition commit.
type HandlerStatDelta struct {
	AuthorityID         string
	TotalHandled        int
	ResolvedOnTime      int
	FalseClosuresCaught int
	TotalRating         int
	RatingCount         int
}

type Storage interface {
	SaveUser(user *models.User) error
	GetUserByID(id string) (*models.User, error)
	GetUserByEmail(email string) (*models.User, error)
	FindAuthority(idOrEmail string) (*models.User, error)
	GetUserByTelegramChat(chatID string) (*models.User, error)

	SaveCategory(category *models.Category) error
	GetCategoryByName(name string) (*models.Category, error)

	CreateComplaint(complaint *models.Complaint) error
	GetComplaintByID(complaintID string) (*models.Complaint, error)
	GetComplaintsForCitizen(citizenID string) ([]models.Complaint, error)
	GetAssignedComplaints(authority *models.User) ([]models.Complaint, error)
	CountComplaintsInYear(year int) (int64, error)
	FindEscalatable(now time.Time) ([]models.Complaint, error)

	// CommitTransition is the atomic conditional-update primitive every
	// lifecycle transition goes through. See Service.CommitTransition.
	CommitTransition(c *models.Complaint, event *models.TimelineEvent, photos []models.EvidencePhoto, delta *HandlerStatDelta) error
}

// Service implements Storage over PostgreSQL, with Redis carried alongside
// for the realtime broker.
type Service struct {
	DB    *gorm.DB
	Redis *redis.Client
	Ctx   context.Context
}

// NewStorageService Constructor
func NewStorageService(db *gorm.DB, rdb *redis.Client) *Service {
	return &Service{
		DB:    db,
		Redis: rdb,
		Ctx:   context.Background(),
	}
}

func (s *Service) SaveUser(user *models.User) error {
	return s.DB.Save(user).Error
}

func (s *Service) GetUserByID(id string) (*models.User, error) {
	var user models.User
	err := s.DB.First(&user, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *Service) GetUserByEmail(email string) (*models.User, error) {
	var user models.User
	err := s.DB.First(&user, "email = ?", email).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// FindAuthority resolves an authority account by storage ID or email.
// Forward targets may be entered either way in the UI.
func (s *Service) FindAuthority(idOrEmail string) (*models.User, error) {
	var user models.User
	err := s.DB.Where("role = ?", models.RoleAuthority).
		Where("id = ? OR email = ?", idOrEmail, idOrEmail).
		First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *Service) GetUserByTelegramChat(chatID string) (*models.User, error) {
	var user models.User
	err := s.DB.First(&user, "telegram_chat_id = ?", chatID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *Service) SaveCategory(category *models.Category) error {
	return s.DB.Save(category).Error
}

func (s *Service) GetCategoryByName(name string) (*models.Category, error) {
	var category models.Category
	err := s.DB.Where("is_active = ?", true).First(&category, "name = ?", name).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &category, nil
}

func (s *Service) CreateComplaint(complaint *models.Complaint) error {
	err := s.DB.Create(complaint).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrDuplicateID
	}
	if err != nil {
		log.Printf("ERROR: Failed to create complaint %s: %v", complaint.ComplaintID, err)
	}
	return err
}

// GetComplaintByID loads a complaint by its human-facing identifier with the
// full timeline (oldest first) and evidence photos.
func (s *Service) GetComplaintByID(complaintID string) (*models.Complaint, error) {
	var complaint models.Complaint
	err := s.DB.
		Preload("Timeline", func(db *gorm.DB) *gorm.DB {
			return db.Order("timeline_events.id asc")
		}).
		Preload("EvidencePhotos").
		First(&complaint, "complaint_id = ?", complaintID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		log.Printf("ERROR: Failed to get complaint %s: %v", complaintID, err)
		return nil, err
	}
	return &complaint, nil
}

func (s *Service) GetComplaintsForCitizen(citizenID string) ([]models.Complaint, error) {
	var complaints []models.Complaint
	err := s.DB.Where("citizen_id = ?", citizenID).
		Order("created_at desc").
		Find(&complaints).Error
	if err != nil {
		return nil, err
	}
	return complaints, nil
}

// GetAssignedComplaints returns the authority's work queue: open complaints
// in their category/division jurisdiction plus anything they already handle,
// most urgent first.
func (s *Service) GetAssignedComplaints(authority *models.User) ([]models.Complaint, error) {
	var complaints []models.Complaint
	err := s.DB.
		Where("status NOT IN ?", []models.Status{models.StatusResolved, models.StatusRejected}).
		Where(
			s.DB.Where("category IN ? AND location_division = ?",
				[]string(authority.Authority.Categories), authority.Authority.Division).
				Or("current_authority_id = ?", authority.ID),
		).
		Order("priority desc, sla_deadline asc").
		Find(&complaints).Error
	if err != nil {
		log.Printf("ERROR: Failed to load assigned complaints for %s: %v", authority.ID, err)
		return nil, err
	}
	return complaints, nil
}

// CountComplaintsInYear counts complaints created in the given calendar year
// (UTC). Feeds the sequence part of the human-facing identifier.
func (s *Service) CountComplaintsInYear(year int) (int64, error) {
	start := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(1, 0, 0)

	var count int64
	err := s.DB.Model(&models.Complaint{}).
		Where("created_at >= ? AND created_at < ?", start, end).
		Count(&count).Error
	return count, err
}

// FindEscalatable returns non-terminal complaints whose SLA deadline has
// passed and whose overdue flag is still unset. The scan itself is not
// guarded; the escalate transition's conditional update is what makes
// overlapping scheduler runs safe.
func (s *Service) FindEscalatable(now time.Time) ([]models.Complaint, error) {
	var complaints []models.Complaint
	err := s.DB.
		Where("sla_deadline < ?", now).
		Where("sla_overdue = ?", false).
		Where("status NOT IN ?", []models.Status{models.StatusResolved, models.StatusRejected}).
		Find(&complaints).Error
	if err != nil {
		return nil, err
	}
	return complaints, nil
}

// transitionColumns are the complaint fields a committed transition may
// touch. Everything else (title, category, SLA deadline, citizen, ...) is
// immutable after creation.
var transitionColumns = []string{
	"status", "current_authority_id", "locked",
	"sla_overdue", "sla_breached_at",
	"verification_verified", "verification_verified_at",
	"verification_rating", "verification_feedback",
	"version", "updated_at",
}

// CommitTransition persists a lifecycle transition as one atomic unit: the
// complaint row update, the new timeline event, any new evidence photos, and
// the handler stat increments either all commit or none do.
//
// The row update is guarded by the version the caller loaded the complaint
// with. When another writer committed first the guard misses, nothing is
// written, and ErrVersionConflict tells the caller to re-fetch and retry
// with current state.
func (s *Service) CommitTransition(c *models.Complaint, event *models.TimelineEvent, photos []models.EvidencePhoto, delta *HandlerStatDelta) error {
	guard := c.Version
	c.Version = guard + 1
	c.UpdatedAt = time.Now()

	err := s.DB.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Complaint{}).
			Where("id = ? AND version = ?", c.ID, guard).
			Select(transitionColumns).
			Updates(c)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrVersionConflict
		}

		if event != nil {
			event.ComplaintID = c.ID
			if err := tx.Create(event).Error; err != nil {
				return err
			}
		}

		for i := range photos {
			photos[i].ComplaintID = c.ID
			if err := tx.Create(&photos[i]).Error; err != nil {
				return err
			}
		}

		if delta != nil {
			res := tx.Model(&models.User{}).
				Where("id = ?", delta.AuthorityID).
				Updates(map[string]interface{}{
					"stats_total_handled":         gorm.Expr("stats_total_handled + ?", delta.TotalHandled),
					"stats_resolved_on_time":      gorm.Expr("stats_resolved_on_time + ?", delta.ResolvedOnTime),
					"stats_false_closures_caught": gorm.Expr("stats_false_closures_caught + ?", delta.FalseClosuresCaught),
					"stats_total_rating":          gorm.Expr("stats_total_rating + ?", delta.TotalRating),
					"stats_rating_count":          gorm.Expr("stats_rating_count + ?", delta.RatingCount),
				})
			if res.Error != nil {
				return res.Error
			}
		}

		return nil
	})
	if err != nil {
		// Roll the in-memory guard back so a retry after re-fetch does
		// not silently skip a version.
		c.Version = guard
	}
	if err != nil && !errors.Is(err, ErrVersionConflict) {
		log.Printf("ERROR: Failed to commit transition for complaint %s: %v", c.ComplaintID, err)
	}
	return err
}
