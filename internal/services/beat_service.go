// internal/services/beat_service.go
package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tianguisbeats/tianguis-backend/internal/licensing"
	"github.com/tianguisbeats/tianguis-backend/internal/models"
	"github.com/tianguisbeats/tianguis-backend/internal/utils"
)

var ErrBeatNotFound = errors.New("beat not found")

var beatSortFields = []string{"created_at", "title", "play_count", "like_count", "bpm"}

type BeatService struct {
	db *gorm.DB
}

// BeatWithLicenses is the storefront view of a beat: the record plus its
// currently purchasable license set.
type BeatWithLicenses struct {
	models.Beat
	Licenses []licensing.License `json:"licenses"`
}

func NewBeatService(db *gorm.DB) *BeatService {
	return &BeatService{db: db}
}

// List returns catalog beats with pagination and filters. Sold beats are
// excluded by default since they are no longer purchasable.
func (s *BeatService) List(params utils.PaginationParams, includeSold bool) (utils.PaginationResult, error) {
	query := s.db.Model(&models.Beat{}).Preload("Producer")

	if !includeSold {
		query = query.Where("vendido = ?", false)
	}
	if params.Genre != "" {
		query = query.Where("genre = ?", params.Genre)
	}
	if params.Search != "" {
		search := "%" + strings.ToLower(params.Search) + "%"
		query = query.Where("LOWER(title) LIKE ? OR LOWER(description) LIKE ?", search, search)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return utils.PaginationResult{}, fmt.Errorf("failed to count beats: %w", err)
	}

	var beats []models.Beat
	query = utils.ApplySort(query, params, beatSortFields)
	query = utils.ApplyPagination(query, params)
	if err := query.Find(&beats).Error; err != nil {
		return utils.PaginationResult{}, fmt.Errorf("failed to list beats: %w", err)
	}

	withLicenses := make([]BeatWithLicenses, 0, len(beats))
	for i := range beats {
		withLicenses = append(withLicenses, BeatWithLicenses{
			Beat:     beats[i],
			Licenses: licensing.PurchasableLicenses(&beats[i]),
		})
	}

	return utils.CreatePaginationResult(withLicenses, total, params), nil
}

// GetByID fetches a single beat with its producer.
func (s *BeatService) GetByID(id uuid.UUID) (*models.Beat, error) {
	var beat models.Beat
	err := s.db.Preload("Producer").First(&beat, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBeatNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	return &beat, nil
}

// Licenses returns the purchasable license set of a beat. A sold beat yields
// an empty slice, never an error.
func (s *BeatService) Licenses(id uuid.UUID) ([]licensing.License, error) {
	beat, err := s.GetByID(id)
	if err != nil {
		return nil, err
	}
	return licensing.PurchasableLicenses(beat), nil
}

// ListByProducer returns a producer's own beats, sold ones included so they
// can see their exclusivity history.
func (s *BeatService) ListByProducer(producerID uuid.UUID, params utils.PaginationParams) (utils.PaginationResult, error) {
	query := s.db.Model(&models.Beat{}).Where("producer_id = ?", producerID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return utils.PaginationResult{}, fmt.Errorf("failed to count beats: %w", err)
	}

	var beats []models.Beat
	query = utils.ApplySort(query, params, beatSortFields)
	query = utils.ApplyPagination(query, params)
	if err := query.Find(&beats).Error; err != nil {
		return utils.PaginationResult{}, fmt.Errorf("failed to list beats: %w", err)
	}

	return utils.CreatePaginationResult(beats, total, params), nil
}

// RecordPlay bumps the play counter. Fire-and-forget from the handler.
func (s *BeatService) RecordPlay(id uuid.UUID) error {
	return s.db.Model(&models.Beat{}).
		Where("id = ?", id).
		Update("play_count", gorm.Expr("play_count + 1")).Error
}
