// internal/services/contract_service.go
package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/tianguisbeats/tianguis-backend/internal/config"
	"github.com/tianguisbeats/tianguis-backend/internal/licensing"
	"github.com/tianguisbeats/tianguis-backend/internal/models"
	"github.com/tianguisbeats/tianguis-backend/internal/pdfgen"
	"github.com/tianguisbeats/tianguis-backend/internal/pricing"
)

// Templated usage limits per license tier. A negative value renders as
// "Ilimitado", zero as "No definido".
var tierLimits = map[licensing.TierID]pdfgen.UsageLimits{
	licensing.TierFree:      {Streams: 0, Copies: 0, MusicVideos: 0, RadioStations: 0},
	licensing.TierBasica:    {Streams: 50000, Copies: 0, MusicVideos: 1, RadioStations: 0},
	licensing.TierMp3:       {Streams: 150000, Copies: 0, MusicVideos: 2, RadioStations: 0},
	licensing.TierPro:       {Streams: 500000, Copies: 2500, MusicVideos: -1, RadioStations: 1},
	licensing.TierPremium:   {Streams: 1000000, Copies: 10000, MusicVideos: -1, RadioStations: -1},
	licensing.TierIlimitada: {Streams: -1, Copies: -1, MusicVideos: -1, RadioStations: -1},
	licensing.TierExclusiva: {Streams: -1, Copies: -1, MusicVideos: -1, RadioStations: -1},
	licensing.TierSoundKit:  {Streams: -1, Copies: -1, MusicVideos: -1, RadioStations: -1},
}

// Pro clauses are included from the Pro tier upward.
var proClauseTiers = map[licensing.TierID]bool{
	licensing.TierPro:       true,
	licensing.TierPremium:   true,
	licensing.TierIlimitada: true,
	licensing.TierExclusiva: true,
}

var ErrContractNotReady = errors.New("contract not yet generated")

type ContractService struct {
	db       *gorm.DB
	cfg      *config.Config
	renderer *pdfgen.Renderer
	storage  *StorageService
}

func NewContractService(db *gorm.DB, cfg *config.Config, storage *StorageService) *ContractService {
	return &ContractService{
		db:       db,
		cfg:      cfg,
		renderer: pdfgen.NewRenderer(cfg.Contract.VerifyBaseURL),
		storage:  storage,
	}
}

// GenerateForOrder renders and stores a contract for every licensable item of
// a completed order. One item's failure never blocks the others; the first
// error is reported after all items were attempted.
func (s *ContractService) GenerateForOrder(orderID uuid.UUID) error {
	var order models.Order
	err := s.db.Preload("Items").Preload("Buyer").First(&order, "id = ?", orderID).Error
	if err != nil {
		return fmt.Errorf("failed to load order: %w", err)
	}
	if order.Status != models.OrderStatusCompleted {
		return errors.New("contracts are only generated for completed orders")
	}

	var firstErr error
	for i := range order.Items {
		item := &order.Items[i]
		if item.ItemType != models.CartItemBeat && item.ItemType != models.CartItemSoundKit {
			continue
		}
		if item.ContractURL != "" {
			continue
		}
		if err := s.generateForItem(&order, item); err != nil {
			logrus.WithError(err).WithFields(logrus.Fields{
				"order_key": order.OrderKey,
				"item_id":   item.ID,
			}).Error("Failed to generate contract for item")
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}

func (s *ContractService) generateForItem(order *models.Order, item *models.OrderItem) error {
	data, err := s.buildContractData(order, item)
	if err != nil {
		return err
	}

	pdf, err := s.renderer.Render(data)
	if err != nil {
		return fmt.Errorf("failed to render contract: %w", err)
	}

	filename := fmt.Sprintf("%s-%s.pdf", order.OrderKey, item.ID)
	url, err := s.storage.UploadBytes(s.cfg.Contract.StorageFolder, filename, pdf, "application/pdf")
	if err != nil {
		return fmt.Errorf("failed to store contract: %w", err)
	}

	if err := s.db.Model(item).Update("contract_url", url).Error; err != nil {
		return fmt.Errorf("failed to record contract URL: %w", err)
	}
	item.ContractURL = url
	return nil
}

func (s *ContractService) buildContractData(order *models.Order, item *models.OrderItem) (*pdfgen.ContractData, error) {
	var seller models.User
	if err := s.db.First(&seller, "id = ?", item.SellerID).Error; err != nil {
		return nil, fmt.Errorf("failed to load seller: %w", err)
	}

	transactionDate := order.CreatedAt
	if order.PaidAt != nil {
		transactionDate = *order.PaidAt
	}

	data := &pdfgen.ContractData{
		OrderID:         order.OrderKey,
		TransactionDate: transactionDate.Format("2006-01-02"),
		ProductName:     item.Title,
		Price:           item.ChargedPrice,
		Currency:        pricing.BaseCurrency,
		ProducerName:    seller.DisplayName(),
		ProducerEmail:   seller.Email,
		BuyerName:       order.Buyer.DisplayName(),
		BuyerEmail:      order.Buyer.Email,
	}

	switch item.ItemType {
	case models.CartItemSoundKit:
		data.LicenseType = licensing.Name(licensing.TierSoundKit)
		limits := tierLimits[licensing.TierSoundKit]
		data.Limits = &limits

	case models.CartItemBeat:
		tier := licensing.TierID(item.LicenseType)
		data.LicenseType = licensing.Name(tier)
		data.IncludeProClauses = proClauseTiers[tier]

		if item.BeatID != nil {
			var beat models.Beat
			if err := s.db.First(&beat, "id = ?", *item.BeatID).Error; err != nil {
				return nil, fmt.Errorf("failed to load beat: %w", err)
			}
			if beat.UsesCustomContract && beat.CustomContractText != "" {
				data.IsCustomText = true
				data.CustomText = beat.CustomContractText
			}
		}
		if !data.IsCustomText {
			limits := tierLimits[tier]
			data.Limits = &limits
		}

	default:
		return nil, fmt.Errorf("item type %q has no contract", item.ItemType)
	}

	return data, nil
}

// ContractDownloadURL resolves a short-lived download link for an item's
// stored contract, scoped to the buyer who owns the order.
func (s *ContractService) ContractDownloadURL(buyerID, itemID uuid.UUID) (string, error) {
	var item models.OrderItem
	err := s.db.Joins("JOIN orders ON orders.id = order_items.order_id").
		Where("order_items.id = ? AND orders.buyer_id = ?", itemID, buyerID).
		First(&item).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", ErrOrderNotFound
		}
		return "", fmt.Errorf("database error: %w", err)
	}
	if item.ContractURL == "" {
		return "", ErrContractNotReady
	}

	var order models.Order
	if err := s.db.Select("order_key").First(&order, "id = ?", item.OrderID).Error; err != nil {
		return "", fmt.Errorf("failed to load order: %w", err)
	}

	key := fmt.Sprintf("%s/%s-%s.pdf", s.cfg.Contract.StorageFolder, order.OrderKey, item.ID)
	return s.storage.PresignedDownloadURL(key, 15*time.Minute)
}
