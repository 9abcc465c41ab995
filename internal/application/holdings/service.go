package holdings

import (
	"context"
	"errors"

	"ledger-backend/internal/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var ErrHoldingNotFound = errors.New("Holding not found")

// Service encapsulates holding CRUD. Aggregate fields (shares_owned,
// avg_cost_per_share) are never written here; they belong to the ledger's
// recomputation.
type Service struct {
	DB *gorm.DB
}

// CreateInput for a new holding. Positions always start empty; shares and
// cost arrive through ledger transactions.
type CreateInput struct {
	AccountID uuid.UUID
	Ticker    string
	Name      string
	Sector    *string
}

func (s *Service) CreateHolding(ctx context.Context, in CreateInput) (*domain.Holding, error) {
	h := &domain.Holding{
		AccountID: in.AccountID,
		Ticker:    in.Ticker,
		Name:      in.Name,
		Sector:    in.Sector,
	}
	if err := s.DB.WithContext(ctx).Create(h).Error; err != nil {
		return nil, err
	}
	return h, nil
}

func (s *Service) GetHolding(ctx context.Context, holdingID uuid.UUID) (*domain.Holding, error) {
	var h domain.Holding
	if err := s.DB.WithContext(ctx).Where("holding_id = ?", holdingID).First(&h).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrHoldingNotFound
		}
		return nil, err
	}
	return &h, nil
}

func (s *Service) ListByAccount(ctx context.Context, accountID uuid.UUID) ([]domain.Holding, error) {
	var holdings []domain.Holding
	err := s.DB.WithContext(ctx).
		Where("account_id = ?", accountID).
		Order("ticker ASC").
		Find(&holdings).Error
	return holdings, err
}

// UpdatePrice sets the externally sourced market price (cents).
func (s *Service) UpdatePrice(ctx context.Context, holdingID uuid.UUID, priceCents int64) (*domain.Holding, error) {
	var h domain.Holding
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("holding_id = ?", holdingID).First(&h).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return ErrHoldingNotFound
			}
			return err
		}
		h.CurrentPrice = priceCents
		return tx.Model(&domain.Holding{}).
			Where("holding_id = ?", holdingID).
			Update("current_price", priceCents).Error
	})
	if err != nil {
		return nil, err
	}
	return &h, nil
}

// DeleteHolding removes the holding together with its transactions and lots
// in one atomic unit. Returns false when the holding does not exist.
func (s *Service) DeleteHolding(ctx context.Context, holdingID uuid.UUID) (bool, error) {
	deleted := false
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var h domain.Holding
		if err := tx.Where("holding_id = ?", holdingID).First(&h).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return nil
			}
			return err
		}
		if err := tx.Where("holding_id = ?", holdingID).Delete(&domain.InvestmentTransaction{}).Error; err != nil {
			return err
		}
		if err := tx.Where("holding_id = ?", holdingID).Delete(&domain.CostBasisLot{}).Error; err != nil {
			return err
		}
		if err := tx.Where("holding_id = ?", holdingID).Delete(&domain.Holding{}).Error; err != nil {
			return err
		}
		deleted = true
		return nil
	})
	return deleted, err
}
