package ledger

import (
	"context"
	"encoding/json"
	"time"

	"ledger-backend/internal/domain"
	"ledger-backend/internal/pkg/fixedpoint"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Service is the single entry point for ledger mutations. Each create or
// delete runs inside one gorm transaction so the lot mutation, the
// transaction row, and the recomputed holding aggregate commit or roll back
// together; callers never observe partial state.
type Service struct {
	DB *gorm.DB
}

// CreateTransactionInput is one requested ledger event. Shares is the
// positive magnitude in fixed-point units (1/10000 share); the stored row
// carries the sign convention (negative for sells). TotalAmount may be left
// zero for buys/sells/DRIPs, in which case it is derived from shares, price
// and fees.
type CreateTransactionInput struct {
	HoldingID     uuid.UUID
	Type          domain.TransactionType
	Date          time.Time
	Shares        int64
	PricePerShare int64 // cents
	TotalAmount   int64 // cents
	Fees          int64 // cents
	SplitRatio    string
	Notes         *string
}

// CreateTransaction validates the request, applies the lot mutation for its
// type, persists the transaction row, and recomputes the holding aggregate,
// all atomically.
func (s *Service) CreateTransaction(ctx context.Context, in CreateTransactionInput) (*domain.InvestmentTransaction, error) {
	if !in.Type.Valid() {
		return nil, ErrInvalidTransactionType
	}

	var splitNum, splitDen int64
	switch in.Type {
	case domain.TxBuy, domain.TxSell, domain.TxDrip:
		if in.Shares <= 0 {
			return nil, ErrInvalidShares
		}
	case domain.TxStockSplit:
		from, to, err := parseSplitRatio(in.SplitRatio)
		if err != nil {
			return nil, err
		}
		splitNum, splitDen = to, from
	}

	rec := &domain.InvestmentTransaction{
		HoldingID:     in.HoldingID,
		Type:          in.Type,
		Date:          in.Date,
		Shares:        in.Shares,
		PricePerShare: in.PricePerShare,
		TotalAmount:   totalAmount(in),
		Fees:          in.Fees,
		Notes:         in.Notes,
	}

	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var holding domain.Holding
		if err := tx.Where("holding_id = ?", in.HoldingID).First(&holding).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return ErrHoldingNotFound
			}
			return err
		}

		switch in.Type {
		case domain.TxBuy, domain.TxDrip:
			lot, err := applyAcquisition(tx, holding.HoldingID, in)
			if err != nil {
				return err
			}
			rec.LotID = &lot.LotID
		case domain.TxSell:
			deductions, err := applySell(tx, holding.HoldingID, in.Shares)
			if err != nil {
				return err
			}
			detail, err := json.Marshal(deductions)
			if err != nil {
				return err
			}
			rec.SellDetail = datatypes.JSON(detail)
			rec.Shares = -in.Shares
		case domain.TxDividend:
			// cash-flow marker only; no lot mutation
		case domain.TxStockSplit:
			if err := rescaleLots(tx, holding.HoldingID, splitNum, splitDen); err != nil {
				return err
			}
			ratio := in.SplitRatio
			rec.SplitRatio = &ratio
		}

		if err := tx.Create(rec).Error; err != nil {
			return err
		}
		return recalcAggregate(tx, holding.HoldingID)
	})
	if err != nil {
		return nil, err
	}
	return rec, nil
}

// DeleteTransaction reverses a transaction's lot mutation, removes the row,
// and recomputes the aggregate, atomically. Returns false (and no error)
// when the transaction does not exist.
func (s *Service) DeleteTransaction(ctx context.Context, txID uuid.UUID) (bool, error) {
	deleted := false
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var rec domain.InvestmentTransaction
		if err := tx.Where("tx_id = ?", txID).First(&rec).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return nil
			}
			return err
		}

		if err := reverseTransaction(tx, &rec); err != nil {
			return err
		}
		if err := tx.Where("tx_id = ?", txID).Delete(&domain.InvestmentTransaction{}).Error; err != nil {
			return err
		}
		deleted = true
		return recalcAggregate(tx, rec.HoldingID)
	})
	return deleted, err
}

// RecalculateHolding recomputes the aggregate directly. Exposed for callers
// that bulk-import lots and defer recomputation to the end of the batch;
// idempotent.
func (s *Service) RecalculateHolding(ctx context.Context, holdingID uuid.UUID) error {
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var holding domain.Holding
		if err := tx.Where("holding_id = ?", holdingID).First(&holding).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return ErrHoldingNotFound
			}
			return err
		}
		return recalcAggregate(tx, holdingID)
	})
}

// GetTransaction returns one transaction row.
func (s *Service) GetTransaction(ctx context.Context, txID uuid.UUID) (*domain.InvestmentTransaction, error) {
	var rec domain.InvestmentTransaction
	if err := s.DB.WithContext(ctx).Where("tx_id = ?", txID).First(&rec).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrTransactionNotFound
		}
		return nil, err
	}
	return &rec, nil
}

// ListTransactions returns a holding's transactions, most recent first.
func (s *Service) ListTransactions(ctx context.Context, holdingID uuid.UUID) ([]domain.InvestmentTransaction, error) {
	var txs []domain.InvestmentTransaction
	err := s.DB.WithContext(ctx).
		Where("holding_id = ?", holdingID).
		Order("date DESC, created_at DESC").
		Find(&txs).Error
	return txs, err
}

// ListLots returns a holding's lots in FIFO order.
func (s *Service) ListLots(ctx context.Context, holdingID uuid.UUID) ([]domain.CostBasisLot, error) {
	return lotsFIFO(s.DB.WithContext(ctx), holdingID)
}

// totalAmount derives the cash amount when the caller left it zero.
func totalAmount(in CreateTransactionInput) int64 {
	if in.TotalAmount != 0 {
		return in.TotalAmount
	}
	gross := fixedpoint.DivRound(in.Shares*in.PricePerShare, fixedpoint.ShareScale)
	switch in.Type {
	case domain.TxBuy, domain.TxDrip:
		return gross + in.Fees
	case domain.TxSell:
		return gross - in.Fees
	}
	return 0
}
