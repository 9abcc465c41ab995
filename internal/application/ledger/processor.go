package ledger

import (
	"encoding/json"
	"strconv"
	"strings"

	"ledger-backend/internal/domain"
	"ledger-backend/internal/pkg/fixedpoint"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// applyAcquisition creates the cost-basis lot for a buy or DRIP.
func applyAcquisition(tx *gorm.DB, holdingID uuid.UUID, in CreateTransactionInput) (*domain.CostBasisLot, error) {
	lot := &domain.CostBasisLot{
		HoldingID:       holdingID,
		PurchaseDate:    in.Date,
		Shares:          in.Shares,
		CostPerShare:    in.PricePerShare,
		RemainingShares: in.Shares,
	}
	if err := tx.Create(lot).Error; err != nil {
		return nil, err
	}
	return lot, nil
}

// lotsFIFO loads a holding's lots oldest purchase first; equal purchase
// dates fall back to creation order so depletion is deterministic.
func lotsFIFO(tx *gorm.DB, holdingID uuid.UUID) ([]domain.CostBasisLot, error) {
	var lots []domain.CostBasisLot
	err := tx.Where("holding_id = ?", holdingID).
		Order("purchase_date ASC, created_at ASC").
		Find(&lots).Error
	return lots, err
}

// applySell deducts n shares from the holding's lots in FIFO order and
// returns the per-lot deductions for the sell's reversal snapshot. The whole
// quantity must be covered up front: no lot is touched when the holding has
// fewer than n shares remaining.
func applySell(tx *gorm.DB, holdingID uuid.UUID, n int64) ([]domain.LotDeduction, error) {
	lots, err := lotsFIFO(tx, holdingID)
	if err != nil {
		return nil, err
	}

	var available int64
	for _, lot := range lots {
		available += lot.RemainingShares
	}
	if available < n {
		return nil, ErrInsufficientShares
	}

	deductions := make([]domain.LotDeduction, 0, len(lots))
	for _, lot := range lots {
		if n == 0 {
			break
		}
		if lot.RemainingShares <= 0 {
			continue
		}
		take := lot.RemainingShares
		if take > n {
			take = n
		}
		if err := tx.Model(&domain.CostBasisLot{}).
			Where("lot_id = ?", lot.LotID).
			Update("remaining_shares", lot.RemainingShares-take).Error; err != nil {
			return nil, err
		}
		deductions = append(deductions, domain.LotDeduction{LotID: lot.LotID, Shares: take})
		n -= take
	}
	return deductions, nil
}

// rescaleLots applies a stock split to every lot of the holding: share
// counts scale by num/den, the per-share cost by den/num. Each lot's basis
// is preserved up to a single rounding per field.
func rescaleLots(tx *gorm.DB, holdingID uuid.UUID, num, den int64) error {
	lots, err := lotsFIFO(tx, holdingID)
	if err != nil {
		return err
	}
	for _, lot := range lots {
		updates := map[string]interface{}{
			"shares":           fixedpoint.MulDivRound(lot.Shares, num, den),
			"remaining_shares": fixedpoint.MulDivRound(lot.RemainingShares, num, den),
			"cost_per_share":   fixedpoint.MulDivRound(lot.CostPerShare, den, num),
		}
		if err := tx.Model(&domain.CostBasisLot{}).
			Where("lot_id = ?", lot.LotID).
			Updates(updates).Error; err != nil {
			return err
		}
	}
	return nil
}

// reverseTransaction undoes the lot mutation of a previously applied
// transaction. Dispatch is exhaustive over the transaction types.
func reverseTransaction(tx *gorm.DB, rec *domain.InvestmentTransaction) error {
	switch rec.Type {
	case domain.TxBuy, domain.TxDrip:
		return reverseAcquisition(tx, rec)
	case domain.TxSell:
		return reverseSell(tx, rec)
	case domain.TxStockSplit:
		return reverseSplit(tx, rec)
	case domain.TxDividend:
		return nil // nothing to unwind
	}
	return ErrInvalidTransactionType
}

// reverseAcquisition deletes the lot the buy/DRIP created. Exact inverse.
func reverseAcquisition(tx *gorm.DB, rec *domain.InvestmentTransaction) error {
	if rec.LotID == nil {
		return ErrLotNotFound
	}
	res := tx.Where("lot_id = ?", *rec.LotID).Delete(&domain.CostBasisLot{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrLotNotFound
	}
	return nil
}

// reverseSell replays the deduction snapshot, restoring exactly the lots the
// sell depleted, original purchase dates and costs included. Quantities are
// restored verbatim; a split applied after the sell leaves the snapshot in
// pre-split units.
func reverseSell(tx *gorm.DB, rec *domain.InvestmentTransaction) error {
	var deductions []domain.LotDeduction
	if len(rec.SellDetail) > 0 {
		if err := json.Unmarshal(rec.SellDetail, &deductions); err != nil {
			return err
		}
	}
	for _, d := range deductions {
		var lot domain.CostBasisLot
		if err := tx.Where("lot_id = ?", d.LotID).First(&lot).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return ErrLotNotFound
			}
			return err
		}
		if err := tx.Model(&domain.CostBasisLot{}).
			Where("lot_id = ?", d.LotID).
			Update("remaining_shares", lot.RemainingShares+d.Shares).Error; err != nil {
			return err
		}
	}
	return nil
}

// reverseSplit re-applies the rescale with the inverted ratio. Exact up to
// the forward split's rounding; repeated split/reverse cycles can drift.
func reverseSplit(tx *gorm.DB, rec *domain.InvestmentTransaction) error {
	if rec.SplitRatio == nil {
		return ErrInvalidSplitRatio
	}
	from, to, err := parseSplitRatio(*rec.SplitRatio)
	if err != nil {
		return err
	}
	return rescaleLots(tx, rec.HoldingID, from, to)
}

// parseSplitRatio parses "from:to" (e.g. "1:2" = one old share becomes two).
// Both sides must be positive integers.
func parseSplitRatio(s string) (from, to int64, err error) {
	parts := strings.Split(s, ":")
	if len(parts) != 2 {
		return 0, 0, ErrInvalidSplitRatio
	}
	from, err = strconv.ParseInt(strings.TrimSpace(parts[0]), 10, 64)
	if err != nil || from <= 0 {
		return 0, 0, ErrInvalidSplitRatio
	}
	to, err = strconv.ParseInt(strings.TrimSpace(parts[1]), 10, 64)
	if err != nil || to <= 0 {
		return 0, 0, ErrInvalidSplitRatio
	}
	return from, to, nil
}

// recalcAggregate recomputes SharesOwned and AvgCostPerShare from the
// holding's lots and writes them back. It is the last step of every apply
// and reverse; rounding happens only on the final division.
func recalcAggregate(tx *gorm.DB, holdingID uuid.UUID) error {
	lots, err := lotsFIFO(tx, holdingID)
	if err != nil {
		return err
	}

	// remaining*cost fits int64 for any position under ~10^8 shares at
	// ~$10k/share (10^12 share-units x 10^6 cents < 2^63).
	var totalShares, weightedCost int64
	for _, lot := range lots {
		totalShares += lot.RemainingShares
		weightedCost += lot.RemainingShares * lot.CostPerShare
	}

	var avg int64
	if totalShares > 0 {
		avg = fixedpoint.DivRound(weightedCost, totalShares)
	}

	return tx.Model(&domain.Holding{}).
		Where("holding_id = ?", holdingID).
		Updates(map[string]interface{}{
			"shares_owned":       totalShares,
			"avg_cost_per_share": avg,
		}).Error
}
