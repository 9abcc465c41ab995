package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CostBasisLot is a single acquisition event ("tax lot") for a holding.
// RemainingShares only decreases (FIFO sells) or is rescaled (splits),
// except when a sell is reversed and its deductions are restored.
//
// Invariant: 0 <= RemainingShares <= Shares.
type CostBasisLot struct {
	LotID           uuid.UUID `gorm:"column:lot_id;type:uuid;primaryKey" json:"lot_id"`
	HoldingID       uuid.UUID `gorm:"column:holding_id;type:uuid;not null;index" json:"holding_id"`
	PurchaseDate    time.Time `gorm:"column:purchase_date;not null" json:"purchase_date"`
	Shares          int64     `gorm:"column:shares;not null" json:"shares"`                     // fixed-point, 1/10000 share
	CostPerShare    int64     `gorm:"column:cost_per_share;not null" json:"cost_per_share"`     // cents
	RemainingShares int64     `gorm:"column:remaining_shares;not null" json:"remaining_shares"` // fixed-point, 1/10000 share
	CreatedAt       time.Time `gorm:"column:created_at" json:"created_at"`
}

func (CostBasisLot) TableName() string {
	return "cost_basis_lots"
}

func (l *CostBasisLot) BeforeCreate(tx *gorm.DB) error {
	if l.LotID == uuid.Nil {
		l.LotID = uuid.New()
	}
	return nil
}
