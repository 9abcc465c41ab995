package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Holding is a position in one instrument within one account.
//
// SharesOwned and AvgCostPerShare are derived from the holding's cost-basis
// lots and are written only by the ledger's aggregate recomputation, never
// directly by callers.
type Holding struct {
	HoldingID       uuid.UUID `gorm:"column:holding_id;type:uuid;primaryKey" json:"holding_id"`
	AccountID       uuid.UUID `gorm:"column:account_id;type:uuid;not null;index" json:"account_id"`
	Ticker          string    `gorm:"column:ticker;type:varchar(12);not null" json:"ticker"`
	Name            string    `gorm:"column:name;not null" json:"name"`
	Sector          *string   `gorm:"column:sector" json:"sector"`
	SharesOwned     int64     `gorm:"column:shares_owned;not null;default:0" json:"shares_owned"`           // fixed-point, 1/10000 share
	AvgCostPerShare int64     `gorm:"column:avg_cost_per_share;not null;default:0" json:"avg_cost_per_share"` // cents
	CurrentPrice    int64     `gorm:"column:current_price;not null;default:0" json:"current_price"`          // cents, set externally
	CreatedAt       time.Time `gorm:"column:created_at" json:"created_at"`
	UpdatedAt       time.Time `gorm:"column:updated_at" json:"updated_at"`
}

func (Holding) TableName() string {
	return "holdings"
}

// BeforeCreate: never insert zero UUID for primary key; generate random when not set.
func (h *Holding) BeforeCreate(tx *gorm.DB) error {
	if h.HoldingID == uuid.Nil {
		h.HoldingID = uuid.New()
	}
	return nil
}
