package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// TransactionType is the closed set of ledger event types. The transaction
// processor switches exhaustively over these; adding a type means adding
// both an apply and a reverse branch.
type TransactionType string

const (
	TxBuy        TransactionType = "buy"
	TxSell       TransactionType = "sell"
	TxDividend   TransactionType = "dividend"
	TxStockSplit TransactionType = "stock_split"
	TxDrip       TransactionType = "drip"
)

// Valid reports whether t is one of the known transaction types.
func (t TransactionType) Valid() bool {
	switch t {
	case TxBuy, TxSell, TxDividend, TxStockSplit, TxDrip:
		return true
	}
	return false
}

// LotDeduction records how many shares a sell took from one lot. The full
// set of deductions is snapshotted on the sell row so reversal can restore
// the exact lots that were depleted.
type LotDeduction struct {
	LotID  uuid.UUID `json:"lot_id"`
	Shares int64     `json:"shares"` // fixed-point, 1/10000 share
}

// InvestmentTransaction is one ledger event. Rows are immutable once applied
// except for notes/fees edits; undo goes through the reversal path, which
// unwinds the lot mutation before deleting the row.
type InvestmentTransaction struct {
	TxID          uuid.UUID       `gorm:"column:tx_id;type:uuid;primaryKey" json:"tx_id"`
	HoldingID     uuid.UUID       `gorm:"column:holding_id;type:uuid;not null;index" json:"holding_id"`
	Type          TransactionType `gorm:"column:type;type:varchar(20);not null" json:"type"`
	Date          time.Time       `gorm:"column:date;not null" json:"date"`
	Shares        int64           `gorm:"column:shares;not null;default:0" json:"shares"`                   // fixed-point; negative for sells
	PricePerShare int64           `gorm:"column:price_per_share;not null;default:0" json:"price_per_share"` // cents
	TotalAmount   int64           `gorm:"column:total_amount;not null;default:0" json:"total_amount"`       // cents
	Fees          int64           `gorm:"column:fees;not null;default:0" json:"fees"`                       // cents
	SplitRatio    *string         `gorm:"column:split_ratio;type:varchar(20)" json:"split_ratio"`           // "from:to", splits only
	LotID         *uuid.UUID      `gorm:"column:lot_id;type:uuid" json:"lot_id"`                            // lot created by buy/drip
	SellDetail    datatypes.JSON  `gorm:"column:sell_detail" json:"sell_detail"`                            // []LotDeduction, sells only
	Notes         *string         `gorm:"column:notes" json:"notes"`
	CreatedAt     time.Time       `gorm:"column:created_at" json:"created_at"`
	UpdatedAt     time.Time       `gorm:"column:updated_at" json:"updated_at"`
}

func (InvestmentTransaction) TableName() string {
	return "investment_transactions"
}

func (t *InvestmentTransaction) BeforeCreate(tx *gorm.DB) error {
	if t.TxID == uuid.Nil {
		t.TxID = uuid.New()
	}
	return nil
}
