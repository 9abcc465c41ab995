package ledger

import "errors"

// Validation/consistency failures surfaced by the ledger. All are local and
// non-retryable; handlers map them to 4xx responses.
var (
	ErrHoldingNotFound        = errors.New("Holding not found")
	ErrLotNotFound            = errors.New("Lot not found")
	ErrTransactionNotFound    = errors.New("Transaction not found")
	ErrInvalidTransactionType = errors.New("Invalid transaction type")
	ErrInvalidShares          = errors.New("Shares must be a positive quantity")
	ErrInvalidSplitRatio      = errors.New("Invalid split ratio")
	ErrInsufficientShares     = errors.New("Insufficient shares to sell")
)
