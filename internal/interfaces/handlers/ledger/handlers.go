package ledger

import (
	"time"

	ledgersvc "ledger-backend/internal/application/ledger"
	"ledger-backend/internal/domain"
	"ledger-backend/internal/pkg/fixedpoint"
	"ledger-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type Handlers struct {
	Service *ledgersvc.Service
}

const dateLayout = "2006-01-02"

// CreateTransactionRequest carries quantities as decimal strings ("12.5"
// shares, "100.00" dollars); they are converted exactly to the ledger's
// fixed-point integers, so no float touches a share or money value.
type CreateTransactionRequest struct {
	HoldingID     string  `json:"holding_id"`
	Type          string  `json:"type"`
	Date          string  `json:"date"`            // YYYY-MM-DD
	Shares        string  `json:"shares"`          // buy/sell/drip
	PricePerShare string  `json:"price_per_share"` // dollars
	TotalAmount   string  `json:"total_amount"`    // dollars; required for dividends
	Fees          string  `json:"fees"`            // dollars
	SplitRatio    string  `json:"split_ratio"`     // "from:to", splits only
	Notes         *string `json:"notes"`
}

// CreateTransaction POST /api/v1/ledger/create-transaction
func (h *Handlers) CreateTransaction(c *fiber.Ctx) error {
	var body CreateTransactionRequest
	if err := c.BodyParser(&body); err != nil {
		return response.Error(c, "Missing required fields", fiber.StatusBadRequest, nil)
	}
	if body.HoldingID == "" || body.Type == "" || body.Date == "" {
		return response.Error(c, "holding_id, type and date are required", fiber.StatusBadRequest, nil)
	}
	holdingID, err := uuid.Parse(body.HoldingID)
	if err != nil {
		return response.Error(c, "Invalid UUID format for holding_id", fiber.StatusBadRequest, nil)
	}
	txType := domain.TransactionType(body.Type)
	if !txType.Valid() {
		return response.Error(c, "Invalid transaction type", fiber.StatusBadRequest, nil)
	}
	date, err := time.Parse(dateLayout, body.Date)
	if err != nil {
		return response.Error(c, "Invalid date, expected YYYY-MM-DD", fiber.StatusBadRequest, nil)
	}

	in := ledgersvc.CreateTransactionInput{
		HoldingID:  holdingID,
		Type:       txType,
		Date:       date,
		SplitRatio: body.SplitRatio,
		Notes:      body.Notes,
	}

	switch txType {
	case domain.TxBuy, domain.TxSell, domain.TxDrip:
		if body.Shares == "" || body.PricePerShare == "" {
			return response.Error(c, "shares and price_per_share are required", fiber.StatusBadRequest, nil)
		}
	case domain.TxDividend:
		if body.TotalAmount == "" {
			return response.Error(c, "total_amount is required for dividends", fiber.StatusBadRequest, nil)
		}
	case domain.TxStockSplit:
		if body.SplitRatio == "" {
			return response.Error(c, "split_ratio is required for splits", fiber.StatusBadRequest, nil)
		}
	}

	if body.Shares != "" {
		if in.Shares, err = fixedpoint.ParseShares(body.Shares); err != nil {
			return response.Error(c, "Invalid shares", fiber.StatusBadRequest, nil)
		}
	}
	if body.PricePerShare != "" {
		if in.PricePerShare, err = fixedpoint.ParseCents(body.PricePerShare); err != nil {
			return response.Error(c, "Invalid price_per_share", fiber.StatusBadRequest, nil)
		}
	}
	if body.TotalAmount != "" {
		if in.TotalAmount, err = fixedpoint.ParseCents(body.TotalAmount); err != nil {
			return response.Error(c, "Invalid total_amount", fiber.StatusBadRequest, nil)
		}
	}
	if body.Fees != "" {
		if in.Fees, err = fixedpoint.ParseCents(body.Fees); err != nil {
			return response.Error(c, "Invalid fees", fiber.StatusBadRequest, nil)
		}
	}

	rec, err := h.Service.CreateTransaction(c.Context(), in)
	if err != nil {
		return ledgerError(c, err)
	}
	return response.SuccessCreated(c, "Transaction recorded", rec, fiber.Map{
		"shares":          fixedpoint.FormatShares(rec.Shares),
		"price_per_share": fixedpoint.FormatCents(rec.PricePerShare),
		"total_amount":    fixedpoint.FormatCents(rec.TotalAmount),
	})
}

// DeleteTransaction DELETE /api/v1/ledger/delete-transaction/:tx_id
func (h *Handlers) DeleteTransaction(c *fiber.Ctx) error {
	txID, err := uuid.Parse(c.Params("tx_id"))
	if err != nil {
		return response.Error(c, "Invalid UUID format for tx_id", fiber.StatusBadRequest, nil)
	}
	deleted, err := h.Service.DeleteTransaction(c.Context(), txID)
	if err != nil {
		return ledgerError(c, err)
	}
	if !deleted {
		return response.Error(c, "Transaction not found", fiber.StatusNotFound, nil)
	}
	return response.Success(c, "Transaction deleted", fiber.Map{"tx_id": txID}, nil)
}

// Recalculate POST /api/v1/ledger/recalculate/:holding_id — for callers
// that bulk-import lots and defer aggregate recomputation.
func (h *Handlers) Recalculate(c *fiber.Ctx) error {
	holdingID, err := uuid.Parse(c.Params("holding_id"))
	if err != nil {
		return response.Error(c, "Invalid UUID format for holding_id", fiber.StatusBadRequest, nil)
	}
	if err := h.Service.RecalculateHolding(c.Context(), holdingID); err != nil {
		return ledgerError(c, err)
	}
	return response.Success(c, "Aggregates recalculated", fiber.Map{"holding_id": holdingID}, nil)
}

// GetTransactions GET /api/v1/ledger/get-transactions/:holding_id
func (h *Handlers) GetTransactions(c *fiber.Ctx) error {
	holdingID, err := uuid.Parse(c.Params("holding_id"))
	if err != nil {
		return response.Error(c, "Invalid UUID format for holding_id", fiber.StatusBadRequest, nil)
	}
	txs, err := h.Service.ListTransactions(c.Context(), holdingID)
	if err != nil {
		return ledgerError(c, err)
	}
	return response.Success(c, "Transactions fetched successfully", txs, nil)
}

// GetLots GET /api/v1/ledger/get-lots/:holding_id — lots in FIFO order.
func (h *Handlers) GetLots(c *fiber.Ctx) error {
	holdingID, err := uuid.Parse(c.Params("holding_id"))
	if err != nil {
		return response.Error(c, "Invalid UUID format for holding_id", fiber.StatusBadRequest, nil)
	}
	lots, err := h.Service.ListLots(c.Context(), holdingID)
	if err != nil {
		return ledgerError(c, err)
	}
	return response.Success(c, "Lots fetched successfully", lots, nil)
}

// ledgerError maps the ledger's sentinel errors to HTTP statuses.
func ledgerError(c *fiber.Ctx, err error) error {
	switch err {
	case ledgersvc.ErrHoldingNotFound, ledgersvc.ErrLotNotFound, ledgersvc.ErrTransactionNotFound:
		return response.Error(c, err.Error(), fiber.StatusNotFound, nil)
	case ledgersvc.ErrInvalidTransactionType, ledgersvc.ErrInvalidShares,
		ledgersvc.ErrInvalidSplitRatio, ledgersvc.ErrInsufficientShares:
		return response.Error(c, err.Error(), fiber.StatusBadRequest, nil)
	}
	return response.Error(c, "Internal Server Error", fiber.StatusInternalServerError, nil)
}
