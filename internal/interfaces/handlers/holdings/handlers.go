package holdings

import (
	holdingssvc "ledger-backend/internal/application/holdings"
	"ledger-backend/internal/pkg/fixedpoint"
	"ledger-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type Handlers struct {
	Service *holdingssvc.Service
}

type CreateHoldingRequest struct {
	AccountID string  `json:"account_id"`
	Ticker    string  `json:"ticker"`
	Name      string  `json:"name"`
	Sector    *string `json:"sector"`
}

type UpdatePriceRequest struct {
	CurrentPrice string `json:"current_price"` // dollars, e.g. "182.50"
}

// CreateHolding POST /api/v1/holdings/create-holding
func (h *Handlers) CreateHolding(c *fiber.Ctx) error {
	var body CreateHoldingRequest
	if err := c.BodyParser(&body); err != nil {
		return response.Error(c, "Missing required fields", fiber.StatusBadRequest, nil)
	}
	if body.AccountID == "" || body.Ticker == "" || body.Name == "" {
		return response.Error(c, "account_id, ticker and name are required", fiber.StatusBadRequest, nil)
	}
	accountID, err := uuid.Parse(body.AccountID)
	if err != nil {
		return response.Error(c, "Invalid UUID format for account_id", fiber.StatusBadRequest, nil)
	}

	holding, err := h.Service.CreateHolding(c.Context(), holdingssvc.CreateInput{
		AccountID: accountID,
		Ticker:    body.Ticker,
		Name:      body.Name,
		Sector:    body.Sector,
	})
	if err != nil {
		return response.Error(c, "Failed to create holding", fiber.StatusInternalServerError, nil)
	}
	return response.SuccessCreated(c, "Holding created successfully", holding, nil)
}

// ViewHoldings GET /api/v1/holdings/view-holdings?account_id=...
func (h *Handlers) ViewHoldings(c *fiber.Ctx) error {
	accountID, err := uuid.Parse(c.Query("account_id"))
	if err != nil {
		return response.Error(c, "Invalid UUID format for account_id", fiber.StatusBadRequest, nil)
	}
	holdings, err := h.Service.ListByAccount(c.Context(), accountID)
	if err != nil {
		return response.Error(c, "Failed to fetch holdings", fiber.StatusInternalServerError, nil)
	}
	return response.Success(c, "Holdings fetched successfully", holdings, fiber.Map{
		"count": len(holdings),
	})
}

// ViewHolding GET /api/v1/holdings/view-holding/:holding_id
func (h *Handlers) ViewHolding(c *fiber.Ctx) error {
	holdingID, err := uuid.Parse(c.Params("holding_id"))
	if err != nil {
		return response.Error(c, "Invalid UUID format for holding_id", fiber.StatusBadRequest, nil)
	}
	holding, err := h.Service.GetHolding(c.Context(), holdingID)
	if err != nil {
		if err == holdingssvc.ErrHoldingNotFound {
			return response.Error(c, err.Error(), fiber.StatusNotFound, nil)
		}
		return response.Error(c, "Failed to fetch holding", fiber.StatusInternalServerError, nil)
	}
	return response.Success(c, "Holding fetched successfully", holding, fiber.Map{
		"shares_owned":       fixedpoint.FormatShares(holding.SharesOwned),
		"avg_cost_per_share": fixedpoint.FormatCents(holding.AvgCostPerShare),
		"current_price":      fixedpoint.FormatCents(holding.CurrentPrice),
	})
}

// UpdatePrice PATCH /api/v1/holdings/update-price/:holding_id
func (h *Handlers) UpdatePrice(c *fiber.Ctx) error {
	holdingID, err := uuid.Parse(c.Params("holding_id"))
	if err != nil {
		return response.Error(c, "Invalid UUID format for holding_id", fiber.StatusBadRequest, nil)
	}
	var body UpdatePriceRequest
	if err := c.BodyParser(&body); err != nil || body.CurrentPrice == "" {
		return response.Error(c, "current_price is required", fiber.StatusBadRequest, nil)
	}
	priceCents, err := fixedpoint.ParseCents(body.CurrentPrice)
	if err != nil {
		return response.Error(c, "Invalid current_price", fiber.StatusBadRequest, nil)
	}
	holding, err := h.Service.UpdatePrice(c.Context(), holdingID, priceCents)
	if err != nil {
		if err == holdingssvc.ErrHoldingNotFound {
			return response.Error(c, err.Error(), fiber.StatusNotFound, nil)
		}
		return response.Error(c, "Failed to update price", fiber.StatusInternalServerError, nil)
	}
	return response.Success(c, "Price updated successfully", holding, nil)
}

// DeleteHolding DELETE /api/v1/holdings/delete-holding/:holding_id
func (h *Handlers) DeleteHolding(c *fiber.Ctx) error {
	holdingID, err := uuid.Parse(c.Params("holding_id"))
	if err != nil {
		return response.Error(c, "Invalid UUID format for holding_id", fiber.StatusBadRequest, nil)
	}
	deleted, err := h.Service.DeleteHolding(c.Context(), holdingID)
	if err != nil {
		return response.Error(c, "Failed to delete holding", fiber.StatusInternalServerError, nil)
	}
	if !deleted {
		return response.Error(c, "Holding not found", fiber.StatusNotFound, nil)
	}
	return response.Success(c, "Holding deleted successfully", fiber.Map{"holding_id": holdingID}, nil)
}
