package validation

import (
	"fmt"
	"strings"

	"github.com/mleiva/portfolio-tracker-backend/internal/api/request"
	"github.com/mleiva/portfolio-tracker-backend/internal/model"
)

// ValidSide contains the allowed trade side values.
var ValidSide = map[string]bool{
	model.SideBuy: true, model.SideSell: true,
}

// ValidateCreateTrades validates a trade submission request.
//
// Required fields:
//   - date: Must be in YYYY-MM-DD format
//   - legs: Must contain at least one leg
//   - legs[i].asset: Asset code, required
//   - legs[i].side: Must be BUY or SELL
//   - legs[i].amount_usd: Must be positive
//
// Returns a validation Error with field-specific error messages if validation fails.
func ValidateCreateTrades(req request.CreateTradesRequest) error {
	errors := make(map[string]string)

	if strings.TrimSpace(req.Date) == "" {
		errors["date"] = "date is required"
	} else if _, err := ParseDate(req.Date); err != nil {
		errors["date"] = err.Error()
	}

	if len(req.Legs) == 0 {
		errors["legs"] = "at least one leg is required"
	}

	for i, leg := range req.Legs {
		if strings.TrimSpace(leg.Asset) == "" {
			errors[fmt.Sprintf("legs[%d].asset", i)] = "asset is required"
		}

		if strings.TrimSpace(leg.Side) == "" {
			errors[fmt.Sprintf("legs[%d].side", i)] = "side is required"
		} else if !ValidSide[leg.Side] {
			errors[fmt.Sprintf("legs[%d].side", i)] = fmt.Sprintf("invalid side: %s", leg.Side)
		}

		if !leg.AmountUSD.IsPositive() {
			errors[fmt.Sprintf("legs[%d].amount_usd", i)] = "amount_usd must be positive"
		}
	}

	if len(errors) > 0 {
		return &Error{Fields: errors}
	}

	return nil
}
