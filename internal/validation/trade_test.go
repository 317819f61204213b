package validation_test

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/mleiva/portfolio-tracker-backend/internal/api/request"
	"github.com/mleiva/portfolio-tracker-backend/internal/model"
	"github.com/mleiva/portfolio-tracker-backend/internal/validation"
)

func validTradesRequest() request.CreateTradesRequest {
	return request.CreateTradesRequest{
		Date: "2022-03-01",
		Legs: []request.TradeLegRequest{
			{Asset: "US", Side: model.SideBuy, AmountUSD: decimal.NewFromInt(500)},
			{Asset: "EU", Side: model.SideSell, AmountUSD: decimal.NewFromInt(200)},
		},
	}
}

func TestValidateCreateTrades(t *testing.T) {
	t.Run("accepts a well-formed request", func(t *testing.T) {
		if err := validation.ValidateCreateTrades(validTradesRequest()); err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
	})

	tests := []struct {
		name   string
		mutate func(*request.CreateTradesRequest)
		field  string
	}{
		{
			"missing date",
			func(r *request.CreateTradesRequest) { r.Date = "" },
			"date",
		},
		{
			"malformed date",
			func(r *request.CreateTradesRequest) { r.Date = "01/03/2022" },
			"date",
		},
		{
			"empty legs",
			func(r *request.CreateTradesRequest) { r.Legs = nil },
			"legs",
		},
		{
			"missing asset",
			func(r *request.CreateTradesRequest) { r.Legs[0].Asset = " " },
			"legs[0].asset",
		},
		{
			"missing side",
			func(r *request.CreateTradesRequest) { r.Legs[1].Side = "" },
			"legs[1].side",
		},
		{
			"invalid side",
			func(r *request.CreateTradesRequest) { r.Legs[0].Side = "HOLD" },
			"legs[0].side",
		},
		{
			"zero amount",
			func(r *request.CreateTradesRequest) { r.Legs[0].AmountUSD = decimal.Zero },
			"legs[0].amount_usd",
		},
		{
			"negative amount",
			func(r *request.CreateTradesRequest) { r.Legs[1].AmountUSD = decimal.NewFromInt(-5) },
			"legs[1].amount_usd",
		},
	}

	for _, tt := range tests {
		t.Run("rejects "+tt.name, func(t *testing.T) {
			req := validTradesRequest()
			tt.mutate(&req)

			err := validation.ValidateCreateTrades(req)
			if err == nil {
				t.Fatal("Expected validation error, got nil")
			}

			vErr, ok := err.(*validation.Error)
			if !ok {
				t.Fatalf("Expected *validation.Error, got %T", err)
			}
			if _, present := vErr.Fields[tt.field]; !present {
				t.Errorf("Expected a message for field %q, got %v", tt.field, vErr.Fields)
			}
		})
	}
}

func TestValidateUUID(t *testing.T) {
	if err := validation.ValidateUUID("550e8400-e29b-41d4-a716-446655440000"); err != nil {
		t.Errorf("Unexpected error for valid UUID: %v", err)
	}
	if err := validation.ValidateUUID("not-a-uuid"); err == nil {
		t.Error("Expected error for invalid UUID, got nil")
	}
}
