package requests

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/wayhaul/wayhaul-backend/pkg/db/models"
)

func dec(value string) decimal.Decimal {
	return decimal.RequireFromString(value)
}

func pricedItem(name string, qty int, estimated string, actual *string) models.RequestItem {
	item := models.RequestItem{
		Name:           name,
		Quantity:       qty,
		EstimatedPrice: dec(estimated),
	}
	if actual != nil {
		price := dec(*actual)
		item.ActualPrice = &price
	}
	return item
}

func strPtr(s string) *string { return &s }

func TestTotalEstimatedCostIncludesFee(t *testing.T) {
	req := &models.DeliveryRequest{
		DeliveryFee: dec("3.00"),
		Items: []models.RequestItem{
			pricedItem("milk", 2, "5.49", nil),
			pricedItem("bread", 1, "2.99", nil),
		},
	}

	got := TotalEstimatedCost(req)
	if !got.Equal(dec("16.97")) {
		t.Fatalf("expected 16.97, got %s", got)
	}
}

func TestTotalActualCostNilUntilAllItemsPriced(t *testing.T) {
	req := &models.DeliveryRequest{
		DeliveryFee: dec("3.00"),
		Items: []models.RequestItem{
			pricedItem("milk", 2, "5.49", strPtr("5.25")),
			pricedItem("bread", 1, "2.99", nil),
		},
	}

	if got := TotalActualCost(req); got != nil {
		t.Fatalf("expected nil actual total, got %s", got)
	}

	price := dec("3.10")
	req.Items[1].ActualPrice = &price

	got := TotalActualCost(req)
	if got == nil {
		t.Fatal("expected actual total once every item is priced")
	}
	// 2*5.25 + 3.10 + 3.00 fee
	if !got.Equal(dec("16.60")) {
		t.Fatalf("expected 16.60, got %s", got)
	}
}

func TestTotalActualCostNilForEmptyItems(t *testing.T) {
	req := &models.DeliveryRequest{DeliveryFee: dec("3.00")}
	if got := TotalActualCost(req); got != nil {
		t.Fatalf("expected nil for empty items, got %s", got)
	}
}

func TestCostDifference(t *testing.T) {
	req := &models.DeliveryRequest{
		DeliveryFee: dec("3.00"),
		Items: []models.RequestItem{
			pricedItem("milk", 2, "5.49", strPtr("5.25")),
			pricedItem("bread", 1, "2.99", strPtr("3.10")),
		},
	}

	diff := CostDifference(req)
	if diff == nil {
		t.Fatal("expected a cost difference")
	}
	// 16.60 actual - 16.97 estimated
	if !diff.Equal(dec("-0.37")) {
		t.Fatalf("expected -0.37, got %s", diff)
	}
}

func TestIsWithinBudgetExcludesDeliveryFee(t *testing.T) {
	req := &models.DeliveryRequest{
		MaxItemBudget: dec("15.00"),
		DeliveryFee:   dec("3.00"),
		Items: []models.RequestItem{
			pricedItem("milk", 2, "5.49", nil),
			pricedItem("bread", 1, "1.50", nil),
		},
	}

	// items total 12.48, fee would push past 15.00 but does not count
	if !IsWithinBudget(req) {
		t.Fatal("expected items-only total to fit the budget")
	}

	req.MaxItemBudget = dec("5.00")
	if IsWithinBudget(req) {
		t.Fatal("expected items total 12.48 to exceed a 5.00 budget")
	}

	req.MaxItemBudget = dec("12.48")
	if !IsWithinBudget(req) {
		t.Fatal("a budget equal to the items total is within budget")
	}
}

func TestIsWithinBudgetUsesActualPricesOncePriced(t *testing.T) {
	req := &models.DeliveryRequest{
		MaxItemBudget: dec("5.00"),
		DeliveryFee:   dec("3.00"),
		Items: []models.RequestItem{
			pricedItem("milk", 1, "4.00", strPtr("9.00")),
		},
	}

	// the 4.00 estimate fits, but the 9.00 actual spend does not
	if IsWithinBudget(req) {
		t.Fatal("expected actual total 9.00 to exceed a 5.00 budget")
	}

	req.MaxItemBudget = dec("9.00")
	if !IsWithinBudget(req) {
		t.Fatal("expected actual total 9.00 to fit a 9.00 budget")
	}
}

func TestIsWithinBudgetFallsBackToEstimateWhilePartiallyPriced(t *testing.T) {
	req := &models.DeliveryRequest{
		MaxItemBudget: dec("5.00"),
		Items: []models.RequestItem{
			pricedItem("milk", 1, "4.00", strPtr("9.00")),
			pricedItem("bread", 1, "0.50", nil),
		},
	}

	// one item still unpriced, so the 4.50 estimate governs
	if !IsWithinBudget(req) {
		t.Fatal("expected estimate to govern while an item is unpriced")
	}
}
