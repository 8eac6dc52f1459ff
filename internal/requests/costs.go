package requests

import (
	"github.com/shopspring/decimal"

	"github.com/wayhaul/wayhaul-backend/pkg/db/models"
)

// ItemsEstimatedTotal sums estimated price times quantity across every item,
// excluding the delivery fee. The budget ceiling applies to this number.
func ItemsEstimatedTotal(req *models.DeliveryRequest) decimal.Decimal {
	total := decimal.Zero
	for _, item := range req.Items {
		total = total.Add(item.EstimatedPrice.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}
	return total
}

// TotalEstimatedCost is the items estimate plus the delivery fee.
func TotalEstimatedCost(req *models.DeliveryRequest) decimal.Decimal {
	return ItemsEstimatedTotal(req).Add(req.DeliveryFee)
}

// ItemsActualTotal sums actual price times quantity across every item,
// excluding the delivery fee. It is nil until every item carries an actual
// price.
func ItemsActualTotal(req *models.DeliveryRequest) *decimal.Decimal {
	if len(req.Items) == 0 {
		return nil
	}
	total := decimal.Zero
	for _, item := range req.Items {
		if item.ActualPrice == nil {
			return nil
		}
		total = total.Add(item.ActualPrice.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}
	return &total
}

// TotalActualCost is the actual spend plus the delivery fee. It is nil until
// every item carries an actual price.
func TotalActualCost(req *models.DeliveryRequest) *decimal.Decimal {
	items := ItemsActualTotal(req)
	if items == nil {
		return nil
	}
	total := items.Add(req.DeliveryFee)
	return &total
}

// CostDifference is actual minus estimated, nil until the actual total exists.
func CostDifference(req *models.DeliveryRequest) *decimal.Decimal {
	actual := TotalActualCost(req)
	if actual == nil {
		return nil
	}
	diff := actual.Sub(TotalEstimatedCost(req))
	return &diff
}

// IsWithinBudget compares the items spend against the requester's ceiling,
// preferring the actual totals once every item is priced and falling back to
// the estimate before then. The delivery fee sits outside the budget.
func IsWithinBudget(req *models.DeliveryRequest) bool {
	if actual := ItemsActualTotal(req); actual != nil {
		return actual.LessThanOrEqual(req.MaxItemBudget)
	}
	return ItemsEstimatedTotal(req).LessThanOrEqual(req.MaxItemBudget)
}
