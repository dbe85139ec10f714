package calculator

import (
	"fmt"

	"github.com/holiman/uint256"
	"github.com/mmynk/billsplitter/internal/models"
)

// Refund is what one payer gets back when a V1 bill is cancelled.
type Refund struct {
	Payer  models.Address
	Shares uint8
	Amount *uint256.Int
}

// RefundPlan computes gross refunds (shares × sharePrice) for every
// contribution, in the order given. It also returns the total, which the
// creator has to cover. Zero-share contributions are skipped.
func RefundPlan(contributions []models.Contribution, sharePrice *uint256.Int) ([]Refund, *uint256.Int, error) {
	total := new(uint256.Int)
	refunds := make([]Refund, 0, len(contributions))

	for _, c := range contributions {
		if c.Shares == 0 {
			continue
		}
		amount, err := ShareAmount(sharePrice, c.Shares)
		if err != nil {
			return nil, nil, fmt.Errorf("refund for %s: %w", c.Payer, err)
		}
		if _, overflow := total.AddOverflow(total, amount); overflow {
			return nil, nil, fmt.Errorf("%w: refund total", ErrOverflow)
		}
		refunds = append(refunds, Refund{Payer: c.Payer, Shares: c.Shares, Amount: amount})
	}

	return refunds, total, nil
}
