package indicator

import (
	"fmt"

	"signal-enginev1/internal/model"
)

// ROC computes the Rate of Change: percentage change of each close vs.
// the close period steps back. The first period entries are 0.0, as is
// any index where the reference close is zero.
func ROC(closes []float64, period int) ([]float64, error) {
	if period < 1 {
		return nil, fmt.Errorf("%w: ROC period must be >= 1, got %d", model.ErrValidation, period)
	}
	out := make([]float64, len(closes))
	for i := period; i < len(closes); i++ {
		ref := closes[i-period]
		if ref == 0 {
			continue
		}
		out[i] = (closes[i] - ref) / ref * 100.0
	}
	return out, nil
}
