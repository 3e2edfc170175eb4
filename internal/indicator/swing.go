package indicator

import (
	"fmt"

	"signal-enginev1/internal/model"
)

// SwingPoint is an extreme price within a lookback window and its
// distance in bars from the most recent bar (0 = the latest bar).
type SwingPoint struct {
	Price   float64
	BarsAgo int
}

// Swing scans the last min(window, len(bars)) bars and returns the
// maximum high and minimum low with their distances from the most
// recent bar.
func Swing(bars []model.Bar, window int) (high, low SwingPoint, err error) {
	if len(bars) == 0 {
		return SwingPoint{}, SwingPoint{}, fmt.Errorf("%w: swing scan over empty bar series", model.ErrValidation)
	}
	if window < 2 {
		return SwingPoint{}, SwingPoint{}, fmt.Errorf("%w: swing window must be >= 2, got %d", model.ErrValidation, window)
	}

	start := len(bars) - window
	if start < 0 {
		start = 0
	}
	last := len(bars) - 1

	high = SwingPoint{Price: bars[start].High, BarsAgo: last - start}
	low = SwingPoint{Price: bars[start].Low, BarsAgo: last - start}
	for i := start + 1; i <= last; i++ {
		if bars[i].High > high.Price {
			high = SwingPoint{Price: bars[i].High, BarsAgo: last - i}
		}
		if bars[i].Low < low.Price {
			low = SwingPoint{Price: bars[i].Low, BarsAgo: last - i}
		}
	}
	return high, low, nil
}
