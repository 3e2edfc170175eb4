// Package replay provides a bar replayer that reads historical OHLCV
// data from CSV and emits it at configurable speed. The replayer is the
// caller-side bar source: the engine core itself never fetches data.
package replay

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/gocarina/gocsv"
	"github.com/rs/zerolog"

	"signal-enginev1/internal/model"
)

// csvBar is the CSV row layout: RFC3339 timestamp plus OHLCV.
type csvBar struct {
	Timestamp string  `csv:"timestamp"`
	Open      float64 `csv:"open"`
	High      float64 `csv:"high"`
	Low       float64 `csv:"low"`
	Close     float64 `csv:"close"`
	Volume    float64 `csv:"volume"`
}

// LoadBars reads an ordered bar series from a CSV file. Rows must carry
// RFC3339 timestamps; parse failures abort the load with the offending
// row in the error.
func LoadBars(path string) ([]model.Bar, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open bar file: %w", err)
	}
	defer f.Close()

	var rows []csvBar
	if err := gocsv.UnmarshalFile(f, &rows); err != nil {
		return nil, fmt.Errorf("parse bar file %s: %w", path, err)
	}

	bars := make([]model.Bar, 0, len(rows))
	for i, row := range rows {
		ts, err := time.Parse(time.RFC3339, row.Timestamp)
		if err != nil {
			return nil, fmt.Errorf("%w: bad timestamp %q at row %d", model.ErrValidation, row.Timestamp, i+1)
		}
		bars = append(bars, model.Bar{
			TS:     ts.UTC(),
			Open:   row.Open,
			High:   row.High,
			Low:    row.Low,
			Close:  row.Close,
			Volume: row.Volume,
		})
	}
	return bars, nil
}

// Replayer streams a loaded bar series at a configurable speed
// multiplier, simulating the gaps between bar timestamps.
type Replayer struct {
	bars []model.Bar
	log  zerolog.Logger
}

// New creates a Replayer over an already-loaded series.
func New(bars []model.Bar, log zerolog.Logger) *Replayer {
	return &Replayer{
		bars: bars,
		log:  log.With().Str("component", "replay").Logger(),
	}
}

// Run emits all bars into outCh. speed controls the playback rate:
// 1.0 = real-time, 10.0 = 10x, 0 = as fast as possible.
func (r *Replayer) Run(ctx context.Context, speed float64, outCh chan<- model.Bar) error {
	if len(r.bars) == 0 {
		r.log.Warn().Msg("no bars to replay")
		return nil
	}
	r.log.Info().Int("bars", len(r.bars)).Float64("speed", speed).Msg("replay starting")

	var prevTS time.Time
	emitted := 0

	for _, b := range r.bars {
		select {
		case <-ctx.Done():
			r.log.Info().Int("emitted", emitted).Msg("replay cancelled")
			return ctx.Err()
		default:
		}

		// Simulate time gaps between bars
		if speed > 0 && !prevTS.IsZero() {
			gap := b.TS.Sub(prevTS)
			if gap > 0 {
				scaledGap := time.Duration(float64(gap) / speed)
				// Cap max sleep to avoid very long waits
				if scaledGap > 5*time.Second {
					scaledGap = 5 * time.Second
				}
				select {
				case <-ctx.Done():
					return ctx.Err()
				case <-time.After(scaledGap):
				}
			}
		}
		prevTS = b.TS

		outCh <- b
		emitted++
	}

	r.log.Info().Int("emitted", emitted).Msg("replay completed")
	return nil
}
