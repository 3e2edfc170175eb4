package pattern

import (
	"errors"
	"testing"
	"time"

	"signal-enginev1/internal/model"
)

// series builds hourly bars from (high, low) pairs starting at a fixed origin.
func series(spacing time.Duration, hl ...[2]float64) []model.Bar {
	base := time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC)
	bars := make([]model.Bar, len(hl))
	for i, p := range hl {
		mid := (p[0] + p[1]) / 2
		bars[i] = model.Bar{
			TS:     base.Add(time.Duration(i) * spacing),
			Open:   mid,
			High:   p[0],
			Low:    p[1],
			Close:  mid,
			Volume: 1000,
		}
	}
	return bars
}

func TestDetect_CompletedShort(t *testing.T) {
	bars := series(time.Hour,
		[2]float64{101, 99},  // rsi 50
		[2]float64{105, 103}, // rsi 75  cross above 70
		[2]float64{110, 108}, // rsi 80  price high
		[2]float64{107, 105}, // rsi 72
		[2]float64{104, 102}, // rsi 60
		[2]float64{101, 99},  // rsi 35  cross below 40, completion
		[2]float64{100, 96},  // rsi 30  price low
		[2]float64{102, 100}, // rsi 45
	)
	rsi := []float64{50, 75, 80, 72, 60, 35, 30, 45}

	setup, err := New().Detect(bars, rsi)
	if err != nil {
		t.Fatalf("Detect: %v", err)
	}
	if setup == nil {
		t.Fatal("expected a completed SHORT setup")
	}
	if setup.Kind != model.SetupShort {
		t.Fatalf("kind = %v, want SHORT", setup.Kind)
	}
	if setup.PriceHigh != 110 {
		t.Errorf("price high = %v, want 110 (extreme over the overbought range)", setup.PriceHigh)
	}
	if setup.PriceLow != 96 {
		t.Errorf("price low = %v, want 96 (extreme over the oversold range)", setup.PriceLow)
	}
	if setup.RSIHighValue != 80 || setup.RSILowValue != 30 {
		t.Errorf("extreme RSI values = (%v, %v), want (80, 30)", setup.RSIHighValue, setup.RSILowValue)
	}
	if !setup.CompletionTime.Equal(bars[5].TS) {
		t.Errorf("completion time = %v, want %v (first bar back under the low threshold)",
			setup.CompletionTime, bars[5].TS)
	}
	wantAge := bars[7].TS.Sub(bars[5].TS).Hours()
	if setup.AgeHours != wantAge {
		t.Errorf("age = %v hours, want %v", setup.AgeHours, wantAge)
	}
}

func TestDetect_CompletedLong(t *testing.T) {
	bars := series(time.Hour,
		[2]float64{101, 99},  // rsi 50
		[2]float64{97, 95},   // rsi 30  cross below 40
		[2]float64{94, 90},   // rsi 25  price low
		[2]float64{96, 94},   // rsi 35
		[2]float64{99, 97},   // rsi 55
		[2]float64{103, 101}, // rsi 75  cross above 70, completion
		[2]float64{106, 104}, // rsi 80  price high
		[2]float64{104, 102}, // rsi 65
	)
	rsi := []float64{50, 30, 25, 35, 55, 75, 80, 65}

	setup, err := New().Detect(bars, rsi)
	if err != nil {
		t.Fatalf("Detect: %v", err)
	}
	if setup == nil {
		t.Fatal("expected a completed LONG setup")
	}
	if setup.Kind != model.SetupLong {
		t.Fatalf("kind = %v, want LONG", setup.Kind)
	}
	if setup.PriceLow != 90 || setup.PriceHigh != 106 {
		t.Errorf("extremes = (%v, %v), want (106, 90)", setup.PriceHigh, setup.PriceLow)
	}
	if !setup.CompletionTime.Equal(bars[5].TS) {
		t.Errorf("completion time = %v, want %v", setup.CompletionTime, bars[5].TS)
	}
}

func TestDetect_ShortScannedBeforeLong(t *testing.T) {
	// The series completes a LONG first chronologically, then a SHORT.
	// SHORT is scanned first, so the SHORT setup wins.
	bars := series(time.Hour,
		[2]float64{101, 99},  // 50
		[2]float64{97, 95},   // 30  long trigger
		[2]float64{99, 97},   // 55
		[2]float64{103, 101}, // 75  long completion; also short trigger
		[2]float64{101, 99},  // 60
		[2]float64{98, 96},   // 35  short completion
		[2]float64{100, 98},  // 50
	)
	rsi := []float64{50, 30, 55, 75, 60, 35, 50}

	setup, err := New().Detect(bars, rsi)
	if err != nil {
		t.Fatalf("Detect: %v", err)
	}
	if setup == nil || setup.Kind != model.SetupShort {
		t.Fatalf("setup = %+v, want the SHORT setup (SHORT scan runs first)", setup)
	}
}

func TestDetect_NoSetup(t *testing.T) {
	bars := series(time.Hour,
		[2]float64{101, 99},
		[2]float64{102, 100},
		[2]float64{101, 99},
		[2]float64{102, 100},
	)
	rsi := []float64{50, 55, 52, 54}

	setup, err := New().Detect(bars, rsi)
	if err != nil {
		t.Fatalf("Detect: %v", err)
	}
	if setup != nil {
		t.Fatalf("setup = %+v, want nil when RSI never crosses", setup)
	}
}

func TestDetect_CompletionWindowExpiry(t *testing.T) {
	// Bars 30h apart: completion would land 120h after the trigger,
	// outside the 100h window, so the setup never completes.
	bars := series(30*time.Hour,
		[2]float64{101, 99},  // 50
		[2]float64{105, 103}, // 75  trigger
		[2]float64{103, 101}, // 60
		[2]float64{102, 100}, // 60
		[2]float64{101, 99},  // 60
		[2]float64{98, 96},   // 35  too late
	)
	rsi := []float64{50, 75, 60, 60, 60, 35}

	setup, err := New().Detect(bars, rsi)
	if err != nil {
		t.Fatalf("Detect: %v", err)
	}
	if setup != nil && setup.Kind == model.SetupShort {
		t.Fatalf("setup = %+v, want no SHORT when completion falls outside the window", setup)
	}
}

func TestDetect_RangeCollapseDiscarded(t *testing.T) {
	// The oversold extreme sits above the overbought extreme, so the
	// candidate's range is inverted and must be discarded.
	bars := series(time.Hour,
		[2]float64{101, 99},  // 50
		[2]float64{100, 98},  // 75  trigger; "high" = 100
		[2]float64{99, 97},   // 60
		[2]float64{107, 105}, // 35  completion; "low" = 105 > 100
		[2]float64{108, 106}, // 45
	)
	rsi := []float64{50, 75, 60, 35, 45}

	setup, err := New().Detect(bars, rsi)
	if err != nil {
		t.Fatalf("Detect: %v", err)
	}
	if setup != nil && setup.Kind == model.SetupShort {
		t.Fatalf("setup = %+v, want the inverted-range SHORT discarded", setup)
	}
}

func TestDetect_MisalignedSeries(t *testing.T) {
	bars := series(time.Hour, [2]float64{101, 99}, [2]float64{102, 100})
	rsi := []float64{50}

	_, err := New().Detect(bars, rsi)
	if !errors.Is(err, model.ErrValidation) {
		t.Fatalf("misaligned input: got %v, want ErrValidation", err)
	}
}

func TestDetect_TooShort(t *testing.T) {
	bars := series(time.Hour, [2]float64{101, 99})
	setup, err := New().Detect(bars, []float64{50})
	if err != nil || setup != nil {
		t.Fatalf("single bar: got (%+v, %v), want (nil, nil)", setup, err)
	}
}
