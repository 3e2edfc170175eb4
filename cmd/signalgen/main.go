// signalgen runs the signal engine over a historical bar series and
// prints the broker-ready orders it would submit.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"signal-enginev1/config"
	"signal-enginev1/internal/candle"
	"signal-enginev1/internal/indicator"
	"signal-enginev1/internal/logging"
	"signal-enginev1/internal/markethours"
	"signal-enginev1/internal/metrics"
	"signal-enginev1/internal/model"
	"signal-enginev1/internal/orderbuilder"
	"signal-enginev1/internal/pipeline"
	"signal-enginev1/internal/replay"
	"signal-enginev1/internal/ringbuf"
	"signal-enginev1/internal/strategy"
)

var version = "dev"

func main() {
	root := &cobra.Command{
		Use:   "signalgen",
		Short: "RSI/Fibonacci signal engine",
	}
	root.AddCommand(runCmd(), levelsCmd(), versionCmd())
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func runCmd() *cobra.Command {
	var (
		cfgPath  string
		barsFile string
		serveMet bool
	)
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Replay a CSV bar series through the signal pipeline",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(cfgPath)
			if err != nil {
				return err
			}
			if barsFile != "" {
				cfg.BarsFile = barsFile
			}
			if cfg.BarsFile == "" {
				return fmt.Errorf("no bar file: pass --bars or set bars_file in config")
			}
			log := logging.New(cfg.Logging)

			met := metrics.NewMetrics()
			health := metrics.NewHealthStatus()
			if serveMet {
				srv := metrics.NewServer(cfg.MetricsAddr, health, log)
				srv.Start()
				defer func() {
					ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
					defer cancel()
					srv.Stop(ctx)
				}()
			}

			calendar := markethours.NewCalendar("BTCUSD", "ETHUSD")
			engine, err := strategy.NewEngine(cfg.Strategy.ToStrategy(), calendar, met, log)
			if err != nil {
				return err
			}
			builder, err := orderbuilder.New(orderbuilder.Options{
				MinRewardRisk: cfg.Strategy.RewardRiskRatio,
				ExpiryHours:   cfg.Strategy.ExpiryHours,
				Volume:        cfg.Volume,
				StrategyName:  cfg.Strategy.Name,
			}, met, log)
			if err != nil {
				return err
			}
			detector := candle.NewDetector(log)

			pipe, err := pipeline.New(cfg.Instrument, cfg.Timeframe, detector, engine, builder,
				met, health, log)
			if err != nil {
				return err
			}
			var orders []*model.Order
			pipe.OnOrder = func(o *model.Order) {
				orders = append(orders, o)
				fmt.Println(marshalOrder(o))
			}

			bars, err := replay.LoadBars(cfg.BarsFile)
			if err != nil {
				return err
			}

			ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()

			// Replay feeds a channel; an SPSC ring decouples the feed
			// goroutine from the synchronous pipeline loop.
			barCh := make(chan model.Bar, 64)
			ring := ringbuf.New(1024)
			done := make(chan error, 1)

			go func() {
				defer close(barCh)
				done <- replay.New(bars, log).Run(ctx, cfg.Speed, barCh)
			}()
			go func() {
				for bar := range barCh {
					for !ring.Push(bar) {
						time.Sleep(time.Millisecond)
					}
				}
			}()

			feeding := true
			for feeding || ring.Len() > 0 {
				select {
				case err := <-done:
					feeding = false
					if err != nil && ctx.Err() == nil {
						return err
					}
				default:
				}
				bar, ok := ring.Pop()
				if !ok {
					if ctx.Err() != nil {
						break
					}
					time.Sleep(time.Millisecond)
					continue
				}
				if _, err := pipe.OnBar(bar); err != nil {
					log.Error().Err(err).Time("bar", bar.TS).Msg("candle aborted")
				}
			}

			log.Info().Int("orders", len(orders)).Uint64("ring_overflow", ring.Overflow()).
				Msg("replay run finished")
			return nil
		},
	}
	cmd.Flags().StringVarP(&cfgPath, "config", "c", "", "config file (YAML)")
	cmd.Flags().StringVarP(&barsFile, "bars", "b", "", "CSV bar series to replay")
	cmd.Flags().BoolVar(&serveMet, "metrics", false, "serve /metrics and /healthz")
	return cmd
}

func levelsCmd() *cobra.Command {
	var (
		barsFile string
		lookback int
	)
	cmd := &cobra.Command{
		Use:   "levels",
		Short: "Print swing extremes and Fibonacci levels for a bar series",
		RunE: func(cmd *cobra.Command, args []string) error {
			bars, err := replay.LoadBars(barsFile)
			if err != nil {
				return err
			}
			high, low, err := indicator.Swing(bars, lookback)
			if err != nil {
				return err
			}
			levels, err := indicator.FibLevels(high.Price, low.Price, nil)
			if err != nil {
				return err
			}
			fmt.Printf("swing high %.5f (%d bars ago), swing low %.5f (%d bars ago)\n",
				high.Price, high.BarsAgo, low.Price, low.BarsAgo)

			ratios := make([]float64, 0, len(levels))
			for r := range levels {
				ratios = append(ratios, r)
			}
			sort.Float64s(ratios)
			for _, r := range ratios {
				fmt.Printf("  %.3f  %.5f\n", r, levels[r])
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&barsFile, "bars", "b", "", "CSV bar series")
	cmd.Flags().IntVarP(&lookback, "lookback", "n", 20, "swing lookback in bars")
	cmd.MarkFlagRequired("bars")
	return cmd
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the signalgen version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println("signalgen", version)
		},
	}
}

func marshalOrder(o *model.Order) string {
	return fmt.Sprintf(`{"id":%q,"symbol":%q,"type":%q,"entry":%g,"stop":%g,"target":%g,"rr":%.2f,"expires":%q}`,
		o.ID, o.Symbol, o.OrderType, o.EntryPrice, o.StopLoss, o.TakeProfit,
		o.RiskRewardRatio, o.ExpiryTime.Format(time.RFC3339))
}
