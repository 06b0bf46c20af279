package main

import (
	"fmt"
	"io"
	"os"
	"sync"
	"text/tabwriter"
	"time"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/panjf2000/ants/v2"
	"github.com/spf13/cobra"

	"github.com/eth2030/dntat/dntat"
	"github.com/eth2030/dntat/metrics"
)

func newBenchCmd(a *app) *cobra.Command {
	d := DefaultConfig()
	cmd := &cobra.Command{
		Use:   "bench",
		Short: "Measure issuance and verification throughput across signer counts",
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			return a.bench()
		},
	}
	f := cmd.Flags()
	f.Int("signers", d.Signers, "number of signers when no sweep is given")
	f.IntSlice("sweep", nil, "signer counts to benchmark, e.g. 1,2,4,8")
	f.Int("rounds", d.Rounds, "tokens issued per signer count")
	f.Int("parallel", d.Parallel, "concurrent issuance sessions")
	f.String("chart", d.Chart, "write an HTML latency chart to this path")
	f.String("metrics", d.Metrics, "write Prometheus text metrics to this path, - for stdout")
	return cmd
}

// benchRow is the result for one signer count.
type benchRow struct {
	Signers    int
	Rounds     int
	Sign       metrics.HistogramSnapshot
	Aggregate  metrics.HistogramSnapshot
	Verify     metrics.HistogramSnapshot
	Wall       time.Duration
	Throughput float64
}

func (a *app) bench() error {
	logger := a.log.Module("bench")
	pool, err := ants.NewPool(a.cfg.Parallel)
	if err != nil {
		return fmt.Errorf("bench: worker pool: %w", err)
	}
	defer pool.Release()

	reg := metrics.NewRegistry()
	var rows []benchRow
	for _, n := range a.cfg.SignerCounts() {
		row, err := a.benchSigners(pool, reg, n)
		if err != nil {
			return err
		}
		logger.Info("signer count done", "signers", n, "rounds", row.Rounds, "wall", row.Wall, "tokens_per_sec", row.Throughput)
		rows = append(rows, row)
	}

	if err := writeTable(a.stdout, rows); err != nil {
		return err
	}
	if a.cfg.Chart != "" {
		if err := writeChart(a.cfg.Chart, rows); err != nil {
			return err
		}
		logger.Info("chart written", "path", a.cfg.Chart)
	}
	if a.cfg.Metrics != "" {
		if err := a.writeMetrics(reg); err != nil {
			return err
		}
	}
	return nil
}

// benchSigners issues cfg.Rounds tokens for a fresh set of n signers through
// the pool and records per-phase latencies in reg.
func (a *app) benchSigners(pool *ants.Pool, reg *metrics.Registry, n int) (benchRow, error) {
	sks, pks, err := generateSigners(n)
	if err != nil {
		return benchRow{}, err
	}
	apk, err := dntat.AggregateKeys(pks)
	if err != nil {
		return benchRow{}, err
	}
	pku, sku, err := dntat.GenerateUserKeyPair()
	if err != nil {
		return benchRow{}, err
	}

	signTime := reg.Histogram(fmt.Sprintf("bench.signers_%d.sign_ms", n))
	aggTime := reg.Histogram(fmt.Sprintf("bench.signers_%d.aggregate_ms", n))
	verifyTime := reg.Histogram(fmt.Sprintf("bench.signers_%d.verify_ms", n))
	issued := reg.Counter(fmt.Sprintf("bench.signers_%d.tokens", n))

	signer := a.newSigner()
	var (
		wg       sync.WaitGroup
		errOnce  sync.Once
		firstErr error
	)
	fail := func(err error) {
		errOnce.Do(func() { firstErr = err })
	}

	start := time.Now()
	for r := 0; r < a.cfg.Rounds; r++ {
		wg.Add(1)
		err := pool.Submit(func() {
			defer wg.Done()

			t := metrics.NewTimer(signTime)
			res, err := signer.Sign(sks, pks, &sku, &pku)
			t.Stop()
			if err != nil {
				fail(err)
				return
			}

			t = metrics.NewTimer(aggTime)
			tok, err := res.Aggregate(pks)
			t.Stop()
			if err != nil {
				fail(err)
				return
			}

			t = metrics.NewTimer(verifyTime)
			ok := dntat.Verify(tok, apk, &sku)
			t.Stop()
			if !ok {
				fail(fmt.Errorf("bench: token from %d signers failed verification", n))
				return
			}
			if res.Proof != nil && !dntat.VerifyRequest(res.Request, res.Proof, &pku) {
				fail(fmt.Errorf("bench: request proof from %d signers rejected", n))
				return
			}
			issued.Inc()
		})
		if err != nil {
			wg.Done()
			fail(fmt.Errorf("bench: submit: %w", err))
			break
		}
	}
	wg.Wait()
	wall := time.Since(start)
	if firstErr != nil {
		return benchRow{}, firstErr
	}

	return benchRow{
		Signers:    n,
		Rounds:     a.cfg.Rounds,
		Sign:       signTime.Snapshot(),
		Aggregate:  aggTime.Snapshot(),
		Verify:     verifyTime.Snapshot(),
		Wall:       wall,
		Throughput: float64(a.cfg.Rounds) / wall.Seconds(),
	}, nil
}

func writeTable(w io.Writer, rows []benchRow) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "signers\trounds\tsign ms\taggregate ms\tverify ms\twall\ttokens/s\t")
	for _, r := range rows {
		fmt.Fprintf(tw, "%d\t%d\t%.3f\t%.3f\t%.3f\t%s\t%.1f\t\n",
			r.Signers, r.Rounds, r.Sign.Mean, r.Aggregate.Mean, r.Verify.Mean,
			r.Wall.Round(time.Millisecond), r.Throughput)
	}
	return tw.Flush()
}

func lineItems(rows []benchRow, pick func(benchRow) float64) []opts.LineData {
	out := make([]opts.LineData, len(rows))
	for i, r := range rows {
		out[i] = opts.LineData{Value: pick(r)}
	}
	return out
}

func writeChart(path string, rows []benchRow) error {
	labels := make([]string, len(rows))
	for i, r := range rows {
		labels[i] = fmt.Sprintf("%d", r.Signers)
	}

	latency := charts.NewLine()
	latency.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: "Mean latency per phase", Subtitle: "milliseconds by signer count"}),
		charts.WithInitializationOpts(opts.Initialization{PageTitle: "dntat bench", Width: "1200px", Height: "500px"}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true)}),
	)
	latency.SetXAxis(labels).
		AddSeries("sign", lineItems(rows, func(r benchRow) float64 { return r.Sign.Mean })).
		AddSeries("aggregate", lineItems(rows, func(r benchRow) float64 { return r.Aggregate.Mean })).
		AddSeries("verify", lineItems(rows, func(r benchRow) float64 { return r.Verify.Mean }))

	throughput := charts.NewBar()
	throughput.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: "Issuance throughput", Subtitle: "tokens per second"}),
		charts.WithInitializationOpts(opts.Initialization{Width: "1200px", Height: "500px"}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
	)
	bars := make([]opts.BarData, len(rows))
	for i, r := range rows {
		bars[i] = opts.BarData{Value: r.Throughput}
	}
	throughput.SetXAxis(labels).AddSeries("tokens/s", bars)

	page := components.NewPage()
	page.AddCharts(latency, throughput)

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("bench: create chart: %w", err)
	}
	if err := page.Render(f); err != nil {
		f.Close()
		return fmt.Errorf("bench: render chart: %w", err)
	}
	return f.Close()
}

// writeMetrics dumps the bench registry followed by the library's default
// registry in Prometheus text format.
func (a *app) writeMetrics(reg *metrics.Registry) error {
	w := a.stdout
	if a.cfg.Metrics != "-" {
		f, err := os.Create(a.cfg.Metrics)
		if err != nil {
			return fmt.Errorf("bench: create metrics file: %w", err)
		}
		defer f.Close()
		w = f
	}
	if err := metrics.WritePrometheus(w, reg, ""); err != nil {
		return err
	}
	return metrics.WritePrometheus(w, metrics.DefaultRegistry, "")
}
