package main

import (
	"context"
	"encoding/csv"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"
	"time"

	"go.uber.org/zap"

	"market-maker-sim/config"
	"market-maker-sim/infrastructure/logger"
	"market-maker-sim/metrics"
	"market-maker-sim/sim"
)

// 按配置批量运行做市仿真，输出每个 episode 的 history CSV 与汇总。
// 用法：
//
//	go run ./cmd/sim -config configs/sim.yaml -out out/ -summary out/summary.csv
func main() {
	cfgPath := flag.String("config", "configs/sim.yaml", "配置文件路径")
	outDir := flag.String("out", "", "history CSV 输出目录（覆盖配置）")
	summaryPath := flag.String("summary", "", "汇总 CSV 路径（覆盖配置）")
	watch := flag.Bool("watch", false, "配置文件变化后重新运行")
	metricsAddr := flag.String("metrics", "", "Prometheus 监听地址，如 :9100（覆盖配置）")
	flag.Parse()

	cfg, err := config.LoadWithEnvOverrides(*cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "加载配置失败: %v\n", err)
		os.Exit(1)
	}
	applyFlags(&cfg, *outDir, *summaryPath, *metricsAddr)

	log, err := logger.New(cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "初始化日志失败: %v\n", err)
		os.Exit(1)
	}
	defer log.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var mon *metrics.Monitor
	if cfg.Metrics.Enabled {
		mon = metrics.New(metrics.DefaultConfig())
		errCh := metrics.StartMetricsServer(ctx, cfg.Metrics.Addr, mon)
		go func() {
			if err := <-errCh; err != nil {
				log.Error("metrics server stopped", zap.Error(err))
			}
		}()
		log.Info("metrics server started", zap.String("addr", cfg.Metrics.Addr))
	}

	if err := run(ctx, cfg, log, mon); err != nil && !errors.Is(err, context.Canceled) {
		log.LogError(err, map[string]interface{}{"stage": "run"})
		if !*watch {
			os.Exit(1)
		}
	}
	if !*watch {
		return
	}

	w, err := config.NewWatcher(*cfgPath, time.Second)
	if err != nil {
		log.LogError(err, map[string]interface{}{"stage": "watch"})
		os.Exit(1)
	}
	log.Info("watching config", zap.String("path", *cfgPath))
	err = w.Run(ctx, func(next config.SimConfig) {
		applyFlags(&next, *outDir, *summaryPath, *metricsAddr)
		log.Info("config reloaded", zap.Int("episodes", next.Episodes), zap.Int64("seed", next.Seed))
		if err := run(ctx, next, log, mon); err != nil && !errors.Is(err, context.Canceled) {
			log.LogError(err, map[string]interface{}{"stage": "rerun"})
		}
	}, func(err error) {
		log.Warn("config reload failed, keeping previous", zap.Error(err))
	})
	if err != nil && !errors.Is(err, context.Canceled) {
		log.LogError(err, map[string]interface{}{"stage": "watch"})
	}
}

func applyFlags(cfg *config.SimConfig, outDir, summaryPath, metricsAddr string) {
	if outDir != "" {
		cfg.Output.HistoryDir = outDir
	}
	if summaryPath != "" {
		cfg.Output.SummaryPath = summaryPath
	}
	if metricsAddr != "" {
		cfg.Metrics.Enabled = true
		cfg.Metrics.Addr = metricsAddr
	}
}

func run(ctx context.Context, cfg config.SimConfig, log *logger.Logger, mon *metrics.Monitor) error {
	opts := []sim.Option{sim.WithLogger(log)}
	if mon != nil {
		opts = append(opts, sim.WithRecorder(mon))
	}
	batch := sim.Batch{
		Build:   func() (*sim.Runner, error) { return sim.BuildRunner(cfg, opts...) },
		Workers: cfg.Workers,
	}
	start := time.Now()
	episodes, err := batch.Run(ctx, sim.Seeds(cfg.Seed, cfg.Episodes))
	if err != nil {
		return err
	}
	log.Info("batch finished",
		zap.Int("episodes", len(episodes)),
		zap.Duration("elapsed", time.Since(start)),
	)

	if dir := cfg.Output.HistoryDir; dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create history dir: %w", err)
		}
		for _, ep := range episodes {
			path := filepath.Join(dir, fmt.Sprintf("episode_%d_%s.csv", ep.Seed, ep.ID))
			if err := ep.History.SaveCSV(path); err != nil {
				return err
			}
		}
	}
	if cfg.Output.SummaryPath != "" {
		if err := writeSummaryCSV(cfg.Output.SummaryPath, episodes); err != nil {
			return err
		}
		log.Info("summary written", zap.String("path", cfg.Output.SummaryPath))
	}
	if len(episodes) == 1 {
		episodes[0].Summary.Print(os.Stdout)
	}
	return nil
}

func writeSummaryCSV(path string, episodes []*sim.Episode) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create summary: %w", err)
	}
	defer f.Close()
	w := csv.NewWriter(f)
	header := []string{"episode_id", "seed", "steps", "final_nav", "pnl", "return", "max_drawdown", "sharpe", "bid_fills", "ask_fills", "final_inventory"}
	if err := w.Write(header); err != nil {
		return err
	}
	ff := func(v float64) string { return strconv.FormatFloat(v, 'f', 6, 64) }
	for _, ep := range episodes {
		s := ep.Summary
		row := []string{
			ep.ID.String(),
			strconv.FormatInt(ep.Seed, 10),
			strconv.Itoa(s.Steps),
			ff(s.FinalNAV),
			ff(s.TotalPnL),
			ff(s.TotalReturn),
			ff(s.MaxDrawdown),
			ff(s.Sharpe),
			strconv.Itoa(s.BidFills),
			strconv.Itoa(s.AskFills),
			strconv.FormatInt(s.FinalInventory, 10),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}
