// Package metrics provides Prometheus metrics for the simulator.
package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Config 指标命名配置
type Config struct {
	Namespace string
	Subsystem string
}

// DefaultConfig 返回默认配置
func DefaultConfig() Config {
	return Config{Namespace: "mmsim"}
}

// Monitor collects simulator metrics on its own registry, so several
// instances (one per test, say) never collide.
type Monitor struct {
	registry *prometheus.Registry

	episodes prometheus.Counter
	steps    prometheus.Counter
	fills    *prometheus.CounterVec
	fillQty  *prometheus.CounterVec

	nav              prometheus.Gauge
	inventory        prometheus.Gauge
	reservationPrice prometheus.Gauge
	episodePnL       prometheus.Histogram
}

// New 创建新的Monitor实例
func New(cfg Config) *Monitor {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Monitor{
		registry: reg,
		episodes: factory.NewCounter(prometheus.CounterOpts{
			Namespace: cfg.Namespace,
			Subsystem: cfg.Subsystem,
			Name:      "episodes_total",
			Help:      "已完成的 episode 数",
		}),
		steps: factory.NewCounter(prometheus.CounterOpts{
			Namespace: cfg.Namespace,
			Subsystem: cfg.Subsystem,
			Name:      "steps_total",
			Help:      "执行的 step 总数",
		}),
		fills: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: cfg.Namespace,
			Subsystem: cfg.Subsystem,
			Name:      "fills_total",
			Help:      "成交次数，按方向",
		}, []string{"side"}),
		fillQty: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: cfg.Namespace,
			Subsystem: cfg.Subsystem,
			Name:      "filled_quantity_total",
			Help:      "累计成交数量，按方向",
		}, []string{"side"}),
		nav: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: cfg.Namespace,
			Subsystem: cfg.Subsystem,
			Name:      "nav",
			Help:      "最近一步的净值",
		}),
		inventory: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: cfg.Namespace,
			Subsystem: cfg.Subsystem,
			Name:      "inventory",
			Help:      "最近一步的持仓",
		}),
		reservationPrice: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: cfg.Namespace,
			Subsystem: cfg.Subsystem,
			Name:      "reservation_price",
			Help:      "策略给出的保留价",
		}),
		episodePnL: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: cfg.Namespace,
			Subsystem: cfg.Subsystem,
			Name:      "episode_pnl",
			Help:      "episode 期末盈亏分布",
			Buckets:   []float64{-500, -100, -50, -10, -1, 0, 1, 10, 50, 100, 500},
		}),
	}
}

// Registry exposes the underlying registry.
func (m *Monitor) Registry() *prometheus.Registry { return m.registry }

// Handler serves the registry in the Prometheus text format.
func (m *Monitor) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ObserveStep records one environment step.
func (m *Monitor) ObserveStep(nav float64, inventory int64) {
	m.steps.Inc()
	m.nav.Set(nav)
	m.inventory.Set(float64(inventory))
}

// ObserveFill records a fill on "bid" or "ask".
func (m *Monitor) ObserveFill(side string, qty int64) {
	m.fills.WithLabelValues(side).Inc()
	m.fillQty.WithLabelValues(side).Add(float64(qty))
}

// ObserveEpisode records a finished episode and its PnL.
func (m *Monitor) ObserveEpisode(pnl float64) {
	m.episodes.Inc()
	m.episodePnL.Observe(pnl)
}

// ObserveReservePrice records the policy's reservation price.
func (m *Monitor) ObserveReservePrice(p float64) {
	m.reservationPrice.Set(p)
}

// StartMetricsServer 启动Prometheus指标服务器，ctx 结束时关闭。
func StartMetricsServer(ctx context.Context, addr string, m *Monitor) <-chan error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()
	return errCh
}
