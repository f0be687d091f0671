package source

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"math/rand"
	"os"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"market-maker-sim/market"
	"market-maker-sim/simerr"
)

// 历史数据源默认参数
const (
	DefaultInterval   = time.Minute
	DefaultPriceScale = 1000.0
	DefaultSigma      = 0.0002
	DefaultVolPeriods = 252

	// MinInterval 重采样周期下限，过小的周期会让向前填充的 bar 数失控。
	MinInterval = time.Second
)

// HistoricalConfig 控制历史文件的采样与重采样方式。
type HistoricalConfig struct {
	Path       string
	Interval   time.Duration // 重采样周期
	PriceScale float64       // 价格除数（原始报价单位换算）
	// Sigma 为写入元数据的波动率，nil 时取 DefaultSigma；UseEstimatedSigma 时改用样本估计值。
	Sigma             *float64
	UseEstimatedSigma bool
	VolPeriods        int // 年化波动率的周期数
}

func (c *HistoricalConfig) applyDefaults() {
	if c.Interval <= 0 {
		c.Interval = DefaultInterval
	}
	if c.PriceScale == 0 {
		c.PriceScale = DefaultPriceScale
	}
	if c.Sigma == nil {
		sigma := DefaultSigma
		c.Sigma = &sigma
	}
	if c.VolPeriods <= 0 {
		c.VolPeriods = DefaultVolPeriods
	}
}

// Historical 从包含多日、多证券的原始行情文件中随机抽取一个连续样本（日期+证券代码），
// 重采样为固定周期 bar 并向前填充空档。
type Historical struct {
	cfg     HistoricalConfig
	samples map[string][]market.Bar
	ids     []string
	meta    AssetMetadata
	log     *zap.Logger
}

// NewHistorical 读取整个文件并按样本分组。
func NewHistorical(cfg HistoricalConfig, log *zap.Logger) (*Historical, error) {
	f, err := os.Open(cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("%w: open historical file: %v", simerr.ErrData, err)
	}
	defer f.Close()
	return NewHistoricalFromReader(f, cfg, log)
}

// NewHistoricalFromReader 与 NewHistorical 相同，但从 reader 读取。
func NewHistoricalFromReader(r io.Reader, cfg HistoricalConfig, log *zap.Logger) (*Historical, error) {
	cfg.applyDefaults()
	if !(cfg.PriceScale > 0) {
		return nil, fmt.Errorf("%w: price scale must be > 0, got %v", simerr.ErrConfiguration, cfg.PriceScale)
	}
	if cfg.Interval < MinInterval {
		return nil, fmt.Errorf("%w: resample interval must be >= %s, got %s", simerr.ErrConfiguration, MinInterval, cfg.Interval)
	}
	if !(*cfg.Sigma >= 0) || math.IsInf(*cfg.Sigma, 0) {
		return nil, fmt.Errorf("%w: sigma must be >= 0, got %v", simerr.ErrConfiguration, *cfg.Sigma)
	}
	if log == nil {
		log = zap.NewNop()
	}
	samples, err := readSamples(r)
	if err != nil {
		return nil, err
	}
	if len(samples) == 0 {
		return nil, fmt.Errorf("%w: historical file has no rows", simerr.ErrData)
	}
	ids := make([]string, 0, len(samples))
	for id := range samples {
		ids = append(ids, id)
	}
	// 排序保证同一随机种子抽到同一样本
	sort.Strings(ids)
	return &Historical{
		cfg:     cfg,
		samples: samples,
		ids:     ids,
		meta:    AssetMetadata{Type: TypeHistorical},
		log:     log,
	}, nil
}

// SampleIDs 返回全部样本标识（date_seccd），已排序。
func (h *Historical) SampleIDs() []string {
	out := make([]string, len(h.ids))
	copy(out, h.ids)
	return out
}

func (h *Historical) Metadata() AssetMetadata { return h.meta }

// Reset 随机抽取一个样本并刷新元数据。
func (h *Historical) Reset(rng *rand.Rand) (market.Series, error) {
	if rng == nil {
		return nil, fmt.Errorf("%w: historical source needs a random source", simerr.ErrConfiguration)
	}
	id := h.ids[rng.Intn(len(h.ids))]
	return h.Sample(id)
}

// Sample 取出指定样本，重采样后返回。
func (h *Historical) Sample(id string) (market.Series, error) {
	raw, ok := h.samples[id]
	if !ok {
		return nil, fmt.Errorf("%w: unknown sample %s", simerr.ErrData, id)
	}
	series := market.NewResampler(h.cfg.Interval).Resample(raw)
	for i := range series {
		series[i].Open /= h.cfg.PriceScale
		series[i].High /= h.cfg.PriceScale
		series[i].Low /= h.cfg.PriceScale
		series[i].Close /= h.cfg.PriceScale
	}
	if err := series.Validate(); err != nil {
		return nil, fmt.Errorf("sample %s: %w", id, err)
	}

	date, secCode, _ := strings.Cut(id, "_")
	rows := len(series)
	estimate := market.SeriesVolatility(series, h.cfg.VolPeriods)
	sigma := *h.cfg.Sigma
	if h.cfg.UseEstimatedSigma {
		sigma = estimate
	} else if rows > 2 && math.Abs(estimate-sigma) > 1e-12 {
		h.log.Warn("historical sigma uses configured default instead of sample estimate",
			zap.String("sample", id),
			zap.Float64("sigma", sigma),
			zap.Float64("sigma_estimate", estimate),
		)
	}
	h.meta = AssetMetadata{
		Type:          TypeHistorical,
		Dt:            1 / float64(rows),
		TotalTime:     float64(rows),
		Sigma:         sigma,
		Date:          date,
		SecCode:       secCode,
		SigmaEstimate: estimate,
	}
	return series, nil
}

// readSamples 解析 datetime,sec_cd,open,high,low,close,volume（列顺序任意）。
func readSamples(r io.Reader) (map[string][]market.Bar, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("%w: read header: %v", simerr.ErrData, err)
	}
	idx := headerIndex(header)
	for _, col := range []string{"datetime", "sec_cd", "open", "high", "low", "close"} {
		if _, ok := idx[col]; !ok {
			return nil, fmt.Errorf("%w: historical file missing column %s", simerr.ErrData, col)
		}
	}

	samples := make(map[string][]market.Bar)
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %v", simerr.ErrData, line, err)
		}
		b, err := parseBar(rec, idx)
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %v", simerr.ErrData, line, err)
		}
		sec := field(rec, idx, "sec_cd")
		if sec == "" {
			return nil, fmt.Errorf("%w: line %d: empty sec_cd", simerr.ErrData, line)
		}
		id := b.Time.Format("2006-01-02") + "_" + sec
		samples[id] = append(samples[id], b)
	}
	return samples, nil
}
