package market

import (
	"sort"
	"time"
)

// Resampler 将原始成交/bar 聚合为固定周期的 bar，空档位向前填充。
type Resampler struct {
	Interval time.Duration
}

func NewResampler(interval time.Duration) *Resampler {
	if interval <= 0 {
		interval = time.Minute
	}
	return &Resampler{Interval: interval}
}

// Resample 按 Time.Truncate(Interval) 分桶：open 取首个，high 取最大，low 取最小，
// close 取最后一个，volume 求和。首尾之间没有数据的桶复制上一桶的 OHLC，volume 为 0。
func (r *Resampler) Resample(bars []Bar) Series {
	if len(bars) == 0 {
		return nil
	}
	sorted := make([]Bar, len(bars))
	copy(sorted, bars)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Time.Before(sorted[j].Time)
	})

	var out Series
	var current *Bar
	for _, b := range sorted {
		bucket := b.Time.Truncate(r.Interval)
		if current != nil && bucket.Equal(current.Time) {
			if b.High > current.High {
				current.High = b.High
			}
			if b.Low < current.Low {
				current.Low = b.Low
			}
			current.Close = b.Close
			current.Volume += b.Volume
			continue
		}
		if current != nil {
			out = append(out, *current)
			// 补齐中间空桶
			for ts := current.Time.Add(r.Interval); ts.Before(bucket); ts = ts.Add(r.Interval) {
				filled := *current
				filled.Time = ts
				filled.Volume = 0
				out = append(out, filled)
			}
		}
		current = &Bar{
			Time:   bucket,
			Open:   b.Open,
			High:   b.High,
			Low:    b.Low,
			Close:  b.Close,
			Volume: b.Volume,
		}
	}
	out = append(out, *current)
	return out
}
