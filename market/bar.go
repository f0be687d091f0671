package market

import (
	"math"
	"time"
)

// Bar represents one OHLCV row of a time-indexed price series.
type Bar struct {
	Time   time.Time
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume float64
}

// CloseOnly 构造只有收盘价的 bar（合成路径使用），open/high/low 置为 NaN。
func CloseOnly(ts time.Time, close float64) Bar {
	nan := math.NaN()
	return Bar{Time: ts, Open: nan, High: nan, Low: nan, Close: close}
}

// TypicalPrice 返回 (close+high+low)/3。
func (b Bar) TypicalPrice() float64 {
	return (b.Close + b.High + b.Low) / 3
}

// HasOHLC 判断 open/high/low 是否都有效且 low <= high。
func (b Bar) HasOHLC() bool {
	if !finite(b.Open) || !finite(b.High) || !finite(b.Low) || !finite(b.Close) {
		return false
	}
	return b.Low <= b.High
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
