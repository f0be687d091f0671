package source

import (
	"math/rand"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"market-maker-sim/simerr"
)

const warrantCSV = `datetime,sec_cd,open,high,low,close,volume
2023-01-02 09:00:05,CW01,1000,1010,990,1000,5
2023-01-02 09:00:30,CW01,1000,1020,1000,1010,3
2023-01-02 09:02:10,CW01,1010,1030,1005,1020,2
2023-01-02 09:00:00,CW02,2000,2000,2000,2000,1
2023-01-02 09:01:00,CW02,2010,2010,2010,2010,1
2023-01-03 09:00:00,CW01,900,900,900,900,1
`

func TestHistoricalGroupsSamples(t *testing.T) {
	h, err := NewHistoricalFromReader(strings.NewReader(warrantCSV), HistoricalConfig{}, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"2023-01-02_CW01", "2023-01-02_CW02", "2023-01-03_CW01"}, h.SampleIDs())
}

func TestHistoricalSampleResamplesAndScales(t *testing.T) {
	h, err := NewHistoricalFromReader(strings.NewReader(warrantCSV), HistoricalConfig{}, nil)
	require.NoError(t, err)

	s, err := h.Sample("2023-01-02_CW01")
	require.NoError(t, err)
	// 09:00, 09:01 (前向填充), 09:02
	require.Len(t, s, 3)
	assert.Equal(t, time.Date(2023, 1, 2, 9, 0, 0, 0, time.UTC), s[0].Time)
	assert.Equal(t, 1.0, s[0].Open)
	assert.Equal(t, 1.02, s[0].High)
	assert.Equal(t, 0.99, s[0].Low)
	assert.Equal(t, 1.01, s[0].Close)
	assert.Equal(t, 8.0, s[0].Volume)

	assert.Equal(t, s[0].Close, s[1].Close)
	assert.Equal(t, 0.0, s[1].Volume)
	assert.Equal(t, 1.02, s[2].Close)
	assert.True(t, s.HasOHLC())

	meta := h.Metadata()
	assert.Equal(t, TypeHistorical, meta.Type)
	assert.Equal(t, "2023-01-02", meta.Date)
	assert.Equal(t, "CW01", meta.SecCode)
	assert.InDelta(t, 1.0/3, meta.Dt, 1e-15)
	assert.Equal(t, 3.0, meta.TotalTime)
	assert.Equal(t, DefaultSigma, meta.Sigma)
	assert.Greater(t, meta.SigmaEstimate, 0.0)
}

func TestHistoricalFlagsSigmaDiscrepancy(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	h, err := NewHistoricalFromReader(strings.NewReader(warrantCSV), HistoricalConfig{}, zap.New(core))
	require.NoError(t, err)
	_, err = h.Sample("2023-01-02_CW01")
	require.NoError(t, err)
	assert.Equal(t, 1, logs.Len())
}

func TestHistoricalUseEstimatedSigma(t *testing.T) {
	h, err := NewHistoricalFromReader(strings.NewReader(warrantCSV), HistoricalConfig{UseEstimatedSigma: true}, nil)
	require.NoError(t, err)
	_, err = h.Sample("2023-01-02_CW01")
	require.NoError(t, err)
	meta := h.Metadata()
	assert.Equal(t, meta.SigmaEstimate, meta.Sigma)
}

func TestHistoricalKeepsExplicitZeroSigma(t *testing.T) {
	zero := 0.0
	h, err := NewHistoricalFromReader(strings.NewReader(warrantCSV), HistoricalConfig{Sigma: &zero}, nil)
	require.NoError(t, err)
	_, err = h.Sample("2023-01-02_CW01")
	require.NoError(t, err)
	meta := h.Metadata()
	assert.Equal(t, 0.0, meta.Sigma)
	assert.Greater(t, meta.SigmaEstimate, 0.0)
}

func TestHistoricalRejectsTinyInterval(t *testing.T) {
	_, err := NewHistoricalFromReader(strings.NewReader(warrantCSV), HistoricalConfig{Interval: time.Nanosecond}, nil)
	assert.ErrorIs(t, err, simerr.ErrConfiguration)

	negative := -1.0
	_, err = NewHistoricalFromReader(strings.NewReader(warrantCSV), HistoricalConfig{Sigma: &negative}, nil)
	assert.ErrorIs(t, err, simerr.ErrConfiguration)
}

func TestHistoricalResetIsSeeded(t *testing.T) {
	h, err := NewHistoricalFromReader(strings.NewReader(warrantCSV), HistoricalConfig{}, nil)
	require.NoError(t, err)
	pick := func(seed int64) string {
		_, err := h.Reset(rand.New(rand.NewSource(seed)))
		require.NoError(t, err)
		m := h.Metadata()
		return m.Date + "_" + m.SecCode
	}
	assert.Equal(t, pick(5), pick(5))
}

func TestHistoricalRejectsBadFiles(t *testing.T) {
	_, err := NewHistoricalFromReader(strings.NewReader("datetime,close\n"), HistoricalConfig{}, nil)
	assert.ErrorIs(t, err, simerr.ErrData)

	_, err = NewHistoricalFromReader(strings.NewReader("datetime,sec_cd,open,high,low,close\n"), HistoricalConfig{}, nil)
	assert.ErrorIs(t, err, simerr.ErrData)

	_, err = NewHistoricalFromReader(strings.NewReader(warrantCSV), HistoricalConfig{PriceScale: -1}, nil)
	assert.ErrorIs(t, err, simerr.ErrConfiguration)

	h, err := NewHistoricalFromReader(strings.NewReader(warrantCSV), HistoricalConfig{}, nil)
	require.NoError(t, err)
	_, err = h.Sample("missing")
	assert.ErrorIs(t, err, simerr.ErrData)
}
