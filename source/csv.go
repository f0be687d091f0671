package source

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"market-maker-sim/market"
	"market-maker-sim/simerr"
)

var seriesHeader = []string{"datetime", "open", "high", "low", "close", "volume"}

// 历史文件中可能出现的时间格式
var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04",
	"2006-01-02",
}

// WriteCSV 按 datetime,open,high,low,close,volume 写出序列，每行一个时间点。
func WriteCSV(w io.Writer, s market.Series) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(seriesHeader); err != nil {
		return err
	}
	for _, b := range s {
		row := []string{
			b.Time.UTC().Format(time.RFC3339Nano),
			formatFloat(b.Open),
			formatFloat(b.High),
			formatFloat(b.Low),
			formatFloat(b.Close),
			formatFloat(b.Volume),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// SaveCSV 将序列写入文件。
func SaveCSV(path string, s market.Series) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create series file: %w", err)
	}
	if err := WriteCSV(f, s); err != nil {
		f.Close()
		return fmt.Errorf("write series file: %w", err)
	}
	return f.Close()
}

// ReadCSV 读取 WriteCSV 写出的序列；空单元格视为缺失 (NaN)，结果按时间升序并校验。
func ReadCSV(r io.Reader) (market.Series, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("%w: read header: %v", simerr.ErrData, err)
	}
	idx := headerIndex(header)
	if _, ok := idx["datetime"]; !ok {
		return nil, fmt.Errorf("%w: missing datetime column", simerr.ErrData)
	}
	if _, ok := idx["close"]; !ok {
		return nil, fmt.Errorf("%w: missing close column", simerr.ErrData)
	}

	var out market.Series
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
		out = append(out, b)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Time.Before(out[j].Time) })
	if err := out.Validate(); err != nil {
		return nil, err
	}
	return out, nil
}

// LoadCSV 从文件读取序列。
func LoadCSV(path string) (market.Series, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: open series file: %v", simerr.ErrData, err)
	}
	defer f.Close()
	return ReadCSV(f)
}

func headerIndex(header []string) map[string]int {
	idx := make(map[string]int, len(header))
	for i, h := range header {
		idx[strings.ToLower(strings.TrimSpace(h))] = i
	}
	return idx
}

func parseBar(rec []string, idx map[string]int) (market.Bar, error) {
	var b market.Bar
	ts, err := parseTime(field(rec, idx, "datetime"))
	if err != nil {
		return b, err
	}
	b.Time = ts
	if b.Open, err = parseFloat(field(rec, idx, "open")); err != nil {
		return b, fmt.Errorf("open: %w", err)
	}
	if b.High, err = parseFloat(field(rec, idx, "high")); err != nil {
		return b, fmt.Errorf("high: %w", err)
	}
	if b.Low, err = parseFloat(field(rec, idx, "low")); err != nil {
		return b, fmt.Errorf("low: %w", err)
	}
	if b.Close, err = parseFloat(field(rec, idx, "close")); err != nil {
		return b, fmt.Errorf("close: %w", err)
	}
	if b.Volume, err = parseFloat(field(rec, idx, "volume")); err != nil {
		return b, fmt.Errorf("volume: %w", err)
	}
	if math.IsNaN(b.Volume) {
		b.Volume = 0
	}
	return b, nil
}

func field(rec []string, idx map[string]int, name string) string {
	i, ok := idx[name]
	if !ok || i >= len(rec) {
		return ""
	}
	return strings.TrimSpace(rec[i])
}

func parseTime(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, fmt.Errorf("empty datetime")
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized datetime %q", s)
}

func parseFloat(s string) (float64, error) {
	if s == "" || strings.EqualFold(s, "nan") {
		return math.NaN(), nil
	}
	return strconv.ParseFloat(s, 64)
}

func formatFloat(v float64) string {
	if math.IsNaN(v) {
		return ""
	}
	return strconv.FormatFloat(v, 'g', -1, 64)
}
