package sim

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"market-maker-sim/posttrade"
)

// BarInfo bar 环境额外记录的 open/high/low。
type BarInfo struct {
	Open float64
	High float64
	Low  float64
}

// Record 一步的完整记录。
type Record struct {
	Tick               int
	Datetime           time.Time
	Quantity           int64
	Cash               float64
	BidQuantity        int64
	BidPrice           float64
	AskQuantity        int64
	AskPrice           float64
	MatchedBidQuantity int64
	MatchedAskQuantity int64
	Close              float64
	StepReward         float64
	NAV                float64

	Bar          *BarInfo // 仅 bar 环境
	ReservePrice *float64 // 由 Runner 补充
}

// History 按 tick 顺序的记录，第 i 条对应 tick i+1。
type History []Record

var baseColumns = []string{
	"datetime", "quantity", "cash",
	"bid_quantity", "bid_price", "ask_quantity", "ask_price",
	"matched_bid_quantity", "matched_ask_quantity",
	"close", "step_reward", "nav",
}

func (h History) hasBar() bool {
	for _, r := range h {
		if r.Bar != nil {
			return true
		}
	}
	return false
}

func (h History) hasReserve() bool {
	for _, r := range h {
		if r.ReservePrice != nil {
			return true
		}
	}
	return false
}

// Columns 表头；有 bar 信息时追加 open,high,low，有保留价时追加 reserve_price。
func (h History) Columns() []string {
	cols := append([]string(nil), baseColumns...)
	if h.hasBar() {
		cols = append(cols, "open", "high", "low")
	}
	if h.hasReserve() {
		cols = append(cols, "reserve_price")
	}
	return cols
}

// Rows 与 Columns 对应的字符串行。
func (h History) Rows() [][]string {
	withBar, withReserve := h.hasBar(), h.hasReserve()
	rows := make([][]string, 0, len(h))
	for _, r := range h {
		row := []string{
			r.Datetime.Format(time.RFC3339Nano),
			strconv.FormatInt(r.Quantity, 10),
			formatFloat(r.Cash),
			strconv.FormatInt(r.BidQuantity, 10),
			formatFloat(r.BidPrice),
			strconv.FormatInt(r.AskQuantity, 10),
			formatFloat(r.AskPrice),
			strconv.FormatInt(r.MatchedBidQuantity, 10),
			strconv.FormatInt(r.MatchedAskQuantity, 10),
			formatFloat(r.Close),
			formatFloat(r.StepReward),
			formatFloat(r.NAV),
		}
		if withBar {
			if r.Bar != nil {
				row = append(row, formatFloat(r.Bar.Open), formatFloat(r.Bar.High), formatFloat(r.Bar.Low))
			} else {
				row = append(row, "", "", "")
			}
		}
		if withReserve {
			if r.ReservePrice != nil {
				row = append(row, formatFloat(*r.ReservePrice))
			} else {
				row = append(row, "")
			}
		}
		rows = append(rows, row)
	}
	return rows
}

// WriteCSV 写出表头与全部记录。
func (h History) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(h.Columns()); err != nil {
		return err
	}
	if err := cw.WriteAll(h.Rows()); err != nil {
		return err
	}
	return cw.Error()
}

func (h History) SaveCSV(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create history file: %w", err)
	}
	if err := h.WriteCSV(f); err != nil {
		f.Close()
		return fmt.Errorf("write history file: %w", err)
	}
	return f.Close()
}

// ReadHistoryCSV 读取 WriteCSV 的输出；Tick 按行号恢复。
func ReadHistoryCSV(r io.Reader) (History, error) {
	cr := csv.NewReader(r)
	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("%w: read history header: %v", ErrData, err)
	}
	idx := make(map[string]int, len(header))
	for i, col := range header {
		idx[col] = i
	}
	for _, col := range baseColumns {
		if _, ok := idx[col]; !ok {
			return nil, fmt.Errorf("%w: history missing column %s", ErrData, col)
		}
	}
	_, withBar := idx["open"]
	_, withReserve := idx["reserve_price"]

	var h History
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: history line %d: %v", ErrData, line, err)
		}
		p := rowParser{rec: rec, idx: idx}
		r := Record{
			Tick:               len(h) + 1,
			Datetime:           p.time("datetime"),
			Quantity:           p.int("quantity"),
			Cash:               p.float("cash"),
			BidQuantity:        p.int("bid_quantity"),
			BidPrice:           p.float("bid_price"),
			AskQuantity:        p.int("ask_quantity"),
			AskPrice:           p.float("ask_price"),
			MatchedBidQuantity: p.int("matched_bid_quantity"),
			MatchedAskQuantity: p.int("matched_ask_quantity"),
			Close:              p.float("close"),
			StepReward:         p.float("step_reward"),
			NAV:                p.float("nav"),
		}
		if withBar && p.get("open") != "" {
			r.Bar = &BarInfo{Open: p.float("open"), High: p.float("high"), Low: p.float("low")}
		}
		if withReserve && p.get("reserve_price") != "" {
			v := p.float("reserve_price")
			r.ReservePrice = &v
		}
		if p.err != nil {
			return nil, fmt.Errorf("%w: history line %d: %v", ErrData, line, p.err)
		}
		h = append(h, r)
	}
	return h, nil
}

// Points 转换为 posttrade 汇总输入。
func (h History) Points() []posttrade.Point {
	out := make([]posttrade.Point, len(h))
	for i, r := range h {
		out[i] = posttrade.Point{
			NAV:        r.NAV,
			Reward:     r.StepReward,
			Quantity:   r.Quantity,
			MatchedBid: r.MatchedBidQuantity,
			MatchedAsk: r.MatchedAskQuantity,
		}
	}
	return out
}

// rowParser 记录首个解析错误，避免每个字段都判断。
type rowParser struct {
	rec []string
	idx map[string]int
	err error
}

func (p *rowParser) get(col string) string {
	i, ok := p.idx[col]
	if !ok || i >= len(p.rec) {
		return ""
	}
	return p.rec[i]
}

func (p *rowParser) float(col string) float64 {
	v, err := strconv.ParseFloat(p.get(col), 64)
	if err != nil && p.err == nil {
		p.err = fmt.Errorf("%s: %w", col, err)
	}
	return v
}

func (p *rowParser) int(col string) int64 {
	v, err := strconv.ParseInt(p.get(col), 10, 64)
	if err != nil && p.err == nil {
		p.err = fmt.Errorf("%s: %w", col, err)
	}
	return v
}

func (p *rowParser) time(col string) time.Time {
	v, err := time.Parse(time.RFC3339Nano, p.get(col))
	if err != nil && p.err == nil {
		p.err = fmt.Errorf("%s: %w", col, err)
	}
	return v
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
