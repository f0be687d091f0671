package main

import (
	"flag"
	"fmt"
	"math/rand"
	"os"
	"time"

	"go.uber.org/zap"

	"market-maker-sim/market"
	"market-maker-sim/source"
)

// 生成一条价格序列并保存为 CSV，供 replay 价格源或离线分析使用。
// 用法：
//
//	go run ./cmd/gen_series -type brownian -n 200 -sigma 2 -out data/path.csv
//	go run ./cmd/gen_series -type historical -in data/cw.csv -sample 2023-01-02_CW01 -out data/cw01.csv
func main() {
	typ := flag.String("type", source.TypeBrownian, "brownian 或 historical")
	out := flag.String("out", "", "输出 CSV 路径")
	seed := flag.Int64("seed", time.Now().UnixNano(), "随机种子")
	initValue := flag.Float64("init", 100, "brownian: 初始价格")
	n := flag.Int("n", 200, "brownian: 样本数")
	sigma := flag.Float64("sigma", 2, "brownian: 波动率")
	totalTime := flag.Float64("T", 1, "brownian: 总时长")
	in := flag.String("in", "", "historical: 原始行情文件")
	sample := flag.String("sample", "", "historical: 样本 id（date_seccd），为空则随机")
	flag.Parse()

	if *out == "" {
		fmt.Fprintln(os.Stderr, "必须指定 -out")
		os.Exit(2)
	}
	rng := rand.New(rand.NewSource(*seed))

	var (
		series market.Series
		err    error
	)
	switch *typ {
	case source.TypeBrownian:
		var b *source.Brownian
		b, err = source.NewBrownian(*initValue, *n, *sigma, *totalTime)
		if err == nil {
			series, err = b.Reset(rng)
		}
	case source.TypeHistorical:
		log, _ := zap.NewProduction()
		defer log.Sync()
		var h *source.Historical
		h, err = source.NewHistorical(source.HistoricalConfig{Path: *in}, log)
		if err == nil {
			if *sample != "" {
				series, err = h.Sample(*sample)
			} else {
				series, err = h.Reset(rng)
			}
		}
		if err == nil {
			meta := h.Metadata()
			fmt.Printf("sample=%s_%s rows=%d sigma_estimate=%.6f\n", meta.Date, meta.SecCode, len(series), meta.SigmaEstimate)
		}
	default:
		err = fmt.Errorf("unknown type %q", *typ)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "生成序列失败: %v\n", err)
		os.Exit(1)
	}
	if err := source.SaveCSV(*out, series); err != nil {
		fmt.Fprintf(os.Stderr, "写入失败: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("已写入 %d 行: %s\n", len(series), *out)
}
