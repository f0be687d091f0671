package main

import (
	"flag"
	"fmt"
	"os"

	"market-maker-sim/posttrade"
	"market-maker-sim/sim"
)

// 读取 cmd/sim 输出的 history CSV，打印 episode 汇总。
func main() {
	path := flag.String("history", "", "history CSV 路径")
	initCash := flag.Float64("initCash", 0, "初始资金")
	flag.Parse()

	if *path == "" {
		fmt.Fprintln(os.Stderr, "必须指定 -history")
		os.Exit(2)
	}
	f, err := os.Open(*path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "无法读取 history: %v\n", err)
		os.Exit(1)
	}
	defer f.Close()

	h, err := sim.ReadHistoryCSV(f)
	if err != nil {
		fmt.Fprintf(os.Stderr, "解析 history 失败: %v\n", err)
		os.Exit(1)
	}
	posttrade.Summarize(h.Points(), *initCash).Print(os.Stdout)
}
