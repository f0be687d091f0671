package inventory

// NAV 以 mark 价估值：现金 + 持仓 * mark。
func (l Ledger) NAV(mark float64) float64 {
	return l.Cash + float64(l.Quantity)*mark
}

// Valuation 返回持仓与按 mark 估值的净值。
func (l Ledger) Valuation(mark float64) (qty int64, nav float64) {
	return l.Quantity, l.NAV(mark)
}
