package sim

import (
	"fmt"

	"market-maker-sim/simerr"
)

// 错误分类，errors.Is 判断。
var (
	ErrData          = simerr.ErrData
	ErrInvalidAction = simerr.ErrInvalidAction
	ErrOutOfBounds   = simerr.ErrOutOfBounds
	ErrConfiguration = simerr.ErrConfiguration

	// ErrNotStarted 在首次 Reset 之前调用 Step。
	ErrNotStarted = fmt.Errorf("%w: step called before reset", simerr.ErrOutOfBounds)
)
