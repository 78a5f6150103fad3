package planner

import "github.com/vovakirdan/snakepilot/internal/core"

func testRuntime() core.RuntimeConfig {
	return core.RuntimeConfig{ScreenW: 80, ScreenH: 40, Seed: 11}
}

func emptyFrame() core.InputFrame {
	return core.NewInputFrame()
}
