package callwindow

import "go.uber.org/fx"

// Module exposes the call-window evaluator via Fx.
var Module = fx.Options(
	fx.Provide(New),
)
