package trial

import "go.uber.org/fx"

// Module exposes the trial guard via Fx.
var Module = fx.Options(
	fx.Provide(NewService),
)
