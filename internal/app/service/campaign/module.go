package campaign

import "go.uber.org/fx"

// Module exposes the campaign service via Fx.
var Module = fx.Options(
	fx.Provide(NewService),
)
