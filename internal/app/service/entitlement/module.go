package entitlement

import "go.uber.org/fx"

// Module exposes the entitlement gate via Fx.
var Module = fx.Options(
	fx.Provide(NewGate),
)
