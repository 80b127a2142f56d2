package clock

import "go.uber.org/fx"

// Module provides the system clock. Services take the Clock interface so
// tests can pin time with Fixed.
var Module = fx.Module("clock",
	fx.Provide(func() Clock {
		return SystemClock{}
	}),
)
