// Package indicators implements the smoothing primitives and the hilo activator.
//
// Every series function returns output aligned to its input: one entry per bar,
// with domain.Level marking entries that are not defined yet.
package indicators

// IndicatorConfig holds common configuration for indicators
type IndicatorConfig struct {
	Period int
}
