// Package model defines shared data types used across fxsync.
//
// Conventions:
//   - Instruments: uppercase currency pair symbols (e.g., "EURUSD")
//   - Timestamps: naive wall-clock time.Time at second precision in the
//     configured zone (UTC unless overridden)
//   - Prices: float64 quotes as read from the staged files
package model
