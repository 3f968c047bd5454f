// Package staging reads the download directory and resolves each staged file
// to an (instrument, trading day) key.
//
// Two filename shapes are recognised:
//   - delimited:    gbpusd-m1-bid-20250930-20251001.csv
//   - concatenated: gbpusdm1bid2025093020251001.csv
//
// The symbol taken from a filename is advisory. The trading day always comes
// from the first row of the file.
package staging
