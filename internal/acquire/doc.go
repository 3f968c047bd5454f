// Package acquire runs the external download tool that fills the staging
// directory.
//
// The tool runs once per instrument, sequentially, with an argument list
// built from a template. Supported placeholders:
//
//	{instrument}  lowercase instrument symbol, e.g. eurusd
//	{from} {to}   dates as YYYY-MM-DD
//	{timeframe}   bar size, e.g. m1
//	{format}      output format, e.g. csv
//
// Any non-zero exit aborts the fetch with a *ToolError.
package acquire
