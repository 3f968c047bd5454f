// Package scheduler runs the sync pipeline on a cron schedule.
//
// Runs never overlap: a tick that fires while the previous run is still in
// progress is skipped. A failed run is logged and counted and the schedule
// continues.
package scheduler
