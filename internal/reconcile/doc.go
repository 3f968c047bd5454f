// Package reconcile drives one synchronization pass over the staging
// directory.
//
// Each staged file moves through these states:
//
//	Discovered -> Filtered -> Resolved -> Checked -> Uploaded | SkippedDuplicate | Failed -> Cleaned
//
// A file is deleted only after its day is confirmed present in the store,
// either because it already was or because this run uploaded it. Files
// that cannot be resolved stay staged and the pass continues; oracle,
// upload, and delete failures abort the pass.
//
// Pipeline runs the acquisition step before the driver.
package reconcile
