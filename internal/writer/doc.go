// Package writer implements the batch uploader for staged price rows.
//
// Rows are projected to the store's column set and committed in fixed-size
// chunks, strictly in order, each chunk one atomic insert. The first failed
// chunk stops the upload; chunks already committed stay committed.
//
// All writes use append-only semantics (never update, only insert).
package writer
