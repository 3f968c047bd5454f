// Package store is the remote tabular store that holds ingested price rows.
//
// A Client is constructed once per process and handed to the existence oracle
// and the batch uploader. Two backends implement it:
//   - Postgres: direct pgx connection, one transaction per inserted chunk
//   - PostgREST: Supabase REST surface over HTTP
//
// Writes are append-only. Nothing in this package updates or deletes rows.
package store
