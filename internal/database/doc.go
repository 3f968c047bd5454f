// Package database provides connection pool management and schema migrations
// for the Postgres database holding the forex_prices table.
//
// Supabase projects expose the same database over PostgREST; this package is
// only used by the direct postgres backend and the migrate command.
package database
