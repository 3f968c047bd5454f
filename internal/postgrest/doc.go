// Package postgrest provides a client for a Supabase-style PostgREST endpoint.
//
// Tables are addressed under <project>/rest/v1/<table>. Every request carries
// the API key both as the apikey header and as a bearer token.
//
// Reads are retried on 5xx and 429 responses. Inserts are sent once.
package postgrest
