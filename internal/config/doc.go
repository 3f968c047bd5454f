// Package config handles YAML configuration loading with environment variable substitution.
//
// Configuration files support ${VAR} syntax for environment variable interpolation.
// A .env file may be loaded first so that secrets such as the store password or
// PostgREST API key stay out of the YAML.
package config
