// Package config loads, normalizes, and validates trisetra configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// TRISETRA_API_ENDPOINT and TRISETRA_API_TOKEN. When neither the file nor the
// environment provides a token, the fixed fallback token is used so calls stay
// authenticated against development services.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config
