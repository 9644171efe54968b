// Package config loads, normalizes, and validates FastScribe configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, loads a .env file when present, and honours
// environment fallbacks such as WHISPER_API_URL and HF_TOKEN. Cloud API
// credentials from the environment are resolved by the credentials package.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, a validated backend order, and clear validation errors.
package config
