// Package config aggregates per-package env-tagged settings into one
// struct parsed once at startup.
package config
