// Package config defines daemon settings and provides helpers to load,
// validate and save them in YAML format.
//
// The Config type holds storage and socket paths plus the polling cadence
// and trigger tolerance for both evaluation contexts. A missing settings
// file yields defaults so the daemon runs without prior setup.
package config
