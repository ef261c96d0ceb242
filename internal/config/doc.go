// Package config loads uwu settings from ~/.uwu/config.json, the nearest
// repo-level .uwu/config.json and UWU_* environment variables.
package config
