// Package config loads server settings from an optional config.yaml, a .env
// file and LEARNSCRIPTURE_* environment variables, in increasing order of
// precedence, and validates the result before anything is started.
package config
