// Package config defines the application configuration and its loader.
//
// Configuration is read from an optional YAML file and from environment
// variables prefixed with CARDFORGE_ (environment wins), then validated
// with struct tags. The pipeline packages receive the resulting plain
// structs; nothing below this package reads the environment directly.
package config
