// Package config assembles the CLI configuration from, in increasing order
// of precedence: built-in defaults, MODCAT_* environment variables (and a
// .env file), a JSON file given with -c/-config, and command-line flags.
package config
