// Package config loads the server settings.
//
// Settings are layered, later sources winning:
//
//  1. built-in defaults (Default)
//  2. an optional YAML file
//  3. a dotenv file, then the process environment
//  4. explicit command line flags, applied by the caller
//
// Environment values are coerced with spf13/cast. Validate reports every
// problem at once; the individual causes are available through Problems.
package config
