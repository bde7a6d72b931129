// Package config holds the pixelscale configuration and loads it from YAML.
//
// Values are resolved in increasing priority: built-in defaults, the config
// file, the PIXELSCALE_LOG_LEVEL environment variable, and finally command
// line flags, which the cmd package applies on top of the loaded Config.
//
// The config file is looked up in this order:
//  1. the path given with --config
//  2. .pixelscale.yaml in the current directory
//  3. pixelscale/config.yaml under the XDG config directories
package config
