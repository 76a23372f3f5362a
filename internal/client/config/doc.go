// Package config loads runtime configuration for the gophnotes CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file (see parseJson) selected via flags: -c or -config.
//  3. Command-line flags (see parseFlags), which override earlier values.
//
// Supported flags
//
//	-a string     address:port of the backend gRPC endpoint
//	-i int        online status check interval (seconds)
//	-p duration   note poll interval (e.g. 3s, 500ms)
//	-w int        notes decrypted in parallel per sync cycle
//	-d string     local data directory
//	-l string     log level
//
// # JSON schema
//
// The JSON loader uses timex.Duration for intervals, so values can be either
// strings like "3s" or integer nanoseconds. Absent keys keep their defaults:
//
//	{
//	  "server_endpoint_addr": "127.0.0.1:50051",
//	  "poll_interval": "3s",
//	  "online_check_interval": "3s",
//	  "decrypt_concurrency": 8,
//	  "data_dir": "data",
//	  "log_level": "warn"
//	}
package config
