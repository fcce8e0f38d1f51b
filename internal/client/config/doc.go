// Package config loads runtime configuration for the NoteKeeper client.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file (see parseJson) selected via flags: -c or -config.
//  3. Command-line flags (see parseFlags), which override earlier values.
//
// Supported flags
//
//	-a string   base URL of the backend REST API
//	-w string   URL of the push websocket endpoint
//	-d string   path to the local state database
//	-t int      request timeout (seconds)
//
// # JSON schema
//
//	{
//	  "server_url": "http://127.0.0.1:8080",
//	  "websocket_url": "ws://127.0.0.1:8080/ws",
//	  "database_path": "notekeeper.db",
//	  "request_timeout_seconds": 12
//	}
//
// Note: This package does not read environment variables directly; use the
// JSON file or flags to configure values.
package config
