// Package timeouts defines shared timeout constants used across commands.
package timeouts

import "time"

// ReadHeader limits how long an HTTP server waits for request headers.
const ReadHeader = 5 * time.Second

// Shutdown limits how long an HTTP or gRPC server waits for in-flight
// requests during graceful shutdown.
const Shutdown = 5 * time.Second

// RemoteRequest is the default per-request cap for calls to the character
// endpoint. Zero leaves requests unbounded.
const RemoteRequest time.Duration = 0
