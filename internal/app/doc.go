// Package app wires configuration, logging, metrics, the export engine and
// the HTTP transport into a runnable server with graceful shutdown.
package app
