// Package client contains the client side of the remote store.
//
// # Overview
//
// The package provides:
//  1. The RemoteStore contract the sync core depends on (create, update,
//     list, refresh one, grant/revoke access, delete, key oracle) and the
//     wider Client contract that adds account operations.
//  2. GRPCClient, the gRPC implementation. It injects the access token via an
//     interceptor, transparently refreshes expired tokens, and maps gRPC
//     status codes to sentinel errors. Note operations wrap failures in
//     common.TransportError.
//  3. Local persistence bootstrap (InitDatabase, RunMigrations) for the CLI:
//     an SQLite database with embedded goose migrations.
//
// # Error Handling
//
// Sentinel errors are matched with errors.Is: ErrUnavailable, ErrUnauthorized,
// ErrForbidden, ErrLimitReached, ErrLocalDataNotAvailable and
// common.ErrorNotFound.
//
// # Concurrency & Contexts
//
// GRPCClient is safe for concurrent use; the sync core calls the key oracle
// from several goroutines at once. All operations honor context cancellation.
package client
