// Package api is the HTTP surface of the service. It decodes and validates
// requests, calls the application services and maps their errors to status
// codes and client-safe messages. NewRouter wires every handler together
// with the authentication, tracing and recovery middleware.
package api
