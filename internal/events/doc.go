// Package events carries requests for background work from services to the
// task runner. Services emit a TaskRequestEvent naming a task type and its
// JSON payload; handlers registered with the emitter turn requests into
// persisted tasks. Neither side imports the other.
package events
