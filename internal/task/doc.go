// Package task runs background work such as email delivery, award
// recomputation and reminder runs. Tasks are persisted before they are
// queued, so work left pending or interrupted by a restart is rebuilt from
// its stored type and payload through a Registry and run again.
package task
