// Package service contains the application use cases: accounts, verse sets,
// learning and scoring, awards, the activity feed, groups and comments, CMS
// pages, donations and email reminders.
//
// Services work against the store interfaces through a store.UnitOfWork so
// that multi-step changes (a test that updates statuses, writes score logs and
// records milestone events) commit or roll back together. Follow-up work that
// may be slow or fail independently (emails, award recomputation) is requested
// after commit through an events.EventEmitter and executed by the task runner.
//
// Services never depend on infrastructure packages; errors are wrapped with
// %w so the API layer can map store, domain and service sentinels to HTTP
// statuses.
package service
