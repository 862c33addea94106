// Package domain contains the core business entities, value objects, and
// domain logic of the application: accounts, Bible references, verse sets,
// learning progress, scores, awards, the activity feed, groups, comments,
// CMS pages and donations. It is independent of any storage or transport.
package domain
