// Package jobs runs background work on River: a cron-scheduled sweep of
// expired authorization states and the connected-calendar notification
// email.
package jobs
