// Package refresh keeps the event collection in step with an external event
// feed.
//
// A Source yields the current events. Job stores the events whose content
// changed since the last run, summarizing each through the event prompt,
// and Scheduler runs a Job on a cron schedule.
package refresh
