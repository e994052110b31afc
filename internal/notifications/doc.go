// Package notifications delivers batch milestones via ntfy.
//
// The service publishes to the topic configured in config.toml and degrades
// to a no-op when no topic is set. Each event can be switched off through the
// [notifications] toggles. Callers treat publish errors as informational;
// a failed notification never changes batch results.
package notifications
