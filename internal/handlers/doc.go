// Package handlers exposes the credential lifecycle over HTTP: connect
// initiation, the provider callback, forced refresh, disconnect, and
// calendar selection. Terminal failures map to structured JSON; the
// callback reports outcomes to the app UI via redirect query params.
package handlers
