// Package gcal reads Google Calendar metadata for connected owners.
//
// It is deliberately thin: the credential layer owns tokens and refresh,
// this package only turns them into google.golang.org/api calls, paced
// per owner and retried with the same invoker the rest of the service
// uses for provider traffic. The one credential decision made here is
// recovery from a token revoked provider-side before its recorded
// expiry: an unauthorized answer forces a single refresh and one more
// attempt before the failure is surfaced as needing reconnection.
package gcal
