package googleauth

import "time"

// ProviderName identifies Google in state rows and credential records.
const ProviderName = "google"

// Config holds Google OAuth client configuration.
// Embed this in your app config for env parsing with caarlos0/env.
type Config struct {
	ClientID     string        `env:"GOOGLE_OAUTH_CLIENT_ID,required"`
	ClientSecret string        `env:"GOOGLE_OAUTH_CLIENT_SECRET,required"`
	RedirectURL  string        `env:"GOOGLE_OAUTH_REDIRECT_URL,required"`
	Scopes       []string      `env:"GOOGLE_OAUTH_SCOPES" envSeparator:","`
	StateTTL     time.Duration `env:"OAUTH_STATE_TTL" envDefault:"10m"`
}

// DefaultScopes returns the scopes the meeting-notes product needs:
// read calendars for selection, write events for scheduled follow-ups,
// and the account email for showing which Google account is linked.
func DefaultScopes() []string {
	return []string{
		"https://www.googleapis.com/auth/calendar.readonly",
		"https://www.googleapis.com/auth/calendar.events",
		"https://www.googleapis.com/auth/userinfo.email",
	}
}
