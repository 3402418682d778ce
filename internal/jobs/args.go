package jobs

// SweepStatesArgs triggers one pass deleting expired authorization
// states. Enqueued on a cron schedule; safe to run concurrently.
type SweepStatesArgs struct{}

func (SweepStatesArgs) Kind() string { return "sweep_expired_states" }

// ConnectedEmailArgs sends the "calendar connected" notification. The
// recipient address is resolved at work time from the linked Google
// account, so a stale queue entry for an since-unlinked owner simply
// completes without sending.
type ConnectedEmailArgs struct {
	OwnerID string `json:"owner_id"`
}

func (ConnectedEmailArgs) Kind() string { return "credential_connected_email" }
