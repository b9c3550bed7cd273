package user

import "context"

// Principal is the authenticated caller resolved from a bearer token.
type Principal struct {
	UserID string
	Email  string
}

type Profile struct {
	UserID      string
	DisplayName string
	Email       string
}

// Directory resolves public profile data for leaderboard display. Missing
// users are absent from the returned map.
type Directory interface {
	GetProfiles(ctx context.Context, userIDs []string) (map[string]Profile, error)
}
