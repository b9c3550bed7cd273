package league

import "context"

// JoinFunc decides admission against the locked league state.
type JoinFunc func(current League) (Participant, error)

// SubmitFunc computes the next participant state against the locked league
// and participant. current may arrive without its Participants filled in.
type SubmitFunc func(current League, participant Participant) (Participant, error)

// Repository describes league persistence needs from use cases. Join holds a
// league-wide lock while fn runs; Submit holds a per-participant lock.
type Repository interface {
	List(ctx context.Context) ([]League, error)
	GetByID(ctx context.Context, leagueID string) (League, bool, error)
	Create(ctx context.Context, item League) error
	UpdateStatus(ctx context.Context, leagueID string, status Status) error
	Join(ctx context.Context, leagueID string, fn JoinFunc) (Participant, error)
	Submit(ctx context.Context, leagueID, userID string, fn SubmitFunc) (Participant, error)
}
