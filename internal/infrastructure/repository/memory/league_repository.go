package memory

import (
	"context"
	"fmt"
	"maps"
	"sync"

	"github.com/riskibarqy/skill-league/internal/domain/league"
)

type participantRecord struct {
	// mu serializes submissions of one participant.
	mu    sync.Mutex
	value league.Participant
}

type leagueRecord struct {
	// joinMu serializes joins so capacity holds.
	joinMu       sync.Mutex
	meta         league.League
	participants map[string]*participantRecord
	joinOrder    []string
}

// LeagueRepository keeps leagues in memory. Reads and writes of the maps go
// through mu; joinMu and participantRecord.mu give the league and participant
// locks the ledger runs under.
type LeagueRepository struct {
	mu     sync.RWMutex
	items  map[string]*leagueRecord
	orders []string
}

func NewLeagueRepository(leagues []league.League) *LeagueRepository {
	r := &LeagueRepository{
		items:  make(map[string]*leagueRecord, len(leagues)),
		orders: make([]string, 0, len(leagues)),
	}
	for _, l := range leagues {
		r.put(l)
	}
	return r
}

func (r *LeagueRepository) put(l league.League) {
	rec := &leagueRecord{
		meta:         cloneLeague(l),
		participants: make(map[string]*participantRecord, len(l.Participants)),
		joinOrder:    make([]string, 0, len(l.Participants)),
	}
	rec.meta.Participants = nil
	for _, p := range l.Participants {
		rec.participants[p.UserID] = &participantRecord{value: cloneParticipant(p)}
		rec.joinOrder = append(rec.joinOrder, p.UserID)
	}
	r.items[l.ID] = rec
	r.orders = append(r.orders, l.ID)
}

func (r *LeagueRepository) List(_ context.Context) ([]league.League, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]league.League, 0, len(r.orders))
	for _, id := range r.orders {
		out = append(out, r.items[id].view())
	}

	return out, nil
}

func (r *LeagueRepository) GetByID(_ context.Context, leagueID string) (league.League, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rec, ok := r.items[leagueID]
	if !ok {
		return league.League{}, false, nil
	}

	return rec.view(), true, nil
}

func (r *LeagueRepository) Create(_ context.Context, item league.League) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.items[item.ID]; exists {
		return fmt.Errorf("league %s already exists", item.ID)
	}
	r.put(item)
	return nil
}

func (r *LeagueRepository) UpdateStatus(_ context.Context, leagueID string, status league.Status) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec, ok := r.items[leagueID]
	if !ok {
		return fmt.Errorf("%w: league=%s", league.ErrLeagueNotFound, leagueID)
	}
	rec.meta.Status = status
	return nil
}

func (r *LeagueRepository) Join(_ context.Context, leagueID string, fn league.JoinFunc) (league.Participant, error) {
	rec, ok := r.record(leagueID)
	if !ok {
		return league.Participant{}, fmt.Errorf("%w: league=%s", league.ErrLeagueNotFound, leagueID)
	}

	rec.joinMu.Lock()
	defer rec.joinMu.Unlock()

	r.mu.RLock()
	current := rec.view()
	r.mu.RUnlock()

	participant, err := fn(current)
	if err != nil {
		return league.Participant{}, err
	}

	r.mu.Lock()
	rec.participants[participant.UserID] = &participantRecord{value: cloneParticipant(participant)}
	rec.joinOrder = append(rec.joinOrder, participant.UserID)
	r.mu.Unlock()

	return cloneParticipant(participant), nil
}

func (r *LeagueRepository) Submit(_ context.Context, leagueID, userID string, fn league.SubmitFunc) (league.Participant, error) {
	r.mu.RLock()
	rec, ok := r.items[leagueID]
	var pr *participantRecord
	if ok {
		pr = rec.participants[userID]
	}
	r.mu.RUnlock()
	if !ok {
		return league.Participant{}, fmt.Errorf("%w: league=%s", league.ErrLeagueNotFound, leagueID)
	}
	if pr == nil {
		return league.Participant{}, fmt.Errorf("%w: league=%s user=%s", league.ErrNotParticipant, leagueID, userID)
	}

	pr.mu.Lock()
	defer pr.mu.Unlock()

	r.mu.RLock()
	current := rec.view()
	participant := cloneParticipant(pr.value)
	r.mu.RUnlock()

	next, err := fn(current, participant)
	if err != nil {
		return participant, err
	}

	r.mu.Lock()
	pr.value = cloneParticipant(next)
	r.mu.Unlock()

	return cloneParticipant(next), nil
}

func (r *LeagueRepository) record(leagueID string) (*leagueRecord, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rec, ok := r.items[leagueID]
	return rec, ok
}

// view must be called with the repository lock held.
func (rec *leagueRecord) view() league.League {
	out := cloneLeague(rec.meta)
	out.Participants = make([]league.Participant, 0, len(rec.joinOrder))
	for _, userID := range rec.joinOrder {
		out.Participants = append(out.Participants, cloneParticipant(rec.participants[userID].value))
	}
	return out
}

func cloneLeague(l league.League) league.League {
	copied := l
	copied.Participants = make([]league.Participant, 0, len(l.Participants))
	for _, p := range l.Participants {
		copied.Participants = append(copied.Participants, cloneParticipant(p))
	}
	return copied
}

func cloneParticipant(p league.Participant) league.Participant {
	copied := p
	copied.Submissions = make([]league.Submission, 0, len(p.Submissions))
	for _, s := range p.Submissions {
		s.Metadata = maps.Clone(s.Metadata)
		copied.Submissions = append(copied.Submissions, s)
	}
	return copied
}
