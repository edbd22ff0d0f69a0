// AngelaMos | 2026
// service_test.go

package event

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wegtu/wegtu-backend/internal/core"
	"github.com/wegtu/wegtu-backend/internal/user"
)

type fakeRepo struct {
	mu      sync.Mutex
	events  map[string]*Event
	tickets map[string]*Ticket // keyed user_id|event_id
}

func newFakeRepo(events ...*Event) *fakeRepo {
	f := &fakeRepo{events: map[string]*Event{}, tickets: map[string]*Ticket{}}
	for _, e := range events {
		f.events[e.ID] = e
	}
	return f
}

func (f *fakeRepo) CreateEvent(_ context.Context, e *Event) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events[e.ID] = e
	return nil
}

func (f *fakeRepo) GetEvent(_ context.Context, id string) (*Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	e, ok := f.events[id]
	if !ok {
		return nil, core.ErrNotFound
	}
	cp := *e
	return &cp, nil
}

func (f *fakeRepo) ListEvents(
	_ context.Context,
	_ ListEventsParams,
) ([]Event, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]Event, 0, len(f.events))
	for _, e := range f.events {
		out = append(out, *e)
	}
	return out, len(out), nil
}

func (f *fakeRepo) DeleteEvent(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.events[id]; !ok {
		return core.ErrNotFound
	}
	delete(f.events, id)
	return nil
}

func (f *fakeRepo) InsertTicket(_ context.Context, t *Ticket) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := t.UserID + "|" + t.EventID
	if _, ok := f.tickets[key]; ok {
		return core.ErrDuplicateKey
	}
	f.tickets[key] = t
	return nil
}

func (f *fakeRepo) ListTicketsForUser(
	_ context.Context,
	userID string,
) ([]Ticket, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []Ticket{}
	for _, t := range f.tickets {
		if t.UserID == userID {
			out = append(out, *t)
		}
	}
	return out, nil
}

type fakeUsers struct {
	mu    sync.Mutex
	users map[string]*user.User
}

func newFakeUsers(users ...*user.User) *fakeUsers {
	f := &fakeUsers{users: map[string]*user.User{}}
	for _, u := range users {
		f.users[u.ID] = u
	}
	return f
}

func (f *fakeUsers) GetByID(_ context.Context, id string) (*user.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return nil, core.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (f *fakeUsers) AddXP(
	_ context.Context,
	id string,
	amount int,
) (int, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return 0, 0, core.ErrNotFound
	}
	u.XP += amount
	return u.Tier, u.XP, nil
}

func (f *fakeUsers) PromoteTier(
	_ context.Context,
	id string,
	from, to int,
) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok || u.Tier != from {
		return false, nil
	}
	u.Tier = to
	return true, nil
}

func testService(repo *fakeRepo, users *fakeUsers) *Service {
	return newService(
		func(_ context.Context, fn func(tx core.DBTX) error) error {
			return fn(nil)
		},
		repo,
		users,
		func(core.DBTX) Repository { return repo },
		func(core.DBTX) UserStore { return users },
	)
}

func seedEvent(reward int) *Event {
	return &Event{
		ID:             uuid.New().String(),
		Title:          "launch party",
		Location:       "flagship store",
		EventDate:      time.Now().Add(72 * time.Hour),
		TicketXPReward: reward,
		IsActive:       true,
	}
}

func TestBuyTicket(t *testing.T) {
	ctx := context.Background()

	t.Run("issues a ticket and credits the reward", func(t *testing.T) {
		e := seedEvent(20)
		repo := newFakeRepo(e)
		member := &user.User{ID: uuid.New().String(), Tier: 1, XP: 5}
		users := newFakeUsers(member)

		svc := testService(repo, users)

		ticket, award, err := svc.BuyTicket(ctx, member.ID, e.ID)
		require.NoError(t, err)

		assert.True(t, strings.HasPrefix(ticket.TicketNumber, "TKT-"))
		assert.Equal(t, 25, award.XP)
		assert.Equal(t, 20, award.Amount)
	})

	t.Run("one ticket per member per event", func(t *testing.T) {
		e := seedEvent(20)
		repo := newFakeRepo(e)
		member := &user.User{ID: uuid.New().String(), Tier: 1}
		users := newFakeUsers(member)

		svc := testService(repo, users)

		_, _, err := svc.BuyTicket(ctx, member.ID, e.ID)
		require.NoError(t, err)

		_, _, err = svc.BuyTicket(ctx, member.ID, e.ID)
		assert.ErrorIs(t, err, ErrDuplicateTicket)
	})

	t.Run("inactive event sells no tickets", func(t *testing.T) {
		e := seedEvent(20)
		e.IsActive = false
		repo := newFakeRepo(e)
		member := &user.User{ID: uuid.New().String(), Tier: 1}
		users := newFakeUsers(member)

		svc := testService(repo, users)

		_, _, err := svc.BuyTicket(ctx, member.ID, e.ID)
		assert.ErrorIs(t, err, ErrEventClosed)
	})

	t.Run("unknown event", func(t *testing.T) {
		repo := newFakeRepo()
		member := &user.User{ID: uuid.New().String(), Tier: 1}
		users := newFakeUsers(member)

		svc := testService(repo, users)

		_, _, err := svc.BuyTicket(ctx, member.ID, uuid.New().String())
		assert.True(t, errors.Is(err, core.ErrNotFound))
	})
}

func TestBuyTicketConcurrent(t *testing.T) {
	e := seedEvent(20)
	repo := newFakeRepo(e)
	member := &user.User{ID: uuid.New().String(), Tier: 1}
	users := newFakeUsers(member)

	svc := testService(repo, users)

	const workers = 20

	var (
		wg        sync.WaitGroup
		successes atomic.Int32
	)

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _, err := svc.BuyTicket(context.Background(), member.ID, e.ID)
			if err == nil {
				successes.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), successes.Load())

	// only the winning purchase credited xp
	u, err := users.GetByID(context.Background(), member.ID)
	require.NoError(t, err)
	assert.Equal(t, 20, u.XP)
}

func TestCreateEvent(t *testing.T) {
	ctx := context.Background()

	t.Run("admin only", func(t *testing.T) {
		repo := newFakeRepo()
		member := &user.User{ID: uuid.New().String(), Tier: 3}
		users := newFakeUsers(member)

		svc := testService(repo, users)

		_, err := svc.CreateEvent(ctx, member.ID, CreateEventRequest{
			Title:     "pop-up",
			Location:  "downtown",
			EventDate: time.Now().Add(24 * time.Hour),
		})
		assert.True(t, errors.Is(err, core.ErrForbidden))
	})

	t.Run("defaults the ticket reward", func(t *testing.T) {
		repo := newFakeRepo()
		admin := &user.User{ID: uuid.New().String(), IsAdmin: true}
		users := newFakeUsers(admin)

		svc := testService(repo, users)

		e, err := svc.CreateEvent(ctx, admin.ID, CreateEventRequest{
			Title:     "pop-up",
			Location:  "downtown",
			EventDate: time.Now().Add(24 * time.Hour),
		})
		require.NoError(t, err)

		assert.Equal(t, DefaultTicketXPReward, e.TicketXPReward)
		assert.True(t, e.IsActive)
	})
}

func TestTicketNumberFormat(t *testing.T) {
	eventID := "11111111-aaaa-bbbb-cccc-dddddddddddd"
	userID := "22222222-aaaa-bbbb-cccc-dddddddddddd"

	n := ticketNumber(eventID, userID)

	parts := strings.Split(n, "-")
	require.Len(t, parts, 4)
	assert.Equal(t, "TKT", parts[0])
	assert.Equal(t, "11111111", parts[1])
	assert.Equal(t, "22222222", parts[2])
	assert.Len(t, parts[3], 4)
}
