// AngelaMos | 2026
// service_test.go

package poll

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wegtu/wegtu-backend/internal/core"
	"github.com/wegtu/wegtu-backend/internal/progression"
	"github.com/wegtu/wegtu-backend/internal/user"
)

type fakeRepo struct {
	mu       sync.Mutex
	polls    map[string]*Poll
	options  map[string]*Option
	votes    map[string]*Vote // keyed user_id|poll_id
	comments []Comment
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		polls:   map[string]*Poll{},
		options: map[string]*Option{},
		votes:   map[string]*Vote{},
	}
}

func (f *fakeRepo) CreatePoll(_ context.Context, p *Poll) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.polls[p.ID] = p
	return nil
}

func (f *fakeRepo) GetPoll(_ context.Context, id string) (*Poll, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.polls[id]
	if !ok {
		return nil, core.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (f *fakeRepo) ListPolls(
	_ context.Context,
	_ ListPollsParams,
) ([]Poll, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]Poll, 0, len(f.polls))
	for _, p := range f.polls {
		out = append(out, *p)
	}
	return out, len(out), nil
}

func (f *fakeRepo) DeletePoll(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.polls[id]; !ok {
		return core.ErrNotFound
	}
	delete(f.polls, id)
	return nil
}

func (f *fakeRepo) AddOption(_ context.Context, o *Option) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.options {
		if existing.PollID == o.PollID && existing.DesignID == o.DesignID {
			return core.ErrDuplicateKey
		}
	}
	f.options[o.ID] = o
	return nil
}

func (f *fakeRepo) GetOption(_ context.Context, id string) (*Option, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	o, ok := f.options[id]
	if !ok {
		return nil, core.ErrNotFound
	}
	cp := *o
	return &cp, nil
}

func (f *fakeRepo) ListOptions(
	_ context.Context,
	pollID string,
) ([]Option, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []Option{}
	for _, o := range f.options {
		if o.PollID == pollID {
			out = append(out, *o)
		}
	}
	return out, nil
}

func (f *fakeRepo) HasVoted(
	_ context.Context,
	userID, pollID string,
) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.votes[userID+"|"+pollID]
	return ok, nil
}

func (f *fakeRepo) InsertVote(_ context.Context, v *Vote) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := v.UserID + "|" + v.PollID
	if _, ok := f.votes[key]; ok {
		return core.ErrDuplicateKey
	}
	f.votes[key] = v
	return nil
}

func (f *fakeRepo) Results(
	_ context.Context,
	pollID string,
) ([]OptionResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	byOption := map[string]*OptionResult{}
	for _, o := range f.options {
		if o.PollID == pollID {
			byOption[o.ID] = &OptionResult{OptionID: o.ID, DesignID: o.DesignID}
		}
	}
	for _, v := range f.votes {
		if r, ok := byOption[v.OptionID]; ok {
			r.TotalWeight += v.Weight
			r.VoteCount++
		}
	}

	out := []OptionResult{}
	for _, r := range byOption {
		out = append(out, *r)
	}
	return out, nil
}

func (f *fakeRepo) InsertComment(_ context.Context, c *Comment) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.comments = append(f.comments, *c)
	return nil
}

func (f *fakeRepo) ListComments(
	_ context.Context,
	pollID string,
	_, _ int,
) ([]Comment, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []Comment{}
	for _, c := range f.comments {
		if c.PollID == pollID {
			out = append(out, c)
		}
	}
	return out, len(out), nil
}

func (f *fakeRepo) Feed(
	_ context.Context,
	_ FeedParams,
) ([]FeedItem, int, error) {
	return nil, 0, nil
}

func (f *fakeRepo) TicketedEvents(
	_ context.Context,
	_ string,
	_ []string,
) (map[string]bool, error) {
	return map[string]bool{}, nil
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

type fakeDesigns struct {
	selectable map[string]bool // designID|userID
}

func (f *fakeDesigns) IsSelectable(
	_ context.Context,
	designID, userID string,
) (bool, error) {
	return f.selectable[designID+"|"+userID], nil
}

func passthroughRunner(
	_ context.Context,
	fn func(tx core.DBTX) error,
) error {
	return fn(nil)
}

func testService(
	repo *fakeRepo,
	users *fakeUsers,
	designs *fakeDesigns,
) *Service {
	return newService(
		passthroughRunner,
		repo,
		users,
		func(core.DBTX) Repository { return repo },
		func(core.DBTX) UserStore { return users },
		func(core.DBTX) DesignStore { return designs },
	)
}

func seedPoll(repo *fakeRepo, creatorID string, optionCount int) (*Poll, []*Option) {
	p := &Poll{
		ID:        uuid.New().String(),
		Title:     "spring drop",
		IsActive:  true,
		CreatedBy: creatorID,
	}
	repo.polls[p.ID] = p

	options := make([]*Option, 0, optionCount)
	for i := 0; i < optionCount; i++ {
		o := &Option{
			ID:       uuid.New().String(),
			PollID:   p.ID,
			DesignID: uuid.New().String(),
		}
		repo.options[o.ID] = o
		options = append(options, o)
	}
	return p, options
}

func member(tier, xp int) *user.User {
	return &user.User{
		ID:       uuid.New().String(),
		Username: "member-" + uuid.New().String()[:8],
		Tier:     tier,
		XP:       xp,
	}
}

func TestCastVote(t *testing.T) {
	ctx := context.Background()

	t.Run("records the vote and credits xp", func(t *testing.T) {
		repo := newFakeRepo()
		voter := member(2, 10)
		users := newFakeUsers(voter)
		p, options := seedPoll(repo, uuid.New().String(), 2)

		svc := testService(repo, users, &fakeDesigns{})

		vote, award, err := svc.CastVote(ctx, voter.ID, p.ID, options[0].ID)
		require.NoError(t, err)

		assert.Equal(t, 3, vote.Weight)
		assert.Equal(t, 10+progression.XPVoteCast, award.XP)
		assert.False(t, award.Promoted)
	})

	t.Run("tier 0 cannot vote", func(t *testing.T) {
		repo := newFakeRepo()
		voter := member(0, 0)
		users := newFakeUsers(voter)
		p, options := seedPoll(repo, uuid.New().String(), 1)

		svc := testService(repo, users, &fakeDesigns{})

		_, _, err := svc.CastVote(ctx, voter.ID, p.ID, options[0].ID)
		assert.True(t, errors.Is(err, core.ErrInsufficientTier))
	})

	t.Run("second vote in the same poll is rejected", func(t *testing.T) {
		repo := newFakeRepo()
		voter := member(1, 0)
		users := newFakeUsers(voter)
		p, options := seedPoll(repo, uuid.New().String(), 2)

		svc := testService(repo, users, &fakeDesigns{})

		_, _, err := svc.CastVote(ctx, voter.ID, p.ID, options[0].ID)
		require.NoError(t, err)

		_, _, err = svc.CastVote(ctx, voter.ID, p.ID, options[1].ID)
		assert.ErrorIs(t, err, ErrDuplicateVote)
	})

	t.Run("option from another poll is rejected", func(t *testing.T) {
		repo := newFakeRepo()
		voter := member(1, 0)
		users := newFakeUsers(voter)
		p, _ := seedPoll(repo, uuid.New().String(), 1)
		_, otherOptions := seedPoll(repo, uuid.New().String(), 1)

		svc := testService(repo, users, &fakeDesigns{})

		_, _, err := svc.CastVote(ctx, voter.ID, p.ID, otherOptions[0].ID)
		assert.ErrorIs(t, err, ErrOptionNotInPoll)
	})

	t.Run("closed poll takes no votes", func(t *testing.T) {
		repo := newFakeRepo()
		voter := member(3, 0)
		users := newFakeUsers(voter)
		p, options := seedPoll(repo, uuid.New().String(), 1)
		repo.polls[p.ID].IsActive = false

		svc := testService(repo, users, &fakeDesigns{})

		_, _, err := svc.CastVote(ctx, voter.ID, p.ID, options[0].ID)
		assert.ErrorIs(t, err, ErrPollClosed)
	})

	t.Run("vote that crosses a threshold promotes", func(t *testing.T) {
		repo := newFakeRepo()
		voter := member(1, progression.Tier2Threshold-progression.XPVoteCast)
		users := newFakeUsers(voter)
		p, options := seedPoll(repo, uuid.New().String(), 1)

		svc := testService(repo, users, &fakeDesigns{})

		_, award, err := svc.CastVote(ctx, voter.ID, p.ID, options[0].ID)
		require.NoError(t, err)

		assert.True(t, award.Promoted)
		assert.Equal(t, 2, award.Tier)
	})
}

func TestCastVoteConcurrent(t *testing.T) {
	repo := newFakeRepo()
	voter := member(1, 0)
	users := newFakeUsers(voter)
	p, options := seedPoll(repo, uuid.New().String(), 1)

	svc := testService(repo, users, &fakeDesigns{})

	const workers = 20

	var (
		wg         sync.WaitGroup
		successes  atomic.Int32
		duplicates atomic.Int32
	)

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _, err := svc.CastVote(
				context.Background(),
				voter.ID,
				p.ID,
				options[0].ID,
			)
			switch {
			case err == nil:
				successes.Add(1)
			case errors.Is(err, ErrDuplicateVote):
				duplicates.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), successes.Load())
	assert.Equal(t, int32(workers-1), duplicates.Load())

	// the single successful cast credits xp exactly once
	u, err := users.GetByID(context.Background(), voter.ID)
	require.NoError(t, err)
	assert.Equal(t, progression.XPVoteCast, u.XP)
}

func TestResultsWeighting(t *testing.T) {
	ctx := context.Background()

	repo := newFakeRepo()
	t1 := member(1, 0)
	t2 := member(2, 0)
	t3 := member(3, 0)
	users := newFakeUsers(t1, t2, t3)
	p, options := seedPoll(repo, uuid.New().String(), 2)

	svc := testService(repo, users, &fakeDesigns{})

	// option A: tier 1 and tier 2 ballots, option B: one tier 3 ballot
	_, _, err := svc.CastVote(ctx, t1.ID, p.ID, options[0].ID)
	require.NoError(t, err)
	_, _, err = svc.CastVote(ctx, t2.ID, p.ID, options[0].ID)
	require.NoError(t, err)
	_, _, err = svc.CastVote(ctx, t3.ID, p.ID, options[1].ID)
	require.NoError(t, err)

	results, err := svc.Results(ctx, p.ID)
	require.NoError(t, err)
	require.Len(t, results, 2)

	byOption := map[string]OptionResult{}
	for _, r := range results {
		byOption[r.OptionID] = r
	}

	assert.Equal(t, 4, byOption[options[0].ID].TotalWeight)
	assert.Equal(t, 2, byOption[options[0].ID].VoteCount)
	assert.Equal(t, 5, byOption[options[1].ID].TotalWeight)
	assert.Equal(t, 1, byOption[options[1].ID].VoteCount)
}

func TestCreatePoll(t *testing.T) {
	ctx := context.Background()

	t.Run("requires tier 3", func(t *testing.T) {
		repo := newFakeRepo()
		creator := member(2, 0)
		users := newFakeUsers(creator)

		svc := testService(repo, users, &fakeDesigns{})

		_, err := svc.CreatePoll(ctx, creator.ID, CreatePollRequest{Title: "x"})
		assert.True(t, errors.Is(err, core.ErrInsufficientTier))
	})

	t.Run("tier 3 creates an active poll", func(t *testing.T) {
		repo := newFakeRepo()
		creator := member(3, 0)
		users := newFakeUsers(creator)

		svc := testService(repo, users, &fakeDesigns{})

		p, err := svc.CreatePoll(ctx, creator.ID, CreatePollRequest{Title: "x"})
		require.NoError(t, err)

		assert.True(t, p.IsActive)
		assert.Equal(t, creator.ID, p.CreatedBy)
	})
}

func TestAddOption(t *testing.T) {
	ctx := context.Background()

	t.Run("creator attaches a selectable design", func(t *testing.T) {
		repo := newFakeRepo()
		creator := member(3, 0)
		users := newFakeUsers(creator)
		p, _ := seedPoll(repo, creator.ID, 0)

		designID := uuid.New().String()
		designs := &fakeDesigns{
			selectable: map[string]bool{designID + "|" + creator.ID: true},
		}

		svc := testService(repo, users, designs)

		o, err := svc.AddOption(ctx, p.ID, creator.ID, designID)
		require.NoError(t, err)
		assert.Equal(t, designID, o.DesignID)
	})

	t.Run("non-creator is rejected", func(t *testing.T) {
		repo := newFakeRepo()
		creator := member(3, 0)
		other := member(3, 0)
		users := newFakeUsers(creator, other)
		p, _ := seedPoll(repo, creator.ID, 0)

		svc := testService(repo, users, &fakeDesigns{})

		_, err := svc.AddOption(ctx, p.ID, other.ID, uuid.New().String())
		assert.ErrorIs(t, err, ErrNotPollCreator)
	})

	t.Run("unselectable design is rejected", func(t *testing.T) {
		repo := newFakeRepo()
		creator := member(3, 0)
		users := newFakeUsers(creator)
		p, _ := seedPoll(repo, creator.ID, 0)

		svc := testService(repo, users, &fakeDesigns{})

		_, err := svc.AddOption(ctx, p.ID, creator.ID, uuid.New().String())
		assert.ErrorIs(t, err, ErrDesignNotSelectable)
	})

	t.Run("same design twice in one poll is rejected", func(t *testing.T) {
		repo := newFakeRepo()
		creator := member(3, 0)
		users := newFakeUsers(creator)
		p, _ := seedPoll(repo, creator.ID, 0)

		designID := uuid.New().String()
		designs := &fakeDesigns{
			selectable: map[string]bool{designID + "|" + creator.ID: true},
		}

		svc := testService(repo, users, designs)

		_, err := svc.AddOption(ctx, p.ID, creator.ID, designID)
		require.NoError(t, err)

		_, err = svc.AddOption(ctx, p.ID, creator.ID, designID)
		assert.True(t, errors.Is(err, core.ErrDuplicateKey))
	})
}

func TestAddComment(t *testing.T) {
	ctx := context.Background()

	t.Run("credits comment xp", func(t *testing.T) {
		repo := newFakeRepo()
		author := member(1, 0)
		users := newFakeUsers(author)
		p, _ := seedPoll(repo, uuid.New().String(), 0)

		svc := testService(repo, users, &fakeDesigns{})

		comment, award, err := svc.AddComment(ctx, author.ID, p.ID, "nice drop")
		require.NoError(t, err)

		assert.Equal(t, "nice drop", comment.Body)
		assert.Equal(t, progression.XPComment, award.XP)
	})

	t.Run("tier 0 comments and earns xp", func(t *testing.T) {
		repo := newFakeRepo()
		author := member(0, 0)
		users := newFakeUsers(author)
		p, _ := seedPoll(repo, uuid.New().String(), 0)

		svc := testService(repo, users, &fakeDesigns{})

		comment, award, err := svc.AddComment(ctx, author.ID, p.ID, "hi")
		require.NoError(t, err)

		assert.Equal(t, "hi", comment.Body)
		assert.Equal(t, progression.XPComment, award.XP)
		assert.Equal(t, 0, award.Tier, "xp alone never lifts tier 0")
		assert.False(t, award.Promoted)
	})
}

func TestDeletePoll(t *testing.T) {
	ctx := context.Background()

	t.Run("admin only", func(t *testing.T) {
		repo := newFakeRepo()
		creator := member(3, 0)
		users := newFakeUsers(creator)
		p, _ := seedPoll(repo, creator.ID, 0)

		svc := testService(repo, users, &fakeDesigns{})

		err := svc.DeletePoll(ctx, p.ID, creator.ID)
		assert.True(t, errors.Is(err, core.ErrForbidden))
	})

	t.Run("admin removes the poll", func(t *testing.T) {
		repo := newFakeRepo()
		admin := member(0, 0)
		admin.IsAdmin = true
		users := newFakeUsers(admin)
		p, _ := seedPoll(repo, uuid.New().String(), 0)

		svc := testService(repo, users, &fakeDesigns{})

		require.NoError(t, svc.DeletePoll(ctx, p.ID, admin.ID))

		_, err := svc.repo.GetPoll(ctx, p.ID)
		assert.True(t, errors.Is(err, core.ErrNotFound))
	})
}
