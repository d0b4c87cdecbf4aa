package race

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"typerace/internal/pkg/errs"
)

type countingGenerator struct {
	n atomic.Int64
}

func (g *countingGenerator) Generate(_ context.Context, cfg ContentConfig) (string, error) {
	if err := cfg.Validate(); err != nil {
		return "", err
	}
	return fmt.Sprintf("%s text #%d", cfg.Genre, g.n.Add(1)), nil
}

type fixedGenerator struct {
	text string
	err  error
}

func (g fixedGenerator) Generate(context.Context, ContentConfig) (string, error) {
	return g.text, g.err
}

type mockPublisher struct {
	mock.Mock
}

func (m *mockPublisher) PublishResult(ctx context.Context, outcome *Outcome) error {
	return m.Called(ctx, outcome).Error(0)
}

var (
	alice = Player{UserID: "user-alice", Name: "alice@example.com"}
	bob   = Player{UserID: "user-bob", Name: "bob@example.com"}
	carol = Player{UserID: "user-carol", Name: "carol@example.com"}
)

func newTestService(t *testing.T, opts ...Option) (*Service, *MemoryStore) {
	t.Helper()
	store := NewMemoryStore()
	return NewService(store, &countingGenerator{}, opts...), store
}

func paragraphConfig() ContentConfig {
	return ContentConfig{Type: TypeParagraph, Level: LevelBeginner, Genre: "general"}
}

// activeRoom creates a room hosted by alice and seats bob as guest.
func activeRoom(t *testing.T, svc *Service) *Room {
	t.Helper()
	ctx := context.Background()

	room, err := svc.CreateRoom(ctx, alice, paragraphConfig())
	require.NoError(t, err)

	_, err = svc.Join(ctx, room.Code, bob)
	require.NoError(t, err)
	return room
}

func finishedRoom(t *testing.T, svc *Service, aliceScore, bobScore float64) (*Room, *Outcome) {
	t.Helper()
	ctx := context.Background()
	room := activeRoom(t, svc)

	_, err := svc.Finish(ctx, room.Code, alice, Stats{WPM: 50, Accuracy: 97, Score: aliceScore})
	require.NoError(t, err)
	_, err = svc.Finish(ctx, room.Code, bob, Stats{WPM: 55, Accuracy: 95, Score: bobScore})
	require.NoError(t, err)

	outcome, err := svc.DetectCompletion(ctx, room.Code)
	require.NoError(t, err)
	require.NotNil(t, outcome)
	return room, outcome
}

func assertCode(t *testing.T, err error, code int) {
	t.Helper()
	require.Error(t, err)
	assert.True(t, errs.Is(err, code), "expected code %d, got %v", code, err)
}

func TestCreateRoomAndJoin(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()

	room, err := svc.CreateRoom(ctx, alice, paragraphConfig())
	require.NoError(t, err)
	assert.Equal(t, StatusWaiting, room.Status)
	assert.Empty(t, room.GuestID)
	assert.NotEmpty(t, room.Content)
	assert.Equal(t, DefaultTestDuration, room.Config.TestDuration)

	res, err := svc.Join(ctx, room.Code, bob)
	require.NoError(t, err)
	assert.True(t, res.NewGuest)
	assert.Equal(t, StatusActive, res.Room.Status)
	assert.Equal(t, bob.UserID, res.Room.GuestID)
	require.NotNil(t, res.Room.StartedAt)

	perfs, err := store.ListPerformances(ctx, room.Code)
	require.NoError(t, err)
	require.Len(t, perfs, 2)
	assert.Equal(t, alice.UserID, perfs[0].UserID)
	assert.True(t, perfs[0].IsHost)
	assert.Equal(t, bob.UserID, perfs[1].UserID)
	assert.False(t, perfs[1].IsHost)
	assert.Equal(t, float64(100), perfs[1].Accuracy)
}

func TestJoinRejoinKeepsState(t *testing.T) {
	svc, _ := newTestService(t)
	room := activeRoom(t, svc)

	res, err := svc.Join(context.Background(), room.Code, bob)
	require.NoError(t, err)
	assert.False(t, res.NewGuest)
	assert.Len(t, res.Performances, 2)

	res, err = svc.Join(context.Background(), room.Code, alice)
	require.NoError(t, err)
	assert.False(t, res.NewGuest)
}

func TestJoinRejections(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Join(ctx, "NOPE00", bob)
	assertCode(t, err, errs.ErrRoomNotFound)

	room, err := svc.CreateRoom(ctx, alice, paragraphConfig())
	require.NoError(t, err)

	_, err = svc.Join(ctx, room.Code, Player{UserID: alice.UserID})
	require.NoError(t, err, "host rejoins through their own performance")

	_, err = svc.Join(ctx, room.Code, bob)
	require.NoError(t, err)

	_, err = svc.Join(ctx, room.Code, carol)
	assertCode(t, err, errs.ErrRoomNotJoinable)
}

func TestJoinConcurrentGuestsSeatsOne(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()

	room, err := svc.CreateRoom(ctx, alice, paragraphConfig())
	require.NoError(t, err)

	var wg sync.WaitGroup
	var seated atomic.Int32
	for i := range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			p := Player{UserID: fmt.Sprintf("user-%d", i)}
			if _, err := svc.Join(ctx, room.Code, p); err == nil {
				seated.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), seated.Load())
	perfs, err := store.ListPerformances(ctx, room.Code)
	require.NoError(t, err)
	assert.Len(t, perfs, 2)
}

func TestCreateRoomValidation(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.CreateRoom(ctx, alice, ContentConfig{Type: TypeParagraph, Genre: "algorithm"})
	assertCode(t, err, errs.ErrInvalidGenre)

	_, err = svc.CreateRoom(ctx, alice, ContentConfig{Type: TypeCode, Genre: "algorithm"})
	assertCode(t, err, errs.ErrInvalidLanguage)

	room, err := svc.CreateRoom(ctx, alice, ContentConfig{Type: TypeCode, Language: LanguagePython, Genre: "utility", Level: LevelExpert})
	require.NoError(t, err)
	assert.Equal(t, LanguagePython, room.Config.Language)
}

func TestCreateRoomContentFailure(t *testing.T) {
	svc := NewService(NewMemoryStore(), fixedGenerator{err: errors.New("upstream 502")})

	_, err := svc.CreateRoom(context.Background(), alice, paragraphConfig())
	assertCode(t, err, errs.ErrContentUnavailable)
}

func TestConfigureHostOnly(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()
	room := activeRoom(t, svc)

	before, err := store.GetRoom(ctx, room.Code)
	require.NoError(t, err)

	_, err = svc.Configure(ctx, room.Code, bob.UserID, ContentConfig{Type: TypeParagraph, Genre: "creative"})
	assertCode(t, err, errs.ErrNotHost)

	after, err := store.GetRoom(ctx, room.Code)
	require.NoError(t, err)
	assert.Equal(t, before.Config, after.Config)
	assert.Equal(t, before.Content, after.Content)

	updated, err := svc.Configure(ctx, room.Code, alice.UserID, ContentConfig{Type: TypeParagraph, Genre: "creative"})
	require.NoError(t, err)
	assert.Equal(t, "creative", updated.Config.Genre)
	assert.NotEqual(t, before.Content, updated.Content)
}

func TestConfigureAfterStartRejected(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	room := activeRoom(t, svc)

	_, _, err := svc.ForceStart(ctx, room.Code, alice.UserID)
	require.NoError(t, err)

	_, err = svc.Configure(ctx, room.Code, alice.UserID, paragraphConfig())
	assertCode(t, err, errs.ErrRaceStarted)
}

func TestReadyQuorumStartsOnce(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()
	room := activeRoom(t, svc)

	var wg sync.WaitGroup
	starts := make(chan *time.Time, 2)
	for _, p := range []Player{alice, bob} {
		wg.Add(1)
		go func() {
			defer wg.Done()
			start, err := svc.MarkReady(ctx, room.Code, p.UserID)
			assert.NoError(t, err)
			starts <- start
		}()
	}
	wg.Wait()
	close(starts)

	var fired []*time.Time
	for s := range starts {
		if s != nil {
			fired = append(fired, s)
		}
	}
	require.Len(t, fired, 1)

	stored, err := store.GetRoom(ctx, room.Code)
	require.NoError(t, err)
	require.NotNil(t, stored.StartTime)
	assert.True(t, stored.StartTime.Equal(*fired[0]))

	again, err := svc.MarkReady(ctx, room.Code, alice.UserID)
	require.NoError(t, err)
	assert.Nil(t, again)
}

func TestReadySinglePlayerDoesNotStart(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	room, err := svc.CreateRoom(ctx, alice, paragraphConfig())
	require.NoError(t, err)

	start, err := svc.MarkReady(ctx, room.Code, alice.UserID)
	require.NoError(t, err)
	assert.Nil(t, start)

	_, err = svc.MarkReady(ctx, room.Code, carol.UserID)
	assertCode(t, err, errs.ErrPerformanceNotFound)
}

func TestForceStart(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	room := activeRoom(t, svc)

	_, _, err := svc.ForceStart(ctx, room.Code, bob.UserID)
	assertCode(t, err, errs.ErrNotHost)

	start, claimed, err := svc.ForceStart(ctx, room.Code, alice.UserID)
	require.NoError(t, err)
	assert.True(t, claimed)

	again, claimed, err := svc.ForceStart(ctx, room.Code, alice.UserID)
	require.NoError(t, err)
	assert.False(t, claimed)
	assert.True(t, start.Equal(again))
}

func TestForceStartNeedsOpponent(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()

	room, err := svc.CreateRoom(ctx, alice, paragraphConfig())
	require.NoError(t, err)

	_, claimed, err := svc.ForceStart(ctx, room.Code, alice.UserID)
	assertCode(t, err, errs.ErrOpponentMissing)
	assert.False(t, claimed)

	stored, err := store.GetRoom(ctx, room.Code)
	require.NoError(t, err)
	assert.Equal(t, StatusWaiting, stored.Status)
	assert.Nil(t, stored.StartTime)

	_, err = svc.Join(ctx, room.Code, bob)
	require.NoError(t, err)

	_, claimed, err = svc.ForceStart(ctx, room.Code, alice.UserID)
	require.NoError(t, err)
	assert.True(t, claimed)
}

func TestForceStartRematchRoom(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()
	room, _ := finishedRoom(t, svc, 80, 90)

	rematch, err := svc.AcceptRematch(ctx, room.Code, alice, nil)
	require.NoError(t, err)

	_, claimed, err := svc.ForceStart(ctx, rematch.Code, alice.UserID)
	require.NoError(t, err)
	assert.True(t, claimed)

	stored, err := store.GetRoom(ctx, rematch.Code)
	require.NoError(t, err)
	assert.Equal(t, StatusActive, stored.Status)
}

func TestCompletionWinner(t *testing.T) {
	svc, store := newTestService(t)

	room, outcome := finishedRoom(t, svc, 80, 95)
	assert.Equal(t, bob.UserID, outcome.WinnerID)
	assert.False(t, outcome.IsTie)
	require.Len(t, outcome.Standings, 2)
	assert.Equal(t, bob.UserID, outcome.Standings[0].UserID)

	stored, err := store.GetRoom(context.Background(), room.Code)
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, stored.Status)
	assert.Equal(t, bob.UserID, stored.WinnerID)
}

func TestCompletionTie(t *testing.T) {
	svc, _ := newTestService(t)

	_, outcome := finishedRoom(t, svc, 70, 70)
	assert.Empty(t, outcome.WinnerID)
	assert.True(t, outcome.IsTie)
}

func TestCompletionIdempotent(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()
	room, first := finishedRoom(t, svc, 80, 95)

	again, err := svc.DetectCompletion(ctx, room.Code)
	require.NoError(t, err)
	assert.Nil(t, again)

	stored, err := store.GetRoom(ctx, room.Code)
	require.NoError(t, err)
	assert.True(t, stored.EndedAt.Equal(first.EndedAt))
	assert.Equal(t, first.WinnerID, stored.WinnerID)
}

func TestCompletionWaitsForBothPlayers(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()
	room := activeRoom(t, svc)

	_, err := svc.Finish(ctx, room.Code, alice, Stats{Score: 80})
	require.NoError(t, err)

	outcome, err := svc.DetectCompletion(ctx, room.Code)
	require.NoError(t, err)
	assert.Nil(t, outcome)

	stored, err := store.GetRoom(ctx, room.Code)
	require.NoError(t, err)
	assert.Equal(t, StatusActive, stored.Status)
}

func TestCompletionOrderIndependent(t *testing.T) {
	reports := []struct {
		player Player
		score  float64
	}{
		{alice, 80},
		{bob, 95},
	}

	for _, order := range [][]int{{0, 1}, {1, 0}} {
		svc, _ := newTestService(t)
		ctx := context.Background()
		room := activeRoom(t, svc)

		for _, i := range order {
			_, err := svc.Finish(ctx, room.Code, reports[i].player, Stats{Score: reports[i].score})
			require.NoError(t, err)
		}

		outcome, err := svc.DetectCompletion(ctx, room.Code)
		require.NoError(t, err)
		require.NotNil(t, outcome)
		assert.Equal(t, bob.UserID, outcome.WinnerID, "order %v", order)
	}
}

func TestConcurrentFinishCompletesOnce(t *testing.T) {
	publisher := &mockPublisher{}
	publisher.On("PublishResult", mock.Anything, mock.AnythingOfType("*race.Outcome")).Return(nil).Once()

	svc, store := newTestService(t, WithResultPublisher(publisher))
	ctx := context.Background()
	room := activeRoom(t, svc)

	var wg sync.WaitGroup
	outcomes := make(chan *Outcome, 2)
	for _, r := range []struct {
		p     Player
		score float64
	}{{alice, 88}, {bob, 61}} {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Finish(ctx, room.Code, r.p, Stats{Score: r.score})
			assert.NoError(t, err)
			outcome, err := svc.DetectCompletion(ctx, room.Code)
			assert.NoError(t, err)
			outcomes <- outcome
		}()
	}
	wg.Wait()
	close(outcomes)

	var completed []*Outcome
	for o := range outcomes {
		if o != nil {
			completed = append(completed, o)
		}
	}
	require.Len(t, completed, 1)
	assert.Equal(t, alice.UserID, completed[0].WinnerID)

	perfs, err := store.ListPerformances(ctx, room.Code)
	require.NoError(t, err)
	for _, p := range perfs {
		assert.True(t, p.Finished(), "completed room implies every performance finished")
	}
	publisher.AssertExpectations(t)
}

func TestFinishDuplicateDoesNotMutate(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()
	room := activeRoom(t, svc)

	res, err := svc.Finish(ctx, room.Code, alice, Stats{WPM: 60, Accuracy: 98, Score: 90})
	require.NoError(t, err)
	assert.True(t, res.First)
	assert.Equal(t, float64(100), res.Performance.Progress)

	res, err = svc.Finish(ctx, room.Code, alice, Stats{WPM: 10, Score: 5})
	require.NoError(t, err)
	assert.False(t, res.First)

	perf, err := store.GetPerformance(ctx, room.Code, alice.UserID)
	require.NoError(t, err)
	assert.Equal(t, float64(90), perf.Score)

	applied, err := svc.UpdateProgress(ctx, room.Code, alice, Stats{Progress: 40, Score: 1})
	require.NoError(t, err)
	assert.False(t, applied)
}

func TestFinishCreatesMissingPerformanceForSeatedPlayer(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()

	room, err := svc.CreateRoom(ctx, alice, paragraphConfig())
	require.NoError(t, err)
	seated, err := store.AssignGuest(ctx, room.Code, bob.UserID, time.Now())
	require.NoError(t, err)
	require.True(t, seated)

	res, err := svc.Finish(ctx, room.Code, bob, Stats{Score: 42})
	require.NoError(t, err)
	assert.True(t, res.First)
	assert.False(t, res.Performance.IsHost)

	_, err = svc.Finish(ctx, room.Code, carol, Stats{Score: 42})
	assertCode(t, err, errs.ErrPerformanceNotFound)
}

func TestUpdateProgressUpserts(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()
	room := activeRoom(t, svc)

	applied, err := svc.UpdateProgress(ctx, room.Code, bob, Stats{Progress: 35, WPM: 48, Accuracy: 96, Score: 20})
	require.NoError(t, err)
	assert.True(t, applied)

	perf, err := store.GetPerformance(ctx, room.Code, bob.UserID)
	require.NoError(t, err)
	assert.Equal(t, float64(35), perf.Progress)
	assert.Equal(t, float64(48), perf.WPM)
}

func TestHostDisconnectCancelsActiveRoom(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()
	room := activeRoom(t, svc)

	reason, cancelled, err := svc.HandleDisconnect(ctx, room.Code, alice.UserID)
	require.NoError(t, err)
	assert.True(t, cancelled)
	assert.Equal(t, ReasonHostDisconnected, reason)

	stored, err := store.GetRoom(ctx, room.Code)
	require.NoError(t, err)
	assert.Equal(t, StatusCancelled, stored.Status)

	_, err = svc.UpdateProgress(ctx, room.Code, bob, Stats{Progress: 10})
	assertCode(t, err, errs.ErrRoomClosed)
}

func TestGuestDisconnectMidRaceCancels(t *testing.T) {
	svc, _ := newTestService(t)
	room := activeRoom(t, svc)

	reason, cancelled, err := svc.HandleDisconnect(context.Background(), room.Code, bob.UserID)
	require.NoError(t, err)
	assert.True(t, cancelled)
	assert.Equal(t, ReasonOpponentDisconnected, reason)
}

func TestGuestDisconnectWhileWaitingKeepsRoom(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()
	source, _ := finishedRoom(t, svc, 50, 60)

	rematch, err := svc.AcceptRematch(ctx, source.Code, alice, nil)
	require.NoError(t, err)
	require.Equal(t, StatusWaiting, rematch.Status)

	_, cancelled, err := svc.HandleDisconnect(ctx, rematch.Code, bob.UserID)
	require.NoError(t, err)
	assert.False(t, cancelled)

	stored, err := store.GetRoom(ctx, rematch.Code)
	require.NoError(t, err)
	assert.Equal(t, StatusWaiting, stored.Status)

	res, err := svc.Join(ctx, rematch.Code, bob)
	require.NoError(t, err)
	assert.Equal(t, StatusWaiting, res.Room.Status)
}

func TestDisconnectDecision(t *testing.T) {
	waiting := &Room{HostID: alice.UserID, Status: StatusWaiting}
	active := &Room{HostID: alice.UserID, GuestID: bob.UserID, Status: StatusActive}
	completed := &Room{HostID: alice.UserID, GuestID: bob.UserID, Status: StatusCompleted}

	cancel, _ := DisconnectDecision(waiting, alice.UserID, true)
	assert.True(t, cancel)
	cancel, _ = DisconnectDecision(waiting, bob.UserID, true)
	assert.False(t, cancel)
	cancel, _ = DisconnectDecision(active, bob.UserID, true)
	assert.True(t, cancel)
	cancel, _ = DisconnectDecision(active, carol.UserID, false)
	assert.False(t, cancel)
	cancel, _ = DisconnectDecision(completed, alice.UserID, true)
	assert.False(t, cancel)
}

func TestCancelRoom(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	room := activeRoom(t, svc)

	_, err := svc.CancelRoom(ctx, room.Code, bob.UserID)
	assertCode(t, err, errs.ErrNotHost)

	cancelled, err := svc.CancelRoom(ctx, room.Code, alice.UserID)
	require.NoError(t, err)
	assert.Equal(t, StatusCancelled, cancelled.Status)
	assert.NotNil(t, cancelled.EndedAt)

	_, err = svc.CancelRoom(ctx, room.Code, alice.UserID)
	assertCode(t, err, errs.ErrRoomClosed)

	done, _ := finishedRoom(t, svc, 1, 2)
	_, err = svc.CancelRoom(ctx, done.Code, alice.UserID)
	assertCode(t, err, errs.ErrRoomAlreadyCompleted)
}

func TestAcceptRematch(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()
	source, _ := finishedRoom(t, svc, 80, 95)

	original, err := store.GetRoom(ctx, source.Code)
	require.NoError(t, err)

	rematch, err := svc.AcceptRematch(ctx, source.Code, bob, nil)
	require.NoError(t, err)
	assert.NotEqual(t, source.Code, rematch.Code)
	assert.Equal(t, StatusWaiting, rematch.Status)
	assert.Equal(t, bob.UserID, rematch.HostID)
	assert.Empty(t, rematch.GuestID)
	assert.Equal(t, original.Config, rematch.Config)
	assert.NotEqual(t, original.Content, rematch.Content)

	perfs, err := store.ListPerformances(ctx, rematch.Code)
	require.NoError(t, err)
	require.Len(t, perfs, 2)
	for _, p := range perfs {
		assert.Equal(t, p.UserID == bob.UserID, p.IsHost)
		assert.Zero(t, p.Progress)
		assert.Zero(t, p.Score)
		assert.False(t, p.IsReady)
		assert.Nil(t, p.FinishedAt)
	}
}

func TestAcceptRematchWithConfig(t *testing.T) {
	svc, _ := newTestService(t)
	source, _ := finishedRoom(t, svc, 80, 95)

	cfg := &ContentConfig{Type: TypeCode, Language: LanguageJavaScript, Genre: "dataStructure"}
	rematch, err := svc.AcceptRematch(context.Background(), source.Code, alice, cfg)
	require.NoError(t, err)
	assert.Equal(t, TypeCode, rematch.Config.Type)
	assert.Equal(t, LevelIntermediate, rematch.Config.Level)
}

func TestRematchUnavailable(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	room := activeRoom(t, svc)

	_, err := svc.AcceptRematch(ctx, room.Code, alice, nil)
	assertCode(t, err, errs.ErrRematchUnavailable)

	done, _ := finishedRoom(t, svc, 3, 4)
	_, err = svc.RematchParticipants(ctx, done.Code, carol.UserID)
	assertCode(t, err, errs.ErrPerformanceNotFound)
}

func TestRematchNeedsDistinctContent(t *testing.T) {
	store := NewMemoryStore()
	svc := NewService(store, fixedGenerator{text: "same text every time"})
	ctx := context.Background()

	room, err := svc.CreateRoom(ctx, alice, paragraphConfig())
	require.NoError(t, err)
	_, err = svc.Join(ctx, room.Code, bob)
	require.NoError(t, err)
	for _, p := range []Player{alice, bob} {
		_, err = svc.Finish(ctx, room.Code, p, Stats{Score: 10})
		require.NoError(t, err)
	}
	_, err = svc.DetectCompletion(ctx, room.Code)
	require.NoError(t, err)

	_, err = svc.AcceptRematch(ctx, room.Code, alice, nil)
	assertCode(t, err, errs.ErrContentUnavailable)
}

func TestActiveRooms(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	open := activeRoom(t, svc)
	finishedRoom(t, svc, 1, 2)

	rooms, err := svc.ActiveRooms(ctx, bob.UserID)
	require.NoError(t, err)
	require.Len(t, rooms, 1)
	assert.Equal(t, open.Code, rooms[0].Code)

	rooms, err = svc.ActiveRooms(ctx, carol.UserID)
	require.NoError(t, err)
	assert.Empty(t, rooms)
}

func TestSweepExpired(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }
	svc, store := newTestService(t, WithClock(clock))
	ctx := context.Background()

	stale := activeRoom(t, svc)
	_, done := finishedRoom(t, svc, 1, 2)

	now = now.Add(25 * time.Hour)
	fresh, err := svc.CreateRoom(ctx, carol, paragraphConfig())
	require.NoError(t, err)

	n, err := svc.SweepExpired(ctx, 24*time.Hour)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	_, err = store.GetRoom(ctx, stale.Code)
	assertCode(t, err, errs.ErrRoomNotFound)
	_, err = store.GetPerformance(ctx, stale.Code, alice.UserID)
	assertCode(t, err, errs.ErrPerformanceNotFound)

	_, err = store.GetRoom(ctx, done.RoomCode)
	assert.NoError(t, err)
	_, err = store.GetRoom(ctx, fresh.Code)
	assert.NoError(t, err)
}
