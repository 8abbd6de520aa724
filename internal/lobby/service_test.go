package lobby

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jason-s-yu/lobbyfinder/internal/catalog"
	"github.com/jason-s-yu/lobbyfinder/internal/models"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []Event
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, ev Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
	return p.err
}

func (p *recordingPublisher) actions() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.events))
	for i, ev := range p.events {
		out[i] = ev.Action
	}
	return out
}

func testLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func testCatalog() *catalog.Memory {
	return catalog.NewMemory(catalog.Seed{
		Games: []models.Game{{ID: 1, Name: "Valorant", Icon: "val.png", Logo: "val-logo.png"}},
	})
}

func newTestService(pubs ...Publisher) *Service {
	svc := NewService(NewStore(), testCatalog(), testLogger(), pubs...)
	svc.now = func() time.Time { return time.Date(2025, 3, 14, 12, 0, 0, 0, time.UTC) }
	return svc
}

func user(name string) models.User {
	return models.User{ID: uuid.New(), Username: name}
}

func createReq(maxSize int) CreateRequest {
	return CreateRequest{
		GameID:  1,
		Mode:    "Competitive",
		Region:  "EU",
		MaxSize: maxSize,
		MinRank: "Gold",
		MaxRank: "Diamond",
		Tags:    []string{" chill ", "", "comms"},
	}
}

func TestCreateSeatsOwner(t *testing.T) {
	pub := &recordingPublisher{}
	svc := newTestService(pub)
	owner := user("sova")

	l, err := svc.Create(context.Background(), owner, createReq(5))
	require.NoError(t, err)
	assert.NotZero(t, l.ID)
	assert.Equal(t, "Valorant", l.Game.Name)
	assert.Equal(t, "val-logo.png", l.Game.Logo)
	assert.Equal(t, owner.ID, l.Owner.ID)
	assert.Equal(t, 1, l.CurrentSize)
	require.Len(t, l.Players, 1)
	assert.Equal(t, owner.ID.String(), l.Players[0].ID)
	assert.Equal(t, models.StatusWaiting, l.Status)
	assert.Equal(t, models.LobbyPublic, l.Type)
	assert.Equal(t, []string{"chill", "comms"}, l.Tags)
	assert.Equal(t, []string{"create"}, pub.actions())
}

func TestCreateValidation(t *testing.T) {
	svc := newTestService()
	owner := user("sova")

	cases := map[string]func(r *CreateRequest){
		"no game":         func(r *CreateRequest) { r.GameID = 0 },
		"unknown game":    func(r *CreateRequest) { r.GameID = 99 },
		"no mode":         func(r *CreateRequest) { r.Mode = "  " },
		"too small":       func(r *CreateRequest) { r.MaxSize = 1 },
		"too big":         func(r *CreateRequest) { r.MaxSize = MaxLobbySize + 1 },
		"bad type":        func(r *CreateRequest) { r.Type = "secret" },
		"private no code": func(r *CreateRequest) { r.Type = models.LobbyPrivate },
		"too many tags":   func(r *CreateRequest) { r.Tags = make([]string, MaxTagCount+1) },
		"tag too long":    func(r *CreateRequest) { r.Tags = []string{"abcdefghijklmnopqrstuvwxyz"} },
		"note too long":   func(r *CreateRequest) { r.Note = string(make([]rune, MaxNoteLength+1)) },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			req := createReq(5)
			mutate(&req)
			_, err := svc.Create(context.Background(), owner, req)
			assert.ErrorIs(t, err, ErrInvalid)
		})
	}
}

func TestJoinFillsLobby(t *testing.T) {
	ctx := context.Background()
	pub := &recordingPublisher{}
	svc := newTestService(pub)
	owner, guest := user("sova"), user("jett")

	l, err := svc.Create(ctx, owner, createReq(2))
	require.NoError(t, err)

	l, err = svc.Join(ctx, l.ID, guest, "")
	require.NoError(t, err)
	assert.Equal(t, 2, l.CurrentSize)
	assert.Equal(t, models.StatusFull, l.Status)
	assert.False(t, l.IsJoinable())

	_, err = svc.Join(ctx, l.ID, user("omen"), "")
	assert.ErrorIs(t, err, ErrNotJoinable)

	_, err = svc.Join(ctx, l.ID, guest, "")
	assert.ErrorIs(t, err, ErrAlreadyJoined)

	l, err = svc.Leave(ctx, l.ID, guest)
	require.NoError(t, err)
	assert.Equal(t, 1, l.CurrentSize)
	assert.Equal(t, models.StatusWaiting, l.Status)

	assert.Equal(t, []string{"create", "join", "leave"}, pub.actions())
}

func TestJoinInGameLobby(t *testing.T) {
	ctx := context.Background()
	svc := newTestService()
	owner := user("sova")

	l, err := svc.Create(ctx, owner, createReq(5))
	require.NoError(t, err)
	inGame := models.StatusInGame
	_, err = svc.Update(ctx, l.ID, owner, UpdateRequest{Status: &inGame})
	require.NoError(t, err)

	_, err = svc.Join(ctx, l.ID, user("jett"), "")
	assert.ErrorIs(t, err, ErrNotJoinable)
}

func TestJoinPrivateLobby(t *testing.T) {
	ctx := context.Background()
	svc := newTestService()
	owner := user("sova")

	req := createReq(5)
	req.Type = models.LobbyPrivate
	req.Passcode = "ult-ready"
	l, err := svc.Create(ctx, owner, req)
	require.NoError(t, err)
	assert.NotEmpty(t, l.PasscodeHash)

	_, err = svc.Join(ctx, l.ID, user("jett"), "wrong")
	assert.ErrorIs(t, err, ErrBadPasscode)

	l, err = svc.Join(ctx, l.ID, user("jett"), "ult-ready")
	require.NoError(t, err)
	assert.Equal(t, 2, l.CurrentSize)
}

func TestJoinMissingLobby(t *testing.T) {
	_, err := newTestService().Join(context.Background(), 404, user("jett"), "")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLeaveRules(t *testing.T) {
	ctx := context.Background()
	svc := newTestService()
	owner := user("sova")
	l, err := svc.Create(ctx, owner, createReq(5))
	require.NoError(t, err)

	_, err = svc.Leave(ctx, l.ID, owner)
	assert.ErrorIs(t, err, ErrOwnerCannotLeave)

	_, err = svc.Leave(ctx, l.ID, user("stranger"))
	assert.ErrorIs(t, err, ErrNotMember)
}

func TestUpdateOwnerOnly(t *testing.T) {
	ctx := context.Background()
	pub := &recordingPublisher{}
	svc := newTestService(pub)
	owner, guest := user("sova"), user("jett")
	l, err := svc.Create(ctx, owner, createReq(5))
	require.NoError(t, err)
	_, err = svc.Join(ctx, l.ID, guest, "")
	require.NoError(t, err)

	note := "last one, then sleep"
	_, err = svc.Update(ctx, l.ID, guest, UpdateRequest{Note: &note})
	assert.ErrorIs(t, err, ErrNotOwner)

	tooSmall := 1
	_, err = svc.Update(ctx, l.ID, owner, UpdateRequest{MaxSize: &tooSmall})
	assert.ErrorIs(t, err, ErrInvalid)

	full := models.StatusFull
	_, err = svc.Update(ctx, l.ID, owner, UpdateRequest{Status: &full})
	assert.ErrorIs(t, err, ErrInvalid)

	two := 2
	tags := []string{"eu", "mic"}
	updated, err := svc.Update(ctx, l.ID, owner, UpdateRequest{MaxSize: &two, Note: &note, Tags: &tags})
	require.NoError(t, err)
	assert.Equal(t, note, updated.Note)
	assert.Equal(t, models.StatusFull, updated.Status)
	assert.Equal(t, tags, updated.Tags)

	assert.Equal(t, []string{"create", "join", "edit"}, pub.actions())
}

func TestUpdateBelowCurrentSize(t *testing.T) {
	ctx := context.Background()
	svc := newTestService()
	owner := user("sova")
	l, err := svc.Create(ctx, owner, createReq(4))
	require.NoError(t, err)
	for _, name := range []string{"jett", "omen"} {
		_, err = svc.Join(ctx, l.ID, user(name), "")
		require.NoError(t, err)
	}

	two := 2
	_, err = svc.Update(ctx, l.ID, owner, UpdateRequest{MaxSize: &two})
	assert.ErrorIs(t, err, ErrInvalid)
}

func TestUpdateTrimsModeAndRegion(t *testing.T) {
	ctx := context.Background()
	svc := newTestService()
	owner := user("sova")
	l, err := svc.Create(ctx, owner, createReq(5))
	require.NoError(t, err)

	mode, region := "  Unrated ", "\tNA  "
	updated, err := svc.Update(ctx, l.ID, owner, UpdateRequest{Mode: &mode, Region: &region})
	require.NoError(t, err)
	assert.Equal(t, "Unrated", updated.Mode)
	assert.Equal(t, "NA", updated.Region)
	assert.Equal(t, "  Unrated ", mode, "caller's value is left alone")

	blank := "   "
	_, err = svc.Update(ctx, l.ID, owner, UpdateRequest{Region: &blank})
	assert.ErrorIs(t, err, ErrInvalid)
}

func TestDeleteOwnerOnly(t *testing.T) {
	ctx := context.Background()
	pub := &recordingPublisher{}
	svc := newTestService(pub)
	owner := user("sova")
	l, err := svc.Create(ctx, owner, createReq(5))
	require.NoError(t, err)

	assert.ErrorIs(t, svc.Delete(ctx, l.ID, user("jett")), ErrNotOwner)
	require.NoError(t, svc.Delete(ctx, l.ID, owner))

	_, err = svc.Get(ctx, l.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, svc.Delete(ctx, l.ID, owner), ErrNotFound)

	require.Len(t, pub.events, 2)
	assert.Equal(t, EventDeleted, pub.events[1].Type)
	assert.Nil(t, pub.events[1].Lobby)
}

func TestPublishErrorsDoNotFailMutation(t *testing.T) {
	pub := &recordingPublisher{err: errors.New("redis down")}
	svc := newTestService(pub)
	_, err := svc.Create(context.Background(), user("sova"), createReq(5))
	assert.NoError(t, err)
	assert.Len(t, pub.events, 1)
}

func TestConcurrentJoinsNeverOverfill(t *testing.T) {
	ctx := context.Background()
	svc := newTestService()
	l, err := svc.Create(ctx, user("sova"), createReq(5))
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = svc.Join(ctx, l.ID, user("guest"), "")
		}()
	}
	wg.Wait()

	got, err := svc.Get(ctx, l.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, got.CurrentSize)
	assert.Equal(t, models.StatusFull, got.Status)
}
