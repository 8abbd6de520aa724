package lobby

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/sirupsen/logrus"

	"github.com/jason-s-yu/lobbyfinder/internal/auth"
	"github.com/jason-s-yu/lobbyfinder/internal/catalog"
	"github.com/jason-s-yu/lobbyfinder/internal/models"
)

const (
	MinLobbySize  = 2
	MaxLobbySize  = 64
	MaxNoteLength = 280
	MaxTagCount   = 10
	MaxTagLength  = 24
)

// GameLookup resolves the catalog game a lobby is hosted for.
type GameLookup interface {
	GetGame(ctx context.Context, id int64) (*models.Game, error)
}

// CreateRequest is the payload for hosting a new lobby.
type CreateRequest struct {
	GameID        int64            `json:"gameId"`
	Mode          string           `json:"mode"`
	Region        string           `json:"region"`
	MaxSize       int              `json:"maxSize"`
	MinRank       string           `json:"minRank"`
	MaxRank       string           `json:"maxRank"`
	IsMicRequired bool             `json:"isMicRequired"`
	Type          models.LobbyType `json:"type"`
	Note          string           `json:"note"`
	Tags          []string         `json:"tags"`
	Passcode      string           `json:"passcode"`
}

// UpdateRequest edits a lobby. Nil fields are left unchanged.
type UpdateRequest struct {
	Mode          *string             `json:"mode"`
	Region        *string             `json:"region"`
	MaxSize       *int                `json:"maxSize"`
	MinRank       *string             `json:"minRank"`
	MaxRank       *string             `json:"maxRank"`
	IsMicRequired *bool               `json:"isMicRequired"`
	Status        *models.LobbyStatus `json:"status"`
	Note          *string             `json:"note"`
	Tags          *[]string           `json:"tags"`
}

// Service applies lobby rules on top of a Repository and announces every
// change to its publishers.
type Service struct {
	repo       Repository
	games      GameLookup
	publishers []Publisher
	logger     *logrus.Logger
	now        func() time.Time
}

// NewService wires a lobby service. Publishers receive events in order.
func NewService(repo Repository, games GameLookup, logger *logrus.Logger, publishers ...Publisher) *Service {
	return &Service{
		repo:       repo,
		games:      games,
		publishers: publishers,
		logger:     logger,
		now:        time.Now,
	}
}

// Get returns a lobby by id.
func (s *Service) Get(ctx context.Context, id int64) (*models.Lobby, error) {
	return s.repo.Get(ctx, id)
}

// List returns lobbies matching f, newest first.
func (s *Service) List(ctx context.Context, f Filter) ([]models.Lobby, error) {
	return s.repo.List(ctx, f)
}

// Create hosts a new lobby owned by owner, who takes the first seat.
func (s *Service) Create(ctx context.Context, owner models.User, req CreateRequest) (*models.Lobby, error) {
	if err := validateCreate(&req); err != nil {
		return nil, err
	}

	game, err := s.games.GetGame(ctx, req.GameID)
	if errors.Is(err, catalog.ErrNotFound) {
		return nil, fmt.Errorf("%w: unknown game %d", ErrInvalid, req.GameID)
	}
	if err != nil {
		return nil, fmt.Errorf("lookup game %d: %w", req.GameID, err)
	}

	l := &models.Lobby{
		Game: models.LobbyGame{
			ID:   game.ID,
			Name: game.Name,
			Icon: game.Icon,
			Logo: game.Logo,
		},
		Owner: models.LobbyOwner{
			ID:       owner.ID,
			Username: owner.Username,
			Avatar:   owner.Avatar,
		},
		Players:       []models.Player{owner.AsPlayer()},
		Mode:          req.Mode,
		Region:        req.Region,
		MaxSize:       req.MaxSize,
		MinRank:       req.MinRank,
		MaxRank:       req.MaxRank,
		IsMicRequired: req.IsMicRequired,
		Type:          req.Type,
		Status:        models.StatusWaiting,
		Note:          req.Note,
		Tags:          req.Tags,
		CreatedAt:     s.now().UTC(),
	}
	if l.Type == models.LobbyPrivate {
		hash, err := auth.HashPasscode(req.Passcode)
		if err != nil {
			return nil, fmt.Errorf("hash lobby passcode: %w", err)
		}
		l.PasscodeHash = hash
	}
	l.CurrentSize = len(l.Players)
	refreshStatus(l)

	if err := s.repo.Create(ctx, l); err != nil {
		return nil, fmt.Errorf("store lobby: %w", err)
	}
	s.publish(ctx, newEvent(EventCreated, "create", l.ID, l, owner.ID, s.now()))
	return l, nil
}

// Join seats user in the lobby. Private lobbies require the passcode.
func (s *Service) Join(ctx context.Context, id int64, user models.User, passcode string) (*models.Lobby, error) {
	playerID := user.ID.String()
	l, err := s.repo.Mutate(ctx, id, func(l *models.Lobby) error {
		if l.HasPlayer(playerID) {
			return ErrAlreadyJoined
		}
		if !l.IsJoinable() {
			return ErrNotJoinable
		}
		if l.Type == models.LobbyPrivate {
			ok, err := auth.ComparePasscode(passcode, l.PasscodeHash)
			if err != nil {
				return fmt.Errorf("check lobby passcode: %w", err)
			}
			if !ok {
				return ErrBadPasscode
			}
		}
		l.Players = append(l.Players, user.AsPlayer())
		l.CurrentSize = len(l.Players)
		refreshStatus(l)
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.publish(ctx, newEvent(EventUpdated, "join", id, l, user.ID, s.now()))
	return l, nil
}

// Leave frees the user's seat. The owner cannot leave their own lobby.
func (s *Service) Leave(ctx context.Context, id int64, user models.User) (*models.Lobby, error) {
	playerID := user.ID.String()
	l, err := s.repo.Mutate(ctx, id, func(l *models.Lobby) error {
		if l.Owner.ID == user.ID {
			return ErrOwnerCannotLeave
		}
		idx := -1
		for i, p := range l.Players {
			if p.ID == playerID {
				idx = i
				break
			}
		}
		if idx < 0 {
			return ErrNotMember
		}
		l.Players = append(l.Players[:idx], l.Players[idx+1:]...)
		l.CurrentSize = len(l.Players)
		refreshStatus(l)
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.publish(ctx, newEvent(EventUpdated, "leave", id, l, user.ID, s.now()))
	return l, nil
}

// Update edits lobby settings. Only the owner may edit.
func (s *Service) Update(ctx context.Context, id int64, actor models.User, req UpdateRequest) (*models.Lobby, error) {
	if err := validateUpdate(&req); err != nil {
		return nil, err
	}
	l, err := s.repo.Mutate(ctx, id, func(l *models.Lobby) error {
		if l.Owner.ID != actor.ID {
			return ErrNotOwner
		}
		if req.Mode != nil {
			l.Mode = *req.Mode
		}
		if req.Region != nil {
			l.Region = *req.Region
		}
		if req.MaxSize != nil {
			if *req.MaxSize < l.CurrentSize {
				return fmt.Errorf("%w: maxSize %d is below the %d players already in the lobby", ErrInvalid, *req.MaxSize, l.CurrentSize)
			}
			l.MaxSize = *req.MaxSize
		}
		if req.MinRank != nil {
			l.MinRank = *req.MinRank
		}
		if req.MaxRank != nil {
			l.MaxRank = *req.MaxRank
		}
		if req.IsMicRequired != nil {
			l.IsMicRequired = *req.IsMicRequired
		}
		if req.Status != nil {
			l.Status = *req.Status
		}
		if req.Note != nil {
			l.Note = *req.Note
		}
		if req.Tags != nil {
			l.Tags = *req.Tags
		}
		refreshStatus(l)
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.publish(ctx, newEvent(EventUpdated, "edit", id, l, actor.ID, s.now()))
	return l, nil
}

// Delete removes a lobby. Only the owner may delete.
func (s *Service) Delete(ctx context.Context, id int64, actor models.User) error {
	l, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}
	if l.Owner.ID != actor.ID {
		return ErrNotOwner
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.publish(ctx, newEvent(EventDeleted, "delete", id, nil, actor.ID, s.now()))
	return nil
}

func (s *Service) publish(ctx context.Context, ev Event) {
	for _, p := range s.publishers {
		if err := p.Publish(ctx, ev); err != nil {
			s.logger.WithFields(logrus.Fields{
				"event":   ev.Type,
				"action":  ev.Action,
				"lobby":   ev.LobbyID,
				"eventId": ev.ID,
			}).Warnf("failed to publish lobby event: %v", err)
		}
	}
}

// refreshStatus derives full/waiting from capacity. An in-game lobby stays
// in-game until its owner says otherwise.
func refreshStatus(l *models.Lobby) {
	if l.Status == models.StatusInGame {
		return
	}
	if l.CurrentSize >= l.MaxSize {
		l.Status = models.StatusFull
	} else {
		l.Status = models.StatusWaiting
	}
}

func validateCreate(req *CreateRequest) error {
	req.Mode = strings.TrimSpace(req.Mode)
	req.Region = strings.TrimSpace(req.Region)
	if req.GameID <= 0 {
		return fmt.Errorf("%w: gameId is required", ErrInvalid)
	}
	if req.Mode == "" || req.Region == "" {
		return fmt.Errorf("%w: mode and region are required", ErrInvalid)
	}
	if req.MaxSize < MinLobbySize || req.MaxSize > MaxLobbySize {
		return fmt.Errorf("%w: maxSize must be between %d and %d", ErrInvalid, MinLobbySize, MaxLobbySize)
	}
	if req.Type == "" {
		req.Type = models.LobbyPublic
	}
	if !req.Type.Valid() {
		return fmt.Errorf("%w: unknown lobby type %q", ErrInvalid, req.Type)
	}
	if req.Type == models.LobbyPrivate && req.Passcode == "" {
		return fmt.Errorf("%w: private lobbies need a passcode", ErrInvalid)
	}
	if utf8.RuneCountInString(req.Note) > MaxNoteLength {
		return fmt.Errorf("%w: note is longer than %d characters", ErrInvalid, MaxNoteLength)
	}
	tags, err := normalizeTags(req.Tags)
	if err != nil {
		return err
	}
	req.Tags = tags
	return nil
}

func validateUpdate(req *UpdateRequest) error {
	if req.Mode != nil {
		mode := strings.TrimSpace(*req.Mode)
		if mode == "" {
			return fmt.Errorf("%w: mode cannot be empty", ErrInvalid)
		}
		req.Mode = &mode
	}
	if req.Region != nil {
		region := strings.TrimSpace(*req.Region)
		if region == "" {
			return fmt.Errorf("%w: region cannot be empty", ErrInvalid)
		}
		req.Region = &region
	}
	if req.MaxSize != nil && (*req.MaxSize < MinLobbySize || *req.MaxSize > MaxLobbySize) {
		return fmt.Errorf("%w: maxSize must be between %d and %d", ErrInvalid, MinLobbySize, MaxLobbySize)
	}
	if req.Status != nil && *req.Status != models.StatusWaiting && *req.Status != models.StatusInGame {
		return fmt.Errorf("%w: status can only be set to %q or %q", ErrInvalid, models.StatusWaiting, models.StatusInGame)
	}
	if req.Note != nil && utf8.RuneCountInString(*req.Note) > MaxNoteLength {
		return fmt.Errorf("%w: note is longer than %d characters", ErrInvalid, MaxNoteLength)
	}
	if req.Tags != nil {
		tags, err := normalizeTags(*req.Tags)
		if err != nil {
			return err
		}
		req.Tags = &tags
	}
	return nil
}

func normalizeTags(in []string) ([]string, error) {
	if len(in) > MaxTagCount {
		return nil, fmt.Errorf("%w: at most %d tags", ErrInvalid, MaxTagCount)
	}
	var out []string
	for _, t := range in {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		if utf8.RuneCountInString(t) > MaxTagLength {
			return nil, fmt.Errorf("%w: tag %q is longer than %d characters", ErrInvalid, t, MaxTagLength)
		}
		out = append(out, t)
	}
	return out, nil
}
