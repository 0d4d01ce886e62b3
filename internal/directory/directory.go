package directory

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/spec-kit/vacation-manager/internal/domain"
	"github.com/spec-kit/vacation-manager/internal/repository"
)

// Service resolves actors and teams for the rest of the application. The
// led-team fact is derived from the teams.team_leader_id relation on every
// load, so it can never drift from the leader assignment.
type Service struct {
	users  repository.UserRepository
	teams  repository.TeamRepository
	cache  *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewService constructs the directory. The redis client is optional; without
// it every lookup goes to the repositories.
func NewService(users repository.UserRepository, teams repository.TeamRepository, cache *redis.Client, ttl time.Duration, logger *zap.Logger) *Service {
	return &Service{users: users, teams: teams, cache: cache, ttl: ttl, logger: logger}
}

// GetActor loads the actor snapshot for the given user id.
func (s *Service) GetActor(ctx context.Context, id string) (*domain.Actor, error) {
	if actor := s.cachedActor(ctx, id); actor != nil {
		return actor, nil
	}

	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	actor := &domain.Actor{
		ID:     user.ID,
		Name:   user.FullName(),
		Email:  user.Email,
		Roles:  user.Roles,
		TeamID: user.TeamID,
	}

	led, err := s.teams.GetByLeader(ctx, user.ID)
	switch {
	case err == nil:
		actor.LedTeamID = &led.ID
	case errors.Is(err, pgx.ErrNoRows):
		// not a leader
	default:
		return nil, err
	}

	s.storeActor(ctx, actor)
	return actor, nil
}

// GetTeam loads a team with its member ids.
func (s *Service) GetTeam(ctx context.Context, id int64) (*domain.Team, error) {
	team, err := s.teams.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	members, err := s.users.ListIDsByTeam(ctx, id)
	if err != nil {
		return nil, err
	}
	team.MemberIDs = members
	return team, nil
}

// Invalidate drops the cached snapshot after a role, team or leadership
// change.
func (s *Service) Invalidate(ctx context.Context, actorID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Del(ctx, actorKey(actorID)).Err(); err != nil {
		s.logger.Warn("directory cache invalidation failed", zap.String("actor_id", actorID), zap.Error(err))
	}
}

func (s *Service) cachedActor(ctx context.Context, id string) *domain.Actor {
	if s.cache == nil {
		return nil
	}
	raw, err := s.cache.Get(ctx, actorKey(id)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			s.logger.Warn("directory cache read failed", zap.Error(err))
		}
		return nil
	}
	var actor domain.Actor
	if err := json.Unmarshal(raw, &actor); err != nil {
		return nil
	}
	return &actor
}

func (s *Service) storeActor(ctx context.Context, actor *domain.Actor) {
	if s.cache == nil {
		return
	}
	raw, err := json.Marshal(actor)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, actorKey(actor.ID), raw, s.ttl).Err(); err != nil {
		s.logger.Warn("directory cache write failed", zap.Error(err))
	}
}

func actorKey(id string) string {
	return "directory:actor:" + id
}
