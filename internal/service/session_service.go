package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"pokeinfo/statehub/internal/repository"
	jwtpkg "pokeinfo/statehub/pkg/jwt"
)

// SessionToken is returned when a client starts a session.
type SessionToken struct {
	SessionID string `json:"session_id"`
	Token     string `json:"token"`
	ExpiresIn int64  `json:"expires_in"`
}

type SessionService interface {
	Start(ctx context.Context) (*SessionToken, error)
	Authenticate(ctx context.Context, token string) (uuid.UUID, error)
	End(ctx context.Context, sessionID uuid.UUID) error
}

type sessionService struct {
	stateStore repository.StateStore
	jwtManager *jwtpkg.Manager
	keyPrefix  string
	ttl        time.Duration
	logger     *zap.Logger
	onEnd      []func(uuid.UUID)
}

// NewSessionService issues signed session tokens and records live sessions in
// the state store so they can be ended before the token expires. onEnd hooks
// unmount per-session components.
func NewSessionService(
	stateStore repository.StateStore,
	jwtManager *jwtpkg.Manager,
	keyPrefix string,
	ttl time.Duration,
	logger *zap.Logger,
	onEnd ...func(uuid.UUID),
) SessionService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &sessionService{
		stateStore: stateStore,
		jwtManager: jwtManager,
		keyPrefix:  keyPrefix,
		ttl:        ttl,
		logger:     logger,
		onEnd:      onEnd,
	}
}

func (s *sessionService) sessionKey(id uuid.UUID) string {
	return fmt.Sprintf("%s:session:%s", s.keyPrefix, id)
}

func (s *sessionService) Start(ctx context.Context) (*SessionToken, error) {
	id, token, err := s.jwtManager.IssueSession()
	if err != nil {
		return nil, fmt.Errorf("issue session token: %w", err)
	}
	if err := s.stateStore.Set(ctx, s.sessionKey(id), []byte("1"), s.ttl); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSessionNotReady, err)
	}
	s.logger.Info("session started", zap.String("session_id", id.String()))
	return &SessionToken{
		SessionID: id.String(),
		Token:     token,
		ExpiresIn: int64(s.ttl.Seconds()),
	}, nil
}

func (s *sessionService) Authenticate(ctx context.Context, token string) (uuid.UUID, error) {
	id, err := s.jwtManager.Validate(token)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: %v", ErrSessionExpired, err)
	}
	ok, err := s.stateStore.Exists(ctx, s.sessionKey(id))
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: %v", ErrSessionNotReady, err)
	}
	if !ok {
		return uuid.Nil, ErrSessionExpired
	}
	return id, nil
}

func (s *sessionService) End(ctx context.Context, sessionID uuid.UUID) error {
	if err := s.stateStore.Delete(ctx, s.sessionKey(sessionID)); err != nil {
		return fmt.Errorf("end session: %w", err)
	}
	for _, fn := range s.onEnd {
		fn(sessionID)
	}
	s.logger.Info("session ended", zap.String("session_id", sessionID.String()))
	return nil
}

var _ SessionService = (*sessionService)(nil)
