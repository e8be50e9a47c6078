package service

import (
	"context"
	"fmt"
	"regexp"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"pokeinfo/statehub/internal/persist"
	"pokeinfo/statehub/internal/repository"
	"pokeinfo/statehub/internal/view"
)

const (
	DefaultGreetingKeyName = "name"
	maxNameLength          = 256
)

var keyNamePattern = regexp.MustCompile(`^[A-Za-z0-9_.-]{1,64}$`)

// Greeting is the state of the greeting form for one session.
type Greeting struct {
	KeyName string    `json:"key_name"`
	Name    string    `json:"name"`
	View    view.View `json:"view"`
}

type GreetingService interface {
	Get(ctx context.Context, sessionID uuid.UUID) (*Greeting, error)
	SetName(ctx context.Context, sessionID uuid.UUID, name string) (*Greeting, error)
	// SetKeyName moves the persisted name to a different store key.
	SetKeyName(ctx context.Context, sessionID uuid.UUID, keyName string) (*Greeting, error)
	Unmount(sessionID uuid.UUID)
	Sweeper
}

type greetingService struct {
	stateStore  repository.StateStore
	keyPrefix   string
	initialName string
	logger      *zap.Logger
	mounted     *registry[persist.Value[string]]
}

func NewGreetingService(stateStore repository.StateStore, keyPrefix, initialName string, logger *zap.Logger) GreetingService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &greetingService{
		stateStore:  stateStore,
		keyPrefix:   keyPrefix,
		initialName: initialName,
		logger:      logger,
		mounted:     newRegistry[persist.Value[string]](),
	}
}

func (s *greetingService) storeKey(sessionID uuid.UUID, keyName string) string {
	return fmt.Sprintf("%s:session:%s:%s", s.keyPrefix, sessionID, keyName)
}

func (s *greetingService) keyName(sessionID uuid.UUID, storeKey string) string {
	return storeKey[len(s.storeKey(sessionID, "")):]
}

func (s *greetingService) mount(ctx context.Context, sessionID uuid.UUID) (*persist.Value[string], error) {
	return s.mounted.getOrCreate(sessionID, func() (*persist.Value[string], error) {
		v, err := persist.New(ctx, s.stateStore, s.storeKey(sessionID, DefaultGreetingKeyName),
			persist.Static(s.initialName), persist.JSONCodec[string](), s.logger)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrPersistFailed, err)
		}
		return v, nil
	})
}

func (s *greetingService) snapshot(sessionID uuid.UUID, v *persist.Value[string]) *Greeting {
	name := v.Get()
	return &Greeting{
		KeyName: s.keyName(sessionID, v.Key()),
		Name:    name,
		View:    view.Greeting(name),
	}
}

func (s *greetingService) Get(ctx context.Context, sessionID uuid.UUID) (*Greeting, error) {
	v, err := s.mount(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return s.snapshot(sessionID, v), nil
}

func (s *greetingService) SetName(ctx context.Context, sessionID uuid.UUID, name string) (*Greeting, error) {
	if len(name) > maxNameLength {
		return nil, ErrNameTooLong
	}
	v, err := s.mount(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if err := v.Set(ctx, name); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistFailed, err)
	}
	return s.snapshot(sessionID, v), nil
}

func (s *greetingService) SetKeyName(ctx context.Context, sessionID uuid.UUID, keyName string) (*Greeting, error) {
	if !keyNamePattern.MatchString(keyName) {
		return nil, ErrInvalidKeyName
	}
	v, err := s.mount(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if err := v.SetKey(ctx, s.storeKey(sessionID, keyName)); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistFailed, err)
	}
	return s.snapshot(sessionID, v), nil
}

func (s *greetingService) Unmount(sessionID uuid.UUID) {
	s.mounted.remove(sessionID)
}

func (s *greetingService) Sweep(maxIdle time.Duration) int {
	return s.mounted.sweep(maxIdle)
}

var _ GreetingService = (*greetingService)(nil)
