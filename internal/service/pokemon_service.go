package service

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"pokeinfo/statehub/internal/boundary"
	"pokeinfo/statehub/internal/fetchstate"
	"pokeinfo/statehub/internal/model"
	"pokeinfo/statehub/internal/view"
)

const ResetPath = "/api/v1/pokemon/reset"

// PokemonInfo is the rendered state of the Pokémon lookup app for one session.
type PokemonInfo struct {
	PokemonName string            `json:"pokemon_name"`
	Status      fetchstate.Status `json:"status"`
	View        view.View         `json:"view"`
}

type PokemonService interface {
	Submit(ctx context.Context, sessionID uuid.UUID, name string) (*PokemonInfo, error)
	// View renders the current state. With wait set it first blocks until
	// the latest lookup settles or ctx is done.
	View(ctx context.Context, sessionID uuid.UUID, wait bool) (*PokemonInfo, error)
	Reset(ctx context.Context, sessionID uuid.UUID) (*PokemonInfo, error)
	Unmount(sessionID uuid.UUID)
	Sweeper
}

var pokemonViews = fetchstate.Views[model.Pokemon]{
	Idle:     func() view.View { return view.Placeholder("Submit a Pokemon") },
	Pending:  view.Loading,
	Resolved: view.Data,
}

func pokemonFallback(err error, _ func()) view.View {
	return view.Fallback(err, view.Action{Label: "Try Again", Method: "POST", Path: ResetPath})
}

// pokemonApp is one mounted instance: the submitted name, the lookup it
// drives and the boundary wrapping the info panel. The boundary resets when
// the name changes; an explicit reset clears the name.
type pokemonApp struct {
	mu       sync.Mutex
	name     string
	machine  *fetchstate.Machine[model.Pokemon]
	boundary *boundary.Boundary
}

// setName must be called with mu held. Re-submitting the current name is a
// no-op, so a settled lookup is not repeated.
func (a *pokemonApp) setName(name string) {
	if name == a.name {
		return
	}
	a.name = name
	a.boundary.SetResetKeys([]string{name})
	a.machine.Submit(name)
}

// render must be called with mu held.
func (a *pokemonApp) render() *PokemonInfo {
	state := a.machine.Snapshot()
	v := a.boundary.Observe(func() (view.View, error) {
		return fetchstate.Render(state, pokemonViews)
	})
	return &PokemonInfo{PokemonName: a.name, Status: state.Status, View: v}
}

type pokemonService struct {
	ctx     context.Context
	source  fetchstate.Source[model.Pokemon]
	logger  *zap.Logger
	mounted *registry[pokemonApp]
}

// NewPokemonService runs lookups under ctx, so cancelling it abandons every
// in-flight lookup.
func NewPokemonService(ctx context.Context, source fetchstate.Source[model.Pokemon], logger *zap.Logger) PokemonService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &pokemonService{
		ctx:     ctx,
		source:  source,
		logger:  logger,
		mounted: newRegistry[pokemonApp](),
	}
}

func (s *pokemonService) mount(sessionID uuid.UUID) *pokemonApp {
	app, _ := s.mounted.getOrCreate(sessionID, func() (*pokemonApp, error) {
		logger := s.logger.With(zap.String("session_id", sessionID.String()))
		app := &pokemonApp{
			machine: fetchstate.New(s.ctx, s.source, logger),
		}
		app.machine.OnChange(func(st fetchstate.State[model.Pokemon]) {
			if st.Status.Settled() {
				logger.Debug("lookup settled", zap.String("name", st.RequestedKey), zap.String("status", string(st.Status)))
			}
		})
		app.boundary = boundary.New(boundary.Options{
			Fallback:  pokemonFallback,
			ResetKeys: []string{""},
			// Runs inside Reset, which already holds app.mu.
			OnReset: func() { app.setName("") },
			Logger:  logger,
		})
		return app, nil
	})
	return app
}

func (s *pokemonService) Submit(_ context.Context, sessionID uuid.UUID, name string) (*PokemonInfo, error) {
	name = strings.TrimSpace(name)
	if len(name) > maxNameLength {
		return nil, ErrNameTooLong
	}
	app := s.mount(sessionID)

	app.mu.Lock()
	defer app.mu.Unlock()
	app.setName(name)
	return app.render(), nil
}

func (s *pokemonService) View(ctx context.Context, sessionID uuid.UUID, wait bool) (*PokemonInfo, error) {
	app := s.mount(sessionID)
	if wait {
		select {
		case <-app.machine.Done():
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	app.mu.Lock()
	defer app.mu.Unlock()
	return app.render(), nil
}

func (s *pokemonService) Reset(_ context.Context, sessionID uuid.UUID) (*PokemonInfo, error) {
	app := s.mount(sessionID)

	app.mu.Lock()
	defer app.mu.Unlock()
	app.boundary.Reset()
	return app.render(), nil
}

func (s *pokemonService) Unmount(sessionID uuid.UUID) {
	s.mounted.remove(sessionID)
}

func (s *pokemonService) Sweep(maxIdle time.Duration) int {
	return s.mounted.sweep(maxIdle)
}

var _ PokemonService = (*pokemonService)(nil)
