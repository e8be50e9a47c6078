package fetchstate

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"pokeinfo/statehub/internal/view"
)

var errNotFound = errors.New("NotFound")

// gatedSource blocks each lookup until the test releases it.
type gatedSource struct {
	mu    sync.Mutex
	gates map[string]chan struct{}
	calls atomic.Int32
}

func newGatedSource() *gatedSource {
	return &gatedSource{gates: make(map[string]chan struct{})}
}

func (g *gatedSource) gate(key string) chan struct{} {
	g.mu.Lock()
	defer g.mu.Unlock()
	ch, ok := g.gates[key]
	if !ok {
		ch = make(chan struct{})
		g.gates[key] = ch
	}
	return ch
}

func (g *gatedSource) release(key string) { close(g.gate(key)) }

func (g *gatedSource) FetchByKey(ctx context.Context, key string) (string, error) {
	g.calls.Add(1)
	<-g.gate(key)
	if key == "Unknown" {
		return "", errNotFound
	}
	return "data:" + key, nil
}

func waitDone(t *testing.T, ch <-chan struct{}) {
	t.Helper()
	select {
	case <-ch:
	case <-time.After(2 * time.Second):
		t.Fatal("lookup did not settle")
	}
}

func TestMachine_StartsIdle(t *testing.T) {
	m := New[string](context.Background(), newGatedSource(), zaptest.NewLogger(t))
	assert.Equal(t, StatusIdle, m.Snapshot().Status)
	waitDone(t, m.Done())
}

func TestMachine_EmptyKeyIssuesNoLookup(t *testing.T) {
	src := newGatedSource()
	m := New[string](context.Background(), src, zaptest.NewLogger(t))

	waitDone(t, m.Submit(""))
	s := m.Snapshot()
	assert.Equal(t, StatusIdle, s.Status)
	assert.Nil(t, s.Data)
	assert.NoError(t, s.Err)
	assert.Equal(t, int32(0), src.calls.Load())
}

func TestMachine_ResolvesAfterPending(t *testing.T) {
	src := newGatedSource()
	m := New[string](context.Background(), src, zaptest.NewLogger(t))

	done := m.Submit("Pikachu")
	s := m.Snapshot()
	assert.Equal(t, StatusPending, s.Status)
	assert.Equal(t, "Pikachu", s.RequestedKey)
	assert.Nil(t, s.Data)

	src.release("Pikachu")
	waitDone(t, done)

	s = m.Snapshot()
	require.Equal(t, StatusResolved, s.Status)
	require.NotNil(t, s.Data)
	assert.Equal(t, "data:Pikachu", *s.Data)
	assert.NoError(t, s.Err)
}

func TestMachine_Rejects(t *testing.T) {
	src := newGatedSource()
	m := New[string](context.Background(), src, zaptest.NewLogger(t))

	done := m.Submit("Unknown")
	src.release("Unknown")
	waitDone(t, done)

	s := m.Snapshot()
	assert.Equal(t, StatusRejected, s.Status)
	assert.ErrorIs(t, s.Err, errNotFound)
	assert.Nil(t, s.Data)
}

func TestMachine_DiscardsStaleCompletion(t *testing.T) {
	src := newGatedSource()
	m := New[string](context.Background(), src, zaptest.NewLogger(t))

	first := m.Submit("Bulbasaur")
	second := m.Submit("Squirtle")

	src.release("Squirtle")
	waitDone(t, second)
	assert.Equal(t, "data:Squirtle", *m.Snapshot().Data)

	// The abandoned lookup finishes late and must not win.
	src.release("Bulbasaur")
	waitDone(t, first)
	s := m.Snapshot()
	assert.Equal(t, StatusResolved, s.Status)
	assert.Equal(t, "Squirtle", s.RequestedKey)
	assert.Equal(t, "data:Squirtle", *s.Data)
}

func TestMachine_EmptyKeyAbandonsPending(t *testing.T) {
	src := newGatedSource()
	m := New[string](context.Background(), src, zaptest.NewLogger(t))

	pending := m.Submit("Mew")
	waitDone(t, m.Submit(""))
	src.release("Mew")
	waitDone(t, pending)

	assert.Equal(t, StatusIdle, m.Snapshot().Status)
}

func TestMachine_OnChangeSeesEveryTransition(t *testing.T) {
	src := newGatedSource()
	m := New[string](context.Background(), src, zaptest.NewLogger(t))

	var seen []Status
	m.OnChange(func(s State[string]) { seen = append(seen, s.Status) })

	done := m.Submit("Pikachu")
	src.release("Pikachu")
	waitDone(t, done)
	waitDone(t, m.Submit(""))

	assert.Equal(t, []Status{StatusPending, StatusResolved, StatusIdle}, seen)
}

func TestRender(t *testing.T) {
	views := Views[string]{
		Idle:     func() view.View { return view.Placeholder("Submit a Pokemon") },
		Pending:  func(key string) view.View { return view.Loading(key) },
		Resolved: func(d string) view.View { return view.View{Kind: view.KindData, Text: d} },
	}
	data := "payload"

	v, err := Render(State[string]{Status: StatusIdle}, views)
	require.NoError(t, err)
	assert.Equal(t, view.KindPlaceholder, v.Kind)

	v, err = Render(State[string]{Status: StatusPending, RequestedKey: "Pikachu"}, views)
	require.NoError(t, err)
	assert.Equal(t, view.KindLoading, v.Kind)
	assert.Equal(t, "Pikachu", v.Name)

	v, err = Render(State[string]{Status: StatusResolved, Data: &data}, views)
	require.NoError(t, err)
	assert.Equal(t, "payload", v.Text)

	_, err = Render(State[string]{Status: StatusRejected, Err: errNotFound}, views)
	assert.ErrorIs(t, err, errNotFound)
}
