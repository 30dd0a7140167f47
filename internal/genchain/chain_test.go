package genchain

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/factlens/factlens/internal/keypool"
	"github.com/factlens/factlens/internal/resilience"
)

// mockPrimary implements gemini.Client.
type mockPrimary struct {
	text    string
	err     error
	keys    []string // API keys seen, in call order
	calls   int
}

func (m *mockPrimary) GenerateContent(_ context.Context, apiKey, _ string) (string, error) {
	m.calls++
	m.keys = append(m.keys, apiKey)
	return m.text, m.err
}

// mockSecondary implements Generator.
type mockSecondary struct {
	text  string
	err   error
	calls int
}

func (m *mockSecondary) Generate(_ context.Context, _ string) (string, error) {
	m.calls++
	return m.text, m.err
}

func newPool(keys []string, overflow string) *keypool.Pool {
	return keypool.New(keys, overflow, time.Minute)
}

func TestChain_Generate_Success(t *testing.T) {
	primary := &mockPrimary{text: "generated"}
	chain := New(newPool([]string{"key-a"}, ""), primary, nil)

	got, err := chain.Generate(context.Background(), "prompt")

	require.NoError(t, err)
	assert.Equal(t, "generated", got)
	assert.Equal(t, []string{"key-a"}, primary.keys)
}

func TestChain_Generate_EmptyResponseIsFailure(t *testing.T) {
	primary := &mockPrimary{text: "   "}
	chain := New(newPool([]string{"key-a"}, ""), primary, nil)

	_, err := chain.Generate(context.Background(), "prompt")
	assert.Error(t, err)
}

func TestChain_Generate_RateLimitRotates(t *testing.T) {
	primary := &mockPrimary{err: resilience.NewRateLimitError(errors.New("429"))}
	chain := New(newPool([]string{"key-a", "key-b"}, ""), primary, nil)

	_, err := chain.Generate(context.Background(), "prompt")
	require.Error(t, err)
	assert.True(t, IsRotated(err))

	// The retry after rotation uses the fresh key.
	_, err = chain.Generate(context.Background(), "prompt")
	require.Error(t, err)
	assert.Equal(t, []string{"key-a", "key-b"}, primary.keys)
}

func TestChain_Generate_FallsBackWhenRotationFails(t *testing.T) {
	primary := &mockPrimary{err: resilience.NewRateLimitError(errors.New("429"))}
	secondary := &mockSecondary{text: "from fallback"}
	chain := New(newPool([]string{"only-key"}, ""), primary, secondary)

	got, err := chain.Generate(context.Background(), "prompt")

	require.NoError(t, err)
	assert.Equal(t, "from fallback", got)
	assert.Equal(t, 1, secondary.calls)
}

func TestChain_Generate_SecondaryFailureEscalatesCause(t *testing.T) {
	cause := resilience.NewRateLimitError(errors.New("primary quota exceeded"))
	primary := &mockPrimary{err: cause}
	secondary := &mockSecondary{err: errors.New("fallback down")}
	chain := New(newPool([]string{"only-key"}, ""), primary, secondary)

	_, err := chain.Generate(context.Background(), "prompt")

	require.Error(t, err)
	assert.True(t, resilience.IsRateLimited(err), "original cause should escalate")
}

func TestChain_Generate_SecondaryEmptyEscalatesCause(t *testing.T) {
	primary := &mockPrimary{err: resilience.NewRateLimitError(errors.New("429"))}
	secondary := &mockSecondary{text: ""}
	chain := New(newPool([]string{"only-key"}, ""), primary, secondary)

	_, err := chain.Generate(context.Background(), "prompt")
	assert.True(t, resilience.IsRateLimited(err))
}

func TestChain_Generate_NonRateLimitErrorDoesNotRotate(t *testing.T) {
	primary := &mockPrimary{err: errors.New("malformed prompt")}
	secondary := &mockSecondary{text: "unused"}
	pool := newPool([]string{"key-a", "key-b"}, "")
	chain := New(pool, primary, secondary)

	_, err := chain.Generate(context.Background(), "prompt")

	assert.Error(t, err)
	assert.False(t, IsRotated(err))
	assert.Equal(t, 0, secondary.calls)

	cred, _ := pool.Active()
	assert.Equal(t, "key-a", cred.Key, "selection unchanged")
}

func TestChain_Generate_NoCredentials(t *testing.T) {
	primary := &mockPrimary{}
	chain := New(newPool(nil, ""), primary, nil)

	_, err := chain.Generate(context.Background(), "prompt")
	assert.ErrorIs(t, err, ErrNotConfigured)
	assert.Equal(t, 0, primary.calls)
}

func TestChain_Generate_NoCredentialsUsesSecondary(t *testing.T) {
	primary := &mockPrimary{}
	secondary := &mockSecondary{text: "fallback only"}
	chain := New(newPool(nil, ""), primary, secondary)

	got, err := chain.Generate(context.Background(), "prompt")

	require.NoError(t, err)
	assert.Equal(t, "fallback only", got)
	assert.Equal(t, 0, primary.calls)
}

func TestChain_Configured(t *testing.T) {
	assert.False(t, New(newPool(nil, ""), &mockPrimary{}, nil).Configured())
	assert.True(t, New(newPool([]string{"k"}, ""), &mockPrimary{}, nil).Configured())
	assert.True(t, New(newPool(nil, "master"), &mockPrimary{}, nil).Configured())
	assert.True(t, New(newPool(nil, ""), &mockPrimary{}, &mockSecondary{}).Configured())
}
