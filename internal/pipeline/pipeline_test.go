package pipeline

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/factlens/factlens/internal/model"
)

// slowVerifier records peak concurrency and echoes the item text back.
type slowVerifier struct {
	delay time.Duration

	mu      sync.Mutex
	current int32
	peak    int32
}

func (v *slowVerifier) enter() {
	n := atomic.AddInt32(&v.current, 1)
	v.mu.Lock()
	if n > v.peak {
		v.peak = n
	}
	v.mu.Unlock()
}

func (v *slowVerifier) leave() { atomic.AddInt32(&v.current, -1) }

func (v *slowVerifier) VerifyClaim(_ context.Context, claim, language string) model.ClaimVerdict {
	v.enter()
	defer v.leave()
	time.Sleep(v.delay)
	return model.ClaimVerdict{
		Text:        claim,
		Status:      model.StatusVerified,
		Explanation: "lang=" + language,
	}
}

func (v *slowVerifier) VerifyCitation(_ context.Context, citation string) model.CitationVerdict {
	v.enter()
	defer v.leave()
	time.Sleep(v.delay)
	exists := true
	return model.CitationVerdict{
		Text:           citation,
		Exists:         &exists,
		CheckingStatus: model.CheckingComplete,
	}
}

func TestRun_PreservesInputOrder(t *testing.T) {
	var claims, citations []string
	for i := 0; i < 8; i++ {
		claims = append(claims, fmt.Sprintf("claim-%d", i))
	}
	for i := 0; i < 4; i++ {
		citations = append(citations, fmt.Sprintf("citation-%d", i))
	}

	p := New(&slowVerifier{delay: time.Millisecond}, Config{Concurrency: 4})
	claimOut, citationOut := p.Run(context.Background(), claims, citations, "en")

	require.Len(t, claimOut, len(claims))
	require.Len(t, citationOut, len(citations))
	for i, c := range claimOut {
		assert.Equal(t, claims[i], c.Text)
	}
	for i, c := range citationOut {
		assert.Equal(t, citations[i], c.Text)
	}
}

func TestRun_RespectsConcurrencyCap(t *testing.T) {
	v := &slowVerifier{delay: 20 * time.Millisecond}
	p := New(v, Config{Concurrency: 2})

	claims := []string{"a", "b", "c", "d", "e"}
	citations := []string{"x", "y", "z"}
	_, _ = p.Run(context.Background(), claims, citations, "en")

	assert.LessOrEqual(t, v.peak, int32(2), "claims and citations share the cap")
}

func TestRun_PassesLanguageThrough(t *testing.T) {
	p := New(&slowVerifier{}, Config{Concurrency: 1})
	claimOut, _ := p.Run(context.Background(), []string{"claim"}, nil, "hi")
	require.Len(t, claimOut, 1)
	assert.Equal(t, "lang=hi", claimOut[0].Explanation)
}

func TestRun_EmptyInput(t *testing.T) {
	p := New(&slowVerifier{}, Config{Concurrency: 2})
	claimOut, citationOut := p.Run(context.Background(), nil, nil, "en")
	assert.Empty(t, claimOut)
	assert.Empty(t, citationOut)
}

func TestRun_CancelledContextStillYieldsVerdicts(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	p := New(&slowVerifier{}, Config{Concurrency: 2, ClaimDelay: time.Second})
	claimOut, citationOut := p.Run(ctx, []string{"a", "b"}, []string{"x"}, "en")

	// Acquire fails on a dead context, but every slot still gets a verdict.
	require.Len(t, claimOut, 2)
	require.Len(t, citationOut, 1)
	for _, c := range claimOut {
		assert.NotEmpty(t, c.Text)
	}
}
