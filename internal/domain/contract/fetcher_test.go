package contract

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/honeycarbs/contractsync/internal/domain"
)

func codesOf(batch []domain.Contract) []string {
	out := make([]string, 0, len(batch))
	for _, c := range batch {
		out = append(out, c.Code)
	}
	return out
}

func TestFetchAll_StopsOnEmptyPage(t *testing.T) {
	src := newFakeSource(
		contractsWithCodes("A", "B"),
		contractsWithCodes("C"),
	)
	f := NewFetcher(src, 0, nil, nil)

	batch, stats := f.FetchAll(context.Background(), nil, domain.NewKeySet())

	assert.Equal(t, []string{"A", "B", "C"}, codesOf(batch))
	assert.Equal(t, []int{0, 1, 2}, src.calls)
	assert.Equal(t, 3, stats.Requests)
	assert.Equal(t, 2, stats.Pages)
	assert.Equal(t, 3, stats.Fetched)
	assert.NoError(t, stats.Err)
}

func TestFetchAll_FiltersKnownAndDuplicateCodes(t *testing.T) {
	src := newFakeSource(
		contractsWithCodes("A", "B", "B", "C"),
		contractsWithCodes("C", "D", "A"),
	)
	known := domain.NewKeySet("A")
	rec := &fakeRecorder{}
	f := NewFetcher(src, 0, nil, rec)

	batch, stats := f.FetchAll(context.Background(), nil, known)

	assert.Equal(t, []string{"B", "C", "D"}, codesOf(batch))
	assert.Equal(t, 7, stats.Fetched)
	assert.Equal(t, 3, stats.Admitted)
	for _, c := range []string{"A", "B", "C", "D"} {
		assert.True(t, known.Has(c), c)
	}
	assert.Equal(t, []recordedPage{{4, 2, 0}, {3, 1, 0}}, rec.pages)
}

func TestFetchAll_RejectsRecordsWithoutCode(t *testing.T) {
	page := contractsWithCodes("A")
	page = append(page, domain.Contract{Fields: map[string]any{"name": "orphan"}})
	page = append(page, contractsWithCodes("B")...)
	src := newFakeSource(page)
	f := NewFetcher(src, 0, nil, nil)

	batch, stats := f.FetchAll(context.Background(), nil, nil)

	assert.Equal(t, []string{"A", "B"}, codesOf(batch))
	assert.Equal(t, 1, stats.Rejected)
	assert.Equal(t, 3, stats.Fetched)
}

func TestFetchAll_KeepsPartialBatchOnFailure(t *testing.T) {
	src := newFakeSource(
		contractsWithCodes("A"),
		contractsWithCodes("B"),
		contractsWithCodes("C"),
	)
	src.failAt = 1
	rec := &fakeRecorder{}
	f := NewFetcher(src, 0, nil, rec)

	batch, stats := f.FetchAll(context.Background(), nil, domain.NewKeySet())

	assert.Equal(t, []string{"A"}, codesOf(batch))
	assert.Equal(t, []int{0, 1}, src.calls)
	require.Error(t, stats.Err)
	assert.Equal(t, []Stage{StageFetch}, rec.failures)
}

func TestFetchAll_MaxPages(t *testing.T) {
	src := newFakeSource(
		contractsWithCodes("A"),
		contractsWithCodes("B"),
		contractsWithCodes("C"),
	)
	f := NewFetcher(src, 2, nil, nil)

	batch, stats := f.FetchAll(context.Background(), nil, nil)

	assert.Equal(t, []string{"A", "B"}, codesOf(batch))
	assert.Equal(t, []int{0, 1}, src.calls)
	assert.Equal(t, 2, stats.Pages)
}

func TestFetchAll_PassesCredential(t *testing.T) {
	src := newFakeSource(contractsWithCodes("A"))
	cred, err := src.Authenticate(context.Background())
	require.NoError(t, err)

	f := NewFetcher(src, 0, nil, nil)
	_, _ = f.FetchAll(context.Background(), cred, nil)

	require.Len(t, src.creds, 2)
	for _, c := range src.creds {
		assert.Same(t, cred, c)
	}
}

func TestFetchAll_CancelledContext(t *testing.T) {
	src := newFakeSource(contractsWithCodes("A"))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	f := NewFetcher(src, 0, nil, nil)
	batch, stats := f.FetchAll(ctx, nil, nil)

	assert.Empty(t, batch)
	assert.ErrorIs(t, stats.Err, context.Canceled)
}
