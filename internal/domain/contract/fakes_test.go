package contract

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/oauth2"

	"github.com/honeycarbs/contractsync/internal/domain"
)

// fakeSource serves pages from memory. Pages past the end are empty.
type fakeSource struct {
	pages   [][]domain.Contract
	failAt  int // page index that errors; -1 disables
	authErr error

	calls     []int
	creds     []domain.Credential
	authCalls int
}

func newFakeSource(pages ...[]domain.Contract) *fakeSource {
	return &fakeSource{pages: pages, failAt: -1}
}

func (f *fakeSource) Name() string { return "fake" }

func (f *fakeSource) Authenticate(ctx context.Context) (domain.Credential, error) {
	f.authCalls++
	if f.authErr != nil {
		return nil, f.authErr
	}
	return &oauth2.Token{AccessToken: "tok", TokenType: "Bearer"}, nil
}

func (f *fakeSource) Page(ctx context.Context, cred domain.Credential, page int) ([]domain.Contract, error) {
	f.calls = append(f.calls, page)
	f.creds = append(f.creds, cred)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if page == f.failAt {
		return nil, fmt.Errorf("page %d: connection reset", page)
	}
	if page >= len(f.pages) {
		return nil, nil
	}
	return f.pages[page], nil
}

// fakeRepo keeps appended rows in memory and serves codes from them
type fakeRepo struct {
	mu        sync.Mutex
	seed      []string
	keysErr   error
	appendErr error
	tables    []domain.Table
}

func (r *fakeRepo) ExistingCodes(ctx context.Context) (domain.KeySet, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.keysErr != nil {
		return nil, r.keysErr
	}

	keys := domain.NewKeySet(r.seed...)
	for _, t := range r.tables {
		idx := -1
		for i, c := range t.Columns {
			if c == domain.CodeField {
				idx = i
			}
		}
		for _, row := range t.Rows {
			keys.Add(fmt.Sprint(row[idx]))
		}
	}
	return keys, nil
}

func (r *fakeRepo) Append(ctx context.Context, table domain.Table) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.appendErr != nil {
		return 0, r.appendErr
	}
	r.tables = append(r.tables, table)
	return len(table.Rows), nil
}

func (r *fakeRepo) rowCount() int {
	n := 0
	for _, t := range r.tables {
		n += len(t.Rows)
	}
	return n
}

type recordedPage struct{ fetched, admitted, rejected int }

type fakeRecorder struct {
	pages    []recordedPage
	failures []Stage
	writes   []int
	runs     int
}

func (r *fakeRecorder) ObservePage(fetched, admitted, rejected int) {
	r.pages = append(r.pages, recordedPage{fetched, admitted, rejected})
}

func (r *fakeRecorder) ObserveFailure(stage Stage) { r.failures = append(r.failures, stage) }

func (r *fakeRecorder) ObserveWrite(rows int, _ time.Time) { r.writes = append(r.writes, rows) }

func (r *fakeRecorder) ObserveRun(time.Duration) { r.runs++ }

func contractsWithCodes(codes ...string) []domain.Contract {
	out := make([]domain.Contract, 0, len(codes))
	for _, c := range codes {
		out = append(out, domain.Contract{
			Code:   c,
			Fields: map[string]any{domain.CodeField: c, "name": "contract " + c},
		})
	}
	return out
}

func codeRange(prefix string, from, to int) []string {
	out := make([]string, 0, to-from)
	for i := from; i < to; i++ {
		out = append(out, fmt.Sprintf("%s-%03d", prefix, i))
	}
	return out
}

// steppingClock returns t0, t0+step, t0+2*step, ...
func steppingClock(t0 time.Time, step time.Duration) func() time.Time {
	var mu sync.Mutex
	next := t0
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		now := next
		next = next.Add(step)
		return now
	}
}
