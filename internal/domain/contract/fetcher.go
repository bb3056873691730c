package contract

import (
	"context"
	"errors"

	"github.com/honeycarbs/contractsync/internal/domain"
	"github.com/honeycarbs/contractsync/pkg/logging"
)

// ErrNoCode marks a record rejected for lacking an identifier
var ErrNoCode = errors.New("contract has no code")

// FetchStats describes one page walk
type FetchStats struct {
	Requests int // calls made to the source, failed ones included
	Pages    int // non-empty pages processed
	Fetched  int
	Admitted int
	Rejected int
	Err      error // set when the walk stopped on a failure
}

// Fetcher walks the source page by page and keeps records with unseen codes
type Fetcher struct {
	source   Source
	maxPages int
	log      *logging.Logger
	rec      Recorder
}

// NewFetcher builds a Fetcher. maxPages <= 0 means no limit.
func NewFetcher(source Source, maxPages int, log *logging.Logger, rec Recorder) *Fetcher {
	if log == nil {
		log = logging.NewNop()
	}
	if rec == nil {
		rec = nopRecorder{}
	}
	return &Fetcher{source: source, maxPages: maxPages, log: log, rec: rec}
}

// FetchAll returns the new records in first-seen order. known is updated
// with every admitted code. A failure ends the walk and what was gathered
// so far is still returned.
func (f *Fetcher) FetchAll(ctx context.Context, cred domain.Credential, known domain.KeySet) ([]domain.Contract, FetchStats) {
	var (
		batch []domain.Contract
		stats FetchStats
	)
	if known == nil {
		known = domain.NewKeySet()
	}

	for page := 0; f.maxPages <= 0 || page < f.maxPages; page++ {
		stats.Requests++
		records, err := f.source.Page(ctx, cred, page)
		if err != nil {
			stats.Err = err
			f.rec.ObserveFailure(StageFetch)
			f.log.Error("failed to retrieve data", "page", page, "err", err)
			break
		}

		if len(records) == 0 {
			break
		}

		admitted, rejected := 0, 0
		for _, c := range records {
			if c.Code == "" {
				rejected++
				f.log.Warn("skipping record", "page", page, "err", ErrNoCode)
				continue
			}
			if known.Has(c.Code) {
				continue
			}
			known.Add(c.Code)
			batch = append(batch, c)
			admitted++
		}

		stats.Pages++
		stats.Fetched += len(records)
		stats.Admitted += admitted
		stats.Rejected += rejected
		f.rec.ObservePage(len(records), admitted, rejected)

		f.log.Info("retrieved page of contracts",
			"page", page,
			"records", len(records),
			"new", admitted,
		)
	}

	if f.maxPages > 0 && stats.Pages == f.maxPages {
		f.log.Warn("page limit reached before an empty page", "max_pages", f.maxPages)
	}

	return batch, stats
}
