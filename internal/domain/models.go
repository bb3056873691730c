package domain

import (
	"time"

	"golang.org/x/oauth2"
)

// Credential is the bearer token for one sync run. Nil means no token.
type Credential = *oauth2.Token

// CodeField is the upstream attribute that identifies a contract
const CodeField = "code"

// RetrievedColumn is the ingestion timestamp column added to every row
const RetrievedColumn = "retrieved"

// Contract is one upstream record
type Contract struct {
	Code   string
	Fields map[string]any // every top-level attribute, code included
}

// KeySet is a membership filter of contract codes
type KeySet map[string]struct{}

// NewKeySet builds a KeySet from codes
func NewKeySet(codes ...string) KeySet {
	ks := make(KeySet, len(codes))
	for _, c := range codes {
		ks[c] = struct{}{}
	}
	return ks
}

func (ks KeySet) Has(code string) bool {
	_, ok := ks[code]
	return ok
}

func (ks KeySet) Add(code string) {
	ks[code] = struct{}{}
}

// Table is a batch flattened into rows ready for an append write
type Table struct {
	Columns []string
	Rows    [][]any
}

// SyncResult summarizes one run
type SyncResult struct {
	RunID         string
	Authenticated bool
	KnownKeys     int
	Requests      int
	Pages         int
	Fetched       int
	Admitted      int
	Rejected      int
	Written       int
	Retrieved     time.Time // zero when nothing was written
	FetchErr      error     // non-nil when pagination stopped early
}
