package remote

import (
	"context"
	"fmt"
	"strconv"

	"github.com/goccy/go-json"
	"golang.org/x/oauth2"

	"github.com/honeycarbs/contractsync/internal/domain"
	contractdomain "github.com/honeycarbs/contractsync/internal/domain/contract"
	"github.com/honeycarbs/contractsync/pkg/contracts"
)

// apiClient describes the subset of the contracts client used by the provider.
type apiClient interface {
	Token(ctx context.Context) (*oauth2.Token, error)
	Page(ctx context.Context, tok *oauth2.Token, page int) ([]contracts.Contract, error)
}

// Provider implements contract.Source using the contracts API
type Provider struct {
	client apiClient
}

// NewProvider builds a remote provider
func NewProvider(client apiClient) (*Provider, error) {
	if client == nil {
		return nil, fmt.Errorf("remote provider: client is required")
	}
	return &Provider{client: client}, nil
}

// Name returns provider identifier
func (p *Provider) Name() string {
	return "contracts-api"
}

// Authenticate obtains a bearer token
func (p *Provider) Authenticate(ctx context.Context) (domain.Credential, error) {
	if p == nil || p.client == nil {
		return nil, fmt.Errorf("remote provider: client is nil")
	}
	return p.client.Token(ctx)
}

// Page fetches one page and normalizes each record's code
func (p *Provider) Page(ctx context.Context, cred domain.Credential, page int) ([]domain.Contract, error) {
	if p == nil || p.client == nil {
		return nil, fmt.Errorf("remote provider: client is nil")
	}

	records, err := p.client.Page(ctx, cred, page)
	if err != nil {
		return nil, err
	}

	out := make([]domain.Contract, 0, len(records))
	for _, r := range records {
		out = append(out, domain.Contract{
			Code:   codeOf(r[domain.CodeField]),
			Fields: r,
		})
	}

	return out, nil
}

var _ contractdomain.Source = (*Provider)(nil)

// codeOf returns the string form of a code, or "" when it is absent or
// not a string or number. It must agree with how the storage layer
// stringifies the code column.
func codeOf(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case json.Number:
		return t.String()
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	default:
		return ""
	}
}
