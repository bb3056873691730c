package contracts

import (
	"net/http"

	"github.com/goccy/go-json"
)

// Config defines contracts API client settings
type Config struct {
	Host      string // scheme + host, e.g. https://api.example.com
	APIURL    string // contracts path appended to Host
	APIKey    string
	GrantType string
	Username  string
	Password  string

	HTTPClient *http.Client
	PageSize   int
}

// Client talks to the identity and contracts endpoints
type Client struct {
	host       string
	apiURL     string
	apiKey     string
	grantType  string
	username   string
	password   string
	httpClient *http.Client
	pageSize   int
}

// Contract is one upstream record with its attributes left undecoded.
// Numbers are kept as json.Number.
type Contract map[string]any

type tokenRequest struct {
	GrantType string `json:"grant_type"`
	Username  string `json:"username"`
	Password  string `json:"password"`
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   any    `json:"expires_in"` // optional, number or numeric string
}

type pageResponse struct {
	Contracts []json.RawMessage `json:"contracts"`
}
