package contracts

import (
	"context"
	"os"
	"testing"
	"time"
)

func TestContractsIntegration(t *testing.T) {
	host := os.Getenv("HOST")
	apiURL := os.Getenv("API_URL")
	apiKey := os.Getenv("API_KEY")

	if host == "" || apiURL == "" || apiKey == "" {
		t.Skip("HOST, API_URL and API_KEY must be set to run this test")
	}

	client, err := NewClient(Config{
		Host:      host,
		APIURL:    apiURL,
		APIKey:    apiKey,
		GrantType: os.Getenv("GRANT_TYPE"),
		Username:  os.Getenv("API_USERNAME"),
		Password:  os.Getenv("API_PASSWORD"),
	})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	tok, err := client.Token(ctx)
	if err != nil {
		t.Fatalf("Token: %v", err)
	}

	records, err := client.Page(ctx, tok, 0)
	if err != nil {
		t.Fatalf("Page: %v", err)
	}

	if len(records) == 0 {
		t.Log("first page is empty; check API_URL or credentials")
		return
	}

	for i, rec := range records {
		if i >= 5 {
			break
		}
		t.Logf("Result %d: code=%v", i+1, rec["code"])
	}
	t.Logf("first page returned %d contracts", len(records))
}
