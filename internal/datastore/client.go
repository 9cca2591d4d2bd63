package datastore

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"path"

	"github.com/rotisserie/eris"
)

// DatasetteClient sends tables to a remote Datasette instance through the
// datasette-insert plugin.
type DatasetteClient struct {
	baseURL  string
	apiToken string
	client   *http.Client
}

// NewDatasetteClient creates a DatasetteClient. apiToken may be empty.
func NewDatasetteClient(baseURL, apiToken string) *DatasetteClient {
	return &DatasetteClient{
		baseURL:  baseURL,
		apiToken: apiToken,
		client:   &http.Client{},
	}
}

// Connect validates the base URL.
func (c *DatasetteClient) Connect() error {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return eris.Wrap(err, "invalid base URL")
	}
	if u.Scheme == "" || u.Host == "" {
		return eris.Errorf("invalid base URL: %q", c.baseURL)
	}
	return nil
}

// CreateTable is a no-op; the insert plugin creates tables from the rows.
func (c *DatasetteClient) CreateTable(schema string) error {
	return nil
}

// BatchInsert posts records to /-/insert/{database}/{table} with upsert and
// alter enabled, so re-exports update existing rows and add new columns.
func (c *DatasetteClient) BatchInsert(ctx context.Context, database string, table string, records []map[string]any) error {
	if len(records) == 0 {
		return nil
	}

	u, err := url.Parse(c.baseURL)
	if err != nil {
		return eris.Wrap(err, "invalid base URL")
	}
	u.Path = path.Join(u.Path, "-/insert", database, table)
	q := u.Query()
	q.Set("upsert", "1")
	q.Set("alter", "1")
	u.RawQuery = q.Encode()

	payload, err := json.Marshal(records)
	if err != nil {
		return eris.Wrap(err, "marshal rows")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u.String(), bytes.NewReader(payload))
	if err != nil {
		return eris.Wrap(err, "create request")
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiToken)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return eris.Wrapf(err, "insert into %s/%s", database, table)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		var errResp map[string]any
		if err := json.NewDecoder(resp.Body).Decode(&errResp); err != nil {
			return fmt.Errorf("datasette: request failed with status %d", resp.StatusCode)
		}
		return fmt.Errorf("datasette: API error (status %d): %v", resp.StatusCode, errResp)
	}
	return nil
}

// Close is a no-op for the HTTP client.
func (c *DatasetteClient) Close() error {
	return nil
}
