// Package google implements sheets.RowWriter on top of the Google Sheets API.
package google

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"strings"
	"time"

	"golang.org/x/oauth2"
	oauthgoogle "golang.org/x/oauth2/google"
	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"moneytracker/internal/log"
	"moneytracker/internal/sheets"
)

// Credentials selects how the client authenticates. A service account wins
// over OAuth when both are set.
type Credentials struct {
	ServiceAccountJSON string
	ServiceAccountFile string
	OAuthClientJSON    string
	OAuthTokenJSON     string
}

type Client struct {
	svc           *gsheet.Service
	spreadsheetID string
	sheetName     string
}

var _ sheets.RowWriter = (*Client)(nil)

// New creates a Sheets client for one spreadsheet tab.
func New(ctx context.Context, spreadsheetID, sheetName string, creds Credentials) (*Client, error) {
	spreadsheetID = strings.TrimSpace(spreadsheetID)
	if spreadsheetID == "" {
		return nil, errors.New("missing spreadsheet ID")
	}
	if strings.TrimSpace(sheetName) == "" {
		return nil, errors.New("missing sheet name")
	}

	svc, err := newSheetsService(ctx, creds)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}
	return newClient(svc, spreadsheetID, sheetName), nil
}

func newClient(svc *gsheet.Service, spreadsheetID, sheetName string) *Client {
	return &Client{svc: svc, spreadsheetID: spreadsheetID, sheetName: sheetName}
}

func newSheetsService(ctx context.Context, creds Credentials) (*gsheet.Service, error) {
	switch {
	case creds.ServiceAccountJSON != "" || creds.ServiceAccountFile != "":
		credentialsJSON := []byte(creds.ServiceAccountJSON)
		if len(credentialsJSON) == 0 {
			b, err := os.ReadFile(creds.ServiceAccountFile)
			if err != nil {
				return nil, fmt.Errorf("read service account file: %w", err)
			}
			credentialsJSON = b
		}
		slog.InfoContext(ctx, "Creating Google Sheets service with service account",
			log.FieldComponent, log.ComponentSheets,
			"credentials_size", len(credentialsJSON))
		return gsheet.NewService(ctx,
			goption.WithCredentialsJSON(credentialsJSON),
			goption.WithScopes(gsheet.SpreadsheetsScope))

	case creds.OAuthClientJSON != "" && creds.OAuthTokenJSON != "":
		cfg, err := oauthgoogle.ConfigFromJSON([]byte(creds.OAuthClientJSON), gsheet.SpreadsheetsScope)
		if err != nil {
			return nil, fmt.Errorf("oauth config: %w", err)
		}
		var tok oauth2.Token
		if err := json.Unmarshal([]byte(creds.OAuthTokenJSON), &tok); err != nil {
			return nil, fmt.Errorf("oauth token: %w", err)
		}
		// Token refreshes reuse the pooled transport.
		clientCtx := context.WithValue(ctx, oauth2.HTTPClient, newHTTPClientWithPooling())
		slog.InfoContext(ctx, "Creating Google Sheets service with OAuth token",
			log.FieldComponent, log.ComponentSheets,
			"token_expiry", tok.Expiry)
		return gsheet.NewService(ctx, goption.WithHTTPClient(cfg.Client(clientCtx, &tok)))
	}
	return nil, errors.New("missing credentials: set a service account or an OAuth client and token")
}

// newHTTPClientWithPooling creates an HTTP client for the Sheets API with
// connection pooling and bounded timeouts.
func newHTTPClientWithPooling() *http.Client {
	dialer := &net.Dialer{
		Timeout:   30 * time.Second,
		KeepAlive: 30 * time.Second,
	}
	transport := &http.Transport{
		DialContext:           dialer.DialContext,
		MaxIdleConns:          100,
		MaxIdleConnsPerHost:   10,
		MaxConnsPerHost:       50,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ResponseHeaderTimeout: 30 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
		ForceAttemptHTTP2:     true,
	}
	return &http.Client{Transport: transport, Timeout: 60 * time.Second}
}

// sheetRange quotes the tab name so names with spaces work.
func (c *Client) sheetRange(cells string) string {
	return fmt.Sprintf("'%s'!%s", strings.ReplaceAll(c.sheetName, "'", "''"), cells)
}

// EnsureHeader writes the header row when the first row is empty.
func (c *Client) EnsureHeader(ctx context.Context) error {
	rng := c.sheetRange("A1:H1")
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("read header of %s: %w", c.sheetName, err)
	}
	if len(resp.Values) > 0 && len(resp.Values[0]) > 0 {
		return nil
	}
	vr := &gsheet.ValueRange{Values: [][]any{sheets.Header}}
	if _, err := c.svc.Spreadsheets.Values.Update(c.spreadsheetID, rng, vr).
		ValueInputOption("RAW").Context(ctx).Do(); err != nil {
		return fmt.Errorf("write header of %s: %w", c.sheetName, err)
	}
	slog.InfoContext(ctx, "Sheet header written",
		log.FieldComponent, log.ComponentSheets,
		"sheet", c.sheetName)
	return nil
}

// AppendRow adds the row after the last filled row and returns the updated
// A1 range.
func (c *Client) AppendRow(ctx context.Context, row sheets.Row) (string, error) {
	if c.svc == nil {
		return "", errors.New("sheets service not initialized")
	}
	vr := &gsheet.ValueRange{Values: [][]any{row.Values()}}
	resp, err := c.svc.Spreadsheets.Values.Append(c.spreadsheetID, c.sheetRange("A:H"), vr).
		ValueInputOption("USER_ENTERED").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("append to sheet %s: %w", c.sheetName, err)
	}
	if resp.Updates == nil {
		return "", nil
	}
	return resp.Updates.UpdatedRange, nil
}
