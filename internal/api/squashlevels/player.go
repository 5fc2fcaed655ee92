package squashlevels

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/omarshaarawi/squashbot/internal/models"
)

const DefaultShow = "all"

type API struct {
	client *Client
}

func NewAPI(client *Client) *API {
	return &API{client: client}
}

func (a *API) FetchPlayerData(ctx context.Context, playerID int64, show string) (*models.Document, error) {
	if show == "" {
		show = DefaultShow
	}
	params := map[string]string{
		"player": strconv.FormatInt(playerID, 10),
		"format": "json",
		"show":   show,
	}

	var doc models.Document
	if err := a.client.Get(ctx, playerEndpoint, params, &doc); err != nil {
		return nil, fmt.Errorf("fetching player %d: %w", playerID, err)
	}
	if doc.Data.Summary == nil {
		return nil, fmt.Errorf("fetching player %d: %w: missing data.summary", playerID, ErrMalformedResponse)
	}

	return &doc, nil
}

// Authenticate logs in when credentials are given and then fetches the
// first document, which decides the outcome. The error is non-nil only
// when that fetch fails.
func (a *API) Authenticate(ctx context.Context, creds models.Credentials, playerID int64, show string) (models.AuthResult, *models.Document, error) {
	attempted := !creds.Empty()
	var loginErr error
	if attempted {
		loginErr = a.client.Login(ctx, creds)
		if loginErr != nil {
			slog.Warn("Login failed, continuing anonymously", "error", loginErr)
		}
	}

	doc, err := a.FetchPlayerData(ctx, playerID, show)
	if err != nil {
		return models.AuthResult{Status: models.AuthFailed, Reason: err.Error()}, nil, err
	}

	return inferAuth(doc, attempted, loginErr), doc, nil
}

// inferAuth derives the session state from the document status, which is
// the only signal the API gives for a live session.
func inferAuth(doc *models.Document, attempted bool, loginErr error) models.AuthResult {
	switch {
	case doc.Status == models.StatusGood:
		return models.AuthResult{Status: models.Authenticated}
	case !attempted:
		return models.AuthResult{Status: models.Anonymous}
	case loginErr != nil:
		return models.AuthResult{Status: models.AuthFailed, Reason: loginErr.Error()}
	default:
		return models.AuthResult{Status: models.AuthFailed, Reason: fmt.Sprintf("document status %q", doc.Status)}
	}
}
