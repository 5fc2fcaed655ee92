package mocksquashlevels

import (
	"context"

	"github.com/omarshaarawi/squashbot/internal/models"
	"github.com/stretchr/testify/mock"
)

type API struct {
	mock.Mock
}

func (a *API) Authenticate(ctx context.Context, creds models.Credentials, playerID int64, show string) (models.AuthResult, *models.Document, error) {
	args := a.Called(ctx, creds, playerID, show)

	var doc *models.Document
	if args.Get(1) != nil {
		doc = args.Get(1).(*models.Document)
	}

	return args.Get(0).(models.AuthResult), doc, args.Error(2)
}

func (a *API) FetchPlayerData(ctx context.Context, playerID int64, show string) (*models.Document, error) {
	args := a.Called(ctx, playerID, show)

	var doc *models.Document
	if args.Get(0) != nil {
		doc = args.Get(0).(*models.Document)
	}

	return doc, args.Error(1)
}
