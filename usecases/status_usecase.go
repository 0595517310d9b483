package usecases

import (
	"context"
	"time"

	"github.com/checkmarble/consent-ledger/models"
	"github.com/checkmarble/consent-ledger/pure_utils"
	"github.com/checkmarble/consent-ledger/utils"
)

const StatusOk = "ok"

type StatusUsecase struct {
	apiVersion string
	now        func() time.Time
}

func (usecase StatusUsecase) GetStatus(ctx context.Context, location models.ClientLocation) models.Status {
	client := utils.ClientInfoFromContext(ctx)
	return models.Status{
		Status:    StatusOk,
		Version:   usecase.apiVersion,
		Timestamp: usecase.now().UTC(),
		Client: models.ClientStatus{
			Ip:          pure_utils.PtrOrNil(client.IpAddress),
			UserAgent:   client.UserAgentOrNil(),
			CountryCode: pure_utils.PtrOrNil(location.CountryCode),
			RegionCode:  pure_utils.PtrOrNil(location.RegionCode),
		},
	}
}
