package dto

import (
	"time"

	"github.com/guregu/null/v5"

	"github.com/checkmarble/consent-ledger/models"
)

type APIStatus struct {
	Status    string          `json:"status"`
	Version   string          `json:"version"`
	Timestamp time.Time       `json:"timestamp"`
	Client    APIClientStatus `json:"client"`
}

type APIClientStatus struct {
	Ip        null.String     `json:"ip"`
	UserAgent null.String     `json:"userAgent"`
	Region    APIClientRegion `json:"region"`
}

type APIClientRegion struct {
	CountryCode null.String `json:"countryCode"`
	RegionCode  null.String `json:"regionCode"`
}

func AdaptStatusDto(status models.Status) APIStatus {
	return APIStatus{
		Status:    status.Status,
		Version:   status.Version,
		Timestamp: status.Timestamp,
		Client: APIClientStatus{
			Ip:        null.StringFromPtr(status.Client.Ip),
			UserAgent: null.StringFromPtr(status.Client.UserAgent),
			Region: APIClientRegion{
				CountryCode: null.StringFromPtr(status.Client.CountryCode),
				RegionCode:  null.StringFromPtr(status.Client.RegionCode),
			},
		},
	}
}
