package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/checkmarble/consent-ledger/dto"
	"github.com/checkmarble/consent-ledger/models"
	"github.com/checkmarble/consent-ledger/usecases"
)

var (
	countryHeaders = []string{"cf-ipcountry", "x-vercel-ip-country", "x-amz-cf-ipcountry", "x-country-code"}
	regionHeaders  = []string{"x-vercel-ip-country-region", "x-region-code"}
)

func firstHeader(c *gin.Context, headers []string) string {
	for _, header := range headers {
		if value := c.GetHeader(header); value != "" {
			return value
		}
	}
	return ""
}

func handleGetStatus(uc usecases.Usecases) func(c *gin.Context) {
	return func(c *gin.Context) {
		usecase := uc.NewStatusUsecase()
		status := usecase.GetStatus(c.Request.Context(), models.ClientLocation{
			CountryCode: firstHeader(c, countryHeaders),
			RegionCode:  firstHeader(c, regionHeaders),
		})

		c.JSON(http.StatusOK, dto.AdaptStatusDto(status))
	}
}
