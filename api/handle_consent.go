package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/checkmarble/consent-ledger/dto"
	"github.com/checkmarble/consent-ledger/usecases"
)

func handlePostConsent(uc usecases.Usecases) func(c *gin.Context) {
	return func(c *gin.Context) {
		ctx := c.Request.Context()

		var body dto.PostConsentBody
		if err := c.ShouldBindJSON(&body); presentError(c, err) {
			return
		}

		usecase := uc.NewConsentUsecase()
		result, err := usecase.PostConsent(ctx, dto.AdaptPostConsentInput(body))
		if presentError(c, err) {
			return
		}

		c.JSON(http.StatusOK, dto.AdaptPostConsentResponse(result))
	}
}

func handleIdentifyUser(uc usecases.Usecases) func(c *gin.Context) {
	return func(c *gin.Context) {
		ctx := c.Request.Context()

		var body dto.IdentifyUserBody
		if err := c.ShouldBindJSON(&body); presentError(c, err) {
			return
		}

		usecase := uc.NewIdentifyUsecase()
		if err := usecase.IdentifyUser(ctx, dto.AdaptIdentifyUserInput(body)); presentError(c, err) {
			return
		}

		c.JSON(http.StatusOK, dto.APIIdentifyUserResponse{Success: true})
	}
}

func handleVerifyConsent(uc usecases.Usecases) func(c *gin.Context) {
	return func(c *gin.Context) {
		ctx := c.Request.Context()

		var body dto.VerifyConsentBody
		if err := c.ShouldBindJSON(&body); presentError(c, err) {
			return
		}

		usecase := uc.NewConsentUsecase()
		result, err := usecase.VerifyConsent(ctx, dto.AdaptVerifyConsentInput(body))
		if presentError(c, err) {
			return
		}

		c.JSON(http.StatusOK, dto.AdaptVerifyConsentResponse(result))
	}
}
