package api

import (
	"errors"
	"net/http"
	"strconv"

	"baluarte/apperr"
	"baluarte/middleware"

	"github.com/gin-gonic/gin"
	"github.com/go-sql-driver/mysql"
	"github.com/rs/zerolog/log"
)

// mysqlDuplicateEntry ER_DUP_ENTRY
const mysqlDuplicateEntry = 1062

// Response error envelope. Detail carries the internal cause outside release mode.
type Response struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Detail  string `json:"detail,omitempty"`
}

// MessageResponse plain confirmation
type MessageResponse struct {
	Message string `json:"message"`
}

// Success 200 with data as the body
func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, data)
}

// Created 201 with data as the body
func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, data)
}

// SuccessWithMessage 200 {message}
func SuccessWithMessage(c *gin.Context, message string) {
	c.JSON(http.StatusOK, MessageResponse{Message: message})
}

// Fail renders any error through the apperr taxonomy
func Fail(c *gin.Context, err error) {
	e := apperr.As(err)
	status := e.Status()

	resp := Response{Code: status, Message: e.Message}
	if e.Err != nil {
		if detail := SafeErrorMessage(e.Err, ""); detail != "" {
			resp.Detail = detail
		}
	}

	if status >= http.StatusInternalServerError {
		log.Error().Err(err).
			Str("request_id", middleware.GetRequestID(c)).
			Str("path", c.Request.URL.Path).
			Int("status", status).
			Msg("request failed")
	}

	c.AbortWithStatusJSON(status, resp)
}

// bindError wraps a binding failure keeping the validator output as detail
func bindError(message string, err error) error {
	return apperr.Wrap(apperr.KindValidation, message, err)
}

// parseID reads a positive numeric path parameter
func parseID(c *gin.Context, name string) (uint, error) {
	id, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil || id == 0 {
		return 0, apperr.Validation("ID inválido")
	}
	return uint(id), nil
}

// isDuplicateKey reports whether err is a unique index violation
func isDuplicateKey(err error) bool {
	var myErr *mysql.MySQLError
	return errors.As(err, &myErr) && myErr.Number == mysqlDuplicateEntry
}
