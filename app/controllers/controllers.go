// Package controllers holds the HTTP handlers of the storefront API. Each
// controller is a thin translation layer: bind, call a service, map the
// error to a status code.
package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/emberwick/storefront/app/services"
	"github.com/emberwick/storefront/app/store"
	"github.com/emberwick/storefront/pkg/ctx"
	"github.com/emberwick/storefront/pkg/logger"
)

// respondErr maps the service and store error taxonomy onto HTTP statuses.
// Anything unrecognised is a 500 with a generic body; the detail goes to
// the log, never to the client.
func respondErr(c *ctx.Context, err error) {
	switch {
	case store.IsValidation(err):
		c.Error(http.StatusBadRequest, err.Error())
	case errors.Is(err, store.ErrInvalidOwner):
		c.Error(http.StatusBadRequest, "no cart identity on request")
	case errors.Is(err, store.ErrNotFound):
		c.NotFound()
	case errors.Is(err, store.ErrConflict):
		c.Error(http.StatusBadRequest, "already exists")
	case errors.Is(err, services.ErrInvalidCredentials):
		c.Unauthorized("Invalid credentials")
	default:
		logger.WithCtx(c.Context()).Error("request failed",
			"path", c.FullPath(), "error", err)
		c.Error(http.StatusInternalServerError, "Internal server error")
	}
}

// uintParam parses a numeric path parameter, answering 400 itself when the
// value is garbage.
func uintParam(c *ctx.Context, name string) (uint, bool) {
	v, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil {
		c.Error(http.StatusBadRequest, "invalid "+name)
		return 0, false
	}
	return uint(v), true
}
