// Package accounts contiene el controller del endpoint de vinculación
// /v1/accounts/{provider}.
package accounts

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	accountsvc "github.com/dropDatabas3/hellojohn-accounts/internal/accounts"
	httperrors "github.com/dropDatabas3/hellojohn-accounts/internal/http/errors"
	"github.com/dropDatabas3/hellojohn-accounts/internal/http/helpers"
	"github.com/dropDatabas3/hellojohn-accounts/internal/oauth/protocol"
	"github.com/dropDatabas3/hellojohn-accounts/internal/observability/logger"
	"github.com/dropDatabas3/hellojohn-accounts/internal/providers"
)

// Deps contiene las dependencias del controller.
type Deps struct {
	Registry       *providers.Registry
	BaseURL        string
	TrustForwarded bool
}

// Controller maneja el handshake de cada provider.
type Controller struct {
	registry       *providers.Registry
	baseURL        string
	trustForwarded bool
}

// NewController crea el controller.
func NewController(d Deps) *Controller {
	return &Controller{registry: d.Registry, baseURL: d.BaseURL, trustForwarded: d.TrustForwarded}
}

// Handle maneja cualquier método sobre /v1/accounts/{provider}. El método lo
// valida el handshake.
func (c *Controller) Handle(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	name := chi.URLParam(r, "provider")
	log := logger.From(ctx).With(logger.Layer("controller"), logger.Op("AccountsController.Handle"), logger.Provider(name))

	h, err := c.registry.Get(name)
	if err != nil {
		httperrors.WriteError(w, MapError(err))
		return
	}

	in := protocol.NewInbound(r, helpers.CallbackURL(r, c.baseURL, c.trustForwarded))
	res, err := h.Process(logger.ToContext(ctx, log), in)
	if err != nil {
		appErr := MapError(err)
		if appErr.HTTPStatus >= 500 {
			log.Error("handshake failed", logger.Protocol(h.Protocol()), logger.Err(err))
		} else {
			log.Info("handshake rejected", logger.Protocol(h.Protocol()), logger.Err(err))
		}
		httperrors.WriteError(w, appErr)
		return
	}
	res.Write(w)
}

// MapError traduce errores del handshake al catálogo de AppError.
func MapError(err error) *httperrors.AppError {
	var te *protocol.TransportError
	switch {
	case errors.Is(err, providers.ErrNotFound):
		return httperrors.ErrProviderNotFound.WithCause(err)
	case errors.Is(err, protocol.ErrMethodNotAllowed):
		return httperrors.ErrMethodNotAllowed.WithCause(err)
	case errors.Is(err, protocol.ErrAccessDenied):
		return httperrors.ErrAccessDenied.WithCause(err)
	case errors.Is(err, protocol.ErrInvalidSession):
		return httperrors.ErrInvalidOAuth1Session.WithCause(err)
	case errors.As(err, &te):
		return httperrors.ErrProviderUnreachable.WithCause(err)
	case errors.Is(err, accountsvc.ErrRedirectNotAllowed):
		return httperrors.ErrBadRequest.WithDetail("redirect target not allowed").WithCause(err)
	case errors.Is(err, protocol.ErrProtocol),
		errors.Is(err, protocol.ErrUnsupportedSignatureMethod),
		errors.Is(err, accountsvc.ErrInvalidInput):
		return httperrors.ErrOAuthProtocol.WithCause(err)
	default:
		return httperrors.FromError(err)
	}
}
