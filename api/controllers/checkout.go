package controllers

import (
	"net/http"

	"github.com/grengcry/cart-service/api/middleware"
	"github.com/grengcry/cart-service/api/responses"
	"github.com/grengcry/cart-service/internal/checkout"
	pkgerrors "github.com/grengcry/cart-service/pkg/errors"
	"github.com/grengcry/cart-service/pkg/logger"
)

// Checkout places an order from the session's cart.
func Checkout(svc checkout.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "checkout service unavailable"))
			return
		}

		result, err := svc.Checkout(ctx, middleware.SessionIDFromContext(ctx))
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, result)
	}
}
