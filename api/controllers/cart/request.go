package cart

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	pkgerrors "github.com/stackmart/storefront-backend/pkg/errors"
)

type createCartRequest struct {
	CartID *uuid.UUID `json:"cart_id,omitempty"`
}

type addItemRequest struct {
	ProductID int64 `json:"product_id" validate:"required,min=1"`
	Quantity  int   `json:"quantity" validate:"required,min=1"`
}

// A non-positive quantity is allowed; the cart service treats it as removal.
type updateItemRequest struct {
	Quantity int `json:"quantity"`
}

func cartIDFromURL(r *http.Request) (uuid.UUID, error) {
	raw := chi.URLParam(r, "cartID")
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cart id")
	}
	return id, nil
}

func productIDFromURL(r *http.Request) (int64, error) {
	raw := chi.URLParam(r, "productID")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "invalid product id")
	}
	return id, nil
}
