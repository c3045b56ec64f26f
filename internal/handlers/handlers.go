package handlers

import (
	"database/sql"

	"go.uber.org/zap"

	"github.com/01moynul/storefront-golang/internal/cart"
	"github.com/01moynul/storefront-golang/internal/catalog"
)

// Handlers holds all dependencies for the HTTP handlers.
type Handlers struct {
	DB      *sql.DB
	Cart    *cart.Service
	Catalog *catalog.Service
	Log     *zap.Logger
}
