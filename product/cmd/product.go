package cmd

import (
	"github.com/gorilla/mux"

	"github.com/Alturino/focushoney/product/internal/controller"
	"github.com/Alturino/focushoney/product/pkg/catalog"
)

func AttachProduct(router *mux.Router, catalog *catalog.Catalog) {
	controller.AttachProductController(router, catalog)
}
