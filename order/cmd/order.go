package cmd

import (
	"github.com/gorilla/mux"

	"github.com/Alturino/focushoney/order/internal/controller"
	"github.com/Alturino/focushoney/order/internal/service"
)

func AttachOrder(router *mux.Router, store service.OrderStore) {
	controller.AttachOrderController(router, service.NewOrderService(store))
}
