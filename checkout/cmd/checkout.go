package cmd

import (
	"github.com/gorilla/mux"

	"github.com/Alturino/focushoney/cart/pkg/session"
	"github.com/Alturino/focushoney/checkout/internal/controller"
	"github.com/Alturino/focushoney/checkout/internal/service"
	"github.com/Alturino/focushoney/internal/config"
)

// AttachCheckout returns the orchestrator so the caller can run its idle sweeper.
func AttachCheckout(
	router *mux.Router,
	resolver *session.Resolver,
	orders service.OrderWriter,
	verifier service.Verifier,
	publisher service.OrderPublisher,
	cfg config.Checkout,
) *service.Orchestrator {
	orchestrator := service.NewOrchestrator(resolver, orders, verifier, publisher, cfg)
	controller.AttachCheckoutController(router, orchestrator)
	return orchestrator
}
