package cmd

import (
	"fmt"

	"github.com/gorilla/mux"

	"github.com/Alturino/focushoney/internal/config"
	"github.com/Alturino/focushoney/payment/internal/controller"
	"github.com/Alturino/focushoney/payment/internal/paystack"
)

// AttachPayment mounts the verification relay. Only the payment verifier calls this.
func AttachPayment(router *mux.Router, cfg config.Paystack) error {
	client, err := paystack.NewClient(cfg)
	if err != nil {
		return fmt.Errorf("failed initializing paystack client with error=%w", err)
	}
	controller.AttachPaymentController(router, client)
	return nil
}
