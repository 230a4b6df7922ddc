package service

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	resultSuccess  = "success"
	resultFailed   = "failed"
	resultInvalid  = "invalid"
	resultMismatch = "mismatch"
)

var (
	checkoutSubmissions = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "focushoney",
		Name:      "checkout_submissions_total",
		Help:      "Checkout submissions by mode and result.",
	}, []string{"mode", "result"})

	paymentVerifications = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "focushoney",
		Name:      "payment_verifications_total",
		Help:      "Payment confirmations by verification result.",
	}, []string{"result"})

	ordersWritten = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "focushoney",
		Name:      "orders_written_total",
		Help:      "Orders written by payment method.",
	}, []string{"payment_method"})
)
