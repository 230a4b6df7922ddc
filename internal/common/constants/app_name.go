package constants

const (
	AppMain             = "focushoney"
	AppStorefront       = "storefront"
	AppPaymentVerifier  = "payment-verifier"
	AppNotification     = "notification-service"
	AudienceUser        = "audience-user"
	ChannelOrderCreated = "order-created"
)
