package log

const (
	KeyAppName            = "app"
	KeyRequestID          = "requestId"
	KeyProcess            = "process"
	KeyToken              = "token"
	KeyEmail              = "email"
	KeyTag                = "tag"
	KeyRequest            = "request"
	KeyRequestBody        = "requestBody"
	KeyRequestHeader      = "requestHeader"
	KeyRequestHost        = "host"
	KeyRequestIp          = "requesterIP"
	KeyRequestMethod      = "requestMethod"
	KeyRequestURI         = "requestURI"
	KeyRequestURL         = "requestURL"
	KeyConfig             = "config"
	KeyTraceID            = "traceId"
	KeySpanID             = "spanId"
	KeyDeviceID           = "deviceId"
	KeyUserID             = "userId"
	KeyProductID          = "productId"
	KeyCartItems          = "cartItems"
	KeyCartItemsCount     = "cartItemsCount"
	KeyCartItemQuantity   = "cartItemQuantity"
	KeyCartTotal          = "cartTotal"
	KeyCacheKey           = "cacheKey"
	KeyPersistenceTarget  = "persistenceTarget"
	KeyCheckoutMode       = "checkoutMode"
	KeyCheckoutState      = "checkoutState"
	KeyPaymentReference   = "paymentReference"
	KeyVerificationStatus = "verificationStatus"
	KeyOrder              = "order"
	KeyOrderID            = "orderId"
	KeyOrders             = "orders"
	KeyDbURL              = "dbUrl"
	KeyChannel            = "channel"
)
