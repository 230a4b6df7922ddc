package http

const (
	HeaderContentType        = "Content-Type"
	HeaderContentDisposition = "Content-Disposition"
	HeaderAuthorization      = "Authorization"
	HeaderRequestID          = "X-Request-ID"
	HeaderDeviceID           = "X-Device-ID"
	HeaderValueJson          = "application/json"
	HeaderValuePdf           = "application/pdf"
)
