package middlewares

const (
	CtxRequestID = "request_id"
	ctxEmailKey  = "auth.email"
)
