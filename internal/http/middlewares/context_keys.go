package middlewares

const (
	CtxRequestID = "request_id"
	CtxUsername  = "auth.username"
	CtxAccountID = "auth.accountID"
)
