package middlewares

// gin context keys set by the auth guard.
const (
	ctxUserIDKey = "auth.userID"
	ctxEmailKey  = "auth.email"
)
