// Package middleware provides the HTTP middleware chain of the analysis
// service.
//
// The standard chain, outermost first:
//
//	Recovery -> Logging -> RequestID -> CORS -> Timeout -> handler
//
// built inside out:
//
//	handler = TimeoutMiddleware(cfg.Server.RequestTimeout)(handler)
//	handler = CORSMiddleware(&cfg.Server.CORS)(handler)
//	handler = RequestIDMiddleware(handler)
//	handler = LoggingMiddleware(handler)
//	handler = RecoveryMiddleware(handler)
//
// Recovery sits outermost so a panic anywhere below still produces a clean
// 500 envelope and a logged stack trace. The analyze routes additionally
// pass through the API key gate (pkg/security/auth) and QuotaMiddleware
// before reaching their handlers.
//
// Middleware communicates through the request context: RequestIDKey and
// StartTimeKey are set here, the authenticated key name is set by the auth
// middleware and consumed by QuotaMiddleware.
package middleware
