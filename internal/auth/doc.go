// Package auth identifies the user behind a request and holds the current
// user of this device.
//
// It supports two modes:
//   - "none": no authentication, every request acts as DefaultUserID (default)
//   - "jwt": requests carry "Authorization: Bearer <token>" signed with HS256
//
// # Configuration
//
//	AUTH_MODE=jwt
//	AUTH_JWT_SECRET=<secret>
//	AUTH_TOKEN_EXPIRY=720h   # 30 days default
//
// # Usage
//
//	tokens := auth.NewTokenService(cfg.Auth)
//	router.Use(auth.NewMiddleware(tokens, cfg.Auth).Handler())
//
// Extract user in handlers:
//
//	userID := auth.GetUserID(c)
//
// Session is the client-side counterpart: it remembers who is signed in on
// this device and notifies subscribers on login and logout.
package auth
