package models

import "github.com/golang-jwt/jwt/v5"

// UserClaims is the JWT payload carried on authenticated requests. AccountID
// is resolved at login so handlers can pass it straight into the ledger
// engine without a user lookup per request.
type UserClaims struct {
	jwt.RegisteredClaims
	UserID       uint   `json:"user_id"`
	AccountID    uint   `json:"account_id"`
	Email        string `json:"email"`
	TokenVersion int    `json:"token_version"`
}
