// Package jwt verifies bearer tokens and carries the authenticated identity
// through the request context.
//
// Two verifiers exist: OIDC checks identity-provider ID tokens (Firebase
// publishes its keys at a discovery endpoint), and Symmetric checks HMAC
// tokens, which is handy for local runs and tests. Symmetric can also sign.
package jwt
