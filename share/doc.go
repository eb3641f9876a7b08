// Package share issues and verifies read-only project share tokens.
//
// Tokens are HS256-signed JWTs carrying the project id, with a bounded
// lifetime and a unique token id. Anyone holding a valid token may view
// the project's spec export but not modify it.
package share
