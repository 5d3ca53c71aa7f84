// Package client talks to the Ajenda calendar backend.
//
// # Overview
//
// The package provides:
//  1. A transport-agnostic API contract (see the Client interface): SignIn,
//     SignUp and the event operations, each scoped to the caller's own
//     events or, for administrators, to all events.
//  2. A JSON-over-HTTP implementation (see HTTPClient).
//  3. The Authorizer, an http.RoundTripper that attaches the stored bearer
//     token to every request except the sign-in/sign-up endpoints, refuses to
//     send requests without a usable token and ends the session when the
//     backend answers 401.
//
// # Error Handling
//
// HTTP failures are returned as *APIError, which matches ErrUnauthorized,
// ErrForbidden, ErrNotFound or ErrBadRequest with errors.Is. Requests the
// Authorizer refuses locally fail with ErrAuthRequired or ErrTokenInvalid
// (more precisely ErrTokenMalformed or ErrTokenExpired). Transport failures
// match ErrUnavailable.
//
// Concurrency & Contexts
//
// HTTPClient and Authorizer are safe for concurrent use. Every operation
// takes a context.Context; cancelling it aborts the request.
package client
