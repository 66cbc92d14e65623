// Package session implements the client-side session store: the single source
// of truth for "who is signed in".
//
// The [Store] owns the token lifecycle. It is created in the Bootstrapping
// phase, hydrated asynchronously from the persisted token via [Store.Bootstrap],
// mutated by the login/register/logout/profile operations, and torn down by
// clearing the principal and discarding the token.
//
// Contract highlights:
//   - Bootstrap never fails outward. A missing, expired or malformed persisted
//     token all resolve to the same terminal state: Idle with no principal.
//   - Operations are not reentrant. A second call while one is pending is
//     rejected with shared.ErrOperationPending instead of racing the first.
//   - Every remote call is bounded by the store's timeout; expiry surfaces as
//     a failure like any other, never as a hung pending flag.
//   - No operation lets an error escape unrecorded: callers get an error value
//     and the same text is kept in LastError for the view layer.
package session
