// Package auth implements passwordless, magic-link authentication.
//
// A visitor registers with an email address and receives a time-limited
// verification link; following it both confirms the address and signs the
// visitor in. First-time users then pick a username before reaching the
// timeline. The account progresses through three states:
//
//	PendingVerification -> VerifiedNoUsername -> FullyOnboarded
//
// The Service orchestrates the flow against three collaborators injected at
// construction: a Storage for user records, a token issuer for the single-use
// verification credentials, and a NotificationGateway that delivers links.
// There are no passwords anywhere; a live verification token is the only
// login credential.
package auth
