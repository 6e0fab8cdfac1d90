// Package auth implements the credential lifecycle for Spotify sessions.
//
// # Token Lifecycle
//
// [Manager] moves a session through Unauthenticated → AwaitingProviderRedirect
// → Authenticated, with refresh exchanges keeping it there and logout tearing
// it down. It is the single writer of the token store; everything else only
// reads the current access token.
//
// # PKCE Challenge Cache
//
// [ChallengeStore] holds the state → code-verifier mapping for pending logins.
// Entries are consumed at most once, which makes the provider callback
// replay-safe. [MemoryChallengeStore] serves single-process deployments;
// [RedisChallengeStore] serves multi-process ones.
//
// # Refresh discipline
//
// Refresh for one session is a critical section keyed by session. Concurrent
// requests that both observe a stale access token serialize, and the loser of
// the race reuses the winner's result instead of spending the refresh token a
// second time.
package auth
