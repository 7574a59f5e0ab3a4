// Package auth owns the remote credentials.
//
// A Manager is either signed out (the initial state) or signed in. SignIn
// runs a Flow and stores the resulting bundle; SignOut forgets it locally
// and revokes it remotely on a best-effort basis. Token hands out valid
// credentials, refreshing them through the token service when they are
// about to expire. Every rotation is persisted before subscribers hear
// about it. Only IsSignedIn is meant for presentation code; the bundle
// itself stays with the sync backend.
package auth
