// Package secret resolves account credential references.
//
// Accounts in the pool never store credentials directly; they carry a
// reference that is resolved at lease time through a pluggable provider:
//
//	credref:<provider>:<ref>
//
// e.g. credref:env:ACCOUNT_7_PASSWORD or credref:file:accounts/7.cred.
// References may also appear inline inside larger values. Plain values pass
// through after strict environment expansion (see ExpandEnvStrict).
//
// Env, File, and Static providers cover the common cases; CachingProvider
// wraps any provider so remote lookups are not repeated on every lease.
package secret
