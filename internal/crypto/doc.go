// Package crypto encrypts persisted session tokens at rest.
//
// AESGCM seals values with AES-256-GCM. EncryptedStore wraps any
// domain.KeyValueStore so tokens written to SQLite or Redis are never stored in
// plaintext when TOKEN_ENCRYPTION_KEY is set.
package crypto
