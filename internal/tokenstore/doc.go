// Package tokenstore persists the token pair over a key-value store.
//
// Tokens writes and removes the two keys as a unit under a mutex, so the pair is
// never observed half-written within one process. Memory is the in-process
// key-value store used by tests and by the CLI when TOKEN_STORE=memory.
package tokenstore
