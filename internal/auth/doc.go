// Package auth implements credential authentication and account lifecycle
// for the SmartBee platform.
//
// It covers identity resolution (login by account id, or by name pair as a
// fallback), password verification against both bcrypt and legacy plaintext
// records, account provisioning with role validation, soft-delete with a
// dependency guard against orphaning hives, and opaque session token
// issuance.
//
// The package is storage-agnostic at its boundaries: the Service operates
// through the Store interface, with a SQLite implementation provided.
package auth
