// Package repositories implements SQLite persistence for client-side state.
//
// The only entity the client persists is its credentials: the movie records themselves belong to the remote service.
//
// Key Implementations:
//   - [CredentialRepository] : key/value credential store holding the bearer token (with the expiry read from its
//     exp claim) and the remembered login email. It satisfies services.CredentialProvider.
//
// Schema changes live in internal/shared/sql and are applied by shared.RunMigrations.
package repositories
