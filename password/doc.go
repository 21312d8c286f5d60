// Package password implements salted one-way password hashing for persisted credentials.
//
// # Output formats
//
// [Argon2] hashes are PHC strings:
//
//	$argon2id$v=19$m=<memory>,t=<time>,p=<threads>$<salt>$<hash>
//
// [Bcrypt] hashes use the modular crypt format ($2a$/$2b$) so accounts imported from
// older deployments keep working. [Multi] hashes with a primary hasher and verifies
// against whichever format a stored hash carries.
//
// # What this package must NOT do
//
//   - Store or retrieve passwords. Callers supply plaintext and receive hashes.
//   - Import any other hrAuth package.
//   - Log plaintext passwords.
package password
