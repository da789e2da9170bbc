// Package password implements password hashing and verification with Argon2id.
//
// # Output format
//
// Hashes are encoded in PHC string format:
//
//	$argon2id$v=19$m=<memory>,t=<time>,p=<threads>$<salt>$<hash>
//
// Verification recomputes the hash with the parameters embedded in the stored
// string and compares in constant time, so parameter upgrades never invalidate
// existing credentials. [Hasher.NeedsRehash] reports whether a stored hash was
// produced with weaker parameters than the active configuration.
//
// # Architecture boundaries
//
// This package owns hashing and verification only. Password policy (minimum
// length, reuse rules) belongs to account provisioning, which is outside the
// gateway core.
//
// # What this package must NOT do
//
//   - Store or retrieve passwords — callers supply plaintext and receive hashes.
//   - Import any other authgate package.
//   - Log plaintext passwords or hash parameters at runtime.
package password
