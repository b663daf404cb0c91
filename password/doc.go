// Package password hashes and verifies account passwords.
//
// [Bcrypt] is the default. [Argon2] produces PHC strings:
//
//	$argon2id$v=19$m=<memory>,t=<time>,p=<threads>$<salt>$<hash>
//
// [Chain] hashes with its primary hasher and verifies whichever format a stored hash is
// in, so hashes can migrate between algorithms on login via [Chain.NeedsRehash].
//
// Password policy beyond byte length bounds belongs to the caller.
package password
