// Package preflight provides readiness checks for the filesystem paths,
// binaries, and services lyricreel depends on.
//
// These checks run in two contexts:
//   - `lyricreel run` calls RunAll before touching the ledger. A failed check
//     aborts the invocation so no track is attempted in a broken environment.
//   - `lyricreel doctor` renders every check, including the optional
//     MusicBrainz reachability check.
package preflight
