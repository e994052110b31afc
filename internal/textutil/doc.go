// Package textutil provides title normalization and filename helpers shared by
// the catalog, the ledger, and every pipeline stage.
//
// The primary use cases are:
//   - Deriving the artifact base name for a track title, the one naming rule
//     that lyrics, synthesis, video, and the runner's existence check share
//   - Normalizing titles (NFKC plus case folding) so track identities are
//     stable across re-fetched album metadata
//   - Sanitizing filenames and path segments for safe filesystem use
package textutil
