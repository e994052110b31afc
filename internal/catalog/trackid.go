package catalog

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"lyricreel/internal/textutil"
)

const maxSlugLen = 40

// TrackID derives the ledger identity of a track. The position keeps two
// tracks with the same title apart; the hash of the normalized title catches
// a different song landing on a previously used position.
func TrackID(position int, title string) string {
	sum := sha256.Sum256([]byte(textutil.NormalizeTitle(title)))
	slug := textutil.Slug(title)
	if len(slug) > maxSlugLen {
		slug = slug[:maxSlugLen]
		for len(slug) > 0 && slug[len(slug)-1] == '-' {
			slug = slug[:len(slug)-1]
		}
	}
	if slug == "" {
		slug = "track"
	}
	return fmt.Sprintf("%03d-%s-%s", position, slug, hex.EncodeToString(sum[:4]))
}
