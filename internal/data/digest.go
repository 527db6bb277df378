package data

import (
	"encoding/hex"
	"encoding/json"
	"fmt"

	"golang.org/x/crypto/blake2b"
)

// Digest returns a content hash of the rule set (hex BLAKE2b-256 of its
// JSON form). Equal assets give equal digests regardless of source format.
func Digest(rs *RuleSet) (string, error) {
	raw, err := json.Marshal(rs)
	if err != nil {
		return "", fmt.Errorf("encoding rule set %q: %w", rs.Name, err)
	}
	sum := blake2b.Sum256(raw)
	return hex.EncodeToString(sum[:]), nil
}
