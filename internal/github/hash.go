package github

import (
	"crypto/sha1"
	"encoding/hex"
	"strconv"
)

// BlobSHA returns the git blob object id for content, which is the sha the
// Contents API reports for a file with the same bytes.
func BlobSHA(content []byte) string {
	h := sha1.New()
	h.Write([]byte("blob " + strconv.Itoa(len(content)) + "\x00"))
	h.Write(content)
	return hex.EncodeToString(h.Sum(nil))
}
