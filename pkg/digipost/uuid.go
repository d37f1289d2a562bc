package digipost

import (
	"crypto/md5"

	"github.com/google/uuid"
)

// NameUUIDFromBytes returns a version 3 UUID derived from the MD5 of b
// without a namespace, matching java.util.UUID.nameUUIDFromBytes. Archive
// documents stored with an external id are addressed by this UUID.
func NameUUIDFromBytes(b []byte) uuid.UUID {
	sum := md5.Sum(b)
	sum[6] = sum[6]&0x0f | 0x30
	sum[8] = sum[8]&0x3f | 0x80

	var id uuid.UUID
	copy(id[:], sum[:])
	return id
}
