package contentstore

import (
	"fmt"

	"github.com/ipfs/go-cid"
	"github.com/multiformats/go-multihash"

	"github.com/goodnatureofminers/certichain-backend/internal/model"
)

// Locate computes the CIDv1 (raw codec, sha2-256) of data, the same identifier
// Kubo assigns to a single-block raw-leaves upload.
func Locate(data []byte) (model.Locator, error) {
	sum, err := multihash.Sum(data, multihash.SHA2_256, -1)
	if err != nil {
		return "", fmt.Errorf("multihash: %w", err)
	}
	return model.Locator(cid.NewCidV1(cid.Raw, sum).String()), nil
}

// ParseLocator validates that value is a well-formed CID and returns its canonical string form.
func ParseLocator(value string) (model.Locator, error) {
	c, err := cid.Decode(value)
	if err != nil {
		return "", fmt.Errorf("%w: locator %q: %v", model.ErrInvalidInput, value, err)
	}
	return model.Locator(c.String()), nil
}
