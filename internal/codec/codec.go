// Package codec provides deterministic encoding, content fingerprints and
// deep copies for document graph values.
package codec

import (
	"fmt"
	"reflect"

	"github.com/fxamacker/cbor/v2"
	"github.com/zeebo/blake3"
)

// fingerprintMode uses Core Deterministic Encoding (RFC 8949 §4.2) so the
// same logical value always produces identical bytes. Nil and empty
// containers encode the same way, so a nil map never differs from an empty one.
var fingerprintMode cbor.EncMode

// cloneMode keeps nil containers as null so a round trip preserves the
// difference between an absent list and an explicitly empty one.
var cloneMode cbor.EncMode

// decMode decodes any-typed values into map[string]any rather than the CBOR
// default of map[any]any.
var decMode cbor.DecMode

// looseDecMode keeps the CBOR default so maps with non-string keys decode.
var looseDecMode cbor.DecMode

func init() {
	var err error

	fpOptions := cbor.CoreDetEncOptions()
	fpOptions.NilContainers = cbor.NilContainerAsEmpty
	fingerprintMode, err = fpOptions.EncMode()
	if err != nil {
		panic("codec: CBOR fingerprint encoder initialization failed: " + err.Error())
	}

	cloneMode, err = cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic("codec: CBOR clone encoder initialization failed: " + err.Error())
	}

	decMode, err = cbor.DecOptions{
		DefaultMapType: reflect.TypeOf(map[string]any(nil)),
	}.DecMode()
	if err != nil {
		panic("codec: CBOR decoder initialization failed: " + err.Error())
	}

	looseDecMode, err = cbor.DecOptions{}.DecMode()
	if err != nil {
		panic("codec: CBOR loose decoder initialization failed: " + err.Error())
	}
}

// Fingerprint is a BLAKE3-256 digest of a value's deterministic encoding.
type Fingerprint [32]byte

// String returns the digest as lowercase hex.
func (f Fingerprint) String() string {
	return fmt.Sprintf("%x", f[:])
}

// Short returns the first 12 hex characters of the digest.
func (f Fingerprint) Short() string {
	return f.String()[:12]
}

// Sum computes the fingerprint of v.
func Sum(v any) (Fingerprint, error) {
	data, err := fingerprintMode.Marshal(v)
	if err != nil {
		return Fingerprint{}, fmt.Errorf("codec: failed to encode value: %w", err)
	}
	return blake3.Sum256(data), nil
}

// SumBytes computes the fingerprint of raw bytes, e.g. a file's contents.
func SumBytes(data []byte) Fingerprint {
	return blake3.Sum256(data)
}

// Equal reports whether a and b are structurally equal. It compares
// fingerprints and falls back to reflect.DeepEqual when either value
// cannot be encoded.
func Equal(a, b any) bool {
	fa, errA := Sum(a)
	fb, errB := Sum(b)
	if errA != nil || errB != nil {
		return reflect.DeepEqual(a, b)
	}
	return fa == fb
}

// Clone returns a deep copy of v made by a CBOR round trip. Untyped maps
// come back as map[string]any, unless one of them has a non-string key, in
// which case every untyped map in the copy is a map[any]any.
func Clone[T any](v T) (T, error) {
	var out T
	data, err := cloneMode.Marshal(v)
	if err != nil {
		return out, fmt.Errorf("codec: failed to encode value for copy: %w", err)
	}
	if err := decMode.Unmarshal(data, &out); err != nil {
		var loose T
		if looseErr := looseDecMode.Unmarshal(data, &loose); looseErr != nil {
			return loose, fmt.Errorf("codec: failed to decode value copy: %w", err)
		}
		return loose, nil
	}
	return out, nil
}
