package compiler

import (
	"fmt"

	"github.com/fxamacker/cbor/v2"
)

// ---------------------------------------------------------------------------
// Program images: CBOR-serialized optimized instruction trees
// ---------------------------------------------------------------------------

// ImageVersion is the current image format version. Images with a
// different version are rejected rather than guessed at.
const ImageVersion = 1

// Image is a compiled program ready to run without reparsing: the
// optimized instruction tree plus the cell width it was compiled for.
type Image struct {
	Version  int    `cbor:"version"`
	CellBits int    `cbor:"cellBits"`
	Code     []Node `cbor:"code"`
}

// cborEncMode uses canonical options so that equal trees always encode to
// identical bytes.
var cborEncMode cbor.EncMode

func init() {
	em, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(fmt.Sprintf("compiler: failed to create CBOR enc mode: %v", err))
	}
	cborEncMode = em
}

// MarshalImage serializes an Image to CBOR bytes.
func MarshalImage(img *Image) ([]byte, error) {
	return cborEncMode.Marshal(img)
}

// UnmarshalImage deserializes an Image from CBOR bytes and checks its
// format version and cell width.
func UnmarshalImage(data []byte) (*Image, error) {
	var img Image
	if err := cbor.Unmarshal(data, &img); err != nil {
		return nil, fmt.Errorf("compiler: unmarshal image: %w", err)
	}
	if img.Version != ImageVersion {
		return nil, fmt.Errorf("compiler: image version %d, want %d", img.Version, ImageVersion)
	}
	switch img.CellBits {
	case 8, 16, 32, 64:
	default:
		return nil, fmt.Errorf("compiler: image cell width %d (want 8, 16, 32, or 64)", img.CellBits)
	}
	return &img, nil
}
