package intcode

import (
	"bytes"
	"fmt"
	"math/big"

	"github.com/fxamacker/cbor/v2"
)

// ImageVersion is the current image format version.
// Increment when making incompatible changes to the format.
const ImageVersion uint16 = 1

// ImageMagic prefixes every encoded image: "ICBC" (IntCode Binary Cells).
var ImageMagic = []byte{'I', 'C', 'B', 'C'}

// Image is a program packaged for storage and transport.
type Image struct {
	Version uint16     `cbor:"1,keyasint"`
	Name    string     `cbor:"2,keyasint,omitempty"`
	Hash    string     `cbor:"3,keyasint"`
	Cells   []*big.Int `cbor:"4,keyasint"`
}

var imageEncMode cbor.EncMode

func init() {
	opts := cbor.CanonicalEncOptions()
	// Cells are always tagged bignums so decoding back into *big.Int is exact.
	opts.BigIntConvert = cbor.BigIntConvertNone
	em, err := opts.EncMode()
	if err != nil {
		panic(fmt.Sprintf("intcode: failed to create CBOR enc mode: %v", err))
	}
	imageEncMode = em
}

// NewImage wraps a copy of p.
func NewImage(name string, p Program) *Image {
	return &Image{
		Version: ImageVersion,
		Name:    name,
		Hash:    p.Hash(),
		Cells:   p.Clone(),
	}
}

// Program returns a copy of the image's cells.
func (img *Image) Program() Program {
	return Program(img.Cells).Clone()
}

// IsImage reports whether data starts with the image magic.
func IsImage(data []byte) bool {
	return bytes.HasPrefix(data, ImageMagic)
}

// MarshalImage serializes an image: magic followed by canonical CBOR.
func MarshalImage(img *Image) ([]byte, error) {
	body, err := imageEncMode.Marshal(img)
	if err != nil {
		return nil, fmt.Errorf("intcode: marshal image: %w", err)
	}
	return append(append([]byte{}, ImageMagic...), body...), nil
}

// UnmarshalImage decodes and verifies an image.
func UnmarshalImage(data []byte) (*Image, error) {
	if !IsImage(data) {
		return nil, fmt.Errorf("intcode: bad image magic")
	}
	var img Image
	if err := cbor.Unmarshal(data[len(ImageMagic):], &img); err != nil {
		return nil, fmt.Errorf("intcode: unmarshal image: %w", err)
	}
	if img.Version != ImageVersion {
		return nil, fmt.Errorf("intcode: unsupported image version %d (want %d)", img.Version, ImageVersion)
	}
	for i, c := range img.Cells {
		if c == nil {
			return nil, fmt.Errorf("%w: image cell %d is empty", ErrMalformedProgram, i)
		}
	}
	if h := Program(img.Cells).Hash(); h != img.Hash {
		return nil, fmt.Errorf("intcode: image hash mismatch: declared %s, computed %s", img.Hash, h)
	}
	return &img, nil
}
