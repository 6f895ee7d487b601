package chunk

import (
	"github.com/viant/bintly"
)

type vector []float32

// EncodeBinary encodes the vector to a binary stream.
func (v *vector) EncodeBinary(stream *bintly.Writer) error {
	stream.Float32s(*v)
	return nil
}

// DecodeBinary decodes the vector from a binary stream.
func (v *vector) DecodeBinary(stream *bintly.Reader) error {
	stream.Float32s((*[]float32)(v))
	return nil
}

// EncodeVector serializes an embedding vector for BLOB persistence.
func EncodeVector(v []float32) ([]byte, error) {
	vec := vector(v)
	return bintly.Marshal(&vec)
}

// DecodeVector is the inverse of EncodeVector.
func DecodeVector(data []byte) ([]float32, error) {
	var vec vector
	if err := bintly.Unmarshal(data, &vec); err != nil {
		return nil, err
	}
	return vec, nil
}
