// Package slim implements the Slim wire format: a dense, sequential binary encoding
// built on complement-signed variable-length integers.
//
// A Writer and a Reader each address one stream at a time:
//
//	w := &slim.Writer{}
//	if err := w.BindStream(dst); err != nil {
//		return err
//	}
//	defer w.UnbindStream()
//	err := w.WriteInt32(-1) // one byte: 0x01
//
// Values carry no type tags; the reader must ask for them in the order they were written.
package slim

// StringBufferSize is the size of the per-instance buffer used for strings
// whose encoded length is below it. Longer strings get their own allocation.
const StringBufferSize = 32 * 1024

const (
	trueByte  byte = 0xff
	falseByte byte = 0x00

	signBit   byte = 0x80
	scaleMask byte = 0x7f
)
