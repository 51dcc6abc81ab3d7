package logic

import "fmt"

// MarshalBinary implements encoding.BinaryMarshaler by rendering f to its
// ASCII surface syntax. Formula's unexported tree shape is otherwise
// opaque to reflection-based encoders.
func (f Formula) MarshalBinary() ([]byte, error) {
	return []byte(Print(f, ModeASCII)), nil
}

// UnmarshalBinary implements encoding.BinaryUnmarshaler by reparsing the
// ASCII surface syntax produced by MarshalBinary.
func (f *Formula) UnmarshalBinary(data []byte) error {
	parsed, err := Parse(string(data))
	if err != nil {
		return fmt.Errorf("decode formula: %w", err)
	}
	*f = parsed
	return nil
}
