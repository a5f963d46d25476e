package usbtmc

import (
	"fmt"
	"strconv"
)

// MakeDefiniteLengthBlock wraps data in an SCPI definite length binary
// block: a '#' marker, one digit giving the length of the size field,
// the decimal payload size, then the payload itself.
func MakeDefiniteLengthBlock(data []byte) []byte {
	sizeDigits := strconv.Itoa(len(data))

	block := make([]byte, 0, 2+len(sizeDigits)+len(data))
	block = append(block, '#')
	block = append(block, byte('0'+len(sizeDigits)))
	block = append(block, sizeDigits...)
	block = append(block, data...)
	return block
}

// ParseDefiniteLengthBlock extracts the payload of an SCPI definite
// length binary block. The block must span data exactly; trailing
// bytes are an error.
func ParseDefiniteLengthBlock(data []byte) ([]byte, error) {
	if len(data) < 2 || data[0] != '#' {
		return nil, fmt.Errorf("not a definite length binary block")
	}
	if data[1] < '1' || data[1] > '9' {
		return nil, fmt.Errorf("definite length binary block has invalid size digit count %q", data[1])
	}
	numSizeDigits := int(data[1] - '0')
	if len(data) < 2+numSizeDigits {
		return nil, fmt.Errorf("definite length binary block is truncated")
	}

	size, err := strconv.Atoi(string(data[2 : 2+numSizeDigits]))
	if err != nil {
		return nil, fmt.Errorf("definite length binary block has a non-numeric size field: %w", err)
	}
	if len(data) != 2+numSizeDigits+size {
		return nil, fmt.Errorf("definite length binary block is %d bytes, header implies %d", len(data), 2+numSizeDigits+size)
	}
	return data[2+numSizeDigits:], nil
}
