package modes

import (
	"crypto/rand"
	"fmt"
	"io"
	"strings"
)

// Padding is a block padding scheme. It only applies to ECB, CBC and PCBC.
type Padding int

const (
	Zeros Padding = iota
	PKCS7
	ANSIX923
	ISO10126
)

var paddingNames = map[Padding]string{
	Zeros:    "Zeros",
	PKCS7:    "PKCS7",
	ANSIX923: "ANSIX923",
	ISO10126: "ISO10126",
}

// Paddings lists every supported padding scheme in declaration order.
func Paddings() []Padding {
	return []Padding{Zeros, PKCS7, ANSIX923, ISO10126}
}

func (p Padding) String() string {
	if name, ok := paddingNames[p]; ok {
		return name
	}
	return fmt.Sprintf("Padding(%d)", int(p))
}

func (p Padding) valid() bool {
	_, ok := paddingNames[p]
	return ok
}

// ParsePadding resolves a padding name, ignoring case. ANSIX923 is also
// accepted as "ansi-x9.23" or "x923".
func ParsePadding(s string) (Padding, error) {
	for _, p := range Paddings() {
		if strings.EqualFold(s, p.String()) {
			return p, nil
		}
	}
	switch strings.ToLower(s) {
	case "ansi-x9.23", "ansix9.23", "x923":
		return ANSIX923, nil
	case "iso-10126":
		return ISO10126, nil
	case "zero", "none":
		return Zeros, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownPadding, s)
}

// Pad returns data extended to a multiple of blockSize. Zeros adds nothing
// to aligned input; the other schemes always add between 1 and blockSize
// bytes. ISO10126 filler is read from rnd, or crypto/rand when rnd is nil.
func (p Padding) Pad(data []byte, blockSize int, rnd io.Reader) ([]byte, error) {
	n := blockSize - len(data)%blockSize
	if p == Zeros && n == blockSize {
		n = 0
	}

	out := make([]byte, len(data)+n)
	copy(out, data)
	if n == 0 {
		return out, nil
	}
	tail := out[len(data):]

	switch p {
	case Zeros:
	case PKCS7:
		for i := range tail {
			tail[i] = byte(n)
		}
	case ANSIX923:
		tail[n-1] = byte(n)
	case ISO10126:
		if rnd == nil {
			rnd = rand.Reader
		}
		if _, err := io.ReadFull(rnd, tail[:n-1]); err != nil {
			return nil, fmt.Errorf("failed to generate padding: %w", err)
		}
		tail[n-1] = byte(n)
	default:
		return nil, fmt.Errorf("%w: %v", ErrUnknownPadding, p)
	}

	return out, nil
}

// Unpad strips padding added by Pad. Zeros padding cannot be told apart
// from data, so it is returned unchanged.
func (p Padding) Unpad(data []byte, blockSize int) ([]byte, error) {
	if !p.valid() {
		return nil, fmt.Errorf("%w: %v", ErrUnknownPadding, p)
	}
	if p == Zeros {
		return data, nil
	}
	if len(data) == 0 || len(data)%blockSize != 0 {
		return nil, fmt.Errorf("%w: padded length %d", ErrInvalidPadding, len(data))
	}

	n := int(data[len(data)-1])
	if n == 0 || n > blockSize {
		return nil, fmt.Errorf("%w: length byte %d", ErrInvalidPadding, n)
	}
	tail := data[len(data)-n : len(data)-1]

	switch p {
	case PKCS7:
		for _, b := range tail {
			if int(b) != n {
				return nil, fmt.Errorf("%w: PKCS7 fill byte mismatch", ErrInvalidPadding)
			}
		}
	case ANSIX923:
		for _, b := range tail {
			if b != 0 {
				return nil, fmt.Errorf("%w: ANSI X9.23 fill byte not zero", ErrInvalidPadding)
			}
		}
	}

	return data[:len(data)-n], nil
}
