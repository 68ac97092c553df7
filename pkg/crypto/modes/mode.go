package modes

import (
	"fmt"
	"strings"

	"github.com/Davincible/rijndael/pkg/secure"
)

// Mode is a block cipher mode of operation.
type Mode int

const (
	ECB Mode = iota
	CBC
	PCBC
	CFB
	OFB
	CTR
	RandomDelta
)

var modeNames = map[Mode]string{
	ECB:         "ECB",
	CBC:         "CBC",
	PCBC:        "PCBC",
	CFB:         "CFB",
	OFB:         "OFB",
	CTR:         "CTR",
	RandomDelta: "RandomDelta",
}

// Modes lists every supported mode in declaration order.
func Modes() []Mode {
	return []Mode{ECB, CBC, PCBC, CFB, OFB, CTR, RandomDelta}
}

func (m Mode) String() string {
	if name, ok := modeNames[m]; ok {
		return name
	}
	return fmt.Sprintf("Mode(%d)", int(m))
}

func (m Mode) valid() bool {
	_, ok := modeNames[m]
	return ok
}

// IsStream reports whether the mode turns the block cipher into a keystream
// or otherwise preserves length. Stream modes ignore padding.
func (m Mode) IsStream() bool {
	switch m {
	case CFB, OFB, CTR, RandomDelta:
		return true
	default:
		return false
	}
}

// RequiresIV reports whether the mode needs an initialization vector.
func (m Mode) RequiresIV() bool {
	return m.valid() && m != ECB
}

// ParseMode resolves a mode name, ignoring case.
func ParseMode(s string) (Mode, error) {
	for _, m := range Modes() {
		if strings.EqualFold(s, m.String()) {
			return m, nil
		}
	}
	if strings.EqualFold(s, "random-delta") {
		return RandomDelta, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownMode, s)
}

// GenerateIV returns a random initialization vector of blockSize bytes.
func GenerateIV(blockSize int) ([]byte, error) {
	iv, err := secure.SecureRandom(blockSize)
	if err != nil {
		return nil, fmt.Errorf("failed to generate IV: %w", err)
	}
	return iv, nil
}
