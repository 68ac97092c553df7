package modes

import (
	"fmt"

	"github.com/Davincible/rijndael/pkg/crypto/cryptoerr"
)

var (
	ErrUnknownMode      = fmt.Errorf("%w: unknown cipher mode", cryptoerr.ErrConfiguration)
	ErrUnknownPadding   = fmt.Errorf("%w: unknown padding scheme", cryptoerr.ErrConfiguration)
	ErrMissingIV        = fmt.Errorf("%w: mode requires an initialization vector", cryptoerr.ErrConfiguration)
	ErrInvalidIV        = fmt.Errorf("%w: initialization vector must be one block long", cryptoerr.ErrInvalidSize)
	ErrInvalidPadding   = fmt.Errorf("%w: invalid padding", cryptoerr.ErrIntegrity)
	ErrCiphertextLength = fmt.Errorf("%w: ciphertext is not a whole number of blocks", cryptoerr.ErrIntegrity)
)
