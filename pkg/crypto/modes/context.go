// Package modes turns a block cipher into a byte-oriented encryption facility
// with a mode of operation and a padding scheme, over buffers, streams and
// files.
package modes

import (
	"fmt"
	"io"
	"log/slog"
	"runtime"
	"sync"

	"github.com/Davincible/rijndael/pkg/crypto/cryptoerr"
	"github.com/spf13/afero"
)

// DefaultChunkSize is the stream read size before rounding to whole blocks.
const DefaultChunkSize = 64 * 1024

// BlockCipher is the block primitive a Context drives. EncryptBlock and
// DecryptBlock must be safe to call concurrently once the key is set.
type BlockCipher interface {
	SetKey(key []byte) error
	EncryptBlock(dst, src []byte) error
	DecryptBlock(dst, src []byte) error
	BlockSize() int
	KeySize() int
}

// Config selects the mode, padding and runtime knobs of a Context.
type Config struct {
	Mode    Mode
	Padding Padding
	// IV is required by every mode except ECB and must be one block long.
	IV []byte

	// Workers bounds block fan-out for parallel modes. Zero means GOMAXPROCS.
	Workers int
	// ChunkSize is rounded down to whole blocks. Zero means DefaultChunkSize.
	ChunkSize int

	Logger *slog.Logger
	// Fs backs EncryptFile and DecryptFile. Nil means the OS filesystem.
	Fs afero.Fs
	// Rand supplies ISO10126 filler. Nil means crypto/rand.
	Rand io.Reader
}

// Context binds a keyed block cipher to a mode and padding. Operations on
// one Context are serialized; use one Context per concurrent stream.
type Context struct {
	mu sync.Mutex

	block     BlockCipher
	mode      Mode
	padding   Padding
	iv        []byte
	blockSize int
	workers   int
	chunkSize int
	logger    *slog.Logger
	fs        afero.Fs
	rand      io.Reader
}

// New validates cfg, pushes key into block and returns a ready Context.
func New(block BlockCipher, key []byte, cfg Config) (*Context, error) {
	if block == nil {
		return nil, fmt.Errorf("%w: nil block cipher", cryptoerr.ErrConfiguration)
	}
	if !cfg.Mode.valid() {
		return nil, fmt.Errorf("%w: %v", ErrUnknownMode, cfg.Mode)
	}
	if !cfg.Padding.valid() {
		return nil, fmt.Errorf("%w: %v", ErrUnknownPadding, cfg.Padding)
	}

	blockSize := block.BlockSize()
	if cfg.IV == nil && cfg.Mode.RequiresIV() {
		return nil, fmt.Errorf("%w: %v", ErrMissingIV, cfg.Mode)
	}
	if cfg.IV != nil && len(cfg.IV) != blockSize {
		return nil, fmt.Errorf("%w: got %d bytes, block is %d", ErrInvalidIV, len(cfg.IV), blockSize)
	}

	if err := block.SetKey(key); err != nil {
		return nil, fmt.Errorf("failed to set key: %w", err)
	}

	c := &Context{
		block:     block,
		mode:      cfg.Mode,
		padding:   cfg.Padding,
		blockSize: blockSize,
		workers:   cfg.Workers,
		logger:    cfg.Logger,
		fs:        cfg.Fs,
		rand:      cfg.Rand,
	}
	if cfg.IV != nil {
		c.iv = append([]byte(nil), cfg.IV...)
	}
	if c.workers <= 0 {
		c.workers = runtime.GOMAXPROCS(0)
	}
	chunkSize := cfg.ChunkSize
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	c.chunkSize = max(chunkSize/blockSize, 1) * blockSize
	if c.logger == nil {
		c.logger = slog.Default()
	}
	if c.fs == nil {
		c.fs = afero.NewOsFs()
	}

	return c, nil
}

func (c *Context) Mode() Mode { return c.mode }

func (c *Context) Padding() Padding { return c.padding }

func (c *Context) BlockSize() int { return c.blockSize }

// IV returns a copy of the initialization vector, or nil for ECB without one.
func (c *Context) IV() []byte {
	if c.iv == nil {
		return nil
	}
	return append([]byte(nil), c.iv...)
}

// Encrypt encrypts plaintext in one piece. Block modes pad it first.
func (c *Context) Encrypt(plaintext []byte) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	st := newChainState(c.iv, c.blockSize)
	defer st.wipe()
	return c.encryptChunk(st, plaintext, true)
}

// Decrypt reverses Encrypt. Malformed padding or a ciphertext that is not
// a whole number of blocks in a block mode yields a cryptoerr.ErrIntegrity
// error.
func (c *Context) Decrypt(ciphertext []byte) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	st := newChainState(c.iv, c.blockSize)
	defer st.wipe()
	return c.decryptChunk(st, ciphertext, true)
}

func (c *Context) encryptChunk(st *chainState, chunk []byte, final bool) ([]byte, error) {
	data := chunk
	if final && !c.mode.IsStream() {
		padded, err := c.padding.Pad(chunk, c.blockSize, c.rand)
		if err != nil {
			return nil, err
		}
		data = padded
	}

	out := make([]byte, len(data))
	if err := c.encryptBlocks(st, out, data); err != nil {
		return nil, fmt.Errorf("%v encryption failed: %w", c.mode, err)
	}
	return out, nil
}

func (c *Context) decryptChunk(st *chainState, chunk []byte, final bool) ([]byte, error) {
	out := make([]byte, len(chunk))
	if err := c.decryptBlocks(st, out, chunk); err != nil {
		return nil, fmt.Errorf("%v decryption failed: %w", c.mode, err)
	}
	if final && !c.mode.IsStream() {
		return c.padding.Unpad(out, c.blockSize)
	}
	return out, nil
}
