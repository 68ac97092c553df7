// Package envelope stores ciphertext together with everything except the
// key needed to decrypt it: cipher sizes, modulus, mode, padding, IV and,
// for passphrase keys, the PBKDF2 parameters.
//
// Layout: "RJND" | version (1 byte) | header length (uint32, big-endian) |
// JSON header | ciphertext.
package envelope

import (
	"bufio"
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/Davincible/rijndael/internal/validation"
	"github.com/Davincible/rijndael/pkg/crypto/cryptoerr"
	"github.com/Davincible/rijndael/pkg/crypto/modes"
	"github.com/Davincible/rijndael/pkg/crypto/rijndael"
	"github.com/Davincible/rijndael/pkg/secure"
	"github.com/spf13/afero"
	"golang.org/x/crypto/pbkdf2"
)

const (
	Magic   = "RJND"
	Version = 1

	maxHeaderSize = 64 * 1024
)

var (
	ErrNotEnvelope        = fmt.Errorf("%w: not a rijndael envelope", cryptoerr.ErrIntegrity)
	ErrUnsupportedVersion = fmt.Errorf("%w: unsupported envelope version", cryptoerr.ErrConfiguration)
	ErrWrongKey           = fmt.Errorf("%w: key does not match envelope", cryptoerr.ErrIntegrity)
)

// KDF records how a passphrase was stretched into the master key.
type KDF struct {
	Algorithm  string `json:"algorithm"`
	Salt       []byte `json:"salt"`
	Iterations int    `json:"iterations"`
}

// Header describes one envelope.
type Header struct {
	KeyBits   int    `json:"key_bits"`
	BlockBits int    `json:"block_bits"`
	Modulus   string `json:"modulus"`
	Mode      string `json:"mode"`
	Padding   string `json:"padding"`
	IV        []byte `json:"iv,omitempty"`
	KDF       *KDF   `json:"kdf,omitempty"`
	// KeyCheck lets decryption reject a wrong key before writing output.
	KeyCheck string `json:"key_check"`
}

// NewKDF returns PBKDF2-SHA256 parameters with a fresh random salt.
func NewKDF(saltSize, iterations int) (*KDF, error) {
	salt, err := secure.SecureRandom(saltSize)
	if err != nil {
		return nil, fmt.Errorf("failed to generate salt: %w", err)
	}
	return &KDF{Algorithm: "pbkdf2-sha256", Salt: salt, Iterations: iterations}, nil
}

// DeriveKey stretches passphrase into a keyBits master key.
func (k *KDF) DeriveKey(passphrase []byte, keyBits int) ([]byte, error) {
	if k.Algorithm != "pbkdf2-sha256" {
		return nil, fmt.Errorf("%w: unknown KDF %q", cryptoerr.ErrConfiguration, k.Algorithm)
	}
	if len(passphrase) == 0 {
		return nil, fmt.Errorf("passphrase cannot be empty")
	}
	return pbkdf2.Key(passphrase, k.Salt, k.Iterations, keyBits/8, sha256.New), nil
}

// KeyCheck is a short value derived from key that reveals nothing useful
// about it but changes with it.
func KeyCheck(key []byte) string {
	h := sha256.New()
	h.Write([]byte("rijndael envelope key check"))
	h.Write(key)
	return hex.EncodeToString(h.Sum(nil)[:8])
}

// Cipher builds the block cipher the header describes.
func (h *Header) Cipher() (*rijndael.Cipher, error) {
	if err := validation.ValidateBits("key", h.KeyBits); err != nil {
		return nil, fmt.Errorf("%w: %v", cryptoerr.ErrConfiguration, err)
	}
	if err := validation.ValidateBits("block", h.BlockBits); err != nil {
		return nil, fmt.Errorf("%w: %v", cryptoerr.ErrConfiguration, err)
	}
	modulus, err := validation.ParseModulus(h.Modulus)
	if err != nil {
		return nil, err
	}
	return rijndael.NewWithModulus(h.KeyBits/8, h.BlockBits/8, modulus)
}

// Apply fills the mode, padding and IV of cfg from the header.
func (h *Header) Apply(cfg *modes.Config) error {
	mode, err := modes.ParseMode(h.Mode)
	if err != nil {
		return err
	}
	padding, err := modes.ParsePadding(h.Padding)
	if err != nil {
		return err
	}
	cfg.Mode = mode
	cfg.Padding = padding
	cfg.IV = h.IV
	return nil
}

// WriteHeader writes the magic, version and header.
func WriteHeader(w io.Writer, h *Header) error {
	body, err := json.Marshal(h)
	if err != nil {
		return fmt.Errorf("failed to marshal header: %w", err)
	}

	prefix := make([]byte, 0, len(Magic)+5)
	prefix = append(prefix, Magic...)
	prefix = append(prefix, Version)
	prefix = binary.BigEndian.AppendUint32(prefix, uint32(len(body)))

	if _, err := w.Write(prefix); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	if _, err := w.Write(body); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	return nil
}

// ReadHeader reads what WriteHeader wrote and leaves r at the ciphertext.
func ReadHeader(r io.Reader) (*Header, error) {
	prefix := make([]byte, len(Magic)+5)
	if _, err := io.ReadFull(r, prefix); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotEnvelope, err)
	}
	if string(prefix[:len(Magic)]) != Magic {
		return nil, ErrNotEnvelope
	}
	if v := prefix[len(Magic)]; v != Version {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedVersion, v)
	}

	size := binary.BigEndian.Uint32(prefix[len(Magic)+1:])
	if size == 0 || size > maxHeaderSize {
		return nil, fmt.Errorf("%w: header size %d", ErrNotEnvelope, size)
	}

	body := make([]byte, size)
	if _, err := io.ReadFull(r, body); err != nil {
		return nil, fmt.Errorf("%w: truncated header", ErrNotEnvelope)
	}

	var h Header
	if err := json.Unmarshal(body, &h); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotEnvelope, err)
	}
	return &h, nil
}

// Sealer encrypts and decrypts envelope files.
type Sealer struct {
	Fs   afero.Fs
	Perm os.FileMode

	// Workers, ChunkSize and Logger are passed to the cipher context.
	Workers   int
	ChunkSize int
	Logger    *slog.Logger
}

func (s *Sealer) fs() afero.Fs {
	if s.Fs == nil {
		return afero.NewOsFs()
	}
	return s.Fs
}

func (s *Sealer) perm() os.FileMode {
	if s.Perm == 0 {
		return 0o600
	}
	return s.Perm
}

func (s *Sealer) modesConfig() modes.Config {
	return modes.Config{
		Workers:   s.Workers,
		ChunkSize: s.ChunkSize,
		Logger:    s.Logger,
	}
}

// Seal encrypts src into dst under key as h describes. h.KeyCheck is set
// from key.
func (s *Sealer) Seal(dst io.Writer, src io.Reader, key []byte, h *Header) error {
	block, err := h.Cipher()
	if err != nil {
		return err
	}
	cfg := s.modesConfig()
	if err := h.Apply(&cfg); err != nil {
		return err
	}
	ctx, err := modes.New(block, key, cfg)
	if err != nil {
		return err
	}

	h.KeyCheck = KeyCheck(key)
	bw := bufio.NewWriter(dst)
	if err := WriteHeader(bw, h); err != nil {
		return err
	}
	if err := ctx.EncryptStream(bw, src); err != nil {
		return err
	}
	return bw.Flush()
}

// Open reads the header from src, asks keyFor for the matching key and
// decrypts the rest into dst. The slice keyFor returns is not modified.
func (s *Sealer) Open(dst io.Writer, src io.Reader, keyFor func(*Header) ([]byte, error)) (*Header, error) {
	br := bufio.NewReader(src)
	h, err := ReadHeader(br)
	if err != nil {
		return nil, err
	}

	callerKey, err := keyFor(h)
	if err != nil {
		return nil, err
	}
	key := append([]byte(nil), callerKey...)
	defer secure.Zero(key)

	if h.KeyCheck != "" && !secure.ConstantTimeCompare([]byte(h.KeyCheck), []byte(KeyCheck(key))) {
		return nil, ErrWrongKey
	}

	block, err := h.Cipher()
	if err != nil {
		return nil, err
	}
	cfg := s.modesConfig()
	if err := h.Apply(&cfg); err != nil {
		return nil, err
	}
	ctx, err := modes.New(block, key, cfg)
	if err != nil {
		return nil, err
	}

	if err := ctx.DecryptStream(dst, br); err != nil {
		return nil, err
	}
	return h, nil
}

// SealFile is Seal over two paths on the Sealer's filesystem.
func (s *Sealer) SealFile(inPath, outPath string, key []byte, h *Header) error {
	return s.withFiles(inPath, outPath, func(out io.Writer, in io.Reader) error {
		return s.Seal(out, in, key, h)
	})
}

// OpenFile is Open over two paths on the Sealer's filesystem.
func (s *Sealer) OpenFile(inPath, outPath string, keyFor func(*Header) ([]byte, error)) (*Header, error) {
	var h *Header
	err := s.withFiles(inPath, outPath, func(out io.Writer, in io.Reader) error {
		var err error
		h, err = s.Open(out, in, keyFor)
		return err
	})
	return h, err
}

func (s *Sealer) withFiles(inPath, outPath string, fn func(io.Writer, io.Reader) error) error {
	if filepath.Clean(inPath) == filepath.Clean(outPath) {
		return fmt.Errorf("%w: input and output are the same file", cryptoerr.ErrConfiguration)
	}
	fs := s.fs()

	in, err := fs.Open(inPath)
	if err != nil {
		return fmt.Errorf("failed to open input file: %w", err)
	}
	defer in.Close()

	out, err := fs.OpenFile(outPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, s.perm())
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}

	if err := fn(out, in); err != nil {
		out.Close()
		_ = fs.Remove(outPath)
		return err
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("failed to close output file: %w", err)
	}
	return nil
}
