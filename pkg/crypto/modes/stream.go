package modes

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/Davincible/rijndael/pkg/crypto/cryptoerr"
)

// EncryptStream reads src to EOF and writes the ciphertext to dst, one
// chunk at a time. The final chunk is found by reading one chunk ahead, so
// inputs that are an exact multiple of the chunk size are padded correctly.
func (c *Context) EncryptStream(dst io.Writer, src io.Reader) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	st := newChainState(c.iv, c.blockSize)
	defer st.wipe()
	return c.pipeline(dst, src, "encrypt", func(chunk []byte, final bool) ([]byte, error) {
		return c.encryptChunk(st, chunk, final)
	})
}

// DecryptStream reverses EncryptStream.
func (c *Context) DecryptStream(dst io.Writer, src io.Reader) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	st := newChainState(c.iv, c.blockSize)
	defer st.wipe()
	return c.pipeline(dst, src, "decrypt", func(chunk []byte, final bool) ([]byte, error) {
		return c.decryptChunk(st, chunk, final)
	})
}

// EncryptFile encrypts the file at inPath into outPath on the configured
// filesystem. A partially written output is removed on failure.
func (c *Context) EncryptFile(inPath, outPath string) error {
	return c.transformFile(inPath, outPath, c.EncryptStream)
}

// DecryptFile decrypts the file at inPath into outPath.
func (c *Context) DecryptFile(inPath, outPath string) error {
	return c.transformFile(inPath, outPath, c.DecryptStream)
}

func (c *Context) transformFile(inPath, outPath string, op func(io.Writer, io.Reader) error) error {
	if filepath.Clean(inPath) == filepath.Clean(outPath) {
		return fmt.Errorf("%w: input and output are the same file", cryptoerr.ErrConfiguration)
	}

	in, err := c.fs.Open(inPath)
	if err != nil {
		return fmt.Errorf("failed to open input file: %w", err)
	}
	defer in.Close()

	out, err := c.fs.OpenFile(outPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}

	if err := op(out, in); err != nil {
		out.Close()
		_ = c.fs.Remove(outPath)
		return err
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("failed to close output file: %w", err)
	}
	return nil
}

func (c *Context) pipeline(dst io.Writer, src io.Reader, op string, process func([]byte, bool) ([]byte, error)) error {
	cur := make([]byte, c.chunkSize)
	next := make([]byte, c.chunkSize)
	var read, written int64

	n, more, err := readChunk(src, cur)
	if err != nil {
		return err
	}

	for {
		final := !more
		var m int
		if more {
			m, more, err = readChunk(src, next)
			if err != nil {
				return err
			}
			final = m == 0 && !more
		}

		out, err := process(cur[:n], final)
		if err != nil {
			return err
		}
		if _, err := dst.Write(out); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
		read += int64(n)
		written += int64(len(out))

		c.logger.Debug("processed chunk",
			"op", op,
			"mode", c.mode.String(),
			"in", n,
			"out", len(out),
			"final", final)

		if final {
			break
		}
		cur, next = next, cur
		n = m
	}

	c.logger.Info("stream complete",
		"op", op,
		"mode", c.mode.String(),
		"padding", c.padding.String(),
		"bytes_in", read,
		"bytes_out", written)
	return nil
}

// readChunk fills buf from r. more is false once r is known to be exhausted.
func readChunk(r io.Reader, buf []byte) (n int, more bool, err error) {
	n, err = io.ReadFull(r, buf)
	switch {
	case err == nil:
		return n, true, nil
	case errors.Is(err, io.EOF), errors.Is(err, io.ErrUnexpectedEOF):
		return n, false, nil
	default:
		return n, false, fmt.Errorf("failed to read input: %w", err)
	}
}
