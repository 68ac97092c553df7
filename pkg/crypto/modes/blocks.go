package modes

import "fmt"

// encryptBlocks encrypts src into dst under c.mode, advancing st. Only the
// final chunk of a stream mode may end in a partial block.
func (c *Context) encryptBlocks(st *chainState, dst, src []byte) error {
	bs := c.blockSize
	blocks := (len(src) + bs - 1) / bs
	defer func() { st.index += uint64(blocks) }()

	switch c.mode {
	case ECB:
		return c.parallel(blocks, func(lo, hi int) error {
			for i := lo; i < hi; i++ {
				if err := c.block.EncryptBlock(dst[i*bs:(i+1)*bs], src[i*bs:(i+1)*bs]); err != nil {
					return err
				}
			}
			return nil
		})

	case CBC:
		for i := 0; i < blocks; i++ {
			out := dst[i*bs : (i+1)*bs]
			xorBytes(out, src[i*bs:(i+1)*bs], st.feedback)
			if err := c.block.EncryptBlock(out, out); err != nil {
				return err
			}
			copy(st.feedback, out)
		}
		return nil

	case PCBC:
		for i := 0; i < blocks; i++ {
			in, out := src[i*bs:(i+1)*bs], dst[i*bs:(i+1)*bs]
			xorBytes(out, in, st.prevPlain)
			xorBytes(out, out, st.prevCipher)
			if err := c.block.EncryptBlock(out, out); err != nil {
				return err
			}
			copy(st.prevPlain, in)
			copy(st.prevCipher, out)
		}
		return nil

	case CFB:
		keystream := make([]byte, bs)
		for off := 0; off < len(src); off += bs {
			end := min(off+bs, len(src))
			if err := c.block.EncryptBlock(keystream, st.feedback); err != nil {
				return err
			}
			xorBytes(dst[off:end], src[off:end], keystream)
			if end-off == bs {
				copy(st.feedback, dst[off:end])
			}
		}
		return nil

	case OFB:
		return c.ofb(st, dst, src)

	case CTR:
		return c.ctr(st, dst, src)

	case RandomDelta:
		base := st.index
		return c.parallel(blocks, func(lo, hi int) error {
			delta := make([]byte, bs)
			tmp := make([]byte, bs)
			for i := lo; i < hi; i++ {
				deltaBlock(delta, st.iv, base+uint64(i))
				off, end := i*bs, min((i+1)*bs, len(src))
				if end-off < bs {
					if err := c.block.EncryptBlock(tmp, delta); err != nil {
						return err
					}
					xorBytes(dst[off:end], src[off:end], tmp)
					continue
				}
				xorBytes(tmp, src[off:end], delta)
				if err := c.block.EncryptBlock(dst[off:end], tmp); err != nil {
					return err
				}
			}
			return nil
		})
	}

	return fmt.Errorf("%w: %v", ErrUnknownMode, c.mode)
}

// decryptBlocks mirrors encryptBlocks.
func (c *Context) decryptBlocks(st *chainState, dst, src []byte) error {
	bs := c.blockSize
	if !c.mode.IsStream() && len(src)%bs != 0 {
		return fmt.Errorf("%w: %d bytes with %d-byte blocks", ErrCiphertextLength, len(src), bs)
	}
	blocks := (len(src) + bs - 1) / bs
	defer func() { st.index += uint64(blocks) }()

	switch c.mode {
	case ECB:
		return c.parallel(blocks, func(lo, hi int) error {
			for i := lo; i < hi; i++ {
				if err := c.block.DecryptBlock(dst[i*bs:(i+1)*bs], src[i*bs:(i+1)*bs]); err != nil {
					return err
				}
			}
			return nil
		})

	case CBC:
		if blocks == 0 {
			return nil
		}
		err := c.parallel(blocks, func(lo, hi int) error {
			for i := lo; i < hi; i++ {
				out := dst[i*bs : (i+1)*bs]
				if err := c.block.DecryptBlock(out, src[i*bs:(i+1)*bs]); err != nil {
					return err
				}
				prev := st.feedback
				if i > 0 {
					prev = src[(i-1)*bs : i*bs]
				}
				xorBytes(out, out, prev)
			}
			return nil
		})
		if err != nil {
			return err
		}
		copy(st.feedback, src[(blocks-1)*bs:])
		return nil

	case PCBC:
		for i := 0; i < blocks; i++ {
			in, out := src[i*bs:(i+1)*bs], dst[i*bs:(i+1)*bs]
			if err := c.block.DecryptBlock(out, in); err != nil {
				return err
			}
			xorBytes(out, out, st.prevPlain)
			xorBytes(out, out, st.prevCipher)
			copy(st.prevPlain, out)
			copy(st.prevCipher, in)
		}
		return nil

	case CFB:
		keystream := make([]byte, bs)
		for off := 0; off < len(src); off += bs {
			end := min(off+bs, len(src))
			if err := c.block.EncryptBlock(keystream, st.feedback); err != nil {
				return err
			}
			if end-off == bs {
				copy(st.feedback, src[off:end])
			}
			xorBytes(dst[off:end], src[off:end], keystream)
		}
		return nil

	case OFB:
		return c.ofb(st, dst, src)

	case CTR:
		return c.ctr(st, dst, src)

	case RandomDelta:
		base := st.index
		return c.parallel(blocks, func(lo, hi int) error {
			delta := make([]byte, bs)
			tmp := make([]byte, bs)
			for i := lo; i < hi; i++ {
				deltaBlock(delta, st.iv, base+uint64(i))
				off, end := i*bs, min((i+1)*bs, len(src))
				if end-off < bs {
					if err := c.block.EncryptBlock(tmp, delta); err != nil {
						return err
					}
					xorBytes(dst[off:end], src[off:end], tmp)
					continue
				}
				if err := c.block.DecryptBlock(tmp, src[off:end]); err != nil {
					return err
				}
				xorBytes(dst[off:end], tmp, delta)
			}
			return nil
		})
	}

	return fmt.Errorf("%w: %v", ErrUnknownMode, c.mode)
}

// ofb is the same function in both directions.
func (c *Context) ofb(st *chainState, dst, src []byte) error {
	for off := 0; off < len(src); off += c.blockSize {
		end := min(off+c.blockSize, len(src))
		if err := c.block.EncryptBlock(st.feedback, st.feedback); err != nil {
			return err
		}
		xorBytes(dst[off:end], src[off:end], st.feedback)
	}
	return nil
}

// ctr is the same function in both directions.
func (c *Context) ctr(st *chainState, dst, src []byte) error {
	bs := c.blockSize
	base := st.index
	blocks := (len(src) + bs - 1) / bs
	return c.parallel(blocks, func(lo, hi int) error {
		counter := make([]byte, bs)
		keystream := make([]byte, bs)
		for i := lo; i < hi; i++ {
			counterBlock(counter, st.iv, base+uint64(i))
			if err := c.block.EncryptBlock(keystream, counter); err != nil {
				return err
			}
			off, end := i*bs, min((i+1)*bs, len(src))
			xorBytes(dst[off:end], src[off:end], keystream)
		}
		return nil
	})
}
