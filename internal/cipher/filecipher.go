package cipher

import (
	"crypto/rand"
	"io"

	"golang.org/x/crypto/nacl/secretbox"

	"github.com/rescale-labs/safebox/internal/errs"
	"github.com/rescale-labs/safebox/internal/util/buffers"
)

// sealedPool and ciphertextPool reuse the per-block scratch buffers
// that would otherwise be allocated fresh on every block of every
// transfer: secretbox's sealed output on the encrypt side, and the
// raw ciphertext read buffer on the decrypt side.
var (
	sealedPool     = buffers.NewPool(encryptedBlockSize)
	ciphertextPool = buffers.NewPool(encryptedBlockSize)
	plaintextPool  = buffers.NewPool(BlockSize)
)

// FileCipher streams the file-body format: an 8-byte magic header, a
// 24-byte random nonce, then a sequence of XSalsa20-Poly1305-sealed
// 64 KiB plaintext blocks (the last may be short). The nonce is
// incremented, 192-bit little-endian add-one, after every block.
type FileCipher struct {
	dataKey [32]byte
}

func NewFileCipher(keys *Keys) *FileCipher {
	var fc FileCipher
	copy(fc.dataKey[:], keys.DataKey)
	return &fc
}

func blocks(n int64) int64 { return n / BlockSize }

// EncryptedSize computes the ciphertext length for n plaintext bytes:
// 32 (header) + full-blocks*65552 + (residue>0 ? 16+residue : 0).
func EncryptedSize(n int64) int64 {
	full := blocks(n)
	residue := n % BlockSize
	size := int64(headerSize) + full*int64(encryptedBlockSize)
	if residue > 0 {
		size += int64(blockTagSize) + residue
	}
	return size
}

// DecryptedSize inverts EncryptedSize, failing if encSize could not have
// been produced by EncryptedSize for any n ≥ 0.
func DecryptedSize(encSize int64) (int64, error) {
	if encSize < int64(headerSize) {
		return 0, errs.ErrEncryptedFileTooShort
	}
	remaining := encSize - int64(headerSize)
	full := remaining / int64(encryptedBlockSize)
	residueEnc := remaining % int64(encryptedBlockSize)
	if residueEnc == 0 {
		return full * BlockSize, nil
	}
	if residueEnc <= int64(blockTagSize) {
		return 0, errs.ErrEncryptedFileBadHeader
	}
	return full*BlockSize + (residueEnc - int64(blockTagSize)), nil
}

func incrementNonce(nonce *[24]byte) {
	for i := 0; i < len(nonce); i++ {
		nonce[i]++
		if nonce[i] != 0 {
			break
		}
	}
}

// EncryptWriter wraps dst, encrypting plaintext written to it into the
// stream format. Callers must call Close to flush the final block.
type EncryptWriter struct {
	dst         io.Writer
	fc          *FileCipher
	nonce       [24]byte
	wroteHeader bool
	buf         []byte // buffered plaintext, < BlockSize
	closed      bool
}

func (fc *FileCipher) NewEncryptWriter(dst io.Writer) (*EncryptWriter, error) {
	var nonce [24]byte
	if _, err := rand.Read(nonce[:]); err != nil {
		return nil, errs.Wrap(errs.KindCrypto, "nonce_generation_failed", err)
	}
	return &EncryptWriter{dst: dst, fc: fc, nonce: nonce}, nil
}

func (w *EncryptWriter) writeHeader() error {
	if w.wroteHeader {
		return nil
	}
	if _, err := w.dst.Write([]byte(FileMagic)); err != nil {
		return errs.Wrap(errs.KindTransport, "io_error", err)
	}
	if _, err := w.dst.Write(w.nonce[:]); err != nil {
		return errs.Wrap(errs.KindTransport, "io_error", err)
	}
	w.wroteHeader = true
	return nil
}

func (w *EncryptWriter) sealBlock(plain []byte) error {
	if err := w.writeHeader(); err != nil {
		return err
	}
	sealedBuf := sealedPool.Get()
	defer sealedPool.Put(sealedBuf)
	sealed := secretbox.Seal((*sealedBuf)[:0], plain, &w.nonce, &w.fc.dataKey)
	if _, err := w.dst.Write(sealed); err != nil {
		return errs.Wrap(errs.KindTransport, "io_error", err)
	}
	incrementNonce(&w.nonce)
	return nil
}

func (w *EncryptWriter) Write(p []byte) (int, error) {
	written := 0
	w.buf = append(w.buf, p...)
	for len(w.buf) >= BlockSize {
		if err := w.sealBlock(w.buf[:BlockSize]); err != nil {
			return written, err
		}
		written += BlockSize
		w.buf = w.buf[BlockSize:]
	}
	return len(p), nil
}

// Close flushes any buffered residue as the final (possibly short) block.
// A zero-length residue block is never emitted.
func (w *EncryptWriter) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true
	if err := w.writeHeader(); err != nil {
		return err
	}
	if len(w.buf) > 0 {
		if err := w.sealBlock(w.buf); err != nil {
			return err
		}
		w.buf = nil
	}
	return nil
}

// DecryptReader wraps src, a raw encrypted stream, decrypting it into
// plaintext as it is read. It is a polling state machine composing with
// whatever blocking io.Reader is supplied: ReadingMagic -> ReadingNonce ->
// ReadingCiphertext -> WritingPlaintext.
type DecryptReader struct {
	src   io.Reader
	fc    *FileCipher
	nonce [24]byte

	state    decryptState
	plainBuf []byte // decrypted, not-yet-returned plaintext
}

type decryptState int

const (
	stateReadingMagic decryptState = iota
	stateReadingNonce
	stateReadingCiphertext
	stateDone
)

func (fc *FileCipher) NewDecryptReader(src io.Reader) *DecryptReader {
	return &DecryptReader{src: src, fc: fc, state: stateReadingMagic}
}

func (r *DecryptReader) fill(n int) ([]byte, error) {
	buf := make([]byte, n)
	read, err := io.ReadFull(r.src, buf)
	if err != nil {
		if err == io.ErrUnexpectedEOF || err == io.EOF {
			return buf[:read], errs.ErrEncryptedFileTooShort
		}
		return buf[:read], errs.Wrap(errs.KindTransport, "io_error", err)
	}
	return buf, nil
}

func (r *DecryptReader) advance() error {
	switch r.state {
	case stateReadingMagic:
		magic, err := r.fill(len(FileMagic))
		if err != nil {
			return err
		}
		if string(magic) != FileMagic {
			return errs.ErrBadMagic
		}
		r.state = stateReadingNonce
		return nil

	case stateReadingNonce:
		nonce, err := r.fill(FileNonceSize)
		if err != nil {
			return err
		}
		copy(r.nonce[:], nonce)
		r.state = stateReadingCiphertext
		return nil

	case stateReadingCiphertext:
		chunkBuf := ciphertextPool.Get()
		defer ciphertextPool.Put(chunkBuf)
		chunk := (*chunkBuf)[:encryptedBlockSize]
		n, err := io.ReadFull(r.src, chunk)
		if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
			return errs.Wrap(errs.KindTransport, "io_error", err)
		}
		if n == 0 {
			r.state = stateDone
			return io.EOF
		}
		if n <= blockTagSize {
			return errs.ErrEncryptedFileBadHeader
		}
		chunk = chunk[:n]
		plainBuf := plaintextPool.Get()
		defer plaintextPool.Put(plainBuf)
		plain, ok := secretbox.Open((*plainBuf)[:0], chunk, &r.nonce, &r.fc.dataKey)
		if !ok {
			return errs.ErrDecryption
		}
		incrementNonce(&r.nonce)
		r.plainBuf = append(r.plainBuf, plain...)
		if n < encryptedBlockSize {
			r.state = stateDone
		}
		return nil
	}
	return io.EOF
}

func (r *DecryptReader) Read(p []byte) (int, error) {
	for len(r.plainBuf) == 0 && r.state != stateDone {
		if err := r.advance(); err != nil {
			if err == io.EOF {
				break
			}
			return 0, err
		}
	}
	if len(r.plainBuf) == 0 {
		return 0, io.EOF
	}
	n := copy(p, r.plainBuf)
	r.plainBuf = r.plainBuf[n:]
	return n, nil
}
