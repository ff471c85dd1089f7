package filestore

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	apperrors "github.com/jrsteele09/go-rental-session/internal/errors"
	"github.com/jrsteele09/go-rental-session/session"
	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/chacha20poly1305"
	"gopkg.in/yaml.v3"
)

const (
	documentVersion = 1
	cipherName      = "xchacha20poly1305+argon2id"
	saltLength      = 16
)

// Argon2id parameters for deriving the file key from the passphrase
const (
	argonTime    = 1
	argonMemory  = 19 * 1024
	argonThreads = 1
)

var additionalData = []byte("rental-session/v1")

var _ session.Store = (*FileStore)(nil)

// FileStore keeps session values in a YAML file. With a passphrase the
// values are sealed with XChaCha20-Poly1305 under an Argon2id-derived key.
type FileStore struct {
	path       string
	passphrase string
	lock       sync.Mutex
}

type Option func(*FileStore)

// WithPassphrase enables encryption at rest
func WithPassphrase(passphrase string) Option {
	return func(f *FileStore) {
		f.passphrase = passphrase
	}
}

func New(path string, options ...Option) *FileStore {
	f := &FileStore{path: path}
	for _, opt := range options {
		opt(f)
	}
	return f
}

type document struct {
	Version int               `yaml:"version"`
	Session map[string]string `yaml:"session,omitempty"`
	Sealed  *sealed           `yaml:"sealed,omitempty"`
}

type sealed struct {
	Cipher string `yaml:"cipher"`
	Salt   string `yaml:"salt"`
	Nonce  string `yaml:"nonce"`
	Data   string `yaml:"data"`
}

func (f *FileStore) Get(_ context.Context) (session.Values, error) {
	f.lock.Lock()
	defer f.lock.Unlock()

	raw, err := os.ReadFile(f.path)
	if errors.Is(err, os.ErrNotExist) {
		return session.Values{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("[filestore Get] read %s: %w", f.path, err)
	}

	var doc document
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("[filestore Get] parse %s: %w", f.path, err)
	}

	entries := doc.Session
	if doc.Sealed != nil {
		if entries, err = f.open(doc.Sealed); err != nil {
			return nil, err
		}
	}

	values := session.Values{}
	for _, k := range session.Keys() {
		if v, ok := entries[string(k)]; ok {
			values[k] = v
		}
	}
	return values, nil
}

func (f *FileStore) Set(_ context.Context, values session.Values) error {
	f.lock.Lock()
	defer f.lock.Unlock()

	entries := make(map[string]string, len(values))
	for _, k := range session.Keys() {
		if v, ok := values[k]; ok {
			entries[string(k)] = v
		}
	}

	doc := document{Version: documentVersion}
	if f.passphrase == "" {
		doc.Session = entries
	} else {
		s, err := f.seal(entries)
		if err != nil {
			return err
		}
		doc.Sealed = s
	}

	raw, err := yaml.Marshal(&doc)
	if err != nil {
		return fmt.Errorf("[filestore Set] encode: %w", err)
	}
	return f.writeAtomic(raw)
}

func (f *FileStore) Clear(_ context.Context) error {
	f.lock.Lock()
	defer f.lock.Unlock()

	if err := os.Remove(f.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("[filestore Clear] remove %s: %w", f.path, err)
	}
	return nil
}

func (f *FileStore) writeAtomic(raw []byte) error {
	dir := filepath.Dir(f.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("[filestore] create %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, ".session-*")
	if err != nil {
		return fmt.Errorf("[filestore] temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		return fmt.Errorf("[filestore] write: %w", err)
	}
	if err := tmp.Chmod(0o600); err != nil {
		tmp.Close()
		return fmt.Errorf("[filestore] chmod: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("[filestore] close: %w", err)
	}
	if err := os.Rename(tmp.Name(), f.path); err != nil {
		return fmt.Errorf("[filestore] rename: %w", err)
	}
	return nil
}

func (f *FileStore) seal(entries map[string]string) (*sealed, error) {
	plain, err := yaml.Marshal(entries)
	if err != nil {
		return nil, fmt.Errorf("[filestore seal] encode: %w", err)
	}

	salt := make([]byte, saltLength)
	if _, err := rand.Read(salt); err != nil {
		return nil, fmt.Errorf("[filestore seal] salt: %w", err)
	}
	aead, err := chacha20poly1305.NewX(deriveKey(f.passphrase, salt))
	if err != nil {
		return nil, fmt.Errorf("[filestore seal] cipher: %w", err)
	}
	nonce := make([]byte, aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return nil, fmt.Errorf("[filestore seal] nonce: %w", err)
	}

	enc := base64.StdEncoding
	return &sealed{
		Cipher: cipherName,
		Salt:   enc.EncodeToString(salt),
		Nonce:  enc.EncodeToString(nonce),
		Data:   enc.EncodeToString(aead.Seal(nil, nonce, plain, additionalData)),
	}, nil
}

func (f *FileStore) open(s *sealed) (map[string]string, error) {
	if f.passphrase == "" {
		return nil, apperrors.Wrapf(apperrors.ErrWrongPassphrase, "[filestore] %s is encrypted and no passphrase is set", f.path)
	}
	if s.Cipher != cipherName {
		return nil, apperrors.Wrapf(apperrors.ErrUnsupported, "[filestore] cipher %q", s.Cipher)
	}

	enc := base64.StdEncoding
	salt, err := enc.DecodeString(s.Salt)
	if err != nil {
		return nil, fmt.Errorf("[filestore open] salt: %w", err)
	}
	nonce, err := enc.DecodeString(s.Nonce)
	if err != nil {
		return nil, fmt.Errorf("[filestore open] nonce: %w", err)
	}
	data, err := enc.DecodeString(s.Data)
	if err != nil {
		return nil, fmt.Errorf("[filestore open] data: %w", err)
	}

	aead, err := chacha20poly1305.NewX(deriveKey(f.passphrase, salt))
	if err != nil {
		return nil, fmt.Errorf("[filestore open] cipher: %w", err)
	}
	if len(nonce) != aead.NonceSize() {
		return nil, apperrors.Wrapf(apperrors.ErrWrongPassphrase, "[filestore open] bad nonce length")
	}
	plain, err := aead.Open(nil, nonce, data, additionalData)
	if err != nil {
		return nil, apperrors.Wrapf(apperrors.ErrWrongPassphrase, "[filestore open]")
	}

	entries := map[string]string{}
	if err := yaml.Unmarshal(plain, &entries); err != nil {
		return nil, fmt.Errorf("[filestore open] decode: %w", err)
	}
	return entries, nil
}

func deriveKey(passphrase string, salt []byte) []byte {
	return argon2.IDKey([]byte(passphrase), salt, argonTime, argonMemory, argonThreads, chacha20poly1305.KeySize)
}
