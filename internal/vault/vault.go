// Package vault encrypts and decrypts wallet secret keys at rest.
//
// Key derivation: Argon2id(passphrase, salt) -> 32-byte AES key.
// Encryption: AES-256-GCM with a random 12-byte nonce.
//
// Argon2id hashing runs on a bounded worker pool so a burst of vault opens
// cannot starve the process of CPU; every buffer that ever holds plaintext
// key material is zeroed on every exit path.
package vault

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"errors"
	"fmt"
	"runtime"

	"golang.org/x/crypto/argon2"
)

const (
	argonTime    = 1
	argonMemory  = 64 * 1024 // KiB
	argonThreads = 2
	keyLen       = 32
	saltLen      = 16
	nonceLen     = 12
)

var ErrDecryptFailed = errors.New("vault: decryption failed, wrong passphrase or corrupted data")

// Envelope is the serialized, encrypted form of a secret key.
type Envelope struct {
	Salt       []byte
	Nonce      []byte
	Ciphertext []byte // includes the GCM auth tag
}

// Zero overwrites buf with zero bytes. Call via defer on every buffer that
// held plaintext key material.
func Zero(buf []byte) {
	for i := range buf {
		buf[i] = 0
	}
}

type hashJob struct {
	passphrase []byte
	salt       []byte
	result     chan []byte
}

// Vault derives keys on a bounded pool of Argon2id workers and performs
// AES-256-GCM seal/open around that derived key.
type Vault struct {
	jobs chan hashJob
	done chan struct{}
}

// New starts a vault with workers sized runtime.NumCPU()-1 (minimum 1).
func New() *Vault {
	workers := runtime.NumCPU() - 1
	if workers < 1 {
		workers = 1
	}
	v := &Vault{
		jobs: make(chan hashJob, workers*4),
		done: make(chan struct{}),
	}
	for i := 0; i < workers; i++ {
		go v.worker()
	}
	return v
}

// Close stops the worker pool. Safe to call once.
func (v *Vault) Close() {
	close(v.done)
}

func (v *Vault) worker() {
	for {
		select {
		case <-v.done:
			return
		case j := <-v.jobs:
			key := argon2.IDKey(j.passphrase, j.salt, argonTime, argonMemory, argonThreads, keyLen)
			j.result <- key
		}
	}
}

func (v *Vault) deriveKey(passphrase, salt []byte) []byte {
	res := make(chan []byte, 1)
	v.jobs <- hashJob{passphrase: passphrase, salt: salt, result: res}
	return <-res
}

// Seal encrypts plaintext (the raw secret key bytes) under passphrase.
// plaintext is zeroed before Seal returns.
func (v *Vault) Seal(passphrase, plaintext []byte) (Envelope, error) {
	defer Zero(plaintext)

	salt := make([]byte, saltLen)
	if _, err := rand.Read(salt); err != nil {
		return Envelope{}, fmt.Errorf("vault: read salt: %w", err)
	}

	key := v.deriveKey(passphrase, salt)
	defer Zero(key)

	block, err := aes.NewCipher(key)
	if err != nil {
		return Envelope{}, fmt.Errorf("vault: new cipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return Envelope{}, fmt.Errorf("vault: new gcm: %w", err)
	}

	nonce := make([]byte, nonceLen)
	if _, err := rand.Read(nonce); err != nil {
		return Envelope{}, fmt.Errorf("vault: read nonce: %w", err)
	}

	ciphertext := gcm.Seal(nil, nonce, plaintext, nil)

	return Envelope{Salt: salt, Nonce: nonce, Ciphertext: ciphertext}, nil
}

// Open decrypts env under passphrase, returning the plaintext secret key.
// The caller must Zero the returned slice once it's done with it.
func (v *Vault) Open(passphrase []byte, env Envelope) ([]byte, error) {
	key := v.deriveKey(passphrase, env.Salt)
	defer Zero(key)

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("vault: new cipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("vault: new gcm: %w", err)
	}

	plaintext, err := gcm.Open(nil, env.Nonce, env.Ciphertext, nil)
	if err != nil {
		return nil, ErrDecryptFailed
	}
	return plaintext, nil
}
