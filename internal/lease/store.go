// Package lease implements the Automation Lease Store: a short-lived,
// encrypted authorization letting the executor sign a swap for a user
// without holding their passphrase-derived key across events.
package lease

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/rawblock/solana-sniper/internal/vault"
	"github.com/rawblock/solana-sniper/pkg/models"
)

func keyFor(userID string) string {
	return fmt.Sprintf("snipe:lease:%s", userID)
}

type payload struct {
	WalletID  string    `json:"walletId"`
	Salt      []byte    `json:"salt"`
	Nonce     []byte    `json:"nonce"`
	Cipher    []byte    `json:"cipher"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Store persists AutomationLeases in Redis, re-encrypted under the
// process master key so the key material never sits in Redis unencrypted.
type Store struct {
	rdb    *redis.Client
	vault  *vault.Vault
	master []byte
}

// New builds a lease Store. master is the process-wide derivation secret
// (from SecurityConfig.MasterSecret); it is never zeroed since leases are
// re-encrypted under it for the process lifetime.
func New(rdb *redis.Client, v *vault.Vault, master []byte) *Store {
	return &Store{rdb: rdb, vault: v, master: master}
}

// Store re-encrypts secretKey under the master passphrase and writes it to
// Redis with the given TTL. secretKey is zeroed before return.
func (s *Store) Store(ctx context.Context, userID, walletID string, secretKey []byte, ttl time.Duration) error {
	env, err := s.vault.Seal(s.master, secretKey)
	if err != nil {
		return fmt.Errorf("lease: seal: %w", err)
	}

	p := payload{
		WalletID:  walletID,
		Salt:      env.Salt,
		Nonce:     env.Nonce,
		Cipher:    env.Ciphertext,
		ExpiresAt: time.Now().Add(ttl),
	}
	raw, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("lease: marshal: %w", err)
	}

	if err := s.rdb.Set(ctx, keyFor(userID), raw, ttl).Err(); err != nil {
		return fmt.Errorf("lease: redis set: %w", err)
	}
	return nil
}

// Load fetches and decrypts a user's lease. The caller must call
// vault.Zero on the returned secret key once done with it.
func (s *Store) Load(ctx context.Context, userID string) (walletID string, secretKey []byte, err error) {
	raw, err := s.rdb.Get(ctx, keyFor(userID)).Bytes()
	if err == redis.Nil {
		return "", nil, models.ErrLeaseMissing
	}
	if err != nil {
		return "", nil, fmt.Errorf("lease: redis get: %w", err)
	}

	var p payload
	if err := json.Unmarshal(raw, &p); err != nil {
		return "", nil, fmt.Errorf("lease: unmarshal: %w", err)
	}

	if time.Now().After(p.ExpiresAt) {
		_ = s.rdb.Del(ctx, keyFor(userID)).Err()
		return "", nil, models.ErrLeaseExpired
	}

	env := vault.Envelope{Salt: p.Salt, Nonce: p.Nonce, Ciphertext: p.Cipher}
	key, err := s.vault.Open(s.master, env)
	if err != nil {
		return "", nil, fmt.Errorf("lease: open: %w", err)
	}
	return p.WalletID, key, nil
}

// Revoke deletes a user's lease immediately.
func (s *Store) Revoke(ctx context.Context, userID string) error {
	return s.rdb.Del(ctx, keyFor(userID)).Err()
}

// BatchPresence reports, for each userID, whether an unexpired lease is
// currently present, via a single Redis pipeline (MGET-equivalent).
func (s *Store) BatchPresence(ctx context.Context, userIDs []string) (map[string]bool, error) {
	if len(userIDs) == 0 {
		return map[string]bool{}, nil
	}

	keys := make([]string, len(userIDs))
	for i, u := range userIDs {
		keys[i] = keyFor(u)
	}

	vals, err := s.rdb.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("lease: mget: %w", err)
	}

	out := make(map[string]bool, len(userIDs))
	for i, u := range userIDs {
		out[u] = vals[i] != nil
	}
	return out, nil
}
