package vault

import "testing"

func TestSealOpenRoundTrip(t *testing.T) {
	v := New()
	defer v.Close()

	passphrase := []byte("correct horse battery staple")
	secret := []byte("0123456789abcdef0123456789abcdef0123456789abcdef0123456789abcd")
	secretCopy := append([]byte(nil), secret...)

	env, err := v.Seal(passphrase, secretCopy)
	if err != nil {
		t.Fatalf("Seal() error = %v", err)
	}

	opened, err := v.Open(passphrase, env)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer Zero(opened)

	if string(opened) != string(secret) {
		t.Fatalf("round trip mismatch: got %q want %q", opened, secret)
	}
}

func TestOpenWrongPassphrase(t *testing.T) {
	v := New()
	defer v.Close()

	secret := []byte("top secret key material")
	env, err := v.Seal([]byte("right-pass"), append([]byte(nil), secret...))
	if err != nil {
		t.Fatalf("Seal() error = %v", err)
	}

	if _, err := v.Open([]byte("wrong-pass"), env); err != ErrDecryptFailed {
		t.Fatalf("Open() error = %v, want ErrDecryptFailed", err)
	}
}

func TestZero(t *testing.T) {
	buf := []byte{1, 2, 3, 4}
	Zero(buf)
	for i, b := range buf {
		if b != 0 {
			t.Fatalf("byte %d not zeroed: %v", i, buf)
		}
	}
}

func TestSealProducesDistinctNonces(t *testing.T) {
	v := New()
	defer v.Close()

	passphrase := []byte("pass")
	e1, err := v.Seal(passphrase, []byte("secret-one-secret-one"))
	if err != nil {
		t.Fatalf("Seal() error = %v", err)
	}
	e2, err := v.Seal(passphrase, []byte("secret-two-secret-two"))
	if err != nil {
		t.Fatalf("Seal() error = %v", err)
	}
	if string(e1.Nonce) == string(e2.Nonce) {
		t.Fatalf("expected distinct nonces across seals")
	}
}
