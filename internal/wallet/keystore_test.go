package wallet

import (
	"bytes"
	"testing"
)

// fastParams keeps Argon2 cheap in tests.
func fastParams() EncryptionParams {
	return EncryptionParams{Memory: 64, Iterations: 1, Parallelism: 1}
}

func testSeed(t *testing.T) []byte {
	t.Helper()
	m, err := GenerateMnemonic()
	if err != nil {
		t.Fatalf("GenerateMnemonic failed: %v", err)
	}
	seed, err := SeedFromMnemonic(m, "")
	if err != nil {
		t.Fatalf("SeedFromMnemonic failed: %v", err)
	}
	return seed
}

func TestEncryptDecrypt_RoundTrip(t *testing.T) {
	data := []byte("secret seed material")
	password := []byte("hunter2")

	enc, err := Encrypt(data, password, fastParams())
	if err != nil {
		t.Fatalf("Encrypt failed: %v", err)
	}

	dec, err := Decrypt(enc, password)
	if err != nil {
		t.Fatalf("Decrypt failed: %v", err)
	}
	if !bytes.Equal(dec, data) {
		t.Error("decrypted data does not match original")
	}
}

func TestDecrypt_WrongPassword(t *testing.T) {
	enc, err := Encrypt([]byte("data"), []byte("right"), fastParams())
	if err != nil {
		t.Fatalf("Encrypt failed: %v", err)
	}
	if _, err := Decrypt(enc, []byte("wrong")); err == nil {
		t.Error("wrong password should fail")
	}
}

func TestDecrypt_Truncated(t *testing.T) {
	if _, err := Decrypt([]byte{1, 2, 3}, []byte("pw")); err == nil {
		t.Error("truncated ciphertext should fail")
	}
}

func TestKeystore_CreateLoad(t *testing.T) {
	ks, err := NewKeystore(t.TempDir())
	if err != nil {
		t.Fatalf("NewKeystore failed: %v", err)
	}

	seed := testSeed(t)
	password := []byte("pw")

	if err := ks.Create("main", seed, password, fastParams()); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if err := ks.Create("main", seed, password, fastParams()); err == nil {
		t.Error("duplicate wallet name should fail")
	}

	loaded, accounts, active, err := ks.Load("main", password)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if !bytes.Equal(loaded, seed) {
		t.Error("loaded seed does not match")
	}
	if len(accounts) != 1 || accounts[0].Index != 0 {
		t.Errorf("new wallet accounts = %v, want one account at index 0", accounts)
	}
	if active != 0 {
		t.Errorf("new wallet active account = %d, want 0", active)
	}
}

func TestKeystore_Accounts(t *testing.T) {
	ks, err := NewKeystore(t.TempDir())
	if err != nil {
		t.Fatalf("NewKeystore failed: %v", err)
	}
	if err := ks.Create("w", testSeed(t), []byte("pw"), fastParams()); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if err := ks.AddAccount("w", AccountEntry{Index: 1, Name: "Second"}); err != nil {
		t.Fatalf("AddAccount failed: %v", err)
	}
	// Same index, same name: no-op.
	if err := ks.AddAccount("w", AccountEntry{Index: 1, Name: "Second"}); err != nil {
		t.Errorf("idempotent AddAccount failed: %v", err)
	}
	// Same index, different name: conflict.
	if err := ks.AddAccount("w", AccountEntry{Index: 1, Name: "Other"}); err == nil {
		t.Error("conflicting AddAccount should fail")
	}

	if err := ks.SetActiveAccount("w", 1); err != nil {
		t.Fatalf("SetActiveAccount failed: %v", err)
	}
	if err := ks.SetActiveAccount("w", 9); err == nil {
		t.Error("activating unknown account should fail")
	}

	accounts, err := ks.ListAccounts("w")
	if err != nil {
		t.Fatalf("ListAccounts failed: %v", err)
	}
	if len(accounts) != 2 {
		t.Errorf("ListAccounts returned %d entries, want 2", len(accounts))
	}
}

func TestKeystore_ListDelete(t *testing.T) {
	ks, err := NewKeystore(t.TempDir())
	if err != nil {
		t.Fatalf("NewKeystore failed: %v", err)
	}
	for _, name := range []string{"a", "b"} {
		if err := ks.Create(name, testSeed(t), []byte("pw"), fastParams()); err != nil {
			t.Fatalf("Create %s failed: %v", name, err)
		}
	}

	names, err := ks.List()
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(names) != 2 {
		t.Errorf("List returned %v, want 2 wallets", names)
	}

	if err := ks.Delete("a"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if err := ks.Delete("a"); err == nil {
		t.Error("deleting missing wallet should fail")
	}
}
