package storage

import (
	"bytes"
	"testing"
)

func TestMemoryDB_PutGet(t *testing.T) {
	db := NewMemory()
	defer db.Close()

	if err := db.Put([]byte("key1"), []byte("value1")); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	val, err := db.Get([]byte("key1"))
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if !bytes.Equal(val, []byte("value1")) {
		t.Errorf("Get returned %q, want %q", val, "value1")
	}
}

func TestMemoryDB_GetMissing(t *testing.T) {
	db := NewMemory()
	defer db.Close()

	if _, err := db.Get([]byte("missing")); err == nil {
		t.Error("Get of missing key should return error")
	}
}

func TestMemoryDB_Delete(t *testing.T) {
	db := NewMemory()
	defer db.Close()

	db.Put([]byte("key1"), []byte("value1"))
	if err := db.Delete([]byte("key1")); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	has, err := db.Has([]byte("key1"))
	if err != nil {
		t.Fatalf("Has failed: %v", err)
	}
	if has {
		t.Error("key should not exist after delete")
	}
}

func TestMemoryDB_ForEach(t *testing.T) {
	db := NewMemory()
	defer db.Close()

	db.Put([]byte("a/1"), []byte("v1"))
	db.Put([]byte("a/2"), []byte("v2"))
	db.Put([]byte("b/1"), []byte("v3"))

	count := 0
	err := db.ForEach([]byte("a/"), func(key, value []byte) error {
		count++
		return nil
	})
	if err != nil {
		t.Fatalf("ForEach failed: %v", err)
	}
	if count != 2 {
		t.Errorf("ForEach visited %d keys, want 2", count)
	}
}

func TestPrefixDB_Isolation(t *testing.T) {
	inner := NewMemory()
	defer inner.Close()

	contacts := NewPrefixDB(inner, []byte("contacts/"))
	sessions := NewPrefixDB(inner, []byte("sessions/"))

	contacts.Put([]byte("id1"), []byte("alice"))
	sessions.Put([]byte("id1"), []byte("dapp"))

	val, err := contacts.Get([]byte("id1"))
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if !bytes.Equal(val, []byte("alice")) {
		t.Errorf("contacts Get returned %q, want %q", val, "alice")
	}

	val, err = sessions.Get([]byte("id1"))
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if !bytes.Equal(val, []byte("dapp")) {
		t.Errorf("sessions Get returned %q, want %q", val, "dapp")
	}
}

func TestPrefixDB_ForEachStripsPrefix(t *testing.T) {
	inner := NewMemory()
	defer inner.Close()

	pdb := NewPrefixDB(inner, []byte("ns/"))
	pdb.Put([]byte("k1"), []byte("v1"))
	pdb.Put([]byte("k2"), []byte("v2"))

	seen := map[string]string{}
	err := pdb.ForEach(nil, func(key, value []byte) error {
		seen[string(key)] = string(value)
		return nil
	})
	if err != nil {
		t.Fatalf("ForEach failed: %v", err)
	}
	if len(seen) != 2 || seen["k1"] != "v1" || seen["k2"] != "v2" {
		t.Errorf("ForEach saw %v, want stripped keys k1, k2", seen)
	}
}

func TestPrefixDB_DeleteScoped(t *testing.T) {
	inner := NewMemory()
	defer inner.Close()

	a := NewPrefixDB(inner, []byte("a/"))
	b := NewPrefixDB(inner, []byte("b/"))

	a.Put([]byte("x"), []byte("1"))
	b.Put([]byte("x"), []byte("2"))

	if err := a.Delete([]byte("x")); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	has, _ := b.Has([]byte("x"))
	if !has {
		t.Error("delete through one prefix removed a key in another namespace")
	}
}
