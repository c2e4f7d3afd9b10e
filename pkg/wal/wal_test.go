package wal

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

type entry struct {
	N int `json:"n"`
}

func TestWriteThenReadAll(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "test.wal")
	w, err := NewWAL(path)
	if err != nil {
		t.Fatalf("NewWAL: %v", err)
	}
	for i := 1; i <= 3; i++ {
		if err := w.Write(entry{N: i}); err != nil {
			t.Fatalf("Write: %v", err)
		}
	}

	var got []int
	err = w.ReadAll(func(raw []byte) error {
		var e entry
		if err := json.Unmarshal(raw, &e); err != nil {
			return err
		}
		got = append(got, e.N)
		return nil
	})
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	if len(got) != 3 || got[0] != 1 || got[2] != 3 {
		t.Fatalf("got %v", got)
	}

	// 讀完之後仍可以繼續追加
	if err := w.Write(entry{N: 4}); err != nil {
		t.Fatalf("append after read: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}

	reopened, err := NewWAL(path)
	if err != nil {
		t.Fatal(err)
	}
	defer reopened.Close()
	count := 0
	if err := reopened.ReadAll(func([]byte) error { count++; return nil }); err != nil {
		t.Fatal(err)
	}
	if count != 4 {
		t.Fatalf("count=%d want 4", count)
	}
}

func TestReadAllIgnoresTornTail(t *testing.T) {
	path := filepath.Join(t.TempDir(), "torn.wal")
	if err := os.WriteFile(path, []byte("{\"n\":1}\n{\"n\":2}\n{\"n\":"), 0644); err != nil {
		t.Fatal(err)
	}
	w, err := NewWAL(path)
	if err != nil {
		t.Fatal(err)
	}
	defer w.Close()

	count := 0
	if err := w.ReadAll(func([]byte) error { count++; return nil }); err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	if count != 2 {
		t.Fatalf("count=%d want 2", count)
	}

	// 截掉殘缺資料後，新的寫入可以被重放
	if err := w.Write(entry{N: 3}); err != nil {
		t.Fatal(err)
	}
	var last int
	err = w.ReadAll(func(raw []byte) error {
		var e entry
		if err := json.Unmarshal(raw, &e); err != nil {
			return err
		}
		last = e.N
		return nil
	})
	if err != nil {
		t.Fatalf("ReadAll after repair: %v", err)
	}
	if last != 3 {
		t.Fatalf("last=%d want 3", last)
	}
}

func TestFailedWriteIsRolledBack(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rollback.wal")
	w, err := NewWAL(path)
	if err != nil {
		t.Fatal(err)
	}
	defer w.Close()
	if err := w.Write(entry{N: 1}); err != nil {
		t.Fatal(err)
	}
	before, _ := os.Stat(path)

	// 整行已寫入但刷盤失敗
	w.syncFn = func() error { return errors.New("fsync failed") }
	if err := w.Write(entry{N: 2}); err == nil {
		t.Fatal("expected sync error")
	}
	after, _ := os.Stat(path)
	if after.Size() != before.Size() {
		t.Fatalf("size=%d want %d", after.Size(), before.Size())
	}

	// 無法編碼的資料
	w.syncFn = w.file.Sync
	if err := w.Write(map[string]any{"bad": make(chan int)}); err == nil {
		t.Fatal("expected encode error")
	}

	if err := w.Write(entry{N: 3}); err != nil {
		t.Fatal(err)
	}
	var got []int
	err = w.ReadAll(func(raw []byte) error {
		var e entry
		if err := json.Unmarshal(raw, &e); err != nil {
			return err
		}
		got = append(got, e.N)
		return nil
	})
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	if len(got) != 2 || got[0] != 1 || got[1] != 3 {
		t.Fatalf("replayed %v want [1 3]", got)
	}
}
