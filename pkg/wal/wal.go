package wal

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
)

// 自己定義常用的權限常量
const (
	// rw-r--r-- (擁有者讀寫，其他人唯讀)
	FileModeReadOnly fs.FileMode = 0644

	// rwxr-xr-x 目錄使用
	FileModeExecutable fs.FileMode = 0755
)

// WAL 一行一筆 JSON 的 Write-Ahead Log
type WAL struct {
	file   *os.File
	mu     sync.Mutex
	// syncFn 預設為 file.Sync
	syncFn func() error
}

// NewWAL 開啟或建立一個 WAL 檔案 (必要時建立目錄)
// O_RDWR 讀寫模式
// O_APPEND 每次寫入時自動跳到文件末尾
// O_CREATE 如果文件不存在則建立
func NewWAL(path string) (*WAL, error) {
	if err := os.MkdirAll(filepath.Dir(path), FileModeExecutable); err != nil {
		return nil, err
	}
	file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_RDWR, FileModeReadOnly)
	if err != nil {
		return nil, err
	}
	return &WAL{file: file, syncFn: file.Sync}, nil
}

// Write 寫入一筆資料並刷入硬碟
// 一次 Write 對應一行；寫入或刷盤失敗時截回寫入前的長度，失敗的資料不會被重放
func (w *WAL) Write(v any) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	info, err := w.file.Stat()
	if err != nil {
		return err
	}
	size := info.Size()

	if err := json.NewEncoder(w.file).Encode(v); err != nil {
		return w.rollback(size, err)
	}
	if err := w.syncFn(); err != nil {
		return w.rollback(size, err)
	}
	return nil
}

// rollback 需持有 w.mu
func (w *WAL) rollback(size int64, cause error) error {
	if err := w.file.Truncate(size); err != nil {
		return errors.Join(cause, fmt.Errorf("truncate wal: %w", err))
	}
	return cause
}

// Sync 強制刷入硬碟
func (w *WAL) Sync() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.syncFn()
}

// Close 關閉檔案
func (w *WAL) Close() error {
	return w.file.Close()
}

// ReadAll 由頭讀取所有資料
// callback 接收每一筆的原始 JSON，避免一次將所有資料載入記憶體
// 檔案結尾若是寫到一半的資料 (當機)，視為未寫入並截掉，之後的寫入才能正常重放
func (w *WAL) ReadAll(callback func(jsonRaw []byte) error) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	// 確保從頭讀取
	if _, err := w.file.Seek(0, io.SeekStart); err != nil {
		return err
	}

	decoder := json.NewDecoder(w.file)
	var good int64
	for {
		var raw json.RawMessage
		if err := decoder.Decode(&raw); err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			if errors.Is(err, io.ErrUnexpectedEOF) {
				return w.file.Truncate(good)
			}
			return err
		}
		good = decoder.InputOffset()
		if err := callback(raw); err != nil {
			return err
		}
	}
}
