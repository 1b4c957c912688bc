// internal/storage/jsonstore.go
//
// 提供 JSON 快照 (Snapshot) 的讀寫。
// 寫入採「原子寫入」：先寫入同目錄下唯一的暫存檔，再以 rename() 取代原檔。
package storage

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"time"
)

// LoadSnapshot 讀取指定路徑的 JSON 快照。
// 檔案不存在時回傳 ok=false 且 err 為 nil，讓呼叫端以空狀態啟動。
func LoadSnapshot(path string) (snap Snapshot, ok bool, err error) {
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return snap, false, nil
	}
	if err != nil {
		return snap, false, err
	}
	defer f.Close()
	if err := json.NewDecoder(f).Decode(&snap); err != nil {
		return snap, false, err
	}
	return snap, true, nil
}

// SaveSnapshot 將 Snapshot 以原子方式寫入 JSON 檔案：
//  1. 設定 Meta.Storage 與當前時間戳。
//  2. 寫入同目錄下的唯一暫存檔（併發寫入互不干擾）。
//  3. 以 os.Rename() 取代正式檔案。
func SaveSnapshot(path string, snap Snapshot) error {
	snap.Meta.Storage = "json_snapshot"
	snap.Meta.Timestamp = time.Now()

	f, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	tmp := f.Name()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(snap); err != nil {
		f.Close()
		os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return err
	}

	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return err
	}
	return nil
}
