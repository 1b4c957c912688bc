// internal/storage/model.go
//
// 定義 in-memory 帳戶儲存的快照格式（目前為 JSON 檔）。
// 此層僅定義資料結構，不引用 compte 或 bank，避免循環依賴。
package storage

import "time"

// Meta 為快照的中繼資料：儲存方式、版本與建立時間。
type Meta struct {
	Storage   string    `json:"storage"`        // 儲存類型，例如 "json_snapshot"
	Version   int       `json:"version"`        // 結構版本號
	Timestamp time.Time `json:"timestamp"`      // 快照建立時間
	Note      string    `json:"note,omitempty"` // 備註欄
}

// PersistAccount 為帳戶在快照中的序列化格式。
// 餘額以十進位字串保存，避免浮點誤差。
type PersistAccount struct {
	ID          int64  `json:"id"`
	Balance     string `json:"solde"`
	Type        string `json:"type"`
	CreatedDate string `json:"dateCreation"`
}

// Snapshot 為帳戶儲存的完整快照。
type Snapshot struct {
	Meta     Meta             `json:"_meta"`
	NextID   int64            `json:"next_id"` // 最後一個已指派的 id
	Accounts []PersistAccount `json:"accounts"`
}
