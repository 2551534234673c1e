package events

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

// UploadProcessedMessage announces that an upload has been stored.
type UploadProcessedMessage struct {
	UploadID         int64     `json:"upload_id"`
	FileName         string    `json:"file_name"`
	TransactionCount int64     `json:"transaction_count"`
	TotalSpent       string    `json:"total_spent"`
	Timestamp        time.Time `json:"timestamp"`
}

func NewUploadProcessedMessage(
	uploadID int64,
	fileName string,
	transactionCount int64,
	totalSpent decimal.Decimal,
) *UploadProcessedMessage {
	return &UploadProcessedMessage{
		UploadID:         uploadID,
		FileName:         fileName,
		TransactionCount: transactionCount,
		TotalSpent:       totalSpent.StringFixed(2),
		Timestamp:        time.Now().UTC(),
	}
}

func (m *UploadProcessedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}
