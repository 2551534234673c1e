package export

import (
	"fmt"
	"io"

	"github.com/gocarina/gocsv"

	"github.com/GustavoCaso/spendtrace/internal/storage"
	"github.com/GustavoCaso/spendtrace/internal/util"
)

const amountPlaces = 2

type csvRecord struct {
	Date     string `csv:"date"`
	Vendor   string `csv:"vendor"`
	Category string `csv:"category"`
	Amount   string `csv:"amount"`
}

// CSV writes transactions using the same columns the importer expects, so an
// export can be uploaded again as is.
// format: date,vendor,category,amount
func CSV(writer io.Writer, transactions []storage.Transaction) error {
	records := make([]*csvRecord, 0, len(transactions))

	for _, transaction := range transactions {
		records = append(records, &csvRecord{
			Date:     util.FormatDate(transaction.Date()),
			Vendor:   transaction.Vendor(),
			Category: transaction.CategoryName(),
			Amount:   transaction.Amount().StringFixed(amountPlaces),
		})
	}

	if err := gocsv.Marshal(records, writer); err != nil {
		return fmt.Errorf("failed to write CSV records: %w", err)
	}

	return nil
}
