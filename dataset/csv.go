package dataset

import (
	"encoding/csv"
	"io"

	"taxquery/models"
)

// ParseCSV 解析 CSV 数据集
func ParseCSV(r io.Reader) (*models.Dataset, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, err
	}
	return fromRows(rows)
}
