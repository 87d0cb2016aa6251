package dataset

import (
	"fmt"
	"io"

	"taxquery/models"

	"github.com/xuri/excelize/v2"
)

// ParseXLSX 解析工作簿的第一个工作表
func ParseXLSX(r io.Reader) (*models.Dataset, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook has no sheets")
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, err
	}
	return fromRows(rows)
}
