// Package dataset 按城市加载历史房产税数据（CSV / XLSX，本地目录或 HTTP 地址）
package dataset

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"taxquery/models"

	"go.uber.org/zap"
)

// 单个数据集文件的大小上限
const maxDatasetBytes = 32 << 20

// Loader 按城市加载历史数据
type Loader interface {
	Load(ctx context.Context, city string) (*models.Dataset, error)
}

// FileLoader 从目录或 http(s) 基础地址读取 Pattern 格式化后的文件
type FileLoader struct {
	Source  string
	Pattern string
	Client  *http.Client
	Logger  *zap.Logger
}

// NewFileLoader 创建加载器
func NewFileLoader(source, pattern string, logger *zap.Logger) *FileLoader {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FileLoader{
		Source:  source,
		Pattern: pattern,
		Client:  &http.Client{Timeout: 30 * time.Second},
		Logger:  logger,
	}
}

// Load 读取并解析城市数据集，任何失败都包装为 ErrDataUnavailable
func (l *FileLoader) Load(ctx context.Context, city string) (*models.Dataset, error) {
	name := models.NormalizeCity(city)
	if name == "" {
		return nil, fmt.Errorf("%w: %w: %q", models.ErrDataUnavailable, models.ErrUnknownCity, city)
	}

	filename := fmt.Sprintf(l.Pattern, name)
	raw, err := l.read(ctx, filename)
	if err != nil {
		l.Logger.Warn("读取数据集失败", zap.String("city", name), zap.Error(err))
		return nil, fmt.Errorf("%w: %s: %v", models.ErrDataUnavailable, name, err)
	}

	var ds *models.Dataset
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".xlsx":
		ds, err = ParseXLSX(bytes.NewReader(raw))
	default:
		ds, err = ParseCSV(bytes.NewReader(raw))
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", models.ErrDataUnavailable, name, err)
	}
	ds.City = name

	l.Logger.Debug("数据集已加载",
		zap.String("city", name),
		zap.Int("rows", len(ds.Records)),
		zap.Int("columns", len(ds.Columns)))
	return ds, nil
}

func (l *FileLoader) read(ctx context.Context, filename string) ([]byte, error) {
	if strings.HasPrefix(l.Source, "http://") || strings.HasPrefix(l.Source, "https://") {
		return l.fetch(ctx, strings.TrimRight(l.Source, "/")+"/"+filename)
	}
	f, err := os.Open(filepath.Join(l.Source, filename))
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(io.LimitReader(f, maxDatasetBytes))
}

func (l *FileLoader) fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	client := l.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("GET %s: status %d", url, resp.StatusCode)
	}
	return io.ReadAll(io.LimitReader(resp.Body, maxDatasetBytes))
}

// fromRows 第一行为表头，其余为数据；税额列解析为浮点，空值和 nan 计为 0
func fromRows(rows [][]string) (*models.Dataset, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("empty dataset")
	}
	header := make([]string, len(rows[0]))
	for i, h := range rows[0] {
		header[i] = strings.TrimSpace(strings.TrimPrefix(h, "\xEF\xBB\xBF"))
	}

	areaIdx := -1
	for i, h := range header {
		if h == "Ward_Name" || h == "Zone_Name" {
			areaIdx = i
			break
		}
	}
	if areaIdx < 0 {
		for i, h := range header {
			if !models.IsFigureColumn(h) {
				areaIdx = i
				break
			}
		}
	}

	ds := &models.Dataset{Columns: header}
	for lineNo, row := range rows[1:] {
		if isBlank(row) {
			continue
		}
		rec := models.HistoricalRecord{Figures: make(map[string]float64)}
		if areaIdx >= 0 && areaIdx < len(row) {
			rec.Area = strings.TrimSpace(row[areaIdx])
		}
		for i, h := range header {
			if !models.IsFigureColumn(h) {
				continue
			}
			cell := ""
			if i < len(row) {
				cell = row[i]
			}
			v, err := parseAmount(cell)
			if err != nil {
				return nil, fmt.Errorf("row %d column %s: %w", lineNo+2, h, err)
			}
			rec.Figures[h] = v
		}
		ds.Records = append(ds.Records, rec)
	}
	return ds, nil
}

func parseAmount(cell string) (float64, error) {
	s := strings.TrimSpace(strings.ReplaceAll(cell, ",", ""))
	if s == "" || strings.EqualFold(s, "nan") {
		return 0, nil
	}
	return strconv.ParseFloat(s, 64)
}

func isBlank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
