package database

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"taxquery/llm"

	"gorm.io/gorm"
)

// ErrNotReadOnly 生成的语句不是只读查询
var ErrNotReadOnly = errors.New("only read-only queries are allowed")

var readOnlyPrefixes = []string{"select", "show", "with", "describe", "desc", "explain"}

// Executor 执行模型生成的 SQL，只允许单条只读语句
type Executor struct {
	db *gorm.DB
}

// NewExecutor 创建执行器
func NewExecutor(db *gorm.DB) *Executor {
	return &Executor{db: db}
}

// CheckReadOnly 校验语句为单条只读查询，返回去掉结尾分号的语句
func CheckReadOnly(query string) (string, error) {
	q := strings.TrimSpace(query)
	q = strings.TrimSpace(strings.TrimRight(q, ";"))
	if q == "" {
		return "", fmt.Errorf("%w: empty statement", ErrNotReadOnly)
	}
	if strings.Contains(q, ";") {
		return "", fmt.Errorf("%w: multiple statements", ErrNotReadOnly)
	}
	lower := strings.ToLower(q)
	for _, p := range readOnlyPrefixes {
		if strings.HasPrefix(lower, p+" ") || strings.HasPrefix(lower, p+"\n") || strings.HasPrefix(lower, p+"(") {
			return q, nil
		}
	}
	return "", fmt.Errorf("%w: %.40s", ErrNotReadOnly, q)
}

// Run 执行查询，结果格式化为 [(v1, v2), ...] 文本供提示词使用
func (e *Executor) Run(ctx context.Context, query string) (string, error) {
	q, err := CheckReadOnly(llm.CleanSQL(query))
	if err != nil {
		return "", err
	}

	rows, err := e.db.WithContext(ctx).Raw(q).Rows()
	if err != nil {
		return "", fmt.Errorf("执行查询失败: %w", err)
	}
	defer rows.Close()

	_, records, err := readAll(rows)
	if err != nil {
		return "", fmt.Errorf("读取查询结果失败: %w", err)
	}
	return FormatResult(records), nil
}

// FormatResult 按元组列表格式化，单列元组带尾逗号
func FormatResult(records [][]interface{}) string {
	if len(records) == 0 {
		return ""
	}
	parts := make([]string, len(records))
	for i, rec := range records {
		cells := make([]string, len(rec))
		for j, v := range rec {
			cells[j] = literal(v)
		}
		if len(cells) == 1 {
			parts[i] = "(" + cells[0] + ",)"
		} else {
			parts[i] = "(" + strings.Join(cells, ", ") + ")"
		}
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

func literal(v interface{}) string {
	s := cellText(v)
	if v == nil {
		return s
	}
	if _, err := strconv.ParseFloat(s, 64); err == nil {
		return s
	}
	return "'" + strings.ReplaceAll(s, "'", "\\'") + "'"
}
