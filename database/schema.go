package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync"

	"gorm.io/gorm"
)

// SchemaCache 懒加载的表结构描述，首次成功后不再重建
// 失败不缓存，下次调用重试
type SchemaCache struct {
	db         *gorm.DB
	sampleRows int

	mu     sync.Mutex
	ready  bool
	schema string
}

// NewSchemaCache 创建 schema 缓存，sampleRows 为每张表附带的样例行数
func NewSchemaCache(db *gorm.DB, sampleRows int) *SchemaCache {
	return &SchemaCache{db: db, sampleRows: sampleRows}
}

// Schema 返回所有表的建表语句及样例行
func (c *SchemaCache) Schema(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.ready {
		return c.schema, nil
	}

	s, err := c.build(ctx)
	if err != nil {
		return "", err
	}
	c.schema, c.ready = s, true
	return s, nil
}

func (c *SchemaCache) build(ctx context.Context) (string, error) {
	db := c.db.WithContext(ctx)

	tables, err := c.tables(db)
	if err != nil {
		return "", fmt.Errorf("列出数据表失败: %w", err)
	}

	var b strings.Builder
	for _, table := range tables {
		if table == "conversation_turns" {
			continue
		}
		ddl, err := c.createStatement(db, table)
		if err != nil {
			return "", err
		}
		b.WriteString("\n")
		b.WriteString(ddl)
		b.WriteString("\n")

		if c.sampleRows > 0 {
			sample, err := c.sample(db, table)
			if err != nil {
				return "", err
			}
			b.WriteString(sample)
		}
	}
	return strings.TrimSpace(b.String()), nil
}

func (c *SchemaCache) tables(db *gorm.DB) ([]string, error) {
	rows, err := db.Raw("SHOW TABLES").Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tables []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		tables = append(tables, name)
	}
	return tables, rows.Err()
}

func (c *SchemaCache) createStatement(db *gorm.DB, table string) (string, error) {
	rows, err := db.Raw(fmt.Sprintf("SHOW CREATE TABLE `%s`", table)).Rows()
	if err != nil {
		return "", fmt.Errorf("读取表结构 %s 失败: %w", table, err)
	}
	defer rows.Close()

	var name, ddl string
	if rows.Next() {
		if err := rows.Scan(&name, &ddl); err != nil {
			return "", err
		}
	}
	return ddl, rows.Err()
}

func (c *SchemaCache) sample(db *gorm.DB, table string) (string, error) {
	rows, err := db.Raw(fmt.Sprintf("SELECT * FROM `%s` LIMIT %d", table, c.sampleRows)).Rows()
	if err != nil {
		return "", fmt.Errorf("读取样例行 %s 失败: %w", table, err)
	}
	defer rows.Close()

	cols, records, err := readAll(rows)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	fmt.Fprintf(&b, "\n/*\n%d rows from %s table:\n", c.sampleRows, table)
	b.WriteString(strings.Join(cols, "\t"))
	b.WriteString("\n")
	for _, rec := range records {
		cells := make([]string, len(rec))
		for i, v := range rec {
			cells[i] = cellText(v)
		}
		b.WriteString(strings.Join(cells, "\t"))
		b.WriteString("\n")
	}
	b.WriteString("*/\n")
	return b.String(), nil
}

// readAll 读取全部行，值统一为 interface{}
func readAll(rows *sql.Rows) ([]string, [][]interface{}, error) {
	cols, err := rows.Columns()
	if err != nil {
		return nil, nil, err
	}
	var out [][]interface{}
	for rows.Next() {
		vals := make([]interface{}, len(cols))
		ptrs := make([]interface{}, len(cols))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, nil, err
		}
		out = append(out, vals)
	}
	return cols, out, rows.Err()
}

func cellText(v interface{}) string {
	switch t := v.(type) {
	case nil:
		return "None"
	case []byte:
		return string(t)
	default:
		return fmt.Sprint(t)
	}
}
