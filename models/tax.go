package models

import (
	"fmt"
	"strings"
)

// 物业类型
const (
	PropertyResidential = "Residential"
	PropertyCommercial  = "Commercial"
)

// 历史数据覆盖的财年：2013-14 ~ 2017-18
const (
	FirstHistoricalYear = 2013
	LastHistoricalYear  = 2017
)

// SupportedCities 支持的城市（顺序即问题中的匹配优先级）
var SupportedCities = []string{"Pune", "Solapur", "Erode", "Jabalpur", "Thanjavur", "Chennai", "Tiruchirappalli"}

// PropertyTypes 支持的物业类型
var PropertyTypes = []string{PropertyResidential, PropertyCommercial}

// HistoricalYears 返回所有历史财年的起始年份
func HistoricalYears() []int {
	years := make([]int, 0, LastHistoricalYear-FirstHistoricalYear+1)
	for y := FirstHistoricalYear; y <= LastHistoricalYear; y++ {
		years = append(years, y)
	}
	return years
}

// FiscalYearLabel 2013 -> "2013_14"
func FiscalYearLabel(year int) string {
	return fmt.Sprintf("%d_%02d", year, (year+1)%100)
}

// CollectionColumn 征收额列名，如 Tax_Collection_Cr_2013_14_Residential
func CollectionColumn(year int, propertyType string) string {
	return fmt.Sprintf("Tax_Collection_Cr_%s_%s", FiscalYearLabel(year), propertyType)
}

// DemandColumn 应收额列名，如 Tax_Demand_Cr_2013_14_Residential
func DemandColumn(year int, propertyType string) string {
	return fmt.Sprintf("Tax_Demand_Cr_%s_%s", FiscalYearLabel(year), propertyType)
}

// IsFigureColumn 是否为税额列
func IsFigureColumn(name string) bool {
	return strings.HasPrefix(name, "Tax_Collection_Cr_") || strings.HasPrefix(name, "Tax_Demand_Cr_")
}

// NormalizePropertyType 大小写不敏感匹配，未知值返回空串
func NormalizePropertyType(s string) string {
	for _, p := range PropertyTypes {
		if strings.EqualFold(strings.TrimSpace(s), p) {
			return p
		}
	}
	return ""
}

// NormalizeCity 大小写不敏感匹配，未知城市返回空串
func NormalizeCity(s string) string {
	for _, c := range SupportedCities {
		if strings.EqualFold(strings.TrimSpace(s), c) {
			return c
		}
	}
	return ""
}

// HistoricalRecord 某城市一个片区（ward/zone）的一行历史数据
type HistoricalRecord struct {
	Area    string             `json:"area"`
	Figures map[string]float64 `json:"figures"` // 列名 -> 金额（crore）
}

// Dataset 一个城市的历史数据集，Columns 保留表头用于校验缺列
type Dataset struct {
	City    string             `json:"city"`
	Columns []string           `json:"columns"`
	Records []HistoricalRecord `json:"records"`
}

// HasColumn 表头中是否存在该列
func (d *Dataset) HasColumn(name string) bool {
	for _, c := range d.Columns {
		if c == name {
			return true
		}
	}
	return false
}

// Sum 对某列求和，缺失值按 0 计
func (d *Dataset) Sum(column string) float64 {
	var total float64
	for _, r := range d.Records {
		total += r.Figures[column]
	}
	return total
}

// YearlyAggregate 某城市某物业类型某财年的征收/应收汇总
type YearlyAggregate struct {
	Year       int     `json:"year"`
	Collection float64 `json:"collection"`
	Demand     float64 `json:"demand"`
}

// QueryContext 从问题中抽取的上下文，City/Year 可能为空
type QueryContext struct {
	City         string `json:"city,omitempty"`
	PropertyType string `json:"property_type"`
	Year         *int   `json:"year,omitempty"`
}

// HasYear 是否解析出单一年份
func (q QueryContext) HasYear() bool {
	return q.Year != nil
}
