package forecast

import (
	"fmt"
	"strings"

	"taxquery/models"
)

// Metric 可查询的指标
type Metric string

const (
	MetricCollection Metric = "tax collection"
	MetricDemand     Metric = "tax demand"
	MetricEfficiency Metric = "property efficiency"
	MetricGap        Metric = "collection gap"
)

// Metrics 全部指标
var Metrics = []Metric{MetricCollection, MetricDemand, MetricEfficiency, MetricGap}

// ParseMetric 接受 "tax collection"、"collection_gap"、"Property Efficiency" 等写法
func ParseMetric(s string) (Metric, error) {
	norm := strings.ToLower(strings.TrimSpace(strings.ReplaceAll(s, "_", " ")))
	for _, m := range Metrics {
		if norm == string(m) {
			return m, nil
		}
	}
	switch norm {
	case "collection":
		return MetricCollection, nil
	case "demand":
		return MetricDemand, nil
	case "efficiency":
		return MetricEfficiency, nil
	case "gap":
		return MetricGap, nil
	}
	return "", fmt.Errorf("unknown metric %q", s)
}

// Unit 展示单位
func (m Metric) Unit() string {
	if m == MetricEfficiency {
		return "%"
	}
	return "Cr"
}

// Efficiency 征收效率（百分比）
// 应收额为 0 时返回 0 并标记 lowConfidence
func Efficiency(p Prediction) (value float64, lowConfidence bool) {
	if p.Demand == 0 {
		return 0, true
	}
	return Round2(p.Collection / p.Demand * 100), false
}

// CollectionGap 应收减征收，可为负
func CollectionGap(p Prediction) float64 {
	return Round2(p.Demand - p.Collection)
}

// Value 取某指标的数值
func Value(p Prediction, m Metric) (value float64, lowConfidence bool) {
	switch m {
	case MetricCollection:
		return p.Collection, false
	case MetricDemand:
		return p.Demand, false
	case MetricEfficiency:
		return Efficiency(p)
	case MetricGap:
		return CollectionGap(p), false
	}
	return 0, false
}

// Point 图表上的一个点
type Point struct {
	Year          int     `json:"year"`
	Value         float64 `json:"value"`
	Type          string  `json:"type"` // Historical | Predicted
	LowConfidence bool    `json:"low_confidence,omitempty"`
}

// Series 历史五年加上所选年份的指标序列
type Series struct {
	City         string  `json:"city"`
	PropertyType string  `json:"property_type"`
	Metric       Metric  `json:"metric"`
	Unit         string  `json:"unit"`
	Year         int     `json:"year"`
	Points       []Point `json:"points"`
}

// Title 图表标题
func (s *Series) Title() string {
	return fmt.Sprintf("Predicted %s (%s) for %s (%s) in %d",
		titleCase(string(s.Metric)), s.Unit, s.City, s.PropertyType, s.Year)
}

func titleCase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

// BuildSeries 训练一次模型，依次计算历史年份与目标年份的指标
func BuildSeries(ds *models.Dataset, propertyType string, m Metric, year int) (*Series, error) {
	model, err := Fit(ds, propertyType)
	if err != nil {
		return nil, err
	}
	s := &Series{
		City:         ds.City,
		PropertyType: propertyType,
		Metric:       m,
		Unit:         m.Unit(),
		Year:         year,
	}
	years := append(models.HistoricalYears(), year)
	for i, y := range years {
		p, err := model.Predict(y)
		if err != nil {
			return nil, err
		}
		v, low := Value(p, m)
		kind := "Historical"
		if i == len(years)-1 {
			kind = "Predicted"
		}
		s.Points = append(s.Points, Point{Year: y, Value: v, Type: kind, LowConfidence: low})
	}
	return s, nil
}
