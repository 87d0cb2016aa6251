// Package forecast 基于历史汇总值的线性趋势预测及派生指标计算
package forecast

import (
	"errors"
	"fmt"
	"math"

	"taxquery/models"
)

var (
	// ErrDataUnavailable 数据集缺失或缺少必需的年份列
	ErrDataUnavailable = models.ErrDataUnavailable
	// ErrInvalidYear 早于历史数据起始年份
	ErrInvalidYear = fmt.Errorf("%w: year before %d", ErrDataUnavailable, models.FirstHistoricalYear)
)

// Line 一元线性函数 y = Intercept + Slope*x
type Line struct {
	Slope     float64 `json:"slope"`
	Intercept float64 `json:"intercept"`
}

// At 在 x 处求值
func (l Line) At(x float64) float64 {
	return l.Intercept + l.Slope*x
}

// FitLine 普通最小二乘拟合，xs/ys 长度必须一致且至少两个点
func FitLine(xs, ys []float64) (Line, error) {
	if len(xs) != len(ys) || len(xs) < 2 {
		return Line{}, fmt.Errorf("fit line: need matching series of at least 2 points, got %d/%d", len(xs), len(ys))
	}
	n := float64(len(xs))
	var sumX, sumY float64
	for i := range xs {
		sumX += xs[i]
		sumY += ys[i]
	}
	meanX, meanY := sumX/n, sumY/n

	var sxy, sxx float64
	for i := range xs {
		dx := xs[i] - meanX
		sxy += dx * (ys[i] - meanY)
		sxx += dx * dx
	}
	if sxx == 0 {
		return Line{}, errors.New("fit line: x values are all equal")
	}
	slope := sxy / sxx
	return Line{Slope: slope, Intercept: meanY - slope*meanX}, nil
}

// Round2 四舍五入保留两位小数（远离零方向）
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// Prediction 某一年的征收额与应收额
// Historical 为 true 时数值直接取自历史汇总，未经拟合
type Prediction struct {
	Year       int     `json:"year"`
	Collection float64 `json:"collection"`
	Demand     float64 `json:"demand"`
	Historical bool    `json:"historical"`
}

// Model 一个（城市，物业类型）的两条趋势线
type Model struct {
	City         string                   `json:"city"`
	PropertyType string                   `json:"property_type"`
	Aggregates   []models.YearlyAggregate `json:"aggregates"`
	Collection   Line                     `json:"collection"`
	Demand       Line                     `json:"demand"`
}

// Aggregate 按财年汇总某物业类型的征收额和应收额，任一列缺失返回 ErrDataUnavailable
func Aggregate(ds *models.Dataset, propertyType string) ([]models.YearlyAggregate, error) {
	if ds == nil {
		return nil, fmt.Errorf("%w: no dataset", ErrDataUnavailable)
	}
	out := make([]models.YearlyAggregate, 0, len(models.HistoricalYears()))
	for _, year := range models.HistoricalYears() {
		colC := models.CollectionColumn(year, propertyType)
		colD := models.DemandColumn(year, propertyType)
		for _, col := range []string{colC, colD} {
			if !ds.HasColumn(col) {
				return nil, fmt.Errorf("%w: %s missing column %s", ErrDataUnavailable, ds.City, col)
			}
		}
		out = append(out, models.YearlyAggregate{
			Year:       year,
			Collection: ds.Sum(colC),
			Demand:     ds.Sum(colD),
		})
	}
	return out, nil
}

// Fit 从历史数据训练模型，每次调用都重新拟合
func Fit(ds *models.Dataset, propertyType string) (*Model, error) {
	aggs, err := Aggregate(ds, propertyType)
	if err != nil {
		return nil, err
	}

	xs := make([]float64, len(aggs))
	collections := make([]float64, len(aggs))
	demands := make([]float64, len(aggs))
	for i, a := range aggs {
		xs[i] = float64(a.Year)
		collections[i] = a.Collection
		demands[i] = a.Demand
	}

	collectionLine, err := FitLine(xs, collections)
	if err != nil {
		return nil, err
	}
	demandLine, err := FitLine(xs, demands)
	if err != nil {
		return nil, err
	}

	return &Model{
		City:         ds.City,
		PropertyType: propertyType,
		Aggregates:   aggs,
		Collection:   collectionLine,
		Demand:       demandLine,
	}, nil
}

// Predict 历史年份返回原始汇总值，2018 及以后返回趋势线取值（两位小数）
func (m *Model) Predict(year int) (Prediction, error) {
	if year < models.FirstHistoricalYear {
		return Prediction{}, fmt.Errorf("%w: %d", ErrInvalidYear, year)
	}
	if year <= models.LastHistoricalYear {
		a := m.Aggregates[year-models.FirstHistoricalYear]
		return Prediction{Year: year, Collection: a.Collection, Demand: a.Demand, Historical: true}, nil
	}
	x := float64(year)
	return Prediction{
		Year:       year,
		Collection: Round2(m.Collection.At(x)),
		Demand:     Round2(m.Demand.At(x)),
	}, nil
}
