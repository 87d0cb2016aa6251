package api

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"taxquery/dataset"
	"taxquery/forecast"
	"taxquery/models"

	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"
)

// 预测页面可选的年份
const (
	MinPredictYear = 2018
	MaxPredictYear = 2030
)

// PredictHandler 预测图表接口
type PredictHandler struct {
	loader dataset.Loader
}

// NewPredictHandler 创建预测处理器
func NewPredictHandler(loader dataset.Loader) *PredictHandler {
	return &PredictHandler{loader: loader}
}

type predictParams struct {
	metric       forecast.Metric
	city         string
	propertyType string
	year         int
}

func parsePredictParams(c *gin.Context) (predictParams, error) {
	var p predictParams
	m, err := forecast.ParseMetric(c.Query("metric"))
	if err != nil {
		return p, err
	}
	p.metric = m

	p.city = models.NormalizeCity(c.Query("city"))
	if p.city == "" {
		return p, fmt.Errorf("unknown city %q", c.Query("city"))
	}

	p.propertyType = models.PropertyResidential
	if pt := c.Query("property_type"); pt != "" {
		p.propertyType = models.NormalizePropertyType(pt)
		if p.propertyType == "" {
			return p, fmt.Errorf("unknown property type %q", pt)
		}
	}

	p.year, err = strconv.Atoi(c.Query("year"))
	if err != nil || p.year < MinPredictYear || p.year > MaxPredictYear {
		return p, fmt.Errorf("year must be between %d and %d", MinPredictYear, MaxPredictYear)
	}
	return p, nil
}

// series 加载数据集并计算指标序列，出错时已写入响应
func (h *PredictHandler) series(c *gin.Context) (*forecast.Series, bool) {
	p, err := parsePredictParams(c)
	if err != nil {
		BadRequest(c, err.Error())
		return nil, false
	}

	ds, err := h.loader.Load(c.Request.Context(), p.city)
	if err == nil {
		var s *forecast.Series
		s, err = forecast.BuildSeries(ds, p.propertyType, p.metric, p.year)
		if err == nil {
			return s, true
		}
	}
	if errors.Is(err, models.ErrDataUnavailable) {
		NotFound(c, SafeErrorMessage(err, "该城市暂无数据"))
	} else {
		InternalError(c, SafeErrorMessage(err, "预测失败"))
	}
	return nil, false
}

// Predict 指标序列
// @Summary 预测指标
// @Description 返回 2013-2017 的历史值和所选年份的预测值
// @Tags 预测
// @Produce json
// @Param metric query string true "tax collection | tax demand | property efficiency | collection gap"
// @Param city query string true "城市" example(Pune)
// @Param year query int true "预测年份 (2018-2030)"
// @Param property_type query string false "Residential | Commercial" default(Residential)
// @Success 200 {object} Response{data=forecast.Series} "指标序列"
// @Failure 400 {object} Response "请求参数错误"
// @Failure 404 {object} Response "该城市暂无数据"
// @Router /api/predict [get]
func (h *PredictHandler) Predict(c *gin.Context) {
	s, ok := h.series(c)
	if !ok {
		return
	}
	Success(c, gin.H{
		"title":  s.Title(),
		"series": s,
	})
}

// Export 导出带折线图的 Excel
// @Summary 导出预测图表
// @Tags 预测
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param metric query string true "tax collection | tax demand | property efficiency | collection gap"
// @Param city query string true "城市"
// @Param year query int true "预测年份 (2018-2030)"
// @Param property_type query string false "Residential | Commercial" default(Residential)
// @Success 200 {file} file "Excel文件"
// @Failure 400 {object} Response "请求参数错误"
// @Failure 404 {object} Response "该城市暂无数据"
// @Router /api/predict/export [get]
func (h *PredictHandler) Export(c *gin.Context) {
	s, ok := h.series(c)
	if !ok {
		return
	}

	f, err := SeriesWorkbook(s)
	if err != nil {
		InternalError(c, SafeErrorMessage(err, "生成 Excel 失败"))
		return
	}
	defer f.Close()

	filename := fmt.Sprintf("prediction_%s_%s_%d.xlsx", s.City, s.PropertyType, s.Year)
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename*=UTF-8''%s", filename))
	if err := f.Write(c.Writer); err != nil {
		c.Status(http.StatusInternalServerError)
	}
}

// SeriesWorkbook 数据表 + 折线图
func SeriesWorkbook(s *forecast.Series) (*excelize.File, error) {
	f := excelize.NewFile()
	sheet := "Forecast"
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		f.Close()
		return nil, err
	}

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 12, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"4F81BD"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})

	f.SetColWidth(sheet, "A", "C", 14)
	valueHeader := fmt.Sprintf("%s (%s)", s.Metric, s.Unit)
	for i, header := range []string{"Year", valueHeader, "Type"} {
		cell := fmt.Sprintf("%c1", 'A'+i)
		f.SetCellValue(sheet, cell, header)
		f.SetCellStyle(sheet, cell, cell, headerStyle)
	}
	for i, p := range s.Points {
		row := i + 2
		f.SetCellValue(sheet, fmt.Sprintf("A%d", row), p.Year)
		f.SetCellValue(sheet, fmt.Sprintf("B%d", row), p.Value)
		f.SetCellValue(sheet, fmt.Sprintf("C%d", row), p.Type)
	}
	f.SetCellValue(sheet, "E1", s.Title())

	last := len(s.Points) + 1
	err := f.AddChart(sheet, "E3", &excelize.Chart{
		Type: excelize.Line,
		Series: []excelize.ChartSeries{{
			Name:       fmt.Sprintf("%s!$B$1", sheet),
			Categories: fmt.Sprintf("%s!$A$2:$A$%d", sheet, last),
			Values:     fmt.Sprintf("%s!$B$2:$B$%d", sheet, last),
		}},
		Legend: excelize.ChartLegend{Position: "bottom"},
	})
	if err != nil {
		f.Close()
		return nil, err
	}
	return f, nil
}
