package assistant

import (
	"regexp"
	"strconv"
	"strings"

	"taxquery/models"
)

var (
	yearPattern = regexp.MustCompile(`\b(201[3-9]|20[2-4][0-9]|2050)\b`)
	// 2013-18、2015-16、2013 to 2017
	yearRangePattern = regexp.MustCompile(`\b(20\d{2})\s*(?:-|–|to)\s*(\d{4}|\d{2})\b`)
)

// ExtractContext 从问题中抽取城市、物业类型和单一年份
// 跨越多个财年的区间不给出年份，由数据库查询按区间汇总
func ExtractContext(question string) models.QueryContext {
	lower := strings.ToLower(question)
	qc := models.QueryContext{PropertyType: models.PropertyResidential}

	for _, c := range models.SupportedCities {
		if strings.Contains(lower, strings.ToLower(c)) {
			qc.City = c
			break
		}
	}
	for _, p := range models.PropertyTypes {
		if strings.Contains(lower, strings.ToLower(p)) {
			qc.PropertyType = p
			break
		}
	}

	if m := yearRangePattern.FindStringSubmatch(question); m != nil {
		start, _ := strconv.Atoi(m[1])
		end, _ := strconv.Atoi(m[2])
		if len(m[2]) == 2 {
			end += start / 100 * 100
		}
		if end-start != 1 {
			return qc
		}
		if yearPattern.MatchString(m[1]) {
			qc.Year = &start
		}
		return qc
	}

	if m := yearPattern.FindString(question); m != "" {
		y, _ := strconv.Atoi(m)
		qc.Year = &y
	}
	return qc
}
