package assistant

import (
	"strings"

	"taxquery/models"
)

// Route 问题的处理路径
type Route string

const (
	RoutePleasantry Route = "pleasantry"
	RouteMeta       Route = "meta"
	RouteShowQuery  Route = "show_query"
	RouteBreakdown  Route = "breakdown"
	RouteForecast   Route = "forecast"
	RouteDatabase   Route = "database_lookup"
)

// IsEdge 不需要数据集的固定/回顾类路径
func (r Route) IsEdge() bool {
	switch r {
	case RoutePleasantry, RouteMeta, RouteShowQuery, RouteBreakdown:
		return true
	}
	return false
}

// minForecastYear 聊天中只对 2019 及以后的年份给出预测
const minForecastYear = 2019

// Input 分类所需的全部信息
type Input struct {
	Question   string // 已小写并去掉首尾空白
	Context    models.QueryContext
	History    *History
	HasDataset bool
}

// NewInput 规范化问题文本
func NewInput(question string, qc models.QueryContext, h *History, hasDataset bool) *Input {
	if h == nil {
		h = &History{}
	}
	return &Input{
		Question:   strings.ToLower(strings.TrimSpace(question)),
		Context:    qc,
		History:    h,
		HasDataset: hasDataset,
	}
}

// Rule 一条分类规则，Reply 非空时直接作为回答
type Rule struct {
	Name  string
	Route Route
	Reply string
	Match func(in *Input) bool
}

// Rules 按优先级排列，第一条命中的规则生效
var Rules = []Rule{
	{Name: "greeting", Route: RoutePleasantry, Reply: ReplyGreeting, Match: exactly(greetingPhrases)},
	{Name: "thanks", Route: RoutePleasantry, Reply: ReplyThanks, Match: exactly(thanksPhrases)},
	{Name: "goodbye", Route: RoutePleasantry, Reply: ReplyGoodbye, Match: exactly(goodbyePhrases)},
	{Name: "city list", Route: RouteMeta, Reply: ReplyCities, Match: containing(cityListPhrases)},
	{Name: "example questions", Route: RouteMeta, Reply: ReplyExamples, Match: containing(exampleQuestionPhrases)},
	{Name: "show last query", Route: RouteShowQuery, Match: containing(showQueryPhrases)},
	{Name: "breakdown", Route: RouteBreakdown, Match: wantsBreakdown},
	{Name: "forecast", Route: RouteForecast, Match: wantsForecast},
	{Name: "database lookup", Route: RouteDatabase, Match: func(*Input) bool { return true }},
}

// Classify 返回第一条命中的规则
func Classify(in *Input) Rule {
	for _, r := range Rules {
		if r.Match(in) {
			return r
		}
	}
	return Rules[len(Rules)-1]
}

func exactly(phrases []string) func(*Input) bool {
	return func(in *Input) bool {
		for _, p := range phrases {
			if in.Question == p {
				return true
			}
		}
		return false
	}
}

func containing(phrases []string) func(*Input) bool {
	return func(in *Input) bool {
		return containsAny(in.Question, phrases)
	}
}

func containsAny(s string, phrases []string) bool {
	for _, p := range phrases {
		if strings.Contains(s, p) {
			return true
		}
	}
	return false
}

func wantsBreakdown(in *Input) bool {
	if !containsAny(in.Question, breakdownPhrases) {
		return false
	}
	_, _, ok := in.History.LastExchange()
	return ok
}

// wantsForecast 单一年份、数据集可用且年份超出历史区间
// "collection gap"/"property efficiency" 的条件 (year > 2018) 与直接预测的条件重合
func wantsForecast(in *Input) bool {
	if !in.HasDataset || !in.Context.HasYear() {
		return false
	}
	return *in.Context.Year >= minForecastYear
}
