package assistant

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"taxquery/dataset"
	"taxquery/forecast"
	"taxquery/llm"
	"taxquery/metrics"
	"taxquery/models"

	"go.uber.org/zap"
)

// SchemaProvider 数据库表结构描述
type SchemaProvider interface {
	Schema(ctx context.Context) (string, error)
}

// QueryRunner 执行 SQL 并以文本返回结果
type QueryRunner interface {
	Run(ctx context.Context, query string) (string, error)
}

// Assistant 路由分发：分类、预测、委托文本生成服务
type Assistant struct {
	gen        llm.Generator
	schema     SchemaProvider
	runner     QueryRunner
	loader     dataset.Loader
	maxHistory int
	logger     *zap.Logger
}

// Deps Assistant 的依赖，Loader 只在 Ask 中使用
type Deps struct {
	Generator  llm.Generator
	Schema     SchemaProvider
	Runner     QueryRunner
	Loader     dataset.Loader
	MaxHistory int
	Logger     *zap.Logger
}

// New 创建 Assistant
func New(d Deps) *Assistant {
	if d.MaxHistory <= 0 {
		d.MaxHistory = 3
	}
	if d.Logger == nil {
		d.Logger = zap.NewNop()
	}
	return &Assistant{
		gen:        d.Generator,
		schema:     d.Schema,
		runner:     d.Runner,
		loader:     d.Loader,
		maxHistory: d.MaxHistory,
		logger:     d.Logger,
	}
}

// Answer 一轮回答
type Answer struct {
	Text    string              `json:"response"`
	Route   Route               `json:"route"`
	Rule    string              `json:"rule"`
	Context models.QueryContext `json:"context"`
	// 预测路径给出的指标和数值
	Metric forecast.Metric `json:"metric,omitempty"`
	Value  *float64        `json:"value,omitempty"`
}

// Respond 处理一轮问题，结果追加到 history
func (a *Assistant) Respond(ctx context.Context, question string, qc models.QueryContext, h *History, ds *models.Dataset) string {
	return a.respond(ctx, question, qc, h, ds).Text
}

// Ask 抽取上下文、加载城市数据集后回答；数据集不可用时按无数据处理
func (a *Assistant) Ask(ctx context.Context, question string, h *History) Answer {
	qc := ExtractContext(question)
	var ds *models.Dataset
	if qc.City != "" && a.loader != nil && !Classify(NewInput(question, qc, h, false)).Route.IsEdge() {
		loaded, err := a.loader.Load(ctx, qc.City)
		if err != nil {
			a.logger.Warn("dataset unavailable", zap.String("city", qc.City), zap.Error(err))
		} else {
			ds = loaded
		}
	}
	return a.respond(ctx, question, qc, h, ds)
}

// LastQuery 为最近一个问题生成 SQL
func (a *Assistant) LastQuery(ctx context.Context, h *History) Answer {
	ans := Answer{Route: RouteShowQuery, Rule: "show last query"}
	ans.Text = a.showLastQuery(ctx, h.Recent(a.maxHistory), h)
	h.Append(models.RoleAssistant, ans.Text, ans.Route)
	a.count(ans)
	return ans
}

// Explain 解释最近一个回答
func (a *Assistant) Explain(ctx context.Context, h *History) Answer {
	ans := Answer{Route: RouteBreakdown, Rule: "breakdown"}
	if _, _, ok := h.LastExchange(); !ok {
		ans.Text = ReplyNoBreakdown
	} else {
		ans.Text = a.breakdown(ctx, h.Recent(a.maxHistory), h)
	}
	h.Append(models.RoleAssistant, ans.Text, ans.Route)
	a.count(ans)
	return ans
}

func (a *Assistant) respond(ctx context.Context, question string, qc models.QueryContext, h *History, ds *models.Dataset) Answer {
	if h == nil {
		h = &History{}
	}
	recent := h.Recent(a.maxHistory)

	rule := Classify(NewInput(question, qc, h, ds != nil))
	ans := Answer{Route: rule.Route, Rule: rule.Name, Context: qc}

	switch {
	case rule.Reply != "":
		ans.Text = rule.Reply
	case rule.Route == RouteShowQuery:
		ans.Text = a.showLastQuery(ctx, recent, h)
	case rule.Route == RouteBreakdown:
		ans.Text = a.breakdown(ctx, recent, h)
	case ds == nil:
		ans.Text = ReplyNotFound
	case rule.Route == RouteForecast:
		a.forecast(&ans, question, qc, ds)
	default:
		ans.Text = a.lookup(ctx, question, recent)
	}

	a.logger.Debug("answered",
		zap.String("rule", rule.Name),
		zap.String("route", string(rule.Route)),
		zap.String("city", qc.City))
	a.count(ans)

	h.Append(models.RoleHuman, question, rule.Route)
	h.Append(models.RoleAssistant, ans.Text, rule.Route)
	return ans
}

func (a *Assistant) count(ans Answer) {
	metrics.RoutesTotal.WithLabelValues(string(ans.Route)).Inc()
}

func (a *Assistant) showLastQuery(ctx context.Context, recent []models.ConversationTurn, h *History) string {
	question, ok := h.LastQuestion()
	if !ok {
		return ReplyNoPreviousQuery
	}
	if last, ok := h.LastAnswer(); ok && strings.Contains(strings.ToLower(last), predictionMarker) {
		return ReplyPrediction
	}
	schema, err := a.schema.Schema(ctx)
	if err != nil {
		return a.failed("schema", err)
	}
	out, err := a.gen.Generate(ctx, llm.TemplateQuery, llm.Vars{
		Question: question,
		Schema:   schema,
		History:  FormatTurns(recent),
	})
	if err != nil {
		return a.failed("query generation", err)
	}
	return out
}

func (a *Assistant) breakdown(ctx context.Context, recent []models.ConversationTurn, h *History) string {
	question, answer, _ := h.LastExchange()
	schema, err := a.schema.Schema(ctx)
	if err != nil {
		return a.failed("schema", err)
	}
	out, err := a.gen.Generate(ctx, llm.TemplateBreakdown, llm.Vars{
		Question:     question,
		Answer:       answer,
		Schema:       schema,
		History:      FormatTurns(recent),
		IsPrediction: strings.Contains(strings.ToLower(answer), predictionMarker),
	})
	if err != nil {
		return a.failed("breakdown", err)
	}
	return out
}

// forecastMetric 按 collection gap、efficiency、demand、collection 的顺序匹配
func forecastMetric(question string) (forecast.Metric, bool) {
	q := strings.ToLower(question)
	switch {
	case strings.Contains(q, "collection gap"):
		return forecast.MetricGap, true
	case strings.Contains(q, "efficiency"):
		return forecast.MetricEfficiency, true
	case strings.Contains(q, "demand"):
		return forecast.MetricDemand, true
	case strings.Contains(q, "collection"):
		return forecast.MetricCollection, true
	}
	return "", false
}

func (a *Assistant) forecast(ans *Answer, question string, qc models.QueryContext, ds *models.Dataset) {
	m, ok := forecastMetric(question)
	if !ok {
		ans.Text = ReplyClarify
		return
	}
	model, err := forecast.Fit(ds, qc.PropertyType)
	if err != nil {
		a.logger.Warn("forecast model unavailable", zap.String("city", qc.City), zap.Error(err))
		ans.Text = ReplyNotFound
		return
	}
	p, err := model.Predict(*qc.Year)
	if err != nil {
		ans.Text = ReplyNotFound
		return
	}
	metrics.ForecastsTotal.WithLabelValues(string(m)).Inc()

	v, low := forecast.Value(p, m)
	text := fmt.Sprintf("The predicted %s for %s %s in %d is %s", m, qc.City, qc.PropertyType, *qc.Year, FormatAmount(v))
	if m.Unit() == "%" {
		text += "%"
	} else {
		text += " " + m.Unit()
	}
	if low {
		text += LowConfidenceNote
	}
	ans.Text, ans.Metric, ans.Value = text, m, &v
}

func (a *Assistant) lookup(ctx context.Context, question string, recent []models.ConversationTurn) string {
	schema, err := a.schema.Schema(ctx)
	if err != nil {
		return a.failed("schema", err)
	}
	history := FormatTurns(recent)

	raw, err := a.gen.Generate(ctx, llm.TemplateQuery, llm.Vars{Question: question, Schema: schema, History: history})
	if err != nil {
		return a.failed("query generation", err)
	}
	query := llm.CleanSQL(raw)

	result, err := a.runner.Run(ctx, query)
	if err != nil {
		metrics.DBQueriesTotal.WithLabelValues("error").Inc()
		return a.failed("query execution", err)
	}
	metrics.DBQueriesTotal.WithLabelValues("ok").Inc()

	text, err := a.gen.Generate(ctx, llm.TemplateResponse, llm.Vars{
		Question: question,
		Schema:   schema,
		History:  history,
		Query:    query,
		Result:   result,
	})
	if err != nil {
		return a.failed("response generation", err)
	}
	if isCountQuestion(question, query) {
		return strings.TrimSpace(text)
	}
	return WithCroreSuffix(text)
}

// isCountQuestion 计数类问题或 COUNT 查询，结果不是金额
func isCountQuestion(question, query string) bool {
	if strings.Contains(strings.ToLower(strings.ReplaceAll(query, " ", "")), "count(") {
		return true
	}
	return containsAny(strings.ToLower(question), countPhrases)
}

func (a *Assistant) failed(step string, err error) string {
	if !errors.Is(err, models.ErrServiceUnavailable) {
		err = fmt.Errorf("%w: %v", models.ErrServiceUnavailable, err)
	}
	a.logger.Error("collaborator call failed", zap.String("step", step), zap.Error(err))
	return ReplyUnavailable
}

// WithCroreSuffix 金额类回答追加 " crore"，效率、计数类或已带单位的回答保持原样
func WithCroreSuffix(text string) string {
	t := strings.TrimSpace(text)
	if t == "" || containsAny(strings.ToLower(t), unitlessMarkers) {
		return t
	}
	return strings.TrimRight(t, ".") + " crore"
}

// FormatAmount 最短表示，不补零
func FormatAmount(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
