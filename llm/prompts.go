package llm

import (
	"bytes"
	"fmt"
	"text/template"
)

// Template 提示词模板
type Template string

const (
	// TemplateQuery 问题 + schema + 历史 -> SQL
	TemplateQuery Template = "query"
	// TemplateResponse 问题 + schema + 历史 + SQL + 结果 -> 自然语言回答
	TemplateResponse Template = "response"
	// TemplateBreakdown 对上一轮回答的详细解释
	TemplateBreakdown Template = "breakdown"
)

// QueryStop SQL 生成时的停止序列
var QueryStop = []string{"\nSQLResult:"}

// Vars 模板变量，未用到的字段留空
type Vars struct {
	Question     string
	Schema       string
	History      string
	Query        string
	Result       string
	Answer       string
	IsPrediction bool
}

const queryTemplate = `Based on the table schema below, write only a SQL query that would answer the user's question.
Don't provide any extra information other than the sql query.
{{.Schema}}
Conversation History: {{.History}}

For example:
Question: "How many rows are there in the pune table?"
SQL Query: SELECT COUNT(Ward_Name) AS ward_count FROM pune;
Question: What was the total property tax collection in 2013-14 residential for aundh in pune city?
SQL Query: SELECT SUM(Tax_Collection_Cr_2013_14_Residential) AS total_tax_collected FROM pune WHERE Ward_Name = "Aundh";
Question: What was the total tax demand in 2015-16 commercial for erode in zone 3?
SQL Query: SELECT SUM(Tax_Demand_Cr_2015_16_Commercial) AS total_tax_demand FROM erode WHERE Zone_Name = "Zone-3";
Question: What was the property efficiency for the year 2015-16 commercial for Chennai?
SQL Query: SELECT ROUND((SUM(Tax_Collection_Cr_2015_16_Commercial) / SUM(Tax_Demand_Cr_2015_16_Commercial)) * 100, 2) AS property_efficiency_percent FROM chennai;
Question: What was the collection gap for the year 2016-17 residential for Thanjavur?
SQL Query: SELECT ROUND((SUM(Tax_Demand_Cr_2016_17_Residential) - SUM(Tax_Collection_Cr_2016_17_Residential)), 2) AS collection_gap FROM thanjavur;
Question: What was the collection gap for solapur from 2013-18 residential?
SQL Query: SELECT ROUND((SUM(Tax_Demand_Cr_2013_14_Residential) + SUM(Tax_Demand_Cr_2014_15_Residential) + SUM(Tax_Demand_Cr_2015_16_Residential) + SUM(Tax_Demand_Cr_2016_17_Residential) + SUM(Tax_Demand_Cr_2017_18_Residential)) - (SUM(Tax_Collection_Cr_2013_14_Residential) + SUM(Tax_Collection_Cr_2014_15_Residential) + SUM(Tax_Collection_Cr_2015_16_Residential) + SUM(Tax_Collection_Cr_2016_17_Residential) + SUM(Tax_Collection_Cr_2017_18_Residential)), 2) AS collection_gap FROM solapur;

Your turn:
Question: {{.Question}}
SQL Query:`

const responseTemplate = `Based on the table schema below, question, SQL query, and SQL response, write only a natural language response to the user's question.
{{.Schema}}
Conversation History: {{.History}}

Question: {{.Question}}
SQL Query: {{.Query}}
SQL Response: {{.Result}}
Natural Language Response (one sentence, state the number exactly as returned, do not add a currency unit):`

const breakdownTemplate = `You are explaining a previous answer about municipal property-tax records to the user.
{{.Schema}}
Conversation History: {{.History}}

Previous Question: {{.Question}}
Previous Answer: {{.Answer}}
{{- if .IsPrediction}}

The previous answer is a model-based prediction, not a database lookup. Explain that the yearly
tax collection and tax demand for 2013-14 to 2017-18 were summed across all wards of the city and a
straight trend line was fitted with ordinary least squares, then evaluated at the requested year.
Property efficiency is collection divided by demand times 100 and collection gap is demand minus
collection. Do not write any SQL.
{{- else}}

The previous answer came from a SQL query over the tables above. Explain which table and columns
were used, how the figures were aggregated, and what the result means. Amounts are in crore.
{{- end}}
Detailed Explanation:`

var templates = map[Template]*template.Template{
	TemplateQuery:     template.Must(template.New(string(TemplateQuery)).Parse(queryTemplate)),
	TemplateResponse:  template.Must(template.New(string(TemplateResponse)).Parse(responseTemplate)),
	TemplateBreakdown: template.Must(template.New(string(TemplateBreakdown)).Parse(breakdownTemplate)),
}

// Render 渲染提示词
func Render(t Template, vars Vars) (string, error) {
	tpl, ok := templates[t]
	if !ok {
		return "", fmt.Errorf("unknown prompt template %q", t)
	}
	var buf bytes.Buffer
	if err := tpl.Execute(&buf, vars); err != nil {
		return "", err
	}
	return buf.String(), nil
}
