package assistant

import (
	"testing"

	"taxquery/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func yearPtr(y int) *int { return &y }

func TestExtractContext(t *testing.T) {
	cases := []struct {
		q    string
		city string
		pt   string
		year *int
	}{
		{"What will be the tax demand for the year 2019 in Pune for residential?", "Pune", models.PropertyResidential, yearPtr(2019)},
		{"total tax demand in 2015-16 commercial for erode in zone 3", "Erode", models.PropertyCommercial, yearPtr(2015)},
		{"What was the collection gap for Solapur from 2013-18 residential?", "Solapur", models.PropertyResidential, nil},
		{"efficiency of chennai from 2013 to 2017", "Chennai", models.PropertyResidential, nil},
		{"tax collection for TIRUCHIRAPPALLI in 2050", "Tiruchirappalli", models.PropertyResidential, yearPtr(2050)},
		{"tax collection in 2051 for Jabalpur", "Jabalpur", models.PropertyResidential, nil},
		{"tax collection in 2012", "", models.PropertyResidential, nil},
	}
	for _, c := range cases {
		qc := ExtractContext(c.q)
		assert.Equal(t, c.city, qc.City, c.q)
		assert.Equal(t, c.pt, qc.PropertyType, c.q)
		if c.year == nil {
			assert.Nil(t, qc.Year, c.q)
		} else if assert.NotNil(t, qc.Year, c.q) {
			assert.Equal(t, *c.year, *qc.Year, c.q)
		}
	}
}

func TestRules_Table(t *testing.T) {
	require.NotEmpty(t, Rules)
	names := map[string]bool{}
	for _, r := range Rules {
		assert.NotEmpty(t, r.Name)
		assert.False(t, names[r.Name], "duplicate rule %s", r.Name)
		names[r.Name] = true
		if r.Reply != "" {
			assert.True(t, r.Route.IsEdge(), r.Name)
		}
	}
	last := Rules[len(Rules)-1]
	assert.Equal(t, RouteDatabase, last.Route)
	assert.True(t, last.Match(NewInput("", models.QueryContext{}, nil, false)))
}

func TestClassify_Precedence(t *testing.T) {
	withExchange := NewHistory()
	withExchange.Append(models.RoleHuman, "What was the tax demand in 2015-16 for Pune?", RouteDatabase)
	withExchange.Append(models.RoleAssistant, "The total tax demand is 14 crore", RouteDatabase)

	cases := []struct {
		q          string
		h          *History
		hasDataset bool
		want       string
	}{
		{"  Hello ", nil, true, "greeting"},
		{"hello there, what will be the demand for pune in 2020?", nil, true, "forecast"},
		{"ty", nil, false, "thanks"},
		{"What are the names of the tables in the database?", nil, false, "city list"},
		{"what questions can i ask to the database?", nil, false, "example questions"},
		{"show sql for the breakdown", withExchange, true, "show last query"},
		{"brief", withExchange, false, "breakdown"},
		{"brief", NewHistory(), false, "database lookup"},
		{"tax demand for pune in 2019", nil, true, "forecast"},
		{"tax demand for pune in 2019", nil, false, "database lookup"},
		{"tax demand for pune in 2018", nil, true, "database lookup"},
	}
	for _, c := range cases {
		in := NewInput(c.q, ExtractContext(c.q), c.h, c.hasDataset)
		assert.Equal(t, c.want, Classify(in).Name, c.q)
	}
}

func TestHistory(t *testing.T) {
	h := NewHistory()
	require.Len(t, h.Turns, 1)
	assert.Equal(t, Greeting, h.Turns[0].Content)

	_, ok := h.LastQuestion()
	assert.False(t, ok)
	last, ok := h.LastAnswer()
	assert.True(t, ok)
	assert.Equal(t, Greeting, last)

	h.Append(models.RoleHuman, "q1", RouteDatabase)
	h.Append(models.RoleAssistant, "a1", RouteDatabase)
	h.Append(models.RoleHuman, "thanks", RoutePleasantry)
	h.Append(models.RoleAssistant, ReplyThanks, RoutePleasantry)

	q, ok := h.LastQuestion()
	assert.True(t, ok)
	assert.Equal(t, "q1", q)

	q, a, ok := h.LastExchange()
	assert.True(t, ok)
	assert.Equal(t, "q1", q)
	assert.Equal(t, "a1", a)

	assert.Len(t, h.Recent(3), 3)
	assert.Len(t, h.Recent(0), 5)
	assert.Equal(t, "Human: thanks\nAI: "+ReplyThanks, FormatTurns(h.Recent(2)))
}
