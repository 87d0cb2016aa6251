package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"taxquery/assistant"
	"taxquery/llm"
	"taxquery/models"
	"taxquery/service"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubGen struct {
	calls int
}

func (g *stubGen) Generate(_ context.Context, t llm.Template, vars llm.Vars) (string, error) {
	g.calls++
	switch t {
	case llm.TemplateQuery:
		return "SELECT COUNT(Ward_Name) FROM pune;", nil
	case llm.TemplateResponse:
		return "There are 15 rows in the pune table.", nil
	default:
		return "explained: " + vars.Answer, nil
	}
}

type stubSchema struct{}

func (stubSchema) Schema(context.Context) (string, error) { return "CREATE TABLE `pune` (...)", nil }

type stubRunner struct{}

func (stubRunner) Run(context.Context, string) (string, error) { return "[(15,)]", nil }

type stubLoader struct{}

func (stubLoader) Load(_ context.Context, city string) (*models.Dataset, error) {
	if city != "Pune" {
		return nil, fmt.Errorf("%w: %s", models.ErrDataUnavailable, city)
	}
	return puneDataset(), nil
}

// puneDataset 住宅应收 10,12,14,16,18，征收 8,9,11,12,14
func puneDataset() *models.Dataset {
	collections := []float64{8, 9, 11, 12, 14}
	demands := []float64{10, 12, 14, 16, 18}
	ds := &models.Dataset{City: "Pune", Columns: []string{"Ward_Name"}}
	rec := models.HistoricalRecord{Area: "Aundh", Figures: map[string]float64{}}
	for i, y := range models.HistoricalYears() {
		c := models.CollectionColumn(y, models.PropertyResidential)
		d := models.DemandColumn(y, models.PropertyResidential)
		ds.Columns = append(ds.Columns, c, d)
		rec.Figures[c] = collections[i]
		rec.Figures[d] = demands[i]
	}
	ds.Records = []models.HistoricalRecord{rec}
	return ds
}

func newAssistantRouter(t *testing.T) (*gin.Engine, *stubGen) {
	gin.SetMode(gin.TestMode)
	gen := &stubGen{}
	a := assistant.New(assistant.Deps{
		Generator: gen,
		Schema:    stubSchema{},
		Runner:    stubRunner{},
		Loader:    stubLoader{},
	})
	h := NewAssistantHandler(a, service.NewSessionStore(nil, nil, nil))

	r := gin.New()
	r.POST("/api/get_response", h.GetResponse)
	r.POST("/api/get_sql_query", h.GetSQLQuery)
	r.POST("/api/get_breakdown", h.GetBreakdown)
	r.GET("/api/history", h.GetHistory)
	r.GET("/api/cities", h.GetCities)
	return r, gen
}

func postJSON(r *gin.Engine, path string, body interface{}) *httptest.ResponseRecorder {
	b, _ := json.Marshal(body)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeData(t *testing.T, w *httptest.ResponseRecorder, out interface{}) {
	var resp struct {
		Code int             `json:"code"`
		Data json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Equal(t, 200, resp.Code)
	require.NoError(t, json.Unmarshal(resp.Data, out))
}

func TestAssistantHandler_GetResponse_Forecast(t *testing.T) {
	r, gen := newAssistantRouter(t)

	w := postJSON(r, "/api/get_response", AskRequest{Query: "What will be the tax demand for the year 2019 in Pune for residential?"})
	require.Equal(t, http.StatusOK, w.Code)

	var resp AskResponse
	decodeData(t, w, &resp)
	assert.NotEmpty(t, resp.SessionID)
	assert.Equal(t, "The predicted tax demand for Pune Residential in 2019 is 22 Cr", resp.Response)
	assert.Equal(t, assistant.RouteForecast, resp.Route)
	assert.Equal(t, "Pune", resp.City)
	assert.Equal(t, "tax demand", resp.Metric)
	require.NotNil(t, resp.Year)
	assert.Equal(t, 2019, *resp.Year)
	require.NotNil(t, resp.Value)
	assert.Equal(t, 22.0, *resp.Value)
	assert.Equal(t, 0, gen.calls)
}

func TestAssistantHandler_GetResponse_MissingQuery(t *testing.T) {
	r, _ := newAssistantRouter(t)

	w := postJSON(r, "/api/get_response", map[string]string{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAssistantHandler_SessionFlow(t *testing.T) {
	r, _ := newAssistantRouter(t)

	w := postJSON(r, "/api/get_response", AskRequest{Query: "How many rows are there in the pune table?"})
	var first AskResponse
	decodeData(t, w, &first)
	assert.Equal(t, assistant.RouteDatabase, first.Route)
	assert.Equal(t, "There are 15 rows in the pune table.", first.Response)

	w = postJSON(r, "/api/get_sql_query", FollowUpRequest{SessionID: first.SessionID})
	var sql SQLQueryResponse
	decodeData(t, w, &sql)
	assert.Equal(t, "SELECT COUNT(Ward_Name) FROM pune;", sql.SQLQuery)

	w = postJSON(r, "/api/get_breakdown", FollowUpRequest{SessionID: first.SessionID})
	var bd BreakdownResponse
	decodeData(t, w, &bd)
	assert.Equal(t, "explained: There are 15 rows in the pune table.", bd.Breakdown)

	req := httptest.NewRequest(http.MethodGet, "/api/history?session_id="+first.SessionID, nil)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	var turns []models.ConversationTurn
	decodeData(t, w, &turns)
	require.Len(t, turns, 5)
	assert.Equal(t, assistant.Greeting, turns[0].Content)
	assert.Equal(t, "How many rows are there in the pune table?", turns[1].Content)
}

func TestAssistantHandler_StatelessFollowUp(t *testing.T) {
	r, gen := newAssistantRouter(t)

	w := postJSON(r, "/api/get_sql_query", FollowUpRequest{
		Query:        "What will be the tax demand for the year 2019 in Pune?",
		LastResponse: "The predicted tax demand for Pune Residential in 2019 is 22 Cr",
	})
	var sql SQLQueryResponse
	decodeData(t, w, &sql)
	assert.Equal(t, assistant.ReplyPrediction, sql.SQLQuery)
	assert.Equal(t, 0, gen.calls)

	w = postJSON(r, "/api/get_sql_query", FollowUpRequest{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAssistantHandler_History_NotFound(t *testing.T) {
	r, _ := newAssistantRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/history?session_id=nope", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code)

	req = httptest.NewRequest(http.MethodGet, "/api/history", nil)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAssistantHandler_GetCities(t *testing.T) {
	r, _ := newAssistantRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/cities", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Tiruchirappalli")
	assert.Contains(t, w.Body.String(), "Commercial")
}
