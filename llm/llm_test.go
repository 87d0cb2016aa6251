package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"taxquery/config"
	"taxquery/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeProvider struct {
	prompt string
	stop   []string
	out    string
	err    error
	delay  time.Duration
}

func (f *fakeProvider) Name() string { return "fake" }

func (f *fakeProvider) Complete(ctx context.Context, prompt string, stop []string) (string, error) {
	f.prompt, f.stop = prompt, stop
	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	return f.out, f.err
}

func TestRender(t *testing.T) {
	out, err := Render(TemplateQuery, Vars{Question: "total demand in pune", Schema: "CREATE TABLE pune", History: "human: hi"})
	require.NoError(t, err)
	assert.Contains(t, out, "CREATE TABLE pune")
	assert.Contains(t, out, "Question: total demand in pune\nSQL Query:")

	out, err = Render(TemplateBreakdown, Vars{Question: "q", Answer: "The predicted tax demand for Pune Residential in 2030 is 22 Cr", IsPrediction: true})
	require.NoError(t, err)
	assert.Contains(t, out, "least squares")
	assert.NotContains(t, out, "came from a SQL query")

	out, err = Render(TemplateBreakdown, Vars{Question: "q", Answer: "a"})
	require.NoError(t, err)
	assert.Contains(t, out, "came from a SQL query")

	_, err = Render(Template("nope"), Vars{})
	assert.Error(t, err)
}

func TestClient_QueryUsesStop(t *testing.T) {
	p := &fakeProvider{out: "SELECT 1;\nSQLResult: [(1,)]"}
	c := NewClient(p, time.Second, nil)

	out, err := c.Generate(context.Background(), TemplateQuery, Vars{Question: "q"})
	require.NoError(t, err)
	assert.Equal(t, "SELECT 1;", out)
	assert.Equal(t, QueryStop, p.stop)

	p.out = "Total is 12.5"
	out, err = c.Generate(context.Background(), TemplateResponse, Vars{Question: "q"})
	require.NoError(t, err)
	assert.Equal(t, "Total is 12.5", out)
	assert.Nil(t, p.stop)
}

func TestClient_ErrorsBecomeServiceUnavailable(t *testing.T) {
	c := NewClient(&fakeProvider{err: assert.AnError}, 0, nil)
	_, err := c.Generate(context.Background(), TemplateResponse, Vars{})
	assert.ErrorIs(t, err, models.ErrServiceUnavailable)

	slow := NewClient(&fakeProvider{out: "x", delay: time.Second}, 20*time.Millisecond, nil)
	_, err = slow.Generate(context.Background(), TemplateResponse, Vars{})
	assert.ErrorIs(t, err, models.ErrServiceUnavailable)
}

func TestOpenAIProvider(t *testing.T) {
	var got map[string]interface{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"1","object":"chat.completion","model":"qwen-2.5-32b","choices":[{"index":0,"message":{"role":"assistant","content":"SELECT 1;"},"finish_reason":"stop"}]}`))
	}))
	defer srv.Close()

	p := NewOpenAIProvider(srv.URL+"/", "test-key", "qwen-2.5-32b", 0.1)
	out, err := p.Complete(context.Background(), "prompt", QueryStop)
	require.NoError(t, err)
	assert.Equal(t, "SELECT 1;", out)
	assert.Equal(t, "qwen-2.5-32b", got["model"])
	assert.Equal(t, []interface{}{"\nSQLResult:"}, got["stop"])
}

func TestNewProvider(t *testing.T) {
	t.Setenv("GROQ_API_KEY", "")
	t.Setenv("OPENAI_API_KEY", "")
	t.Setenv("GEMINI_API_KEY", "")

	_, err := NewProvider(context.Background(), config.LLMConfig{Provider: "openai"})
	assert.Error(t, err)

	_, err = NewProvider(context.Background(), config.LLMConfig{Provider: "gemini"})
	assert.Error(t, err)

	_, err = NewProvider(context.Background(), config.LLMConfig{Provider: "other", APIKey: "k"})
	assert.Error(t, err)

	t.Setenv("GROQ_API_KEY", "k")
	p, err := NewProvider(context.Background(), config.LLMConfig{Provider: "openai", Model: "m"})
	require.NoError(t, err)
	assert.Equal(t, "openai", p.Name())
}

func TestCleanSQL(t *testing.T) {
	assert.Equal(t, "SELECT 1;", CleanSQL("```sql\nSELECT 1;\n```"))
	assert.Equal(t, "SELECT 1", CleanSQL("SQL Query: SELECT 1"))
	assert.Equal(t, "SELECT 1", CleanSQL("  SELECT 1 "))
}
