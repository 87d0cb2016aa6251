package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"taxquery/metrics"
	"taxquery/models"

	"go.uber.org/zap"
)

// Generator 按模板生成文本
type Generator interface {
	Generate(ctx context.Context, t Template, vars Vars) (string, error)
}

// Client 渲染提示词并调用 provider，超时和调用失败统一包装为 ErrServiceUnavailable
type Client struct {
	provider Provider
	timeout  time.Duration
	logger   *zap.Logger
}

var _ Generator = (*Client)(nil)

// NewClient 创建生成器，timeout<=0 表示不额外设置超时
func NewClient(p Provider, timeout time.Duration, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{provider: p, timeout: timeout, logger: logger}
}

func (c *Client) Generate(ctx context.Context, t Template, vars Vars) (string, error) {
	prompt, err := Render(t, vars)
	if err != nil {
		return "", err
	}

	var stop []string
	if t == TemplateQuery {
		stop = QueryStop
	}

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	start := time.Now()
	out, err := c.provider.Complete(ctx, prompt, stop)
	elapsed := time.Since(start)
	metrics.LLMRequestDuration.WithLabelValues(string(t)).Observe(elapsed.Seconds())

	if err != nil {
		metrics.LLMRequestsTotal.WithLabelValues(string(t), "error").Inc()
		c.logger.Warn("llm call failed",
			zap.String("provider", c.provider.Name()),
			zap.String("template", string(t)),
			zap.Duration("elapsed", elapsed),
			zap.Error(err))
		return "", fmt.Errorf("%w: %v", models.ErrServiceUnavailable, err)
	}
	metrics.LLMRequestsTotal.WithLabelValues(string(t), "ok").Inc()
	c.logger.Debug("llm call",
		zap.String("template", string(t)),
		zap.Duration("elapsed", elapsed))

	return trimStop(strings.TrimSpace(out), stop), nil
}

// trimStop 部分服务会忽略 stop 参数，这里再截一次
func trimStop(s string, stop []string) string {
	for _, st := range stop {
		if idx := strings.Index(s, strings.TrimSpace(st)); idx >= 0 {
			s = strings.TrimSpace(s[:idx])
		}
	}
	return s
}

// CleanSQL 去掉 markdown 代码块和 "SQL Query:" 前缀
func CleanSQL(raw string) string {
	s := strings.TrimSpace(raw)
	s = strings.TrimPrefix(s, "```sql")
	s = strings.TrimPrefix(s, "```SQL")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	s = strings.TrimSpace(s)
	if strings.HasPrefix(strings.ToLower(s), "sql query:") {
		s = strings.TrimSpace(s[len("sql query:"):])
	}
	return s
}
