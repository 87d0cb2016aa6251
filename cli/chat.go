package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"taxquery/assistant"

	"github.com/charmbracelet/glamour"
	"github.com/fatih/color"
)

// Chat 终端对话
type Chat struct {
	assistant *assistant.Assistant
	in        io.Reader
	out       io.Writer
	// Style glamour 样式，空串表示不渲染 markdown
	Style   string
	history *assistant.History
}

// NewChat 创建终端对话，默认使用 dark 样式
func NewChat(a *assistant.Assistant, in io.Reader, out io.Writer) *Chat {
	return &Chat{
		assistant: a,
		in:        in,
		out:       out,
		Style:     "dark",
		history:   assistant.NewHistory(),
	}
}

var (
	promptColor = color.New(color.FgCyan, color.Bold)
	routeColor  = color.New(color.FgHiBlack)
	errColor    = color.RGB(250, 150, 150)
)

const helpText = `Commands:
  /sql      show the SQL for the last question
  /explain  explain the last answer
  /history  print the conversation
  /quit     exit`

// Run 读取输入直到 EOF、/quit 或 ctx 取消
func (c *Chat) Run(ctx context.Context) error {
	c.print(assistant.Greeting)
	fmt.Fprintln(c.out, helpText)

	scanner := bufio.NewScanner(c.in)
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		promptColor.Fprint(c.out, "> ")
		if !scanner.Scan() {
			return scanner.Err()
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		var ans assistant.Answer
		switch strings.ToLower(line) {
		case "/quit", "/exit", "exit", "quit":
			return nil
		case "/help":
			fmt.Fprintln(c.out, helpText)
			continue
		case "/history":
			for _, t := range c.history.Snapshot() {
				fmt.Fprintf(c.out, "[%s] %s\n", t.Role, t.Content)
			}
			continue
		case "/sql":
			ans = c.assistant.LastQuery(ctx, c.history)
		case "/explain":
			ans = c.assistant.Explain(ctx, c.history)
		default:
			ans = c.assistant.Ask(ctx, line, c.history)
		}

		if ans.Route == assistant.RouteShowQuery && !strings.Contains(ans.Text, "```") && strings.Contains(strings.ToLower(ans.Text), "select") {
			c.print("```sql\n" + ans.Text + "\n```")
		} else {
			c.print(ans.Text)
		}
		routeColor.Fprintf(c.out, "(%s)\n", ans.Route)
	}
}

func (c *Chat) print(text string) {
	if c.Style == "" {
		fmt.Fprintln(c.out, text)
		return
	}
	out, err := glamour.Render(text, c.Style)
	if err != nil {
		errColor.Fprintf(c.out, "render error: %v\n", err)
		fmt.Fprintln(c.out, text)
		return
	}
	fmt.Fprint(c.out, out)
}
