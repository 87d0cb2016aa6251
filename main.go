package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"taxquery/assistant"
	"taxquery/cli"
	"taxquery/config"
	"taxquery/database"
	"taxquery/dataset"
	"taxquery/llm"
	"taxquery/logger"
	"taxquery/router"
	"taxquery/service"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

// @title 房产税问答 API
// @version 1.0
// @description 市政房产税自然语言问答：数据库查询、最小二乘预测、SQL 展示与解释
// @host localhost:5000
// @BasePath /

var (
	configFile  string
	port        string
	showVersion bool
	chatMode    bool
)

func init() {
	flag.StringVar(&configFile, "config", "", "外部配置文件路径（可选）")
	flag.StringVar(&configFile, "c", "", "外部配置文件路径（简写）")
	flag.StringVar(&port, "port", "", "监听端口，如: 5000 或 :5000")
	flag.StringVar(&port, "p", "", "监听端口（简写）")
	flag.BoolVar(&showVersion, "version", false, "显示版本信息")
	flag.BoolVar(&showVersion, "v", false, "显示版本信息（简写）")
	flag.BoolVar(&chatMode, "chat", false, "在终端中对话，不启动 HTTP 服务")
}

func main() {
	flag.Parse()

	if showVersion {
		fmt.Println("房产税问答 v1.0.0")
		return
	}

	// .env 可选，不存在时忽略
	_ = godotenv.Load()

	// 加载配置（内置配置 + 可选的外部配置覆盖）
	cfg, err := config.LoadConfig(configFile)
	if err != nil {
		log.Fatalf("加载配置失败: %v", err)
	}

	if err := logger.Init(cfg.Log.Level, cfg.Log.Format); err != nil {
		log.Fatalf("初始化日志失败: %v", err)
	}
	defer logger.Sync()
	lg := logger.L()

	// 命令行参数覆盖端口配置
	if port != "" {
		if !strings.HasPrefix(port, ":") {
			port = ":" + port
		}
		cfg.Server.Port = port
		lg.Info("命令行指定端口", zap.String("port", port))
	}

	config.PrintConfig()

	ctx := context.Background()

	if err := database.Init(cfg, lg); err != nil {
		lg.Fatal("数据库初始化失败", zap.Error(err))
	}

	provider, err := llm.NewProvider(ctx, cfg.LLM)
	if err != nil {
		lg.Fatal("文本生成服务初始化失败", zap.Error(err))
	}

	a := assistant.New(assistant.Deps{
		Generator:  llm.NewClient(provider, cfg.LLM.Timeout, lg),
		Schema:     database.NewSchemaCache(database.DB, cfg.Database.SampleRows),
		Runner:     database.NewExecutor(database.DB),
		Loader:     dataset.NewFileLoader(cfg.Dataset.Source, cfg.Dataset.Pattern, lg),
		MaxHistory: cfg.Assistant.MaxHistory,
		Logger:     lg,
	})

	if chatMode {
		if err := cli.NewChat(a, os.Stdin, os.Stdout).Run(ctx); err != nil {
			lg.Fatal("终端对话异常退出", zap.Error(err))
		}
		return
	}

	// 会话锁：配置了 Redis 时跨实例互斥，否则进程内互斥
	var locker service.Locker = service.NewMemoryLocker()
	rdb, err := database.NewRedis(ctx, cfg.Redis)
	switch {
	case err != nil:
		lg.Warn("Redis 不可用，使用进程内会话锁", zap.Error(err))
	case rdb != nil:
		defer rdb.Close()
		locker = service.NewRedisLocker(rdb, time.Duration(cfg.Assistant.SessionLockSeconds)*time.Second)
	}

	var turns service.TurnStore
	if cfg.Database.PersistHistory {
		turns = database.NewHistoryRepo(database.DB)
	}
	sessions := service.NewSessionStore(locker, turns, lg)

	r := router.SetupRouter(cfg, router.Deps{
		Assistant: a,
		Sessions:  sessions,
		Loader:    dataset.NewFileLoader(cfg.Dataset.Source, cfg.Dataset.Pattern, lg),
		Logger:    lg,
	})

	lg.Info("房产税问答服务已启动",
		zap.String("api", fmt.Sprintf("http://localhost%s/api/", cfg.Server.Port)),
		zap.String("swagger", fmt.Sprintf("http://localhost%s/swagger/index.html", cfg.Server.Port)),
		zap.String("provider", provider.Name()),
	)

	if err := r.Run(cfg.Server.Port); err != nil {
		lg.Fatal("服务器启动失败", zap.Error(err))
	}
}
