package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"TianLuoDiWang/internal/classify"
	"TianLuoDiWang/internal/config"
	"TianLuoDiWang/internal/ingest"
	"TianLuoDiWang/internal/rdf"
	"TianLuoDiWang/internal/server"
	"TianLuoDiWang/internal/sparql"
	"TianLuoDiWang/internal/utils"
	"TianLuoDiWang/internal/vulnsrc"
	"TianLuoDiWang/pkg/cli"
)

func main() {
	parser := cli.NewParser()
	if err := parser.Parse(); err != nil {
		fmt.Fprintf(os.Stderr, "错误: %v\n\n", err)
		fmt.Fprintf(os.Stderr, "使用 -help 查看完整帮助信息\n")
		os.Exit(1)
	}

	options := parser.Options
	logger := utils.NewLogger("main")

	if options.Verbose {
		os.Setenv("DEBUG", "true")
	}

	logger.Info("启动天罗地网漏洞知识图谱服务 v1.0")

	// 配置：默认值 → 环境变量 → 命令行覆盖
	settings := config.Load()
	if options.Listen != "" {
		settings.ListenAddr = options.Listen
	}
	if options.StoreDir != "" {
		settings.StoreDir = options.StoreDir
	}
	if options.ClassesFile != "" {
		settings.ClassesFile = options.ClassesFile
	}
	if options.Timeout > 0 {
		settings.SPARQLTimeout = time.Duration(options.Timeout) * time.Second
	}

	// 三元组存储：进程内打开一次，退出时关闭
	store, err := rdf.OpenStore(settings.StoreDir, settings.GraphBase)
	if err != nil {
		logger.Error("初始化三元组存储失败: %v", err)
		os.Exit(1)
	}
	defer store.Close()

	classifier, err := classify.LoadClassifier(settings.ClassesFile)
	if err != nil {
		logger.Error("加载软件分类配置失败: %v", err)
		os.Exit(1)
	}

	nvdClient := vulnsrc.NewNVDClient(settings)
	pipeline := ingest.NewPipeline(nvdClient, classifier, store)

	switch options.Mode {
	case "server":
		executor := sparql.NewExecutor(sparql.NewEngine(store), settings.SPARQLTimeout)
		srv := server.NewServer(pipeline, executor, store)
		if err := srv.ListenAndServe(settings.ListenAddr); err != nil {
			logger.Error("HTTP服务退出: %v", err)
			os.Exit(1)
		}

	case "ingest":
		opts := vulnsrc.FetchOptions{Limit: options.Limit, Since: options.Since}
		count, err := pipeline.Run(context.Background(), opts)
		if err != nil {
			logger.Error("摄取失败: %v（已入库 %d 条）", err, count)
			os.Exit(1)
		}
		logger.Info("摄取完成，新入库 %d 条", count)

	case "backfill":
		count, err := pipeline.RunRange(context.Background(), options.StartYear, options.EndYear)
		if err != nil {
			logger.Error("回填失败: %v", err)
			os.Exit(1)
		}
		logger.Info("回填完成，总计新入库 %d 条", count)

	case "seed":
		if err := rdf.SeedSampleData(store); err != nil {
			logger.Error("样例数据写入失败: %v", err)
			os.Exit(1)
		}
	}
}
