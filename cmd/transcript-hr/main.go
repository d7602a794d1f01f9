package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"transcript-hr-go/internal/annotator"
	"transcript-hr-go/internal/api/handler"
	"transcript-hr-go/internal/api/router"
	"transcript-hr-go/internal/config"
	"transcript-hr-go/internal/constants"
	"transcript-hr-go/internal/extractor"
	"transcript-hr-go/internal/logger"
	"transcript-hr-go/internal/storage"
	"transcript-hr-go/internal/transcriber"

	"github.com/cloudwego/hertz/pkg/app/server"
	"github.com/cloudwego/hertz/pkg/common/hlog"
	hertzzerolog "github.com/hertz-contrib/logger/zerolog"
	"github.com/spf13/pflag"
)

// @title           Transcript HR API
// @version         1.0
// @description     面试音频转写与候选人字段抽取服务
// @BasePath  /api/v1
func main() {
	var configPath string
	pflag.StringVarP(&configPath, "config", "c", "", "配置文件路径")
	pflag.Parse()

	// 1. 加载配置文件
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "加载配置文件失败: %v\n", err)
		os.Exit(1)
	}

	// 2. 初始化日志系统
	initLogger(cfg)

	// 3. 初始化存储管理器
	ctx := context.Background()
	storageManager, err := storage.NewStorage(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("初始化存储管理器失败")
	}
	defer storageManager.Close()

	// 4. 初始化业务处理器
	audioHandler, err := initializeHandler(cfg, storageManager)
	if err != nil {
		logger.Fatal().Err(err).Msg("初始化音频处理器失败")
	}
	candidateHandler := handler.NewCandidateHandler(cfg, storageManager)
	logger.Info().Msg("业务处理器初始化成功")

	// 5. 启动音频处理消费者
	go func() {
		if err := audioHandler.StartAudioProcessConsumer(context.Background()); err != nil {
			logger.Fatal().Err(err).Msg("启动音频处理消费者失败")
		}
	}()

	// 6. 创建HTTP服务器。
	// 请求体上限放宽到音频大小限制之上，留出multipart封装的余量
	h := server.Default(
		server.WithHostPorts(cfg.Server.Address),
		server.WithMaxRequestBodySize(constants.MaxAudioFileSize+10*1024*1024),
	)

	// 7. 注册路由
	router.RegisterRoutes(h, cfg, audioHandler, candidateHandler)

	// 8. 启动HTTP服务器
	go func() {
		if err := h.Run(); err != nil {
			logger.Fatal().Err(err).Msg("启动HTTP服务器失败")
		}
	}()
	logger.Info().Str("address", cfg.Server.Address).Msg("HTTP服务器已启动")

	// 9. 等待终止信号
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info().Msg("接收到终止信号，正在优雅退出...")

	// 10. 优雅关闭HTTP服务器
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := h.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("服务器关闭失败")
	}

	logger.Info().Msg("优雅退出完成")
}

// 初始化日志系统，并让Hertz框架日志也走zerolog
func initLogger(cfg *config.Config) {
	logConfig := logger.Config{
		Level:        cfg.Logger.Level,
		Format:       cfg.Logger.Format,
		TimeFormat:   cfg.Logger.TimeFormat,
		ReportCaller: cfg.Logger.ReportCaller,
	}
	if os.Getenv("ENV") == "production" && cfg.Logger.Format == "" {
		logConfig.Level = "info"
		logConfig.Format = "json"
		logConfig.ReportCaller = false
	}
	logger.Init(logConfig)

	// 设置一些全局的字段
	logger.Logger = logger.Logger.With().
		Str("app", constants.ServiceName).
		Logger()

	// Hertz框架日志统一到zerolog输出
	hlog.SetLogger(hertzzerolog.From(logger.Logger))
}

// initializeHandler 组装音频处理器的各个组件
func initializeHandler(cfg *config.Config, storageManager *storage.Storage) (*handler.AudioHandler, error) {
	if storageManager == nil {
		return nil, fmt.Errorf("存储管理器未初始化")
	}
	if storageManager.MinIO == nil {
		return nil, fmt.Errorf("MinIO实例未初始化")
	}
	if storageManager.RabbitMQ == nil {
		return nil, fmt.Errorf("RabbitMQ实例未初始化")
	}
	if storageManager.MySQL == nil {
		return nil, fmt.Errorf("MySQL实例未初始化")
	}
	if storageManager.Redis == nil {
		return nil, fmt.Errorf("Redis实例未初始化")
	}

	// 实体标注器：关闭时全部走正则回退
	var tagger annotator.EntityTagger
	if cfg.Tagger.Enabled {
		tagger = annotator.NewProseTagger()
		logger.Info().Msg("实体标注器已启用")
	} else {
		tagger = annotator.Noop{}
		logger.Info().Msg("实体标注器已关闭，抽取走正则回退")
	}
	engine := extractor.NewEngine(tagger)

	// Whisper转写客户端
	whisperOpts := []transcriber.WhisperOption{
		transcriber.WithTimeout(time.Duration(cfg.Whisper.TimeoutSeconds) * time.Second),
	}
	if cfg.Whisper.Language != "" {
		whisperOpts = append(whisperOpts, transcriber.WithLanguage(cfg.Whisper.Language))
	}
	trans := transcriber.NewWhisperTranscriber(cfg.Whisper.ServerURL, whisperOpts...)
	logger.Info().
		Str("server_url", cfg.Whisper.ServerURL).
		Str("model", cfg.Whisper.Model).
		Msg("Whisper转写客户端初始化成功")

	return handler.NewAudioHandler(cfg, storageManager, trans, engine), nil
}
