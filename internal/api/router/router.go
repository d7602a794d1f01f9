package router

import (
	"context"
	"crypto/subtle"

	"transcript-hr-go/internal/api/handler"
	"transcript-hr-go/internal/config"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/app/server"
	"github.com/cloudwego/hertz/pkg/common/utils"
	"github.com/cloudwego/hertz/pkg/protocol/consts"
	"github.com/google/uuid"
	"github.com/hertz-contrib/keyauth"
)

// ExtractRequest 文本抽取调试接口的请求体
type ExtractRequest struct {
	Transcript string `json:"transcript"`
}

// TranscribeRequest 按对象键转写已存储音频的请求体
type TranscribeRequest struct {
	ObjectKey string `json:"object_key"`
}

// RegisterRoutes 注册 API 路由
func RegisterRoutes(h *server.Hertz, cfg *config.Config,
	audioHandler *handler.AudioHandler, candidateHandler *handler.CandidateHandler) {

	// 每个请求分配一个请求ID，写入响应头便于链路排查
	h.Use(func(c context.Context, ctx *app.RequestContext) {
		requestID := string(ctx.GetHeader("X-Request-ID"))
		if requestID == "" {
			requestID = uuid.NewString()
		}
		ctx.Set("request_id", requestID)
		ctx.Header("X-Request-ID", requestID)
		ctx.Next(c)
	})

	// 健康检查不经过鉴权
	h.GET("/api/v1/health", func(c context.Context, ctx *app.RequestContext) {
		ctx.JSON(consts.StatusOK, utils.H{"status": "ok"})
	})

	api := h.Group("/api/v1")

	// 按配置启用Bearer token鉴权
	if cfg.Auth.Enabled {
		api.Use(keyauth.New(
			keyauth.WithKeyLookUp("header:Authorization", "Bearer"),
			keyauth.WithValidator(func(c context.Context, ctx *app.RequestContext, key string) (bool, error) {
				ok := subtle.ConstantTimeCompare([]byte(key), []byte(cfg.Auth.APIKey)) == 1
				return ok, nil
			}),
			keyauth.WithErrorHandler(func(c context.Context, ctx *app.RequestContext, err error) {
				ctx.JSON(consts.StatusUnauthorized, utils.H{"error": "未授权访问"})
				ctx.Abort()
			}),
		))
	}

	// 音频上传：触发异步处理流水线
	api.POST("/audio/upload", func(c context.Context, ctx *app.RequestContext) {
		fileHeader, err := ctx.FormFile("file")
		if err != nil {
			ctx.JSON(consts.StatusBadRequest, utils.H{"error": "文件未找到"})
			return
		}

		file, err := fileHeader.Open()
		if err != nil {
			ctx.JSON(consts.StatusInternalServerError, utils.H{"error": "打开文件失败"})
			return
		}
		defer file.Close()

		resp, err := audioHandler.HandleAudioUpload(c, file, fileHeader.Size, fileHeader.Filename)
		if err != nil {
			ctx.JSON(consts.StatusInternalServerError, utils.H{"error": err.Error()})
			return
		}
		ctx.JSON(consts.StatusOK, resp)
	})

	// 同步转写调试接口：直接返回转写文本，不落库
	api.POST("/audio/transcribe", func(c context.Context, ctx *app.RequestContext) {
		fileHeader, err := ctx.FormFile("file")
		if err != nil {
			ctx.JSON(consts.StatusBadRequest, utils.H{"error": "文件未找到"})
			return
		}

		file, err := fileHeader.Open()
		if err != nil {
			ctx.JSON(consts.StatusInternalServerError, utils.H{"error": "打开文件失败"})
			return
		}
		defer file.Close()

		transcript, err := audioHandler.TranscribeOnly(c, file, fileHeader.Size, fileHeader.Filename)
		if err != nil {
			ctx.JSON(consts.StatusInternalServerError, utils.H{"error": err.Error()})
			return
		}
		ctx.JSON(consts.StatusOK, utils.H{"transcript": transcript})
	})

	// 转写已存储在MinIO中的音频对象
	api.POST("/transcribe", func(c context.Context, ctx *app.RequestContext) {
		var req TranscribeRequest
		if err := ctx.BindJSON(&req); err != nil {
			ctx.JSON(consts.StatusBadRequest, utils.H{"error": "请求体解析失败"})
			return
		}
		if req.ObjectKey == "" {
			ctx.JSON(consts.StatusBadRequest, utils.H{"error": "object_key不能为空"})
			return
		}

		transcript, err := audioHandler.TranscribeStored(c, req.ObjectKey)
		if err != nil {
			ctx.JSON(consts.StatusInternalServerError, utils.H{"error": err.Error()})
			return
		}
		ctx.JSON(consts.StatusOK, utils.H{"transcript": transcript})
	})

	// 文本抽取调试接口：对给定转写文本跑一遍抽取引擎
	api.POST("/extract", func(c context.Context, ctx *app.RequestContext) {
		var req ExtractRequest
		if err := ctx.BindJSON(&req); err != nil {
			ctx.JSON(consts.StatusBadRequest, utils.H{"error": "请求体解析失败"})
			return
		}
		if req.Transcript == "" {
			ctx.JSON(consts.StatusBadRequest, utils.H{"error": "transcript不能为空"})
			return
		}

		result, err := audioHandler.ExtractFromTranscript(c, req.Transcript)
		if err != nil {
			ctx.JSON(consts.StatusInternalServerError, utils.H{"error": err.Error()})
			return
		}
		ctx.JSON(consts.StatusOK, result)
	})

	// 提交状态查询
	api.GET("/submissions/:uuid", candidateHandler.HandleGetSubmission)

	// 候选人管理
	api.POST("/candidates", candidateHandler.HandleCreateCandidate)
	api.GET("/candidates", candidateHandler.HandleListCandidates)
	api.GET("/candidates/:id", candidateHandler.HandleGetCandidate)
	api.DELETE("/candidates/:id", candidateHandler.HandleDeleteCandidate)
}
