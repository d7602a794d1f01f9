package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"transcript-hr-go/internal/config"
	"transcript-hr-go/internal/constants"
	"transcript-hr-go/internal/extractor"
	"transcript-hr-go/internal/logger"
	"transcript-hr-go/internal/storage"
	"transcript-hr-go/internal/storage/models"
	"transcript-hr-go/internal/tracing"
	"transcript-hr-go/internal/transcriber"
	"transcript-hr-go/pkg/utils"

	"github.com/gofrs/uuid/v5"
)

// AudioHandler 音频处理器，负责协调"上传→转写→抽取→入库"的完整流程
type AudioHandler struct {
	cfg         *config.Config
	storage     *storage.Storage
	transcriber transcriber.Transcriber
	engine      *extractor.Engine
}

// NewAudioHandler 创建音频处理器
func NewAudioHandler(
	cfg *config.Config,
	storage *storage.Storage,
	trans transcriber.Transcriber,
	engine *extractor.Engine,
) *AudioHandler {
	return &AudioHandler{
		cfg:         cfg,
		storage:     storage,
		transcriber: trans,
		engine:      engine,
	}
}

// AudioUploadResponse 音频上传响应
type AudioUploadResponse struct {
	SubmissionUUID string `json:"submission_uuid"`
	Status         string `json:"status"`
}

// ValidateAudioUpload 校验上传文件的扩展名和大小，返回规整后的扩展名
func ValidateAudioUpload(filename string, fileSize int64) (string, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	if !constants.AllowedAudioExtensions[ext] {
		return "", fmt.Errorf("不支持的音频格式: %s", ext)
	}
	if fileSize <= 0 {
		return "", fmt.Errorf("上传文件为空")
	}
	if fileSize > constants.MaxAudioFileSize {
		return "", fmt.Errorf("文件大小超过限制 (%d字节)", constants.MaxAudioFileSize)
	}
	return ext, nil
}

// HandleAudioUpload 处理音频上传请求。
// 流程：校验 → 流式上传MinIO(同时计算MD5) → MD5去重检查 →
// 写提交记录 → 发布音频上传事件。
// 检测到重复文件时删除刚上传的对象并返回原提交的UUID。
func (h *AudioHandler) HandleAudioUpload(ctx context.Context, reader io.Reader, fileSize int64,
	filename string) (*AudioUploadResponse, error) {

	ext, err := ValidateAudioUpload(filename, fileSize)
	if err != nil {
		return nil, err
	}

	// 生成UUIDv7，按时间有序便于排查
	uuidV7, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("生成UUIDv7失败: %w", err)
	}
	submissionUUID := uuidV7.String()

	// 流式上传避免大音频文件驻留内存，MD5在上传过程中顺带计算
	objectKey, fileMD5Hex, err := h.storage.MinIO.UploadAudioFile(ctx, submissionUUID, ext, reader, fileSize)
	if err != nil {
		return nil, fmt.Errorf("上传音频到MinIO失败: %w", err)
	}

	exists, err := h.storage.Redis.CheckAudioFileMD5Exists(ctx, fileMD5Hex)
	if err != nil {
		// 去重是核心逻辑，Redis查询失败时直接报错而不是放行
		logger.Error().
			Err(err).
			Str("md5", fileMD5Hex).
			Msg("查询音频MD5去重集合失败")
		return nil, fmt.Errorf("检查文件MD5重复性时Redis查询失败: %w", err)
	}

	if exists {
		// 重复文件：清理刚上传的对象，定位并返回原提交
		if delErr := h.storage.MinIO.DeleteAudioFile(ctx, objectKey); delErr != nil {
			logger.Warn().
				Err(delErr).
				Str("object_key", objectKey).
				Msg("删除重复上传的音频对象失败")
		}

		originalUUID, lookupErr := h.storage.Redis.GetSubmissionUUIDByMD5(ctx, fileMD5Hex)
		if lookupErr != nil && !errors.Is(lookupErr, storage.ErrNotFound) {
			logger.Warn().
				Err(lookupErr).
				Str("md5", fileMD5Hex).
				Msg("查询原提交UUID失败")
		}

		logger.Info().
			Str("md5", fileMD5Hex).
			Str("filename", filename).
			Str("original_submission", originalUUID).
			Msg("检测到重复的音频MD5，跳过处理")
		return &AudioUploadResponse{
			SubmissionUUID: originalUUID,
			Status:         constants.StatusDuplicateSkipped,
		}, nil
	}

	// 记录MD5去重信息。失败时容忍继续：核心文件已上传，
	// 代价只是同一文件可能被重复处理一次
	if err := h.storage.Redis.AddAudioFileMD5(ctx, fileMD5Hex); err != nil {
		logger.Warn().
			Err(err).
			Str("md5", fileMD5Hex).
			Str("object_key", objectKey).
			Msg("添加音频MD5到去重集合失败，文件已上传到MinIO")
	}
	if err := h.storage.Redis.SetMD5ToSubmissionUUID(ctx, fileMD5Hex, submissionUUID); err != nil {
		logger.Warn().
			Err(err).
			Str("md5", fileMD5Hex).
			Msg("记录MD5到提交UUID映射失败")
	}

	now := time.Now()
	submission := &models.AudioSubmission{
		SubmissionUUID:      submissionUUID,
		SubmissionTimestamp: now,
		OriginalFilename:    filename,
		AudioPathOSS:        objectKey,
		RawFileMD5:          fileMD5Hex,
		ProcessingStatus:    constants.StatusProcessing,
	}
	if err := h.storage.MySQL.CreateAudioSubmission(ctx, submission); err != nil {
		return nil, fmt.Errorf("创建提交记录失败: %w", err)
	}

	message := storage.AudioUploadedMessage{
		SubmissionUUID:      submissionUUID,
		OriginalFilename:    filename,
		AudioPathOSS:        objectKey,
		RawFileMD5:          fileMD5Hex,
		SubmissionTimestamp: now,
	}
	err = h.storage.RabbitMQ.PublishJSON(
		ctx,
		h.cfg.RabbitMQ.AudioEventsExchange,
		h.cfg.RabbitMQ.AudioUploadedRouting,
		message,
		true, // 持久化
	)
	if err != nil {
		return nil, fmt.Errorf("发布消息到RabbitMQ失败: %w", err)
	}

	return &AudioUploadResponse{
		SubmissionUUID: submissionUUID,
		Status:         constants.StatusProcessing,
	}, nil
}

// StartAudioProcessConsumer 启动音频处理消费者
func (h *AudioHandler) StartAudioProcessConsumer(ctx context.Context) error {
	logger.Info().
		Str("exchange", h.cfg.RabbitMQ.AudioEventsExchange).
		Str("routing_key", h.cfg.RabbitMQ.AudioUploadedRouting).
		Str("queue", h.cfg.RabbitMQ.AudioProcessQueue).
		Int("workers", h.cfg.RabbitMQ.ConsumerWorkers).
		Msg("音频处理消费者就绪")

	if err := h.storage.RabbitMQ.SetupAudioPipeline(); err != nil {
		return fmt.Errorf("声明音频流水线拓扑失败: %w", err)
	}

	handleDelivery := func(workerCtx context.Context, data []byte) bool {
		var message storage.AudioUploadedMessage
		if err := json.Unmarshal(data, &message); err != nil {
			logger.Error().Err(err).Msg("解析音频上传消息失败")
			// 消息体损坏，重新入队也无法处理
			return true
		}

		if err := h.ProcessAudioTask(workerCtx, message); err != nil {
			logger.Error().
				Err(err).
				Str("submission_uuid", message.SubmissionUUID).
				Msg("处理音频任务失败")
			h.failSubmission(workerCtx, message, err)
			// 失败已落库并回滚去重记录，确认消息避免无限重试
			return true
		}
		return true
	}

	// 消费者注册失败时按配置的间隔重试，应对broker短暂不可用
	retryInterval := config.GetDuration(h.cfg.RabbitMQ.RetryInterval, 5*time.Second)
	var err error
	for attempt := 0; ; attempt++ {
		_, err = h.storage.RabbitMQ.StartConsumer(
			h.cfg.RabbitMQ.AudioProcessQueue,
			h.cfg.RabbitMQ.PrefetchCount,
			h.cfg.RabbitMQ.ConsumerWorkers,
			handleDelivery,
		)
		if err == nil {
			return nil
		}
		if attempt >= h.cfg.RabbitMQ.MaxRetries {
			break
		}
		logger.Warn().
			Err(err).
			Int("attempt", attempt+1).
			Dur("retry_interval", retryInterval).
			Msg("注册消费者失败，稍后重试")
		time.Sleep(retryInterval)
	}
	return fmt.Errorf("启动消费者失败: %w", err)
}

// ProcessAudioTask 执行单个提交的"转写→抽取→入库"流水线
func (h *AudioHandler) ProcessAudioTask(ctx context.Context, message storage.AudioUploadedMessage) error {
	if h.transcriber == nil {
		return fmt.Errorf("转写组件未初始化")
	}
	if h.engine == nil {
		return fmt.Errorf("抽取引擎未初始化")
	}

	// 1. 转写
	if err := h.storage.MySQL.UpdateSubmissionStatus(ctx, message.SubmissionUUID, constants.StatusTranscribing); err != nil {
		logger.Warn().Err(err).Str("submission_uuid", message.SubmissionUUID).Msg("更新状态为TRANSCRIBING失败")
	}

	audioBytes, err := h.storage.MinIO.GetAudioFile(ctx, message.AudioPathOSS)
	if err != nil {
		return fmt.Errorf("从MinIO获取音频文件失败: %w", err)
	}

	transcript, err := h.transcriber.TranscribeFromBytes(ctx, audioBytes, message.OriginalFilename)
	if err != nil {
		return fmt.Errorf("音频转写失败: %w", err)
	}

	transcriptKey, err := h.storage.MinIO.UploadTranscript(ctx, message.SubmissionUUID, transcript)
	if err != nil {
		return fmt.Errorf("上传转写文本到MinIO失败: %w", err)
	}
	if err := h.storage.MySQL.UpdateSubmissionTranscriptPath(ctx, message.SubmissionUUID, transcriptKey); err != nil {
		logger.Warn().Err(err).Str("submission_uuid", message.SubmissionUUID).Msg("记录转写文本路径失败")
	}

	// 2. 抽取
	if err := h.storage.MySQL.UpdateSubmissionStatus(ctx, message.SubmissionUUID, constants.StatusExtracting); err != nil {
		logger.Warn().Err(err).Str("submission_uuid", message.SubmissionUUID).Msg("更新状态为EXTRACTING失败")
	}

	result, err := h.ExtractFromTranscript(ctx, transcript)
	if err != nil {
		return fmt.Errorf("字段抽取失败: %w", err)
	}

	// 3. 入库
	candidateID, err := h.persistCandidate(ctx, transcript, result)
	if err != nil {
		return fmt.Errorf("候选人入库失败: %w", err)
	}
	if err := h.storage.MySQL.LinkSubmissionCandidate(ctx, message.SubmissionUUID, candidateID); err != nil {
		logger.Warn().
			Err(err).
			Str("submission_uuid", message.SubmissionUUID).
			Str("candidate_id", candidateID).
			Msg("关联提交与候选人失败")
	}

	if err := h.storage.MySQL.UpdateSubmissionStatus(ctx, message.SubmissionUUID, constants.StatusCompleted); err != nil {
		return fmt.Errorf("更新状态为COMPLETED失败: %w", err)
	}

	logger.Info().
		Str("submission_uuid", message.SubmissionUUID).
		Str("candidate_id", candidateID).
		Int("field_count", result.FieldCount()).
		Msg("音频处理流水线完成")
	return nil
}

// ExtractFromTranscript 对转写文本执行字段抽取，按文本MD5做结果缓存
func (h *AudioHandler) ExtractFromTranscript(ctx context.Context, transcript string) (*extractor.Result, error) {
	if h.engine == nil {
		return nil, fmt.Errorf("抽取引擎未初始化")
	}

	if !h.cfg.Extractor.CacheResults || h.storage.Redis == nil {
		return h.engine.Extract(ctx, transcript), nil
	}

	transcriptMD5 := utils.CalculateMD5([]byte(transcript))
	cached, err := h.storage.Redis.GetCachedExtractionResult(ctx, transcriptMD5)
	if err == nil {
		logger.Debug().Str("transcript_md5", transcriptMD5).Msg("命中抽取结果缓存")
		return cached, nil
	}
	if !errors.Is(err, storage.ErrNotFound) {
		logger.Warn().Err(err).Str("transcript_md5", transcriptMD5).Msg("查询抽取结果缓存失败")
	}

	result := h.engine.Extract(ctx, transcript)
	if cacheErr := h.storage.Redis.CacheExtractionResult(ctx, transcriptMD5, result); cacheErr != nil {
		logger.Warn().Err(cacheErr).Str("transcript_md5", transcriptMD5).Msg("写入抽取结果缓存失败")
	}
	return result, nil
}

// TranscribeOnly 同步转写一段音频，不落库不发消息，供调试接口使用
func (h *AudioHandler) TranscribeOnly(ctx context.Context, reader io.Reader, fileSize int64, filename string) (string, error) {
	if h.transcriber == nil {
		return "", fmt.Errorf("转写组件未初始化")
	}
	if _, err := ValidateAudioUpload(filename, fileSize); err != nil {
		return "", err
	}
	return h.transcriber.TranscribeFromReader(ctx, reader, filename)
}

// TranscribeStored 转写已在MinIO中的音频对象，不落库不发消息
func (h *AudioHandler) TranscribeStored(ctx context.Context, objectKey string) (string, error) {
	if h.transcriber == nil {
		return "", fmt.Errorf("转写组件未初始化")
	}
	audioBytes, err := h.storage.MinIO.GetAudioFile(ctx, objectKey)
	if err != nil {
		return "", fmt.Errorf("从MinIO获取音频文件失败: %w", err)
	}
	return h.transcriber.TranscribeFromBytes(ctx, audioBytes, filepath.Base(objectKey))
}

// persistCandidate 将抽取结果清洗、校验后写入候选人表，返回候选人ID
func (h *AudioHandler) persistCandidate(ctx context.Context, transcript string, result *extractor.Result) (string, error) {
	rawJSON, err := models.StructToJSON(result)
	if err != nil {
		logger.Warn().Err(err).Msg("序列化抽取结果快照失败")
	}

	candidate := &models.Candidate{
		Name:           result.Name,
		Email:          result.Email,
		Phone:          result.Phone,
		College:        result.College,
		Degree:         result.Degree,
		GraduationYear: result.GraduationYear,
		Experience:     result.Experience,
		Location:       result.Location,
		Skills:         result.Skills,
		Transcript:     transcript,
		RawExtraction:  rawJSON,
	}

	models.SanitizeCandidate(candidate)
	dropInvalidFields(candidate)

	return h.storage.MySQL.UpsertCandidate(ctx, candidate)
}

// dropInvalidFields 丢弃校验不通过的字段而不是整体失败：
// 单个字段格式异常不应阻塞候选人入库
func dropInvalidFields(c *models.Candidate) {
	if c.Email != nil && !models.ValidateEmail(*c.Email) {
		logger.Warn().Str("email", tracing.MaskPII(*c.Email)).Msg("丢弃格式非法的邮箱字段")
		c.Email = nil
	}
	if c.Phone != nil && !models.ValidatePhone(*c.Phone) {
		logger.Warn().Str("phone", tracing.MaskPII(*c.Phone)).Msg("丢弃格式非法的电话字段")
		c.Phone = nil
	}
	if c.GraduationYear != nil && !models.ValidateYear(*c.GraduationYear) {
		logger.Warn().Int("year", *c.GraduationYear).Msg("丢弃超出合理区间的毕业年份")
		c.GraduationYear = nil
	}
	if c.Name != nil && !models.ValidateName(*c.Name) {
		logger.Warn().Str("name", tracing.MaskPII(*c.Name)).Msg("丢弃格式非法的姓名字段")
		c.Name = nil
	}
}

// failSubmission 记录处理失败状态，并回滚MD5去重记录以允许重新上传
func (h *AudioHandler) failSubmission(ctx context.Context, message storage.AudioUploadedMessage, cause error) {
	if err := h.storage.MySQL.UpdateSubmissionFailure(ctx, message.SubmissionUUID, constants.StatusFailed, cause.Error()); err != nil {
		logger.Error().
			Err(err).
			Str("submission_uuid", message.SubmissionUUID).
			Msg("更新提交状态为FAILED失败")
	}
	if message.RawFileMD5 != "" {
		if err := h.storage.Redis.RemoveAudioFileMD5(ctx, message.RawFileMD5); err != nil {
			logger.Warn().
				Err(err).
				Str("md5", message.RawFileMD5).
				Msg("回滚音频MD5去重记录失败")
		}
	}
}
