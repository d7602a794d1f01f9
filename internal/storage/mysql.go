package storage

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"transcript-hr-go/internal/config"
	"transcript-hr-go/internal/storage/models"
	"transcript-hr-go/internal/tracing"

	"github.com/gofrs/uuid/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var mysqlTracer = otel.Tracer("transcript-hr-go/storage/mysql")

// MySQL 提供关系数据库功能
type MySQL struct {
	db  *gorm.DB
	cfg *config.MySQLConfig
}

// NewMySQL 创建MySQL客户端
func NewMySQL(cfg *config.MySQLConfig) (*MySQL, error) {
	if cfg == nil {
		return nil, fmt.Errorf("MySQL配置不能为空")
	}

	// 构建DSN，添加超时设置
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=Local&timeout=%ds&readTimeout=%ds&writeTimeout=%ds",
		cfg.Username, cfg.Password, cfg.Host, cfg.Port, cfg.Database,
		cfg.ConnectTimeoutSeconds, cfg.ReadTimeoutSeconds, cfg.WriteTimeoutSeconds)

	// 配置GORM日志级别
	var logLevel logger.LogLevel
	switch cfg.LogLevel {
	case 1:
		logLevel = logger.Silent
	case 2:
		logLevel = logger.Error
	case 3:
		logLevel = logger.Warn
	case 4:
		logLevel = logger.Info
	default:
		logLevel = logger.Info
	}

	gormConfig := &gorm.Config{
		DisableForeignKeyConstraintWhenMigrating: true,
		Logger:                                   logger.Default.LogMode(logLevel),
		PrepareStmt:                              true, // 开启预编译语句缓存
		NowFunc: func() time.Time {
			return time.Now().Local()
		},
	}

	db, err := gorm.Open(mysql.Open(dsn), gormConfig)
	if err != nil {
		return nil, fmt.Errorf("连接MySQL失败: %w", err)
	}

	// 设置连接池参数
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("获取底层 sql.DB 失败: %w", err)
	}
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetConnMaxLifetime(time.Duration(cfg.ConnMaxLifetimeMinutes) * time.Minute)
	sqlDB.SetConnMaxIdleTime(time.Duration(cfg.ConnMaxIdleTimeMinutes) * time.Minute)

	m := &MySQL{
		db:  db,
		cfg: cfg,
	}

	if err := m.autoMigrateSchema(); err != nil {
		if sqlDB, _ := db.DB(); sqlDB != nil {
			sqlDB.Close()
		}
		return nil, fmt.Errorf("自动迁移数据库结构失败: %w", err)
	}

	log.Println("成功连接到MySQL并自动迁移数据库结构")
	return m, nil
}

// autoMigrateSchema 使用GORM自动迁移数据库表结构
func (m *MySQL) autoMigrateSchema() error {
	currentLogger := m.db.Logger

	// 迁移期间关闭SQL日志打印
	silentLogger := logger.New(
		log.New(log.Writer(), "", log.LstdFlags),
		logger.Config{
			SlowThreshold:             200 * time.Millisecond,
			LogLevel:                  logger.Silent,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)

	silentDB := m.db.Session(&gorm.Session{Logger: silentLogger})
	err := silentDB.AutoMigrate(
		&models.Candidate{},
		&models.AudioSubmission{},
	)

	m.db = m.db.Session(&gorm.Session{Logger: currentLogger})

	if err != nil {
		return fmt.Errorf("GORM自动迁移失败: %w", err)
	}
	return nil
}

// DB 返回GORM数据库连接实例
func (m *MySQL) DB() *gorm.DB {
	return m.db
}

// Close 关闭数据库连接
func (m *MySQL) Close() error {
	sqlDB, err := m.db.DB()
	if err != nil {
		return fmt.Errorf("获取底层 sql.DB 失败: %w", err)
	}
	return sqlDB.Close()
}

// CreateAudioSubmission 插入音频提交记录
func (m *MySQL) CreateAudioSubmission(ctx context.Context, submission *models.AudioSubmission) error {
	return m.db.WithContext(ctx).Create(submission).Error
}

// GetAudioSubmission 按提交UUID查询记录
func (m *MySQL) GetAudioSubmission(ctx context.Context, submissionUUID string) (*models.AudioSubmission, error) {
	var submission models.AudioSubmission
	err := m.db.WithContext(ctx).First(&submission, "submission_uuid = ?", submissionUUID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &submission, nil
}

// UpdateSubmissionStatus 更新提交的处理状态
func (m *MySQL) UpdateSubmissionStatus(ctx context.Context, submissionUUID string, status string) error {
	return m.db.WithContext(ctx).Model(&models.AudioSubmission{}).
		Where("submission_uuid = ?", submissionUUID).
		Update("processing_status", status).Error
}

// UpdateSubmissionFailure 记录处理失败状态与错误信息
func (m *MySQL) UpdateSubmissionFailure(ctx context.Context, submissionUUID string, status string, errMsg string) error {
	return m.db.WithContext(ctx).Model(&models.AudioSubmission{}).
		Where("submission_uuid = ?", submissionUUID).
		Updates(map[string]interface{}{
			"processing_status": status,
			"error_message":     errMsg,
		}).Error
}

// UpdateSubmissionTranscriptPath 记录转写文本在对象存储中的路径
func (m *MySQL) UpdateSubmissionTranscriptPath(ctx context.Context, submissionUUID string, transcriptPath string) error {
	if transcriptPath == "" {
		return nil
	}
	return m.db.WithContext(ctx).Model(&models.AudioSubmission{}).
		Where("submission_uuid = ?", submissionUUID).
		Update("transcript_path_oss", transcriptPath).Error
}

// LinkSubmissionCandidate 将提交记录与候选人关联
func (m *MySQL) LinkSubmissionCandidate(ctx context.Context, submissionUUID string, candidateID string) error {
	return m.db.WithContext(ctx).Model(&models.AudioSubmission{}).
		Where("submission_uuid = ?", submissionUUID).
		Update("candidate_id", candidateID).Error
}

// UpsertCandidate 按邮箱/电话去重落库候选人：
// 命中已有记录时只覆盖本次抽取到的（非nil）字段，否则创建新记录。
// 返回落库后的候选人ID。
func (m *MySQL) UpsertCandidate(ctx context.Context, candidate *models.Candidate) (string, error) {
	ctx, span := mysqlTracer.Start(ctx, "MySQL.UpsertCandidate",
		trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()

	span.SetAttributes(
		semconv.DBSystemMySQL,
		attribute.String("db.name", m.cfg.Database),
		attribute.String("db.sql.table", "candidates"),
	)

	existing, err := m.findCandidateByContact(ctx, candidate.Email, candidate.Phone)
	if err != nil {
		tracing.RecordError(span, err, tracing.ErrorTypeDB)
		return "", err
	}

	if existing != nil {
		mergeCandidate(existing, candidate)
		if err := m.db.WithContext(ctx).Save(existing).Error; err != nil {
			tracing.RecordError(span, err, tracing.ErrorTypeDB)
			return "", err
		}
		span.SetAttributes(attribute.String("candidate.id", existing.CandidateID))
		span.SetStatus(codes.Ok, "updated existing candidate")
		return existing.CandidateID, nil
	}

	if candidate.CandidateID == "" {
		id, err := uuid.NewV7()
		if err != nil {
			tracing.RecordError(span, err, tracing.ErrorTypeDB)
			return "", fmt.Errorf("生成候选人ID失败: %w", err)
		}
		candidate.CandidateID = id.String()
	}
	if err := m.db.WithContext(ctx).Create(candidate).Error; err != nil {
		tracing.RecordError(span, err, tracing.ErrorTypeDB)
		return "", err
	}
	span.SetAttributes(attribute.String("candidate.id", candidate.CandidateID))
	span.SetStatus(codes.Ok, "created new candidate")
	return candidate.CandidateID, nil
}

// findCandidateByContact 按邮箱优先、电话兜底查找已有候选人
func (m *MySQL) findCandidateByContact(ctx context.Context, email, phone *string) (*models.Candidate, error) {
	var candidate models.Candidate
	query := m.db.WithContext(ctx)

	switch {
	case email != nil && *email != "":
		query = query.Where("email = ?", *email)
	case phone != nil && *phone != "":
		query = query.Where("phone = ?", *phone)
	default:
		return nil, nil // 无联系方式时不做去重
	}

	err := query.First(&candidate).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &candidate, nil
}

// mergeCandidate 用新抽取结果覆盖已有记录的非nil字段
func mergeCandidate(dst, src *models.Candidate) {
	if src.Name != nil {
		dst.Name = src.Name
	}
	if src.Email != nil {
		dst.Email = src.Email
	}
	if src.Phone != nil {
		dst.Phone = src.Phone
	}
	if src.College != nil {
		dst.College = src.College
	}
	if src.Degree != nil {
		dst.Degree = src.Degree
	}
	if src.GraduationYear != nil {
		dst.GraduationYear = src.GraduationYear
	}
	if src.Experience != nil {
		dst.Experience = src.Experience
	}
	if src.Location != nil {
		dst.Location = src.Location
	}
	if src.Skills != nil {
		dst.Skills = src.Skills
	}
	if src.Transcript != "" {
		dst.Transcript = src.Transcript
	}
	if len(src.RawExtraction) > 0 {
		dst.RawExtraction = src.RawExtraction
	}
}

// GetCandidate 按ID查询候选人，未找到返回(nil, nil)
func (m *MySQL) GetCandidate(ctx context.Context, candidateID string) (*models.Candidate, error) {
	var candidate models.Candidate
	err := m.db.WithContext(ctx).First(&candidate, "candidate_id = ?", candidateID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &candidate, nil
}

// ListCandidates 按创建时间倒序分页查询候选人
func (m *MySQL) ListCandidates(ctx context.Context, limit, offset int) ([]models.Candidate, int64, error) {
	ctx, span := mysqlTracer.Start(ctx, "MySQL.ListCandidates",
		trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()

	span.SetAttributes(
		semconv.DBSystemMySQL,
		attribute.String("db.sql.table", "candidates"),
		attribute.Int("query.limit", limit),
		attribute.Int("query.offset", offset),
	)

	var total int64
	if err := m.db.WithContext(ctx).Model(&models.Candidate{}).Count(&total).Error; err != nil {
		tracing.RecordError(span, err, tracing.ErrorTypeDB)
		return nil, 0, err
	}

	var candidates []models.Candidate
	query := m.db.WithContext(ctx).Order("created_at DESC")
	if limit > 0 {
		query = query.Limit(limit).Offset(offset)
	}
	if err := query.Find(&candidates).Error; err != nil {
		tracing.RecordError(span, err, tracing.ErrorTypeDB)
		return nil, 0, err
	}

	span.SetStatus(codes.Ok, "")
	return candidates, total, nil
}

// DeleteCandidate 按ID删除候选人，返回是否确有记录被删除
func (m *MySQL) DeleteCandidate(ctx context.Context, candidateID string) (bool, error) {
	result := m.db.WithContext(ctx).Delete(&models.Candidate{}, "candidate_id = ?", candidateID)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}
