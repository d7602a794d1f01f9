package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"strings"
	"sync"
	"time"

	"transcript-hr-go/internal/config"
	"transcript-hr-go/internal/constants"
	"transcript-hr-go/internal/extractor"
	"transcript-hr-go/internal/tracing"

	"github.com/redis/go-redis/extra/redisotel/v9"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// ErrNotFound is returned when a key is not found in Redis.
// It wraps the underlying redis.Nil error for abstraction.
var ErrNotFound = redis.Nil

// 为Redis操作定义专用tracer
var redisTracer = otel.Tracer("transcript-hr-go/storage/redis")

// Redis操作前缀采样率配置：redisotel已记录命令级span，
// 这里只对业务级操作按前缀采样，避免追踪量爆炸
var redisKeySamplingRates = map[string]float64{
	constants.AppPrefix + ":" + constants.AudioModulePrefix + ":":   0.1, // 音频去重操作采样10%
	constants.AppPrefix + ":" + constants.ExtractModulePrefix + ":": 0.25,
}

var (
	rnd      *rand.Rand
	rndMutex sync.Mutex
)

func init() {
	source := rand.NewSource(time.Now().UnixNano())
	rnd = rand.New(source)
}

// shouldSampleRedisOp 根据key前缀决定是否需要创建业务span
func shouldSampleRedisOp(key string) bool {
	if key == "" {
		return false
	}
	for prefix, rate := range redisKeySamplingRates {
		if strings.HasPrefix(key, prefix) {
			return randFloat() < rate
		}
	}
	return randFloat() < 0.05
}

func randFloat() float64 {
	rndMutex.Lock()
	defer rndMutex.Unlock()
	return rnd.Float64()
}

// Redis wraps the Redis client
type Redis struct {
	Client *redis.Client
	config *config.RedisConfig
}

// NewRedisAdapter creates a new Redis client connection
func NewRedisAdapter(cfg *config.RedisConfig) (*Redis, error) {
	if cfg == nil {
		return nil, fmt.Errorf("redis config cannot be nil")
	}
	if cfg.Address == "" {
		return nil, fmt.Errorf("redis address is required")
	}

	opt := &redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,

		// 连接池设置
		PoolSize:     cfg.PoolSize,
		MinIdleConns: cfg.MinIdleConns,

		// 超时设置
		DialTimeout:  time.Duration(cfg.DialTimeoutSeconds) * time.Second,
		ReadTimeout:  time.Duration(cfg.ReadTimeoutSeconds) * time.Second,
		WriteTimeout: time.Duration(cfg.WriteTimeoutSeconds) * time.Second,

		// 重试设置
		MaxRetries:      cfg.MaxRetries,
		MinRetryBackoff: time.Duration(cfg.MinRetryBackoffMS) * time.Millisecond,
		MaxRetryBackoff: time.Duration(cfg.MaxRetryBackoffMS) * time.Millisecond,

		// 连接生命周期
		ConnMaxLifetime: time.Duration(cfg.ConnMaxLifetimeMinutes) * time.Minute,
		ConnMaxIdleTime: time.Duration(cfg.ConnMaxIdleTimeMinutes) * time.Minute,
	}

	client := redis.NewClient(opt)

	// 添加OpenTelemetry钩子, 记录所有Redis操作
	if err := redisotel.InstrumentTracing(client); err != nil {
		return nil, fmt.Errorf("failed to instrument Redis with OpenTelemetry: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, err := client.Ping(ctx).Result(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis at %s: %w", cfg.Address, err)
	}

	return &Redis{
		Client: client,
		config: cfg,
	}, nil
}

// Close closes the Redis client connection
func (r *Redis) Close() error {
	if r.Client != nil {
		return r.Client.Close()
	}
	return nil
}

// Ping checks the Redis connection
func (r *Redis) Ping(ctx context.Context) error {
	if r.Client == nil {
		return fmt.Errorf("redis client is not initialized")
	}
	return r.Client.Ping(ctx).Err()
}

// GetMD5ExpireDuration 返回配置的MD5记录过期时间
func (r *Redis) GetMD5ExpireDuration() time.Duration {
	days := r.config.MD5RecordExpireDays
	if days <= 0 {
		return constants.AudioMD5SetDefaultExpire
	}
	return time.Duration(days) * 24 * time.Hour
}

// AddAudioFileMD5 添加音频文件MD5到去重集合并设置过期时间
func (r *Redis) AddAudioFileMD5(ctx context.Context, md5Hex string) error {
	if r.Client == nil {
		return fmt.Errorf("redis client is not initialized")
	}
	pipe := r.Client.Pipeline()
	pipe.SAdd(ctx, constants.KeyAudioMD5Set, md5Hex)
	// ExpireNX: 仅在集合尚无过期时间时设置
	pipe.ExpireNX(ctx, constants.KeyAudioMD5Set, r.GetMD5ExpireDuration())
	_, err := pipe.Exec(ctx)
	return err
}

// CheckAudioFileMD5Exists 检查音频文件MD5是否已在去重集合中
func (r *Redis) CheckAudioFileMD5Exists(ctx context.Context, md5Hex string) (bool, error) {
	if r.Client == nil {
		return false, fmt.Errorf("redis client is not initialized")
	}
	return r.Client.SIsMember(ctx, constants.KeyAudioMD5Set, md5Hex).Result()
}

// RemoveAudioFileMD5 从去重集合移除MD5（处理失败时回滚，允许重新上传）
func (r *Redis) RemoveAudioFileMD5(ctx context.Context, md5Hex string) error {
	if r.Client == nil {
		return fmt.Errorf("redis client is not initialized")
	}
	return r.Client.SRem(ctx, constants.KeyAudioMD5Set, md5Hex).Err()
}

// SetMD5ToSubmissionUUID 记录MD5到提交UUID的映射，便于重复上传时直接定位原提交
func (r *Redis) SetMD5ToSubmissionUUID(ctx context.Context, md5Hex, submissionUUID string) error {
	if r.Client == nil {
		return fmt.Errorf("redis client is not initialized")
	}
	key := fmt.Sprintf(constants.KeyAudioMD5ToSubmissionUUID, md5Hex)
	return r.Client.Set(ctx, key, submissionUUID, r.GetMD5ExpireDuration()).Err()
}

// GetSubmissionUUIDByMD5 按MD5查询原提交UUID；未找到时返回ErrNotFound
func (r *Redis) GetSubmissionUUIDByMD5(ctx context.Context, md5Hex string) (string, error) {
	if r.Client == nil {
		return "", fmt.Errorf("redis client is not initialized")
	}
	key := fmt.Sprintf(constants.KeyAudioMD5ToSubmissionUUID, md5Hex)
	return r.Client.Get(ctx, key).Result()
}

// CacheExtractionResult 按转写文本MD5缓存抽取结果
func (r *Redis) CacheExtractionResult(ctx context.Context, transcriptMD5 string, result *extractor.Result) error {
	if r.Client == nil {
		return fmt.Errorf("redis client is not initialized")
	}
	key := fmt.Sprintf(constants.KeyExtractionResult, transcriptMD5)

	var span trace.Span
	if shouldSampleRedisOp(key) {
		ctx, span = redisTracer.Start(ctx, "Redis.CacheExtractionResult",
			trace.WithSpanKind(trace.SpanKindClient),
			trace.WithAttributes(attribute.String("db.redis.key", tracing.SafeRedisKey(key))))
		defer span.End()
	}

	payload, err := json.Marshal(result)
	if err != nil {
		tracing.RecordError(span, err, tracing.ErrorTypeRedis)
		return fmt.Errorf("序列化抽取结果失败: %w", err)
	}

	err = r.Client.Set(ctx, key, payload, constants.ExtractionCacheDuration).Err()
	if err != nil {
		tracing.RecordError(span, err, tracing.ErrorTypeRedis)
	}
	return err
}

// GetCachedExtractionResult 按转写文本MD5查询缓存的抽取结果；
// 缓存未命中时返回(nil, ErrNotFound)
func (r *Redis) GetCachedExtractionResult(ctx context.Context, transcriptMD5 string) (*extractor.Result, error) {
	if r.Client == nil {
		return nil, fmt.Errorf("redis client is not initialized")
	}
	key := fmt.Sprintf(constants.KeyExtractionResult, transcriptMD5)

	payload, err := r.Client.Get(ctx, key).Bytes()
	if err != nil {
		return nil, err
	}

	var result extractor.Result
	if err := json.Unmarshal(payload, &result); err != nil {
		return nil, fmt.Errorf("反序列化缓存的抽取结果失败: %w", err)
	}
	return &result, nil
}
