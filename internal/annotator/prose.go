package annotator

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/jdkato/prose/v2"

	"transcript-hr-go/internal/logger"
)

// ErrTaggerUnavailable 标注模型加载失败后返回的哨兵错误。
// 失败只记录一次并缓存，后续调用不再重试。
var ErrTaggerUnavailable = fmt.Errorf("实体标注模型不可用")

// ProseTagger 基于prose库的"标注器在场"实现。
// 模型在首次调用时惰性加载，sync.Once保证并发首调用只初始化一次；
// 加载失败被缓存为不可用，之后所有调用直接返回 ErrTaggerUnavailable。
// 预热完成后实例只读，可安全并发使用。
type ProseTagger struct {
	once        sync.Once
	unavailable bool
}

// 确保ProseTagger实现了EntityTagger接口
var _ EntityTagger = (*ProseTagger)(nil)

// NewProseTagger 创建标注器实例，不触发模型加载
func NewProseTagger() *ProseTagger {
	return &ProseTagger{}
}

// warmUp 一次性初始化屏障：用一小段文本驱动模型加载，
// 失败则永久标记为不可用
func (t *ProseTagger) warmUp() {
	t.once.Do(func() {
		_, err := prose.NewDocument("warm up",
			prose.WithSegmentation(true),
			prose.WithExtraction(true))
		if err != nil {
			t.unavailable = true
			logger.Warn().
				Err(err).
				Msg("实体标注模型加载失败，降级为纯正则抽取，本进程内不再重试")
			return
		}
		logger.Info().Msg("实体标注模型加载成功")
	})
}

// Tag 实现 EntityTagger 接口：返回实体片段与句子切分
func (t *ProseTagger) Tag(ctx context.Context, text string) (*Annotation, error) {
	t.warmUp()
	if t.unavailable {
		return nil, ErrTaggerUnavailable
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	doc, err := prose.NewDocument(text,
		prose.WithSegmentation(true),
		prose.WithExtraction(true))
	if err != nil {
		return nil, fmt.Errorf("实体标注失败: %w", err)
	}

	ann := &Annotation{}
	for _, ent := range doc.Entities() {
		label := ent.Label
		if label != LabelPerson && label != LabelOrg && label != LabelGPE {
			continue // 只保留抽取器关心的三类标签
		}
		spanText := strings.TrimSpace(ent.Text)
		if spanText == "" {
			continue
		}
		ann.Entities = append(ann.Entities, EntitySpan{Text: spanText, Label: label})
	}
	for _, sent := range doc.Sentences() {
		ann.Sentences = append(ann.Sentences, sent.Text)
	}
	return ann, nil
}
