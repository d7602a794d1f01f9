package annotator

import (
	"context"
)

// 实体标签常量，与通用NER模型的标签体系对齐
const (
	LabelPerson = "PERSON" // 人名
	LabelOrg    = "ORG"    // 组织机构
	LabelGPE    = "GPE"    // 地缘政治实体（城市、国家等）
)

// EntitySpan 一段被标注的文本及其实体标签
type EntitySpan struct {
	Text  string // 原文片段（已去除首尾空白）
	Label string // PERSON / ORG / GPE
}

// Annotation 一次标注调用的完整输出：按出现顺序排列的实体片段，
// 以及覆盖被分析文本的句子切分。每次调用都会产生新实例，调用方不得修改。
type Annotation struct {
	Entities  []EntitySpan
	Sentences []string
}

// EntitiesByLabel 按标签过滤实体，保持文档顺序
func (a *Annotation) EntitiesByLabel(label string) []string {
	if a == nil {
		return nil
	}
	var out []string
	for _, ent := range a.Entities {
		if ent.Label == label {
			out = append(out, ent.Text)
		}
	}
	return out
}

// EntityTagger 实体标注能力接口。
// 抽取器统一面向该抽象编程，而不是到处判空：
// 标注器不可用时使用 Noop 实现，可用时使用 ProseTagger。
type EntityTagger interface {
	// Tag 对文本做实体标注和句子切分。
	// 标注不可用时返回 (nil, nil) 或错误；调用方应将两者都视为"无标注"。
	Tag(ctx context.Context, text string) (*Annotation, error)
}

// Noop 是"标注器缺席"实现，永远返回空标注
type Noop struct{}

// Tag 实现 EntityTagger 接口
func (Noop) Tag(ctx context.Context, text string) (*Annotation, error) {
	return nil, nil
}

// 确保Noop实现了EntityTagger接口
var _ EntityTagger = Noop{}
