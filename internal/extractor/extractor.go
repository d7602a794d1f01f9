package extractor

import (
	"context"
	"strings"

	"transcript-hr-go/internal/annotator"
	"transcript-hr-go/internal/logger"
)

// minTranscriptLen 低于该长度（去空白后）的转写文本不做任何抽取
const minTranscriptLen = 10

// Result 固定形态的抽取结果：九个字段一次性全部返回，
// 未抽取到的字段为nil并序列化为JSON null（不使用omitempty，
// 下游消费方依赖完整的字段形态）。
type Result struct {
	Name           *string `json:"name"`
	Email          *string `json:"email"`
	Phone          *string `json:"phone"`
	College        *string `json:"college"`
	Degree         *string `json:"degree"`
	GraduationYear *int    `json:"graduation_year"`
	Experience     *string `json:"experience"`
	Location       *string `json:"location"`
	Skills         *string `json:"skills"`
}

// FieldCount 已抽取到的字段数量，用于观测日志
func (r *Result) FieldCount() int {
	count := 0
	for _, present := range []bool{
		r.Name != nil, r.Email != nil, r.Phone != nil,
		r.College != nil, r.Degree != nil, r.GraduationYear != nil,
		r.Experience != nil, r.Location != nil, r.Skills != nil,
	} {
		if present {
			count++
		}
	}
	return count
}

// Engine 候选人字段抽取引擎。
// 持有一个实体标注能力的实现；标注失败只会降级为纯正则抽取，
// 永远不会让Extract返回错误。实例无状态，可安全并发使用。
type Engine struct {
	tagger annotator.EntityTagger
}

// NewEngine 创建抽取引擎。tagger传nil时使用Noop实现（纯正则模式）。
func NewEngine(tagger annotator.EntityTagger) *Engine {
	if tagger == nil {
		tagger = annotator.Noop{}
	}
	return &Engine{tagger: tagger}
}

// Extract 从面试转写文本中抽取候选人信息。
// 该方法从不返回错误：任何内部失败都降级为对应字段为nil。
// 过短的输入直接返回全nil结果。
func (e *Engine) Extract(ctx context.Context, transcript string) *Result {
	result := &Result{}
	if len(strings.TrimSpace(transcript)) < minTranscriptLen {
		logger.Warn().Int("length", len(transcript)).Msg("转写文本过短或为空，跳过抽取")
		return result
	}

	// 先做不依赖标注的快速正则抽取
	result.Email = ExtractEmail(transcript)
	result.Phone = ExtractPhone(transcript)
	result.Experience = ExtractExperience(transcript)
	result.Skills = ExtractSkills(transcript)

	// 实体标注（长文本只标注采样片段）；失败降级为nil标注
	ann := e.annotate(ctx, transcript)

	result.Name = ExtractName(transcript, ann)
	result.Location = ExtractLocation(transcript, ann)
	result.GraduationYear = ExtractGraduationYear(transcript, ann)
	result.College = ExtractCollege(transcript, ann)
	result.Degree = ExtractDegree(transcript, ann)

	logger.Info().
		Int("field_count", result.FieldCount()).
		Bool("annotated", ann != nil).
		Msg("候选人信息抽取完成")
	return result
}

// annotate 执行实体标注，所有失败路径都收敛为nil标注
func (e *Engine) annotate(ctx context.Context, transcript string) (ann *annotator.Annotation) {
	// 标注器实现来自外部，panic也不允许逃逸出抽取引擎
	defer func() {
		if r := recover(); r != nil {
			logger.Error().Interface("panic", r).Msg("实体标注发生panic，降级为纯正则抽取")
			ann = nil
		}
	}()

	text := transcript
	if len(transcript) > sampleThreshold {
		text = SampleDocument(transcript)
	}

	ann, err := e.tagger.Tag(ctx, text)
	if err != nil {
		logger.Warn().Err(err).Msg("实体标注不可用，降级为纯正则抽取")
		return nil
	}
	return ann
}
