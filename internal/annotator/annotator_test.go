package annotator

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNoopTag(t *testing.T) {
	ann, err := Noop{}.Tag(context.Background(), "My name is Rahul Verma.")
	assert.Nil(t, ann, "Noop标注器应返回空标注")
	assert.NoError(t, err)
}

func TestEntitiesByLabel(t *testing.T) {
	ann := &Annotation{
		Entities: []EntitySpan{
			{Text: "Rahul Verma", Label: LabelPerson},
			{Text: "Chennai", Label: LabelGPE},
			{Text: "Anna University", Label: LabelOrg},
			{Text: "Priya", Label: LabelPerson},
		},
	}

	persons := ann.EntitiesByLabel(LabelPerson)
	assert.Equal(t, []string{"Rahul Verma", "Priya"}, persons, "应按文档顺序返回同标签实体")
	assert.Equal(t, []string{"Chennai"}, ann.EntitiesByLabel(LabelGPE))
	assert.Empty(t, ann.EntitiesByLabel("DATE"), "未知标签应返回空")
}

func TestEntitiesByLabelNilSafe(t *testing.T) {
	var ann *Annotation
	assert.Nil(t, ann.EntitiesByLabel(LabelPerson), "nil标注上的查询应安全返回nil")
}

func TestProseTaggerTag(t *testing.T) {
	tagger := NewProseTagger()

	ann, err := tagger.Tag(context.Background(),
		"My name is Rahul Verma. I live in Chennai and I like my work.")
	if err != nil {
		// 模型加载失败的环境里应返回哨兵错误并保持稳定
		assert.ErrorIs(t, err, ErrTaggerUnavailable)
		_, err2 := tagger.Tag(context.Background(), "another text")
		assert.ErrorIs(t, err2, ErrTaggerUnavailable, "不可用状态应被缓存")
		return
	}

	require.NotNil(t, ann)
	assert.GreaterOrEqual(t, len(ann.Sentences), 2, "两句文本应切分出至少两个句子")
	for _, ent := range ann.Entities {
		assert.Contains(t, []string{LabelPerson, LabelOrg, LabelGPE}, ent.Label,
			"只应保留抽取器关心的三类标签")
		assert.NotEmpty(t, ent.Text)
	}
}
