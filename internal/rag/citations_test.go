package rag

import (
	"reflect"
	"testing"
)

func TestExtractCitations(t *testing.T) {
	tests := []struct {
		name   string
		answer string
		n      int
		want   []bool
	}{
		{
			name:   "plain references",
			answer: "根据【来源 1】和【来源 3】，答案是肯定的。",
			n:      3,
			want:   []bool{true, false, true},
		},
		{
			name:   "without space and in markdown",
			answer: "**要点**：见【来源2】。\n\n- 列表项【来源 1】",
			n:      2,
			want:   []bool{true, true},
		},
		{
			name:   "out of range ignored",
			answer: "【来源 0】【来源 5】",
			n:      2,
			want:   []bool{false, false},
		},
		{
			name:   "code is not a citation",
			answer: "示例：`【来源 1】`\n\n```\n【来源 2】\n```\n",
			n:      2,
			want:   []bool{false, false},
		},
		{
			name:   "no sources",
			answer: "【来源 1】",
			n:      0,
			want:   []bool{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ExtractCitations(tt.answer, tt.n)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ExtractCitations() = %v, want %v", got, tt.want)
			}
		})
	}
}
