package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Prompts holds the fixed texts used by the RAG pipeline.
// Any field left empty in the YAML file keeps its default.
type Prompts struct {
	Persona            string `yaml:"persona"`
	FormatInstructions string `yaml:"format_instructions"` // {language} is substituted
	ContextHeader      string `yaml:"context_header"`
	ContextFooter      string `yaml:"context_footer"`
	NoContext          string `yaml:"no_context"`
	NoHitsAnswer       string `yaml:"no_hits_answer"`
	EmptyAnswer        string `yaml:"empty_answer"`
}

// DefaultPrompts returns the built-in prompt set.
func DefaultPrompts() Prompts {
	return Prompts{
		Persona: "你是一个专业的视频内容问答助手。请基于提供的视频内容回答用户的问题，并在回答中引用相关来源。",
		FormatInstructions: "回答要求：\n" +
			"1. 引用视频片段时使用对应的来源编号（如【来源 1】）\n" +
			"2. 如果提供的内容不足以回答问题，请诚实地说明\n" +
			"3. 请使用{language}回答",
		ContextHeader: "以下是相关的视频内容：",
		ContextFooter: "请基于以上视频内容回答用户的问题。如果答案来自特定视频片段，请引用相应的来源编号（如【来源 1】）。",
		NoContext:     "未找到相关的视频内容。",
		NoHitsAnswer:  "抱歉，我在知识库中没有找到相关内容来回答您的问题。",
		EmptyAnswer:   "抱歉，我无法生成回答。",
	}
}

// LoadPrompts reads overrides from a YAML file. An empty path returns the defaults.
func LoadPrompts(path string) (Prompts, error) {
	prompts := DefaultPrompts()
	if path == "" {
		return prompts, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Prompts{}, fmt.Errorf("failed to read prompts file: %w", err)
	}

	var overrides Prompts
	if err := yaml.Unmarshal(data, &overrides); err != nil {
		return Prompts{}, fmt.Errorf("failed to parse prompts file %s: %w", path, err)
	}

	merge(&prompts.Persona, overrides.Persona)
	merge(&prompts.FormatInstructions, overrides.FormatInstructions)
	merge(&prompts.ContextHeader, overrides.ContextHeader)
	merge(&prompts.ContextFooter, overrides.ContextFooter)
	merge(&prompts.NoContext, overrides.NoContext)
	merge(&prompts.NoHitsAnswer, overrides.NoHitsAnswer)
	merge(&prompts.EmptyAnswer, overrides.EmptyAnswer)

	return prompts, nil
}

func merge(dst *string, override string) {
	if override != "" {
		*dst = override
	}
}
