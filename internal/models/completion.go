package models

// AnalystSystemRole is the fixed system instruction for every analysis call.
const AnalystSystemRole = "당신은 주식과 ETF 분석에 전문적인 투자 애널리스트입니다. 주어진 정보를 바탕으로 상세하고 전문적인 투자 분석 보고서를 작성하세요."

// Prompt is a rendered request for the AI provider.
type Prompt struct {
	System string `json:"system"`
	Text   string `json:"text"`
}

// CompletionRequest is one text-generation call.
type CompletionRequest struct {
	System      string
	Prompt      string
	Temperature float64
	MaxTokens   int
}
