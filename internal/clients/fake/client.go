// Package fake provides a deterministic AIClient for tests and offline runs.
package fake

import (
	"context"
	"strings"
	"sync"

	"github.com/purunsolnp/sonagi-stock/internal/interfaces"
	"github.com/purunsolnp/sonagi-stock/internal/models"
)

// Canned responses, chosen by what the prompt asks for.
const (
	InstrumentResponse = `## 종목 요약
안정적인 현금흐름을 가진 대형 기술주입니다.

## 재무 분석
PER이 섹터 평균보다 높지만 ROE가 우수합니다.

## 산업 분석
클라우드와 AI 수요가 성장을 이끌고 있습니다.

## 투자 스타일 적합도
- 안정형: 적합
- 성장형: 추천
- 단타형: 부적합

## 기술적 분석
- 이동평균선: 50일선 위에서 거래 중
- MACD: 시그널선 상향 돌파
- RSI: 58로 중립 구간

## 매수 구간
매수 구간은 $170~$175 입니다

## 매도 타이밍
$210 부근에서 일부 차익 실현을 권합니다.

## 종합 의견
장기 보유 관점에서 분할 매수를 추천합니다.
`

	PortfolioResponse = `## 요약 분석
기술주 비중이 높아 변동성이 큰 포트폴리오입니다.

## 과대 비중 종목: AAPL, MSFT

## 과소 비중 종목: 없음

## 리밸런싱 전략
기술주 비중을 10% 줄이고 배당 ETF를 늘리세요.

## 리스크 분석
금리 상승 시 성장주 밸류에이션 부담이 커집니다.
`

	CashResponse = `1. 예수금 투자 추천:
- SCHD 40%, VOO 40%, TLT 20% 비중으로 분산 투자를 권합니다.

2. 투자 제안의 근거:
- 배당과 채권으로 변동성을 낮춥니다.
`
)

// Compile-time interface check
var _ interfaces.AIClient = (*Client)(nil)

// Client returns canned text. Set Err to make every call fail, or Gate to
// hold calls until it is closed.
type Client struct {
	Err  error
	Gate chan struct{}

	// Respond overrides the canned selection when set.
	Respond func(req models.CompletionRequest) string

	mu       sync.Mutex
	requests []models.CompletionRequest
}

// New returns a client answering with the canned responses.
func New() *Client {
	return &Client{}
}

// Complete records the request and returns the canned answer.
func (c *Client) Complete(ctx context.Context, req models.CompletionRequest) (string, error) {
	c.mu.Lock()
	c.requests = append(c.requests, req)
	c.mu.Unlock()

	if c.Gate != nil {
		select {
		case <-c.Gate:
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	if c.Err != nil {
		return "", c.Err
	}
	if c.Respond != nil {
		return c.Respond(req), nil
	}
	return Canned(req.Prompt), nil
}

// Calls returns how many requests were received.
func (c *Client) Calls() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.requests)
}

// Requests returns a copy of every request received.
func (c *Client) Requests() []models.CompletionRequest {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]models.CompletionRequest(nil), c.requests...)
}

// Canned picks the response for a prompt.
func Canned(prompt string) string {
	switch {
	case strings.Contains(prompt, "예수금 투자 추천"):
		return CashResponse
	case strings.Contains(prompt, "사용자의 포트폴리오"):
		return PortfolioResponse
	default:
		return InstrumentResponse
	}
}
