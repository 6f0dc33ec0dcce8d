// Package prompt renders analysis prompts for the AI provider.
package prompt

import "strings"

// Style is a normalized investor profile.
type Style string

const (
	StyleConservative Style = "conservative"
	StyleGrowth       Style = "growth"
	StyleDividend     Style = "dividend"
	StyleAggressive   Style = "aggressive"
	StyleBalanced     Style = "balanced"
	StyleGeneral      Style = ""
)

// ParseStyle normalizes user input. "stable" is an alias for conservative.
// Unknown input yields StyleGeneral, never an error.
func ParseStyle(s string) Style {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "conservative", "stable", "안정형":
		return StyleConservative
	case "growth", "성장형":
		return StyleGrowth
	case "dividend", "배당형":
		return StyleDividend
	case "aggressive", "공격형":
		return StyleAggressive
	case "balanced", "균형형":
		return StyleBalanced
	}
	return StyleGeneral
}

// InstrumentLabel is the Korean name used in stock and ETF prompts.
func (s Style) InstrumentLabel() string {
	switch s {
	case StyleConservative:
		return "안정형"
	case StyleGrowth:
		return "성장형"
	case StyleDividend:
		return "배당형"
	case StyleAggressive:
		return "공격형"
	}
	return "일반"
}

// PortfolioLabel is the Korean name used in portfolio prompts, which only
// distinguish three profiles.
func (s Style) PortfolioLabel() string {
	switch s {
	case StyleConservative:
		return "안정형"
	case StyleAggressive:
		return "공격형"
	}
	return "균형형"
}
