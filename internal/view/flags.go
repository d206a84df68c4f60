package view

import (
	"strings"

	"github.com/bobmcallan/raymonds/internal/common"
	"github.com/bobmcallan/raymonds/internal/models"
)

// Severity orders risk flags; red outranks yellow.
type Severity string

const (
	SeverityRed    Severity = "red"
	SeverityYellow Severity = "yellow"
)

// Color maps a severity to its palette token.
func (s Severity) Color() common.ColorToken {
	if s == SeverityRed {
		return common.ColorRed
	}
	return common.ColorAmber
}

// Flag is one risk indicator.
type Flag struct {
	Severity Severity
	Text     string
}

// FlagPanel is the risk-flag section of a company page.
type FlagPanel struct {
	Flags      []Flag
	Red        int
	Yellow     int
	Violations int
}

// Empty reports whether there is nothing to warn about.
func (p FlagPanel) Empty() bool {
	return len(p.Flags) == 0 && p.Violations == 0
}

// RiskFlagPanel lists red flags before yellow flags, each in server order.
// Blank entries are dropped.
func RiskFlagPanel(c *models.CompanyScore) FlagPanel {
	var p FlagPanel
	if c == nil {
		return p
	}
	for _, f := range c.RedFlags {
		if f = strings.TrimSpace(f); f != "" {
			p.Flags = append(p.Flags, Flag{Severity: SeverityRed, Text: f})
			p.Red++
		}
	}
	for _, f := range c.YellowFlags {
		if f = strings.TrimSpace(f); f != "" {
			p.Flags = append(p.Flags, Flag{Severity: SeverityYellow, Text: f})
			p.Yellow++
		}
	}
	p.Violations = c.ViolationCount
	return p
}

// NarrativeSection is one titled paragraph of the analyst narrative.
type NarrativeSection struct {
	Title string
	Body  string
}

// Narrative returns the non-empty narrative fields in reading order.
func Narrative(c *models.CompanyScore) []NarrativeSection {
	if c == nil {
		return nil
	}
	var out []NarrativeSection
	for _, s := range []NarrativeSection{
		{Title: "Verdict", Body: c.Verdict},
		{Title: "Key Risk", Body: c.KeyRisk},
		{Title: "Recommendation", Body: c.Recommendation},
		{Title: "Watch Trigger", Body: c.WatchTrigger},
	} {
		if s.Body = strings.TrimSpace(s.Body); s.Body != "" {
			out = append(out, s)
		}
	}
	return out
}
