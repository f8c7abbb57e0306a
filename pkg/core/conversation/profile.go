package conversation

import (
	"fmt"
	"slices"
	"strings"
)

// Option sets offered by the profile form.
var (
	RiskOptions    = []string{"conservative", "neutral", "aggressive"}
	HorizonOptions = []string{"1-2y", "3-5y", "5-10y+"}
	RegionOptions  = []string{"KR", "US", "JP", "EU", "EM"}
	SectorOptions  = []string{"Technology", "Financials", "Industrials", "Energy", "Healthcare", "Consumer", "Utilities", "Materials"}
)

// Profile describes the investor the answers are tailored to.
type Profile struct {
	Risk      string   `json:"risk"`
	Horizon   string   `json:"horizon"`
	Regions   []string `json:"regions"`
	Sectors   []string `json:"sectors"`
	Watchlist []string `json:"watchlist"`
}

// DefaultProfile is the profile a new session starts with.
func DefaultProfile() Profile {
	return Profile{
		Risk:      "conservative",
		Horizon:   "3-5y",
		Regions:   []string{"US", "KR"},
		Sectors:   []string{"Technology", "Consumer"},
		Watchlist: []string{"AAPL", "NVDA"},
	}
}

// Validate rejects values outside the option sets.
func (p Profile) Validate() error {
	if !slices.Contains(RiskOptions, p.Risk) {
		return fmt.Errorf("unknown risk %q (want one of %s)", p.Risk, strings.Join(RiskOptions, ", "))
	}
	if !slices.Contains(HorizonOptions, p.Horizon) {
		return fmt.Errorf("unknown horizon %q (want one of %s)", p.Horizon, strings.Join(HorizonOptions, ", "))
	}
	for _, r := range p.Regions {
		if !slices.Contains(RegionOptions, r) {
			return fmt.Errorf("unknown region %q", r)
		}
	}
	for _, s := range p.Sectors {
		if !slices.Contains(SectorOptions, s) {
			return fmt.Errorf("unknown sector %q", s)
		}
	}
	return nil
}

// AddTicker appends an upper-cased ticker to the watchlist.
// Blank and duplicate tickers are ignored; the return value reports whether the list changed.
func (p *Profile) AddTicker(ticker string) bool {
	t := strings.ToUpper(strings.TrimSpace(ticker))
	if t == "" || slices.Contains(p.Watchlist, t) {
		return false
	}
	p.Watchlist = append(p.Watchlist, t)
	return true
}

// ClearWatchlist empties the watchlist.
func (p *Profile) ClearWatchlist() {
	p.Watchlist = []string{}
}

// Summary renders the one-line profile block appended to task prompts.
func (p Profile) Summary() string {
	return fmt.Sprintf("Risk appetite: %s, holding period: %s, regions: %s, preferred sectors: %s",
		p.Risk, p.Horizon, strings.Join(p.Regions, ", "), strings.Join(p.Sectors, ", "))
}

// Tone selects the extra instruction appended to the system prompt.
type Tone string

const (
	ToneSafety      Tone = "safety"
	ToneBalanced    Tone = "balanced"
	ToneOpportunity Tone = "opportunity"
)

var toneLines = map[Tone]string{
	ToneSafety:      "Put margin of safety first and identify and describe the risks before anything else.",
	ToneBalanced:    "Present positive and negative factors in balance, emphasising the key variables.",
	ToneOpportunity: "Actively look for undervaluation and catalysts, but state the risk warnings explicitly.",
}

// ParseTone validates a tone name.
func ParseTone(s string) (Tone, error) {
	t := Tone(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := toneLines[t]; !ok {
		return "", fmt.Errorf("unknown tone %q", s)
	}
	return t, nil
}

// Line returns the instruction for the tone; unknown tones fall back to balanced.
func (t Tone) Line() string {
	if line, ok := toneLines[t]; ok {
		return line
	}
	return toneLines[ToneBalanced]
}
