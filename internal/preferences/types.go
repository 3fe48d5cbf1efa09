package preferences

import (
	"errors"
	"fmt"
)

var ErrInvalidValue = errors.New("invalid preference value")

type Theme string

const (
	ThemeClassic       Theme = "classic"
	ThemeRoyalGold     Theme = "royal-gold"
	ThemeElegantNight  Theme = "elegant-night"
	ThemeAncientScroll Theme = "ancient-scroll"
	ThemeLight         Theme = "light"
	ThemeGoldSilver    Theme = "gold-silver"
)

var Themes = []Theme{ThemeClassic, ThemeRoyalGold, ThemeElegantNight, ThemeAncientScroll, ThemeLight, ThemeGoldSilver}

func (t Theme) Validate() error {
	for _, known := range Themes {
		if t == known {
			return nil
		}
	}
	return fmt.Errorf("%w: theme %q", ErrInvalidValue, t)
}

// FontSettings controls typography per text role.
type FontSettings struct {
	PasukFont  string `json:"pasukFont"`
	PasukSize  int    `json:"pasukSize"`
	PasukColor string `json:"pasukColor"`
	PasukBold  bool   `json:"pasukBold"`

	TitleFont  string `json:"titleFont"`
	TitleSize  int    `json:"titleSize"`
	TitleColor string `json:"titleColor"`
	TitleBold  bool   `json:"titleBold"`

	QuestionFont  string `json:"questionFont"`
	QuestionSize  int    `json:"questionSize"`
	QuestionColor string `json:"questionColor"`
	QuestionBold  bool   `json:"questionBold"`

	AnswerFont  string `json:"answerFont"`
	AnswerSize  int    `json:"answerSize"`
	AnswerColor string `json:"answerColor"`
	AnswerBold  bool   `json:"answerBold"`

	CommentaryFont       string `json:"commentaryFont"`
	CommentarySize       int    `json:"commentarySize"`
	CommentaryColor      string `json:"commentaryColor"`
	CommentaryBold       bool   `json:"commentaryBold"`
	CommentaryLineHeight string `json:"commentaryLineHeight"` // normal, relaxed, loose
	CommentaryMaxWidth   string `json:"commentaryMaxWidth"`   // narrow, medium, wide, full

	TextAlignment  string `json:"textAlignment"`  // right, center, left
	ContentSpacing string `json:"contentSpacing"` // compact, normal, comfortable, spacious
	LineHeight     string `json:"lineHeight"`     // tight, normal, relaxed, loose
	ContentWidth   string `json:"contentWidth"`   // narrow, normal, wide, full
	LetterSpacing  string `json:"letterSpacing"`  // tight, normal, wide, wider

	FontScale float64 `json:"fontScale"`
}

var DefaultFontSettings = FontSettings{
	PasukFont:  "David",
	PasukSize:  18,
	PasukColor: "#1a1a1a",

	TitleFont:  "Frank Ruehl Libre",
	TitleSize:  16,
	TitleColor: "#2563eb",
	TitleBold:  true,

	QuestionFont:  "Arial",
	QuestionSize:  16,
	QuestionColor: "#1a1a1a",

	AnswerFont:  "Arial",
	AnswerSize:  14,
	AnswerColor: "#666666",

	CommentaryFont:       "Frank Ruehl Libre",
	CommentarySize:       18,
	CommentaryColor:      "#2d2d2d",
	CommentaryLineHeight: "relaxed",
	CommentaryMaxWidth:   "medium",

	TextAlignment:  "right",
	ContentSpacing: "normal",
	LineHeight:     "normal",
	ContentWidth:   "normal",
	LetterSpacing:  "normal",

	FontScale: 1,
}

type DisplayMode string

const (
	DisplayFull            DisplayMode = "full"
	DisplayVersesOnly      DisplayMode = "verses-only"
	DisplayVersesQuestions DisplayMode = "verses-questions"
	DisplayMinimized       DisplayMode = "minimized"
	DisplayCompact         DisplayMode = "compact"
	DisplayScroll          DisplayMode = "scroll"
)

type DisplaySettings struct {
	Mode       DisplayMode `json:"mode"`
	PasukCount int         `json:"pasukCount"`
}

var DefaultDisplaySettings = DisplaySettings{Mode: DisplayScroll, PasukCount: 10}

// Sanitized fills missing fields from DefaultDisplaySettings.
func (d DisplaySettings) Sanitized() DisplaySettings {
	if d.Mode == "" {
		d.Mode = DefaultDisplaySettings.Mode
	}
	if d.PasukCount <= 0 {
		d.PasukCount = DefaultDisplaySettings.PasukCount
	}
	return d
}
