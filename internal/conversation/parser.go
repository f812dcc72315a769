// Package conversation turns typed user input into session commands.
package conversation

import (
	"regexp"
	"strings"

	"github.com/hammamikhairi/celestialwok/internal/logger"
)

// Command is a user request understood by the cooking session.
type Command string

const (
	CommandUnknown Command = "unknown"
	CommandNext    Command = "next"
	CommandBack    Command = "back"
	CommandPhoto   Command = "photo"
	CommandGrade   Command = "grade"
	CommandReplay  Command = "replay"
	CommandExit    Command = "exit"
	CommandHelp    Command = "help"
)

// KeywordParser matches user input to commands using keywords and simple
// patterns, in English and Traditional Chinese.
type KeywordParser struct {
	log      *logger.Logger
	patterns []patternRule
}

type patternRule struct {
	regex   *regexp.Regexp
	command Command
}

// NewKeywordParser creates a keyword-based command parser.
func NewKeywordParser(log *logger.Logger) *KeywordParser {
	p := &KeywordParser{log: log}
	p.patterns = []patternRule{
		{regexp.MustCompile(`(?i)^(next|done|continue|n|advance|start|下一步|繼續)$`), CommandNext},
		{regexp.MustCompile(`(?i)^(back|prev|previous|b|上一步|返回)$`), CommandBack},
		{regexp.MustCompile(`(?i)^(photo|snap|capture|retake|p|拍照|重拍)$`), CommandPhoto},
		{regexp.MustCompile(`(?i)^(grade|submit|score|rate|g|評分)$`), CommandGrade},
		{regexp.MustCompile(`(?i)^(replay|repeat|again|r|what\??|say that again|重播|再說一次)$`), CommandReplay},
		{regexp.MustCompile(`(?i)^(quit|exit|stop|q|leave|離開|結束)$`), CommandExit},
		{regexp.MustCompile(`(?i)^(help|h|\?|說明)$`), CommandHelp},
	}
	return p
}

// Parse converts user input into a command. Blank or unrecognized input
// yields CommandUnknown.
func (p *KeywordParser) Parse(input string) Command {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return CommandUnknown
	}

	p.log.Debug("parsing input: %q", trimmed)

	for _, rule := range p.patterns {
		if rule.regex.MatchString(trimmed) {
			p.log.Debug("matched command: %s", rule.command)
			return rule.command
		}
	}

	p.log.Debug("no match for %q", trimmed)
	return CommandUnknown
}

// Help lists the commands and their main keywords.
func Help() []string {
	return []string{
		"next      go to the next stage or step",
		"back      return to the previous step",
		"replay    hear the current narration again",
		"photo     take a picture of your dish (retake to try again)",
		"grade     submit the dish for grading",
		"exit      leave the session",
	}
}
