package report

import (
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/text/language"
)

// PreviewLength is the number of characters of report content shown in a
// single-member answer.
const PreviewLength = 100

// Prompts are the canned requests offered to a calling agent.
type Prompts struct {
	CheckReports string
	CheckPerson  string
	Stats        string
}

type messages struct {
	missing     string
	noneMissing string
	separator   string
	notFound    string
	submitted   string
	pending     string
	stats       string
	members     string
	prompts     Prompts
}

var zhTW = messages{
	missing:     "本週未寫週報名單：%s",
	noneMissing: "本週未寫週報名單：無",
	separator:   ", ",
	notFound:    "找不到 %s 的資料。請確認名字是否正確。",
	submitted:   "%s 已於 %s 提交週報（%s 天前）。\n內容摘要：%s...",
	pending:     "%s 尚未提交本週週報。",
	stats:       "週報提交統計：\n已提交：%d/%d (%s%%)\n",
	members:     "需要繳交週報的成員：%s",
	prompts: Prompts{
		CheckReports: "請幫我檢查誰還沒有繳交本週的週報。",
		CheckPerson:  "請幫我檢查特定人員的週報提交狀況。",
		Stats:        "請幫我提供本週週報提交的統計資料。",
	},
}

var en = messages{
	missing:     "Missing this week's report: %s",
	noneMissing: "Missing this week's report: none",
	separator:   ", ",
	notFound:    "No record of %s. Please check the name is spelled correctly.",
	submitted:   "%s submitted a weekly report at %s (%s days ago).\nSummary: %s...",
	pending:     "%s has not submitted this week's report yet.",
	stats:       "Weekly report submissions:\nSubmitted: %d/%d (%s%%)\n",
	members:     "Members required to submit weekly reports: %s",
	prompts: Prompts{
		CheckReports: "Please check who has not submitted this week's report yet.",
		CheckPerson:  "Please check whether a specific member has submitted this week's report.",
		Stats:        "Please give me this week's weekly report submission statistics.",
	},
}

// supported lists the catalogue languages; the first is the fallback.
var (
	supported = []language.Tag{language.TraditionalChinese, language.English}
	catalog   = []messages{zhTW, en}
	matcher   = language.NewMatcher(supported)
)

// Formatter renders query results as user-facing sentences.
type Formatter struct {
	m messages
}

// FormatterFor returns the Formatter best matching a BCP 47 locale such as
// "zh-TW" or "en-US". Unknown or malformed locales fall back to zh-TW.
func FormatterFor(locale string) Formatter {
	tag, err := language.Parse(locale)
	if err != nil {
		return Formatter{m: catalog[0]}
	}
	_, idx, conf := matcher.Match(tag)
	if conf == language.No {
		idx = 0
	}
	return Formatter{m: catalog[idx]}
}

// Missing renders the list of members who have not submitted.
func (f Formatter) Missing(names []string) string {
	if len(names) == 0 {
		return f.m.noneMissing
	}
	return fmt.Sprintf(f.m.missing, strings.Join(names, f.m.separator))
}

// Person renders a single-member lookup.
func (f Formatter) Person(l Lookup) string {
	switch {
	case !l.Found:
		return fmt.Sprintf(f.m.notFound, l.Name)
	case !l.Record.Submitted:
		return fmt.Sprintf(f.m.pending, l.Name)
	default:
		return fmt.Sprintf(f.m.submitted,
			l.Name,
			l.Record.DisplayTime(),
			oneDecimal(l.Record.DaysAgo),
			Preview(l.Record.Content),
		)
	}
}

// Stats renders submission counts.
func (f Formatter) Stats(s Stats) string {
	return fmt.Sprintf(f.m.stats, s.Submitted, s.Total, oneDecimal(s.Percentage))
}

// Members renders the roster.
func (f Formatter) Members(names []string) string {
	return fmt.Sprintf(f.m.members, strings.Join(names, f.m.separator))
}

// Prompts returns the canned request texts.
func (f Formatter) Prompts() Prompts { return f.m.prompts }

// Preview truncates content to PreviewLength characters.
func Preview(content string) string {
	r := []rune(content)
	if len(r) <= PreviewLength {
		return content
	}
	return string(r[:PreviewLength])
}

func oneDecimal(x float64) string {
	return strconv.FormatFloat(x, 'f', 1, 64)
}
