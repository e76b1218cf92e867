package conversations

import (
	"html"
	"strings"
	"time"

	"github.com/aschepis/backscratcher/companion/chain"
	"github.com/aschepis/backscratcher/companion/llm"
)

const (
	dateLayout      = "Monday 2006-01-02"
	timeLayoutLong  = "15:04:05"
	timeLayoutShort = "15:04"
)

// MessageLog projects newest-first log items into chronological messages.
// The companion's own messages become assistant turns and everything else
// becomes user turns. Each turn carries a context header with the time and
// author; the date is repeated only when it changes.
func MessageLog(items []LogItem, now time.Time) []llm.Message {
	messages := make([]llm.Message, 0, len(items))
	var lastDate string

	for i := len(items) - 1; i >= 0; i-- {
		item := items[i]
		createdAt := item.CreatedAt.UTC()

		date := createdAt.Format(dateLayout)
		showDate := date != lastDate
		lastDate = date

		timeLayout := timeLayoutShort
		if now.Sub(createdAt) < time.Minute {
			timeLayout = timeLayoutLong
		}

		var b strings.Builder
		if item.IsEvent() {
			b.WriteString("<event")
			writeInfoAttrs(&b, date, showDate, createdAt.Format(timeLayout))
			b.WriteString(">")
			b.WriteString(html.EscapeString(item.Content))
			b.WriteString("</event>")
		} else {
			b.WriteString("<context><messageInfo")
			writeInfoAttrs(&b, date, showDate, createdAt.Format(timeLayout))
			writeAttr(&b, "from", item.UserName)
			b.WriteString("/></context>\n")
			b.WriteString(item.Content)
		}

		role := llm.RoleUser
		if item.IsOwnMessage() {
			role = llm.RoleAssistant
		}
		messages = append(messages, llm.NewTextMessage(role, b.String()))
	}
	return messages
}

// AppendLog pushes the projection of items onto ch.
func AppendLog(ch *chain.Chain, items []LogItem, now time.Time) {
	for _, msg := range MessageLog(items, now) {
		ch.PushMessage(msg.Role, msg.Text())
	}
}

func writeInfoAttrs(b *strings.Builder, date string, showDate bool, clock string) {
	if showDate {
		writeAttr(b, "date", date)
	}
	writeAttr(b, "time", clock)
}

func writeAttr(b *strings.Builder, name, value string) {
	b.WriteString(" ")
	b.WriteString(name)
	b.WriteString(`="`)
	b.WriteString(html.EscapeString(value))
	b.WriteString(`"`)
}
