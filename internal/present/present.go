// Package present renders program records and selection prompts as chat text.
package present

import (
	"strings"

	"github.com/m3rciful/fitbot/internal/program"
)

// DefaultTip is shown when a record carries no tip of its own.
const DefaultTip = "Слушай свой организм и отдыхай!"

const (
	header        = "🎉 ТВОЯ ПРОГРАММА ГОТОВА!"
	featuresTitle = "✨ ОСОБЕННОСТИ:"
	scheduleTitle = "📅 РАСПИСАНИЕ НА НЕДЕЛЮ:"
	nutritionHead = "🥗 ПИТАНИЕ:"
	waterHead     = "💧 ВОДНЫЙ РЕЖИМ:"
	tipHead       = "💡 СОВЕТ:"
	footer        = "Чтобы создать новую программу, нажми /create"
	bullet        = "• "
)

// Program renders rec with fixed section order. Empty sections keep their heading.
func Program(rec program.Record) string {
	var b strings.Builder
	b.WriteString(header)
	b.WriteString("\n\n📋 ")
	b.WriteString(rec.Title)
	b.WriteByte('\n')
	b.WriteString(rec.Description)
	b.WriteString("\n\n")

	b.WriteString(featuresTitle)
	b.WriteByte('\n')
	for _, f := range rec.Features {
		b.WriteString(bullet)
		b.WriteString(f)
		b.WriteByte('\n')
	}

	b.WriteByte('\n')
	b.WriteString(scheduleTitle)
	b.WriteByte('\n')
	for _, d := range rec.Schedule {
		b.WriteString(bullet)
		b.WriteString(d.Day)
		b.WriteString(": ")
		b.WriteString(d.Workout)
		b.WriteByte('\n')
	}

	section(&b, nutritionHead, rec.Nutrition)
	section(&b, waterHead, rec.Water)
	section(&b, tipHead, Tip(rec))

	b.WriteString("\n")
	b.WriteString(footer)
	return b.String()
}

func section(b *strings.Builder, head, body string) {
	b.WriteByte('\n')
	b.WriteString(head)
	b.WriteByte('\n')
	b.WriteString(body)
	b.WriteByte('\n')
}

// Tip returns the record tip or DefaultTip when it is blank.
func Tip(rec program.Record) string {
	if strings.TrimSpace(rec.Tip) == "" {
		return DefaultTip
	}
	return rec.Tip
}

// GoalOptions lists goal labels in declaration order.
func GoalOptions() []string {
	goals := program.Goals()
	out := make([]string, 0, len(goals))
	for _, g := range goals {
		out = append(out, g.Label())
	}
	return out
}

// LevelOptions lists level labels in declaration order.
func LevelOptions() []string {
	levels := program.Levels()
	out := make([]string, 0, len(levels))
	for _, l := range levels {
		out = append(out, l.Label())
	}
	return out
}
