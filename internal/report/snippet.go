package report

import (
	"strconv"
	"strings"

	"github.com/fatih/color"
)

const tabWidth = 8

var lineStyle = color.New(color.FgHiBlue, color.Bold)

// Snippet renders a numbered source line with a caret under column col.
func Snippet(lineNum int, line string, col int) string {
	num := strconv.Itoa(lineNum)
	padding := strings.Repeat(" ", len(num))

	var b strings.Builder
	b.WriteString(lineStyle.Sprintf("%s | ", num))
	b.WriteString(expandTabs(line))
	b.WriteString("\n")
	b.WriteString(lineStyle.Sprintf("%s | ", padding))
	b.WriteString(strings.Repeat(" ", visualColumn(line, col)))
	b.WriteString(messageStyle.Sprint("^"))
	b.WriteString("\n")
	return b.String()
}

func expandTabs(line string) string {
	var expanded strings.Builder
	col := 0
	for _, ch := range line {
		if ch == '\t' {
			n := tabWidth - (col % tabWidth)
			expanded.WriteString(strings.Repeat(" ", n))
			col += n
			continue
		}
		expanded.WriteRune(ch)
		col++
	}
	return expanded.String()
}

// visualColumn converts a 1-based byte column to a 0-based screen column.
func visualColumn(line string, column int) int {
	visual := 0
	for i, ch := range line {
		if i+1 >= column {
			break
		}
		if ch == '\t' {
			visual += tabWidth - (visual % tabWidth)
		} else {
			visual++
		}
	}
	return visual
}
