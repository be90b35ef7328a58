package ctree

import (
	"bytes"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/gnolang/voidcaster/internal/types"
)

// Comment is a comment of the main file.
type Comment struct {
	// Text is the comment including its delimiters.
	Text   string
	Extent types.Extent
	// Inline is set when code precedes the comment on its first line.
	Inline bool
}

// Comments returns the comments of the main file in source order.
func (t *Tree) Comments() []Comment {
	var out []Comment
	walk(t.ts.RootNode(), func(n *sitter.Node) bool {
		if n.Type() != "comment" {
			return true
		}
		out = append(out, Comment{
			Text:   t.text(n),
			Extent: types.Extent{Start: location(n.StartPoint()), End: location(n.EndPoint())},
			Inline: t.codeBefore(n.StartByte()),
		})
		return false
	})
	return out
}

func (t *Tree) codeBefore(offset uint32) bool {
	lineStart := bytes.LastIndexByte(t.src[:offset], '\n') + 1
	return len(bytes.TrimSpace(t.src[lineStart:offset])) > 0
}
