package ui

import (
	"time"

	"treechat/model"
)

type Message = model.Message

// flashExpiredMsg clears the flash line if it still shows notice seq
type flashExpiredMsg struct {
	seq int
}

// markdownRenderedMsg carries an assistant message rendered for a given width
type markdownRenderedMsg struct {
	MessageID string
	Width     int
	Rendered  string
}

// exportDoneMsg reports the result of a transcript export
type exportDoneMsg struct {
	Path string
	Err  error
}

const flashDuration = 3 * time.Second
