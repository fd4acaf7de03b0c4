package ui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/dumper/internal/protocol"
	"github.com/desertthunder/dumper/internal/services"
)

// MsgKind enumerates all message types in the application.
type MsgKind int

// Msg represents all possible messages in the TUI (Elm-style message union).
type Msg struct {
	kind MsgKind
	data any
}

var (
	_ tea.Msg = Msg{}
)

const (
	MsgStreamOpened MsgKind = iota
	MsgStreamLine
	MsgStreamEnded
	MsgDownloaded
	MsgThemeSignal
)

type streamOpened struct {
	id     string
	stream *services.Stream
	err    error
}

type streamLine struct {
	id     string
	stream *services.Stream
	line   string
}

type streamEnded struct {
	id  string
	err error
}

type downloaded struct {
	ref  protocol.FileRef
	dest string
	err  error
}

// streamOpenedMsg is the constructor for [MsgStreamOpened]
func streamOpenedMsg(id string, stream *services.Stream, err error) Msg {
	return Msg{kind: MsgStreamOpened, data: streamOpened{id: id, stream: stream, err: err}}
}

// streamLineMsg is the constructor for [MsgStreamLine]
func streamLineMsg(id string, stream *services.Stream, line string) Msg {
	return Msg{kind: MsgStreamLine, data: streamLine{id: id, stream: stream, line: line}}
}

// streamEndedMsg is the constructor for [MsgStreamEnded]
func streamEndedMsg(id string, err error) Msg {
	return Msg{kind: MsgStreamEnded, data: streamEnded{id: id, err: err}}
}

// downloadedMsg is the constructor for [MsgDownloaded]
func downloadedMsg(ref protocol.FileRef, dest string, err error) Msg {
	return Msg{kind: MsgDownloaded, data: downloaded{ref: ref, dest: dest, err: err}}
}

// themeSignalMsg is the constructor for [MsgThemeSignal]
func themeSignalMsg(dark bool) Msg {
	return Msg{kind: MsgThemeSignal, data: dark}
}
