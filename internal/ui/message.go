package ui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/vidshelf/internal/models"
	"github.com/desertthunder/vidshelf/internal/tasks"
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
	MsgVideosLoaded MsgKind = iota
	MsgProgressUpdate
	MsgImportComplete
	MsgVideoDeleted
	MsgPlayerStarted
)

type videosLoaded struct {
	videos []*models.VideoRecord
	err    error
}

type importComplete struct {
	result *tasks.ImportResult
	err    error
}

type videoAction struct {
	video *models.VideoRecord
	err   error
}

// videosLoadedMsg is the constructor for [MsgVideosLoaded]
func videosLoadedMsg(videos []*models.VideoRecord, err error) Msg {
	return Msg{kind: MsgVideosLoaded, data: videosLoaded{videos, err}}
}

// progressUpdateMsg is the constructor for [MsgProgressUpdate]
func progressUpdateMsg(update tasks.ProgressUpdate) Msg {
	return Msg{kind: MsgProgressUpdate, data: update}
}

// importCompleteMsg is the constructor for [MsgImportComplete]
func importCompleteMsg(result *tasks.ImportResult, err error) Msg {
	return Msg{kind: MsgImportComplete, data: importComplete{result, err}}
}

// videoDeletedMsg is the constructor for [MsgVideoDeleted]
func videoDeletedMsg(video *models.VideoRecord, err error) Msg {
	return Msg{kind: MsgVideoDeleted, data: videoAction{video, err}}
}

// playerStartedMsg is the constructor for [MsgPlayerStarted]
func playerStartedMsg(video *models.VideoRecord, err error) Msg {
	return Msg{kind: MsgPlayerStarted, data: videoAction{video, err}}
}
