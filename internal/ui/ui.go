package ui

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/vidshelf/internal/formatter"
	"github.com/desertthunder/vidshelf/internal/models"
	"github.com/desertthunder/vidshelf/internal/shared"
	"github.com/desertthunder/vidshelf/internal/tasks"
)

// ViewState represents the current view in the TUI.
type ViewState int

const (
	ListView ViewState = iota
	ImportPromptView
	ImportView
	ConfirmDeleteView
	ResultView
)

// Library is the part of the video library the TUI reads and mutates.
type Library interface {
	List() ([]*models.VideoRecord, error)
	Delete(id string) (*models.VideoRecord, error)
}

// ImportRunner runs the import loop, reporting through progress.
type ImportRunner interface {
	Run(ctx context.Context, paths []string, opts tasks.ImportOpts, progress chan<- tasks.ProgressUpdate) (*tasks.ImportResult, error)
}

// PlayFunc hands a stored video file to an external player.
type PlayFunc func(path string) error

// Model represents the TUI application state.
type Model struct {
	ctx          context.Context
	view         ViewState
	library      Library
	engine       ImportRunner
	play         PlayFunc
	width        int
	height       int
	videoList    list.Model
	videos       []*models.VideoRecord
	pathInput    textinput.Model
	bar          progress.Model
	progressChan chan tasks.ProgressUpdate
	importDone   chan importComplete
	cancel       context.CancelFunc
	cancelling   bool
	quitOnDone   bool
	progress     tasks.ProgressUpdate
	result       *tasks.ImportResult
	importErr    error
	pending      *models.VideoRecord
	status       string
	statusErr    bool
	err          error
	help         help.Model
	keys         keyMap
}

// NewModel creates a new TUI model with the provided dependencies.
func NewModel(ctx context.Context, library Library, engine ImportRunner, play PlayFunc) *Model {
	videoList := list.New(nil, list.NewDefaultDelegate(), 0, 0)
	videoList.Title = "Videos"
	videoList.SetShowHelp(false)

	input := textinput.New()
	input.Placeholder = "~/Movies/clip.mp4, ~/Downloads/videos"
	input.Prompt = "› "
	input.CharLimit = 4096

	return &Model{
		ctx:       ctx,
		view:      ListView,
		library:   library,
		engine:    engine,
		play:      play,
		videoList: videoList,
		pathInput: input,
		bar:       progress.New(progress.WithDefaultGradient()),
		help:      help.New(),
		keys:      newKeyMap(),
	}
}

// Init initializes the TUI by loading the stored video list.
func (m *Model) Init() tea.Cmd {
	return m.loadVideos()
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.videoList.SetSize(msg.Width-4, msg.Height-6)
		m.pathInput.Width = max(msg.Width-10, 20)
		m.bar.Width = max(min(msg.Width-8, 80), 10)
		return m, nil

	case tea.KeyMsg:
		switch m.view {
		case ListView:
			return m.handleListKeys(msg)
		case ImportPromptView:
			return m.handlePromptKeys(msg)
		case ImportView:
			return m.handleImportKeys(msg)
		case ConfirmDeleteView:
			return m.handleConfirmKeys(msg)
		case ResultView:
			return m.handleResultKeys(msg)
		}

	case Msg:
		return m.handleMsg(msg)
	}

	return m.updateComponents(msg)
}

func (m *Model) handleMsg(msg Msg) (tea.Model, tea.Cmd) {
	switch msg.kind {
	case MsgVideosLoaded:
		data := msg.data.(videosLoaded)
		if data.err != nil {
			m.err = data.err
			return m, nil
		}
		m.err = nil
		m.videos = data.videos
		m.videoList.Title = fmt.Sprintf("Videos (%d)", len(data.videos))
		return m, m.videoList.SetItems(videoItems(data.videos))

	case MsgProgressUpdate:
		m.progress = msg.data.(tasks.ProgressUpdate)
		return m, m.waitForProgress()

	case MsgImportComplete:
		data := msg.data.(importComplete)
		m.result = data.result
		m.importErr = data.err
		m.view = ResultView
		m.progressChan = nil
		m.importDone = nil
		m.stopImport()
		if m.quitOnDone {
			return m, tea.Quit
		}
		return m, m.loadVideos()

	case MsgVideoDeleted:
		data := msg.data.(videoAction)
		m.pending = nil
		m.view = ListView
		if data.err != nil {
			m.setStatus(fmt.Sprintf("Delete failed: %v", data.err), true)
			return m, nil
		}
		m.setStatus(fmt.Sprintf("Deleted %s", data.video.Name()), false)
		return m, m.loadVideos()

	case MsgPlayerStarted:
		data := msg.data.(videoAction)
		if data.err != nil {
			m.setStatus(fmt.Sprintf("Could not play %s: %v", data.video.Name(), data.err), true)
		} else {
			m.setStatus(fmt.Sprintf("Playing %s", data.video.Name()), false)
		}
		return m, nil
	}
	return m, nil
}

// View renders the UI based on the current view state.
func (m *Model) View() string {
	if m.err != nil && m.view == ListView {
		return styles.err.Render(fmt.Sprintf("Error: %v\n\nPress q to quit", m.err))
	}

	switch m.view {
	case ListView:
		return m.renderList()
	case ImportPromptView:
		return m.renderPrompt()
	case ImportView:
		return m.renderImport()
	case ConfirmDeleteView:
		return m.renderConfirm()
	case ResultView:
		return m.renderResult()
	default:
		return ""
	}
}

func (m *Model) handleListKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.videoList.FilterState() == list.Filtering {
		var cmd tea.Cmd
		m.videoList, cmd = m.videoList.Update(msg)
		return m, cmd
	}

	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.add):
		m.view = ImportPromptView
		m.pathInput.Reset()
		m.clearStatus()
		return m, m.pathInput.Focus()
	case key.Matches(msg, m.keys.play):
		if video := m.selectedVideo(); video != nil {
			return m, m.playVideo(video)
		}
		return m, nil
	case key.Matches(msg, m.keys.remove):
		if video := m.selectedVideo(); video != nil {
			m.pending = video
			m.view = ConfirmDeleteView
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.videoList, cmd = m.videoList.Update(msg)
	return m, cmd
}

func (m *Model) handlePromptKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit
	case "esc":
		m.pathInput.Blur()
		m.view = ListView
		return m, nil
	case "enter":
		paths := parsePaths(m.pathInput.Value())
		if len(paths) == 0 {
			m.setStatus("Enter at least one file or directory", true)
			return m, nil
		}
		m.pathInput.Blur()
		m.clearStatus()
		m.view = ImportView
		m.progress = tasks.ProgressUpdate{}
		m.result = nil
		m.importErr = nil
		return m, m.startImport(paths)
	}

	var cmd tea.Cmd
	m.pathInput, cmd = m.pathInput.Update(msg)
	return m, cmd
}

// handleImportKeys cancels a running import. The model stays in ImportView until the engine
// reports MsgImportComplete, then shows the result or quits.
func (m *Model) handleImportKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		m.quitOnDone = true
	case "esc":
	default:
		return m, nil
	}

	if m.cancel == nil {
		if m.quitOnDone {
			return m, tea.Quit
		}
		return m, nil
	}
	m.cancel()
	m.cancelling = true
	return m, nil
}

func (m *Model) handleConfirmKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.yes):
		if m.pending == nil {
			m.view = ListView
			return m, nil
		}
		return m, m.deleteVideo(m.pending)
	case key.Matches(msg, m.keys.no), key.Matches(msg, m.keys.back), key.Matches(msg, m.keys.quit):
		m.pending = nil
		m.view = ListView
		return m, nil
	}
	return m, nil
}

func (m *Model) handleResultKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "esc", "enter":
		m.view = ListView
		m.result = nil
		m.importErr = nil
		return m, nil
	}
	return m, nil
}

func (m *Model) updateComponents(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.view {
	case ListView:
		m.videoList, cmd = m.videoList.Update(msg)
	case ImportPromptView:
		m.pathInput, cmd = m.pathInput.Update(msg)
	}
	return m, cmd
}

func (m *Model) selectedVideo() *models.VideoRecord {
	if item, ok := m.videoList.SelectedItem().(videoItem); ok {
		return item.video
	}
	return nil
}

func (m *Model) setStatus(text string, isErr bool) {
	m.status = text
	m.statusErr = isErr
}

func (m *Model) clearStatus() { m.setStatus("", false) }

func (m *Model) loadVideos() tea.Cmd {
	return func() tea.Msg {
		videos, err := m.library.List()
		return videosLoadedMsg(videos, err)
	}
}

func (m *Model) playVideo(video *models.VideoRecord) tea.Cmd {
	return func() tea.Msg {
		if m.play == nil {
			return playerStartedMsg(video, shared.ErrPlayerUnavailable)
		}
		return playerStartedMsg(video, m.play(video.Path()))
	}
}

func (m *Model) deleteVideo(video *models.VideoRecord) tea.Cmd {
	return func() tea.Msg {
		removed, err := m.library.Delete(video.ID())
		if removed == nil {
			removed = video
		}
		return videoDeletedMsg(removed, err)
	}
}

func (m *Model) startImport(paths []string) tea.Cmd {
	m.progressChan = make(chan tasks.ProgressUpdate, 50)
	m.importDone = make(chan importComplete, 1)

	ctx, cancel := context.WithCancel(m.ctx)
	m.cancel = cancel
	m.cancelling = false

	progressChan, done := m.progressChan, m.importDone
	go func() {
		result, err := m.engine.Run(ctx, paths, tasks.ImportOpts{Recursive: true}, progressChan)
		done <- importComplete{result: result, err: err}
		close(progressChan)
	}()

	return m.waitForProgress()
}

func (m *Model) stopImport() {
	if m.cancel != nil {
		m.cancel()
		m.cancel = nil
	}
	m.cancelling = false
}

func (m *Model) waitForProgress() tea.Cmd {
	progressChan, done := m.progressChan, m.importDone
	return func() tea.Msg {
		if progressChan != nil {
			if update, ok := <-progressChan; ok {
				return progressUpdateMsg(update)
			}
		}
		if done == nil {
			return importCompleteMsg(nil, nil)
		}
		outcome := <-done
		return importCompleteMsg(outcome.result, outcome.err)
	}
}

// parsePaths splits comma or newline separated input and expands ~.
func parsePaths(input string) []string {
	fields := strings.FieldsFunc(input, func(r rune) bool { return r == ',' || r == '\n' })
	paths := make([]string, 0, len(fields))
	for _, f := range fields {
		f = strings.Trim(strings.TrimSpace(f), `"'`)
		if f == "" {
			continue
		}
		if expanded, err := shared.ExpandPath(f); err == nil {
			f = expanded
		}
		paths = append(paths, f)
	}
	return paths
}

func (m *Model) renderStatus() string {
	if m.status == "" {
		return ""
	}
	if m.statusErr {
		return "\n" + styles.err.Render(m.status)
	}
	return "\n" + styles.ok.Render(m.status)
}

func (m *Model) renderList() string {
	helpView := m.help.ShortHelpView(m.keys.ShortHelp())
	if len(m.videos) == 0 {
		empty := styles.help.Render("No videos yet. Press a to import some.")
		return fmt.Sprintf("%s\n\n%s%s\n\n%s", styles.title.Render("Videos"), empty, m.renderStatus(), helpView)
	}
	return fmt.Sprintf("%s%s\n\n%s", m.videoList.View(), m.renderStatus(), helpView)
}

func (m *Model) renderPrompt() string {
	title := styles.title.Render("Import Videos")
	hint := styles.help.Render("Files or directories, separated by commas. Directories are searched recursively.")
	helpView := m.help.ShortHelpView([]key.Binding{m.keys.submit, m.keys.back})
	return fmt.Sprintf("%s\n%s\n\n%s%s\n\n%s", title, hint, styles.prompt.Render(m.pathInput.View()), m.renderStatus(), helpView)
}

func (m *Model) renderImport() string {
	title := styles.title.Render("Importing Videos")

	var phase string
	switch m.progress.Phase {
	case tasks.Discover:
		phase = "Finding video files..."
	case tasks.Import:
		phase = fmt.Sprintf("Copying videos (%d/%d)", m.progress.Step, m.progress.Total)
	case tasks.Complete:
		phase = "Finishing..."
	default:
		phase = "Starting..."
	}

	message := m.progress.Message
	if m.progress.Err != nil {
		message = styles.warn.Render(message)
	}

	hint := styles.help.Render("esc/ctrl+c: cancel")
	if m.cancelling {
		hint = styles.warn.Render("Cancelling...")
	}

	return fmt.Sprintf("%s\n\n%s\n%s\n\n%s\n\n%s", title, phase, m.bar.ViewAs(m.progress.Fraction()), message, hint)
}

func (m *Model) renderConfirm() string {
	if m.pending == nil {
		return ""
	}

	title := styles.title.Render(fmt.Sprintf("Delete '%s'?", m.pending.Name()))
	info := fmt.Sprintf(
		"\n%s %s\n%s %s\n%s %s\n",
		styles.label.Render("Size:"), formatter.FormatSize(m.pending.Size()),
		styles.label.Render("Imported:"), m.pending.CreatedAt().Local().Format("2006-01-02 15:04"),
		styles.label.Render("File:"), m.pending.Path(),
	)
	warning := styles.warn.Render("The stored copy will be removed from disk.")

	helpView := m.help.ShortHelpView([]key.Binding{m.keys.yes, m.keys.no})
	return fmt.Sprintf("%s\n%s\n%s\n\n%s", title, info, warning, helpView)
}

func (m *Model) renderResult() string {
	helpView := m.help.ShortHelpView([]key.Binding{m.keys.back, m.keys.quit})

	if m.result == nil {
		msg := "No result available"
		if m.importErr != nil {
			msg = fmt.Sprintf("Import failed: %v", m.importErr)
		}
		return fmt.Sprintf("%s\n\n%s", styles.err.Render(msg), helpView)
	}

	var title string
	switch {
	case errors.Is(m.importErr, shared.ErrCancelled):
		title = styles.warn.Render("Import cancelled")
	case m.result.Failed > 0:
		title = styles.warn.Render("Import finished with errors")
	default:
		title = styles.ok.Render("✓ Import Complete!")
	}

	info := fmt.Sprintf("\nImported: %d/%d\nFailed: %d\nDuration: %s",
		m.result.Imported, m.result.Total, m.result.Failed, m.result.Duration.Round(time.Millisecond))

	var failed string
	if len(m.result.Failures) > 0 {
		failed = fmt.Sprintf("\n\n%s", styles.warn.Render(fmt.Sprintf("Failed to import %d files:", len(m.result.Failures))))
		for _, f := range m.result.Failures {
			failed += fmt.Sprintf("\n  • %s: %v", filepath.Base(f.Path), f.Err)
		}
	}

	return fmt.Sprintf("%s\n%s%s\n\n%s", title, info, failed, helpView)
}
