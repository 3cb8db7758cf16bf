package ui

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/dustin/go-humanize"

	"github.com/alryaz/go-music-browser/internal/browser"
	"github.com/alryaz/go-music-browser/internal/models"
	"github.com/alryaz/go-music-browser/internal/resolver"
	"github.com/alryaz/go-music-browser/internal/shared"
)

// ViewState represents the current view in the TUI.
type ViewState int

const (
	BrowseView ViewState = iota
	LoadingView
	PlayView
)

// Model represents the TUI application state.
type Model struct {
	ctx     context.Context
	view    ViewState
	browser *browser.Browser
	mode    resolver.ViewMode
	width   int
	height  int

	// stack holds every visited node, the last entry being the one on
	// screen. Going back pops without a refetch.
	stack    []*browser.Node
	nodeList list.Model
	play     *resolver.PlayInstruction
	playFor  string
	err      error
	help     help.Model
	keys     keyMap
}

// nodeItem wraps a [browser.Node] child to implement list.Item.
type nodeItem struct {
	node *browser.Node
}

func (i nodeItem) FilterValue() string { return i.node.Title }

func (i nodeItem) Title() string {
	if i.node.CanPlay {
		return fmt.Sprintf("♪ %s", i.node.Title)
	}
	return i.node.Title
}

func (i nodeItem) Description() string {
	switch media := i.node.Media.(type) {
	case *models.Track:
		desc := shared.FormatDuration(media.DurationMS)
		if len(media.Artists) > 0 {
			desc = fmt.Sprintf("%s • %s", desc, media.Artists[0])
		}
		return desc
	case *models.Album:
		desc := fmt.Sprintf("%s tracks", humanize.Comma(int64(media.TrackCount)))
		if media.Year != 0 {
			desc = fmt.Sprintf("%s • %d", desc, media.Year)
		}
		return desc
	case *models.Artist:
		return fmt.Sprintf("%s albums", humanize.Comma(int64(media.AlbumCount)))
	case *models.Playlist:
		return fmt.Sprintf("%s tracks", humanize.Comma(int64(media.TrackCount)))
	case *models.Genre:
		return "genre"
	default:
		return i.node.ContentType
	}
}

type nodeFetchedMsg struct {
	node *browser.Node
	err  error
}

type playResolvedMsg struct {
	title       string
	instruction resolver.PlayInstruction
	err         error
}

// NewModel creates a new TUI model over an initialized browser.
func NewModel(ctx context.Context, b *browser.Browser, mode resolver.ViewMode) *Model {
	return &Model{
		ctx:     ctx,
		view:    LoadingView,
		browser: b,
		mode:    mode,
		help:    help.New(),
		keys:    newKeyMap(),
	}
}

// Init starts the TUI by expanding the library root.
func (m *Model) Init() tea.Cmd {
	return m.fetchNode(models.TypeLibrary, models.TypeLibrary)
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if m.nodeList.Width() != 0 {
			m.nodeList.SetSize(msg.Width-4, msg.Height-8)
		}
		return m, nil

	case tea.KeyMsg:
		switch m.view {
		case BrowseView:
			return m.handleBrowseKeys(msg)
		case PlayView:
			return m.handlePlayKeys(msg)
		case LoadingView:
			if msg.String() == "q" || msg.String() == "ctrl+c" {
				return m, tea.Quit
			}
			return m, nil
		}

	case nodeFetchedMsg:
		if msg.err != nil {
			m.err = msg.err
			m.view = BrowseView
			if len(m.stack) == 0 {
				return m, tea.Quit
			}
			return m, nil
		}
		m.err = nil
		m.stack = append(m.stack, msg.node)
		m.showNode(msg.node)
		return m, nil

	case playResolvedMsg:
		if msg.err != nil {
			m.err = msg.err
			m.view = BrowseView
			return m, nil
		}
		m.err = nil
		m.play = &msg.instruction
		m.playFor = msg.title
		m.view = PlayView
		return m, nil
	}

	var cmd tea.Cmd
	m.nodeList, cmd = m.nodeList.Update(msg)
	return m, cmd
}

// View renders the UI based on the current view state.
func (m *Model) View() string {
	switch m.view {
	case LoadingView:
		return styles.help.Render("Loading library...")
	case PlayView:
		return m.renderPlay()
	default:
		return m.renderBrowse()
	}
}

func (m *Model) handleBrowseKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "esc":
		if len(m.stack) > 1 {
			m.stack = m.stack[:len(m.stack)-1]
			m.showNode(m.stack[len(m.stack)-1])
		}
		return m, nil
	case "r":
		m.browser.Cache().Clear()
		current := m.stack[len(m.stack)-1]
		m.stack = m.stack[:len(m.stack)-1]
		m.view = LoadingView
		return m, m.fetchNode(current.ContentType, current.ContentID)
	case "enter":
		if item, ok := m.nodeList.SelectedItem().(nodeItem); ok {
			if item.node.CanExpand {
				m.view = LoadingView
				return m, m.fetchNode(item.node.ContentType, item.node.ContentID)
			}
			if item.node.CanPlay {
				return m, m.resolvePlay(item.node)
			}
		}
		return m, nil
	case "p":
		if item, ok := m.nodeList.SelectedItem().(nodeItem); ok && item.node.CanPlay {
			return m, m.resolvePlay(item.node)
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.nodeList, cmd = m.nodeList.Update(msg)
	return m, cmd
}

func (m *Model) handlePlayKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "esc", "enter":
		m.play = nil
		m.view = BrowseView
		return m, nil
	}
	return m, nil
}

func (m *Model) showNode(node *browser.Node) {
	items := make([]list.Item, 0, len(node.Children))
	for _, child := range node.Children {
		items = append(items, nodeItem{node: child})
	}
	m.nodeList = list.New(items, list.NewDefaultDelegate(), 0, 0)
	m.nodeList.Title = node.Title
	m.nodeList.SetSize(m.width-4, m.height-8)
	m.view = BrowseView
}

func (m *Model) fetchNode(contentType, contentID string) tea.Cmd {
	return func() tea.Msg {
		node, err := m.browser.Browse(m.ctx, contentType, contentID, true, m.mode, nil)
		return nodeFetchedMsg{node: node, err: err}
	}
}

func (m *Model) resolvePlay(node *browser.Node) tea.Cmd {
	return func() tea.Msg {
		instruction, err := m.browser.Play(m.ctx, node.ContentType, node.ContentID, m.mode, false, nil)
		return playResolvedMsg{title: node.Title, instruction: instruction, err: err}
	}
}

func (m *Model) renderBrowse() string {
	helpKeys := []key.Binding{m.keys.enter, m.keys.back, m.keys.play, m.keys.quit}
	helpView := m.help.ShortHelpView(helpKeys)
	body := fmt.Sprintf("%s\n\n%s", m.nodeList.View(), helpView)
	if m.err != nil {
		return fmt.Sprintf("%s\n%s", styles.err.Render(fmt.Sprintf("Error: %v", m.err)), body)
	}
	return body
}

func (m *Model) renderPlay() string {
	title := styles.title.Render(fmt.Sprintf("Play '%s'", m.playFor))

	var detail string
	switch {
	case m.play.URL != "":
		detail = fmt.Sprintf("Stream URL:\n  %s", m.play.URL)
	case m.play.Command != "":
		detail = fmt.Sprintf("Voice command:\n  %s", m.play.Command)
	case m.play.Payload != nil:
		detail = "Local play request:"
		for k, v := range m.play.Payload {
			detail += fmt.Sprintf("\n  %s: %s", k, v)
		}
	default:
		detail = styles.warn.Render("Nothing to play")
	}

	backKey := key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back"))
	helpView := m.help.ShortHelpView([]key.Binding{backKey, m.keys.quit})
	return fmt.Sprintf("%s\n%s\n\n%s", title, detail, helpView)
}
