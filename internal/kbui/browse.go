package kbui

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
)

// BrowseItem is the list-row projection of a store item, kept free of any
// dependency on internal/store so this package stays a leaf.
type BrowseItem struct {
	ID         string
	Title      string
	SourceType string
	SourcePath string
	Categories []string
	Tags       []string
	Content    string
}

// FilterValue implements list.Item: the filtering engine matches against
// title, categories, and tags.
func (b BrowseItem) FilterValue() string {
	return strings.Join(append([]string{b.Title}, append(b.Categories, b.Tags...)...), " ")
}

// browseDelegate renders one BrowseItem row in the list.
type browseDelegate struct {
	styles Styles
}

func (d browseDelegate) Height() int                       { return 2 }
func (d browseDelegate) Spacing() int                       { return 1 }
func (d browseDelegate) Update(tea.Msg, *list.Model) tea.Cmd { return nil }
func (d browseDelegate) Render(w io.Writer, m list.Model, index int, li list.Item) {
	item, ok := li.(BrowseItem)
	if !ok {
		return
	}

	title := item.Title
	meta := item.SourceType
	if len(item.Categories) > 0 {
		meta += " · " + strings.Join(item.Categories, ", ")
	}

	if index == m.Index() {
		title = d.styles.Active.Render("> " + title)
	} else {
		title = "  " + title
	}

	fmt.Fprintf(w, "%s\n  %s", title, d.styles.Dim.Render(meta))
}

// browseKeyMap binds the keys the browser responds to beyond the list's own.
type browseKeyMap struct {
	Enter key.Binding
	Back  key.Binding
	Quit  key.Binding
}

func defaultBrowseKeyMap() browseKeyMap {
	return browseKeyMap{
		Enter: key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "view item")),
		Back:  key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back to list")),
		Quit:  key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

// browseView selects which pane BrowseModel is currently showing.
type browseView int

const (
	viewList browseView = iota
	viewDetail
)

// BrowseModel is a bubbletea model for interactively browsing the
// knowledge base: a filterable list of items, with an item detail pane
// showing the item's metadata and full content. Chunk boundaries are not
// shown.
type BrowseModel struct {
	list     list.Model
	detail   viewport.Model
	view     browseView
	keys     browseKeyMap
	styles   Styles
	width    int
	height   int
	selected *BrowseItem
}

// NewBrowseModel builds a browser over the given items.
func NewBrowseModel(items []BrowseItem, noColor bool) *BrowseModel {
	styles := GetStyles(noColor)

	listItems := make([]list.Item, len(items))
	for i, it := range items {
		listItems[i] = it
	}

	delegate := browseDelegate{styles: styles}
	l := list.New(listItems, delegate, 0, 0)
	l.Title = "Knowledge Base"
	l.Styles.Title = styles.Header

	return &BrowseModel{
		list:   l,
		detail: viewport.New(0, 0),
		keys:   defaultBrowseKeyMap(),
		styles: styles,
		view:   viewList,
	}
}

// Init implements tea.Model.
func (m *BrowseModel) Init() tea.Cmd { return nil }

// Update implements tea.Model.
func (m *BrowseModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.list.SetSize(msg.Width, msg.Height-2)
		m.detail.Width = msg.Width
		m.detail.Height = msg.Height - 2
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		case m.view == viewList && key.Matches(msg, m.keys.Enter):
			if it, ok := m.list.SelectedItem().(BrowseItem); ok {
				m.selected = &it
				m.detail.SetContent(renderItemDetail(it, m.styles))
				m.view = viewDetail
			}
			return m, nil
		case m.view == viewDetail && key.Matches(msg, m.keys.Back):
			m.view = viewList
			return m, nil
		}
	}

	var cmd tea.Cmd
	if m.view == viewList {
		m.list, cmd = m.list.Update(msg)
	} else {
		m.detail, cmd = m.detail.Update(msg)
	}
	return m, cmd
}

// View implements tea.Model.
func (m *BrowseModel) View() string {
	if m.view == viewDetail {
		return m.detail.View() + "\n" + m.styles.Dim.Render("esc: back  q: quit")
	}
	return m.list.View()
}

func renderItemDetail(it BrowseItem, styles Styles) string {
	var b strings.Builder
	b.WriteString(styles.Header.Render(it.Title))
	b.WriteString("\n")
	if it.SourcePath != "" {
		b.WriteString(styles.Dim.Render(it.SourcePath))
		b.WriteString("\n")
	}
	if len(it.Categories) > 0 {
		b.WriteString(styles.Dim.Render("categories: " + strings.Join(it.Categories, ", ")))
		b.WriteString("\n")
	}
	if len(it.Tags) > 0 {
		b.WriteString(styles.Dim.Render("tags: " + strings.Join(it.Tags, ", ")))
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(it.Content)
	return b.String()
}

var _ tea.Model = (*BrowseModel)(nil)

// RunBrowser starts the bubbletea program over items, blocking until the
// user quits.
func RunBrowser(items []BrowseItem, noColor bool) error {
	p := tea.NewProgram(NewBrowseModel(items, noColor), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
