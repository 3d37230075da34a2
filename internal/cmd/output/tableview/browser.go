package tableview

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/rbacctl/rbacctl/internal/entity"
	"github.com/rbacctl/rbacctl/internal/export"
	"github.com/rbacctl/rbacctl/internal/iostreams"
	"github.com/rbacctl/rbacctl/internal/listing"
	"github.com/rbacctl/rbacctl/internal/log"
	"github.com/rbacctl/rbacctl/internal/mutation"
	"github.com/rbacctl/rbacctl/internal/record"
	"github.com/rbacctl/rbacctl/internal/theme"
	"github.com/robfig/cron/v3"
	"golang.org/x/text/language"
)

// BrowserOptions configures an interactive browser over one resource.
type BrowserOptions struct {
	Definition  *entity.Definition
	Ops         entity.Ops
	Tag         language.Tag
	Palette     theme.Palette
	Logger      *slog.Logger
	// RowsPerPage of zero shows every record, negative uses the default.
	RowsPerPage int
	Criteria    listing.Criteria

	ExportFormat export.Format
	ExportDir    string
	// RefreshEvery is a cron schedule, e.g. "@every 30s". Empty disables
	// automatic refresh.
	RefreshEvery string

	Clipboard func(string) error
	Now       func() time.Time
}

// ValidateSchedule reports whether spec is an accepted refresh schedule.
func ValidateSchedule(spec string) error {
	if strings.TrimSpace(spec) == "" {
		return nil
	}
	if _, err := cron.ParseStandard(spec); err != nil {
		return fmt.Errorf("invalid refresh schedule %q: %w", spec, err)
	}
	return nil
}

// Browse runs the interactive browser until the user quits.
func Browse(ctx context.Context, streams *iostreams.IOStreams, opts BrowserOptions) error {
	if err := ValidateSchedule(opts.RefreshEvery); err != nil {
		return err
	}

	// Errors are shown in the status line while the alternate screen is up.
	log.DisableErrorMirroring()
	defer log.EnableErrorMirroring()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	m := newBrowserModel(ctx, opts)
	program := tea.NewProgram(m,
		tea.WithContext(ctx),
		tea.WithInput(streams.In),
		tea.WithOutput(streams.Out),
		tea.WithAltScreen(),
	)

	if opts.RefreshEvery != "" {
		scheduler := cron.New()
		if _, err := scheduler.AddFunc(opts.RefreshEvery, func() {
			program.Send(refreshMsg{scheduled: true})
		}); err != nil {
			return fmt.Errorf("invalid refresh schedule %q: %w", opts.RefreshEvery, err)
		}
		scheduler.Start()
		defer scheduler.Stop()
	}

	_, err := program.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}

type browserMode int

const (
	modeBrowse browserMode = iota
	modeSearch
	modeDetail
	modeConfirm
)

type (
	loadedMsg struct {
		err error
	}
	refreshMsg struct {
		scheduled bool
	}
	deletedMsg struct {
		key string
		err error
	}
	exportedMsg struct {
		path string
		err  error
	}
	copiedMsg struct {
		text string
		err  error
	}
	relatedMsg struct {
		token listing.Token
		codes []string
		err   error
	}
)

// statusNotifier keeps the latest gateway notification for the status line.
type statusNotifier struct {
	mu  sync.Mutex
	msg string
	err error
}

func (n *statusNotifier) Success(msg string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.msg, n.err = msg, nil
}

func (n *statusNotifier) Error(msg string, err error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.msg, n.err = msg, err
}

func (n *statusNotifier) take() (string, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	msg, err := n.msg, n.err
	n.msg, n.err = "", nil
	return msg, err
}

type browserKeyMap struct {
	Search       key.Binding
	Selector     key.Binding
	NextSelector key.Binding
	NextPage     key.Binding
	PrevPage     key.Binding
	RowsPerPage  key.Binding
	Refresh      key.Binding
	Detail       key.Binding
	Copy         key.Binding
	Delete       key.Binding
	Export       key.Binding
	Back         key.Binding
	Quit         key.Binding
}

func newBrowserKeyMap() browserKeyMap {
	return browserKeyMap{
		Search:       key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "search")),
		Selector:     key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "filter")),
		NextSelector: key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next filter")),
		NextPage:     key.NewBinding(key.WithKeys("right", "l", "pgdown"), key.WithHelp("→", "next page")),
		PrevPage:     key.NewBinding(key.WithKeys("left", "h", "pgup"), key.WithHelp("←", "prev page")),
		RowsPerPage:  key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "rows")),
		Refresh:      key.NewBinding(key.WithKeys("R", "ctrl+r"), key.WithHelp("R", "refresh")),
		Detail:       key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "detail")),
		Copy:         key.NewBinding(key.WithKeys("y"), key.WithHelp("y", "copy key")),
		Delete:       key.NewBinding(key.WithKeys("d", "delete"), key.WithHelp("d", "delete")),
		Export:       key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "export")),
		Back:         key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back")),
		Quit:         key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k browserKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{
		k.Search, k.Selector, k.NextPage, k.PrevPage, k.RowsPerPage,
		k.Refresh, k.Detail, k.Copy, k.Delete, k.Export, k.Quit,
	}
}

func (k browserKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp()}
}

// relatedState is the detail pane's lookup for the selected record. Results
// are committed only while their token is live.
type relatedState struct {
	guard   listing.Guard
	loading bool
	codes   []string
	err     error
}

type browserModel struct {
	ctx     context.Context
	opts    BrowserOptions
	def     *entity.Definition
	loader  *listing.Loader
	view    *listing.View
	gateway *mutation.Gateway
	notes   *statusNotifier

	table   table.Model
	search  textinput.Model
	spinner spinner.Model
	help    help.Model
	keys    browserKeyMap

	window         listing.Window
	mode           browserMode
	activeSelector int
	pending        record.Record
	related        relatedState
	status         string
	statusErr      bool
	ticking        bool
	width          int
	height         int
}

func newBrowserModel(ctx context.Context, opts BrowserOptions) *browserModel {
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.DiscardHandler)
	}
	if opts.Clipboard == nil {
		opts.Clipboard = clipboard.WriteAll
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.ExportFormat == "" {
		opts.ExportFormat = export.CSV
	}

	def := opts.Definition
	notes := &statusNotifier{}
	signal := &listing.RefreshSignal{}
	loader := listing.NewLoader(def.Fetcher(opts.Ops.List, opts.Tag), signal)
	view := listing.NewView(def.Matcher(), opts.RowsPerPage)
	if opts.Criteria.Selectors == nil {
		opts.Criteria.Selectors = map[string]string{}
	}
	view.SetCriteria(opts.Criteria)

	search := textinput.New()
	search.Placeholder = "search " + def.Plural
	search.Prompt = "/ "
	search.SetValue(view.Criteria().Search)

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = opts.Palette.ForegroundStyle(theme.ColorPrimary)

	tbl := table.New(
		table.WithFocused(true),
		table.WithKeyMap(table.KeyMap{
			LineUp:     key.NewBinding(key.WithKeys("up", "k")),
			LineDown:   key.NewBinding(key.WithKeys("down", "j")),
			GotoTop:    key.NewBinding(key.WithKeys("home")),
			GotoBottom: key.NewBinding(key.WithKeys("end")),
		}),
	)

	m := &browserModel{
		ctx:     ctx,
		opts:    opts,
		def:     def,
		loader:  loader,
		view:    view,
		gateway: mutation.NewGateway(notes, opts.Logger, signal),
		notes:   notes,
		table:   tbl,
		search:  search,
		spinner: sp,
		help:    help.New(),
		keys:    newBrowserKeyMap(),
		width:   120,
		height:  24,
	}
	m.rebuild()
	return m
}

func (m *browserModel) Init() tea.Cmd {
	return tea.Batch(m.loadCmd(), m.ensureTicking())
}

func (m *browserModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.help.Width = msg.Width
		m.rebuild()
		return m, nil

	case spinner.TickMsg:
		if !m.busy() || !m.opts.Palette.Animate {
			m.ticking = false
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		m.rebuild()
		return m, cmd

	case loadedMsg:
		if msg.err != nil {
			m.setStatus(fmt.Sprintf("Failed to load %s", m.def.Plural), msg.err)
		}
		m.view.GoToPage(m.loader.Collection(), m.view.CurrentPage())
		m.rebuild()
		return m, nil

	case refreshMsg:
		m.loader.Signal().Bump()
		return m, tea.Batch(m.refreshCmd(), m.ensureTicking())

	case deletedMsg:
		note, err := m.notes.take()
		switch {
		case errors.Is(msg.err, mutation.ErrInFlight):
			m.setStatus(fmt.Sprintf("Delete of %s is already running", msg.key), nil)
		case msg.err != nil && note == "":
			m.setStatus(fmt.Sprintf("Failed to delete %s %s", m.def.Name, msg.key), msg.err)
		default:
			m.setStatus(note, err)
		}
		m.rebuild()
		if msg.err != nil {
			return m, nil
		}
		return m, tea.Batch(m.refreshCmd(), m.ensureTicking())

	case exportedMsg:
		if msg.err != nil {
			m.setStatus("Export failed", msg.err)
		} else {
			m.setStatus(fmt.Sprintf("Exported %d %s to %s", len(m.window.Filtered), m.def.Plural, msg.path), nil)
		}
		return m, nil

	case relatedMsg:
		if !msg.token.Live() {
			return m, nil
		}
		m.related.loading = false
		m.related.codes, m.related.err = msg.codes, msg.err
		return m, nil

	case copiedMsg:
		if msg.err != nil {
			m.setStatus("Copy to clipboard failed", msg.err)
		} else {
			m.setStatus(fmt.Sprintf("Copied %s", msg.text), nil)
		}
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m *browserModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return m, tea.Quit
	}

	switch m.mode {
	case modeSearch:
		switch msg.String() {
		case "enter":
			m.mode = modeBrowse
			m.search.Blur()
			return m, nil
		case "esc":
			m.mode = modeBrowse
			m.search.Blur()
			m.search.SetValue("")
			m.view.SetSearch("")
			m.rebuild()
			return m, nil
		}
		before := m.search.Value()
		var cmd tea.Cmd
		m.search, cmd = m.search.Update(msg)
		if m.search.Value() != before {
			m.view.SetSearch(m.search.Value())
			m.rebuild()
		}
		return m, cmd

	case modeConfirm:
		switch strings.ToLower(msg.String()) {
		case "y":
			rec := m.pending
			m.pending = nil
			m.mode = modeBrowse
			cmd := m.deleteCmd(rec)
			m.rebuild()
			return m, tea.Batch(cmd, m.ensureTicking())
		case "n", "esc", "q":
			m.pending = nil
			m.mode = modeBrowse
			m.setStatus("Delete cancelled", nil)
		}
		return m, nil

	case modeDetail:
		if key.Matches(msg, m.keys.Back, m.keys.Detail, m.keys.Quit) {
			m.closeDetail()
			return m, nil
		}
		// Moving the cursor shows the next record and supersedes its lookup.
		before := m.table.Cursor()
		var cmd tea.Cmd
		m.table, cmd = m.table.Update(msg)
		if m.table.Cursor() != before {
			return m, tea.Batch(cmd, m.relatedCmd())
		}
		return m, cmd
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Search):
		m.mode = modeSearch
		return m, m.search.Focus()
	case key.Matches(msg, m.keys.Back):
		if m.view.Criteria().Active() {
			m.search.SetValue("")
			m.view.SetCriteria(listing.Criteria{Selectors: map[string]string{}})
			m.rebuild()
		}
	case key.Matches(msg, m.keys.Selector):
		m.cycleSelector()
	case key.Matches(msg, m.keys.NextSelector):
		if n := len(m.def.Selectors); n > 0 {
			m.activeSelector = (m.activeSelector + 1) % n
		}
	case key.Matches(msg, m.keys.NextPage):
		m.view.NextPage(m.loader.Collection())
		m.rebuild()
	case key.Matches(msg, m.keys.PrevPage):
		m.view.PrevPage(m.loader.Collection())
		m.rebuild()
	case key.Matches(msg, m.keys.RowsPerPage):
		m.view.CycleRowsPerPage()
		m.rebuild()
	case key.Matches(msg, m.keys.Refresh):
		return m.Update(refreshMsg{})
	case key.Matches(msg, m.keys.Detail):
		if m.selected() != nil {
			m.mode = modeDetail
			return m, m.relatedCmd()
		}
	case key.Matches(msg, m.keys.Copy):
		return m, m.copyCmd()
	case key.Matches(msg, m.keys.Delete):
		m.beginDelete()
	case key.Matches(msg, m.keys.Export):
		return m, m.exportCmd()
	default:
		var cmd tea.Cmd
		m.table, cmd = m.table.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *browserModel) cycleSelector() {
	if len(m.def.Selectors) == 0 {
		return
	}
	sel := m.def.Selectors[m.activeSelector%len(m.def.Selectors)]
	choices := append([]string{listing.SelectorAll}, listing.DistinctBy(m.loader.Collection(), sel.ValueOf)...)
	current := m.view.Criteria().Selector(sel.Name)
	next := choices[0]
	for i, c := range choices {
		if strings.EqualFold(c, current) {
			next = choices[(i+1)%len(choices)]
			break
		}
	}
	m.view.SetSelector(sel.Name, next)
	m.rebuild()
}

func (m *browserModel) beginDelete() {
	rec := m.selected()
	switch {
	case rec == nil:
		return
	case m.def.ReadOnly || m.opts.Ops.Delete == nil:
		m.setStatus(fmt.Sprintf("%s cannot be deleted", m.def.Title), nil)
		return
	case m.gateway.InFlight().Busy(m.def.KeyOf(rec)):
		m.setStatus(fmt.Sprintf("Delete of %s is already running", m.def.KeyOf(rec)), nil)
		return
	}
	m.pending = rec
	m.mode = modeConfirm
}

func (m *browserModel) selected() record.Record {
	idx := m.table.Cursor()
	if idx < 0 || idx >= len(m.window.Rows) {
		return nil
	}
	return m.window.Rows[idx]
}

func (m *browserModel) busy() bool {
	return m.loader.State() == listing.StateLoading || len(m.gateway.InFlight().Keys()) > 0
}

func (m *browserModel) ensureTicking() tea.Cmd {
	if m.ticking || !m.opts.Palette.Animate {
		return nil
	}
	m.ticking = true
	return m.spinner.Tick
}

func (m *browserModel) setStatus(msg string, err error) {
	m.statusErr = err != nil
	if err != nil {
		msg = fmt.Sprintf("%s: %v", msg, err)
	}
	m.status = msg
}

func (m *browserModel) loadCmd() tea.Cmd {
	loader, ctx := m.loader, m.ctx
	return func() tea.Msg {
		err := loader.Load(ctx)
		if errors.Is(err, listing.ErrStaleResult) {
			return nil
		}
		return loadedMsg{err: err}
	}
}

func (m *browserModel) refreshCmd() tea.Cmd {
	loader, ctx := m.loader, m.ctx
	return func() tea.Msg {
		issued, err := loader.Refresh(ctx)
		if !issued || errors.Is(err, listing.ErrStaleResult) {
			return nil
		}
		return loadedMsg{err: err}
	}
}

func (m *browserModel) deleteCmd(rec record.Record) tea.Cmd {
	k := m.def.KeyOf(rec)
	description := m.def.Describe(rec)
	// The modal already collected the confirmation.
	accepted := mutation.ConfirmFunc(func(context.Context, string) (bool, error) { return true, nil })
	// Reserve the key so the row shows as busy until the gateway takes over.
	if !m.gateway.InFlight().Begin(k) {
		return func() tea.Msg { return deletedMsg{key: k, err: mutation.ErrInFlight} }
	}
	gateway, call, ctx := m.gateway, m.opts.Ops.Delete, m.ctx
	op := mutation.Op{Entity: m.def.Name, Key: k}
	return func() tea.Msg {
		gateway.InFlight().End(k)
		err := gateway.Delete(ctx, op, description, accepted, call)
		return deletedMsg{key: k, err: err}
	}
}

// relatedCmd starts the related lookup of the selected record. Any lookup
// still running for a previous selection is superseded.
func (m *browserModel) relatedCmd() tea.Cmd {
	rec, rel := m.selected(), m.opts.Ops.Related
	if rec == nil || rel == nil {
		m.related.guard.Cancel()
		m.related.loading, m.related.codes, m.related.err = false, nil, nil
		return nil
	}
	token := m.related.guard.Begin()
	m.related.loading, m.related.codes, m.related.err = true, nil, nil
	ctx, fetch := m.ctx, rel.Fetch
	return func() tea.Msg {
		codes, err := fetch(ctx, rec)
		return relatedMsg{token: token, codes: codes, err: err}
	}
}

func (m *browserModel) closeDetail() {
	m.mode = modeBrowse
	m.related.guard.Cancel()
	m.related.loading, m.related.codes, m.related.err = false, nil, nil
}

// detailPairs is the field list of rec plus the related lookup, if any.
func (m *browserModel) detailPairs(rec record.Record) [][2]string {
	pairs := entity.Detail(rec)
	rel := m.opts.Ops.Related
	if rel == nil {
		return pairs
	}
	var value string
	switch {
	case m.related.loading:
		value = "loading…"
	case m.related.err != nil:
		value = "unavailable: " + m.related.err.Error()
	case len(m.related.codes) == 0:
		value = "none"
	default:
		value = strings.Join(m.related.codes, ", ")
	}
	return append(pairs, [2]string{rel.Title, value})
}

func (m *browserModel) exportCmd() tea.Cmd {
	t := m.def.Table(m.window.Filtered)
	format := m.opts.ExportFormat
	name := export.DefaultFileName(m.def.Plural, m.opts.Now().Format("20060102-150405"), format)
	path := filepath.Join(m.opts.ExportDir, name)
	return func() tea.Msg {
		return exportedMsg{path: path, err: export.WriteFile(path, format, t)}
	}
}

func (m *browserModel) copyCmd() tea.Cmd {
	rec := m.selected()
	if rec == nil {
		return nil
	}
	text := m.def.KeyOf(rec)
	if text == "" {
		text = m.def.Describe(rec)
	}
	write := m.opts.Clipboard
	return func() tea.Msg {
		return copiedMsg{text: text, err: write(text)}
	}
}

// rebuild derives the window from the loader and view and refreshes the
// table rows and columns.
func (m *browserModel) rebuild() {
	m.window = m.view.Window(m.loader.Collection())
	projected := m.def.Table(m.window.Rows)

	inflight := m.gateway.InFlight()
	marker := "…"
	if m.opts.Palette.Animate {
		marker = strings.TrimSpace(m.spinner.View())
	}
	for i, rec := range m.window.Rows {
		if inflight.Busy(m.def.KeyOf(rec)) && len(projected.Rows[i]) > 0 {
			projected.Rows[i][0] = marker + " " + projected.Rows[i][0]
		}
	}

	padding := 2 * m.opts.Palette.Padding
	frame, _ := newTableBoxStyle(m.opts.Palette).GetFrameSize()
	widths, _ := calculateColumnWidths(projected.Headers, projected.Rows,
		m.width-frame-padding*len(projected.Headers))

	columns := make([]table.Column, len(projected.Headers))
	for i, h := range projected.Headers {
		columns[i] = table.Column{Title: h, Width: widths[i]}
	}

	// Clearing the rows before swapping columns moves the cursor to -1,
	// so the selection is restored afterwards.
	cursor := m.table.Cursor()
	m.table.SetStyles(paletteTableStyles(m.opts.Palette))
	m.table.SetRows(nil)
	m.table.SetColumns(columns)
	m.table.SetRows(convertRows(projected.Rows, widths))
	m.table.SetWidth(sum(widths) + padding*len(widths))
	m.table.SetHeight(max(m.height-9, 3))
	if n := len(m.window.Rows); n > 0 {
		m.table.SetCursor(min(max(cursor, 0), n-1))
	}
}

func (m *browserModel) View() string {
	p := m.opts.Palette
	titleStyle := p.ForegroundStyle(theme.ColorPrimary).Bold(true)
	mutedStyle := p.ForegroundStyle(theme.ColorTextMuted)

	var sections []string
	sections = append(sections, titleStyle.Render(m.def.Title)+"  "+mutedStyle.Render(m.criteriaSummary()))

	if m.mode == modeSearch {
		sections = append(sections, m.search.View())
	}

	switch {
	case m.mode == modeDetail && m.selected() != nil:
		rec := m.selected()
		body := renderDetail(m.def.Describe(rec), m.detailPairs(rec), m.width-4, p)
		sections = append(sections, newDetailBoxStyle(p).Render(body))
	case m.loader.State() == listing.StateLoading && len(m.loader.Collection()) == 0:
		indicator := "…"
		if p.Animate {
			indicator = m.spinner.View()
		}
		sections = append(sections, fmt.Sprintf("%s Loading %s...", indicator, m.def.Plural))
	case len(m.window.Rows) == 0:
		sections = append(sections, mutedStyle.Render(m.emptyMessage()))
	default:
		sections = append(sections, newTableBoxStyle(p).Render(m.table.View()))
	}

	if m.mode == modeConfirm && m.pending != nil {
		modal := lipgloss.NewStyle().
			BorderStyle(lipgloss.ThickBorder()).
			BorderForeground(lipgloss.Color(p.Color(theme.ColorDanger))).
			Padding(0, 1).
			Render(fmt.Sprintf("Delete %s?\nThis cannot be undone. [y/N]", m.def.Describe(m.pending)))
		sections = append(sections, modal)
	}

	info := fmt.Sprintf("%s · %s per page", m.window.Info, rowsLabel(m.window.RowsPerPage))
	sections = append(sections, mutedStyle.Render(info))

	if m.status != "" {
		style := p.ForegroundStyle(theme.ColorSuccess)
		if m.statusErr {
			style = p.ForegroundStyle(theme.ColorDanger)
		}
		sections = append(sections, style.Render(ansi.Truncate(m.status, max(m.width, 20), "…")))
	}

	sections = append(sections, m.help.View(m.keys))
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m *browserModel) criteriaSummary() string {
	c := m.view.Criteria()
	var parts []string
	if c.Search != "" {
		parts = append(parts, fmt.Sprintf("search: %q", c.Search))
	}
	for i, sel := range m.def.Selectors {
		label := fmt.Sprintf("%s: %s", strings.ToLower(sel.Label), c.Selector(sel.Name))
		if i == m.activeSelector%len(m.def.Selectors) {
			label = "[" + label + "]"
		}
		parts = append(parts, label)
	}
	return strings.Join(parts, "  ")
}

func (m *browserModel) emptyMessage() string {
	if m.view.Criteria().Active() {
		return fmt.Sprintf("No %s match the current filters.", m.def.Plural)
	}
	return fmt.Sprintf("No %s found.", m.def.Plural)
}

func rowsLabel(n int) string {
	if n <= 0 {
		return "all"
	}
	return fmt.Sprintf("%d", n)
}
