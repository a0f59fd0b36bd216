package cmd

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/kamal-hamza/pxo/internal/core/domain"
	"github.com/kamal-hamza/pxo/internal/core/ports"
	"github.com/kamal-hamza/pxo/internal/core/services"
	"github.com/kamal-hamza/pxo/pkg/ui"
)

// editCmd represents the edit command
var editCmd = &cobra.Command{
	Use:   "edit",
	Short: "Adjust overlays interactively from the keyboard",
	Long: `Open a full-screen editor for the page's overlays. Every change is
saved as it is made.

Keyboard Shortcuts:
  Position:
    ←↑↓→         Nudge by nudge_step (default 1px)
    shift+←↑↓→   Nudge by shift_nudge_step (default 10px)

  Transform:
    + / -        Scale up / down by scale_step
    r / R        Rotate clockwise / counter-clockwise by rotate_step
    h / v        Flip horizontally / vertically
    [ / ]        Opacity -10% / +10%
    l            Toggle aspect-ratio lock

  Values:
    o            Type an opacity
    t            Type a rotation
    s            Type a scale
    w / W        Type a width / height in pixels

  Overlays:
    tab          Select next overlay
    shift+tab    Select previous overlay
    esc          Clear selection
    a            Add an image by path
    d            Delete the selected overlay
    x            Remove every overlay

  General:
    m            Minimize / expand the panel
    ?            Show help
    q            Quit`,
	Args: cobra.NoArgs,
	RunE: runEdit,
}

func runEdit(cmd *cobra.Command, args []string) error {
	return withEngine(func(ctx context.Context, e *services.Engine) error {
		m := newEditModel(ctx, e, imageLoader, imageDecoder, editSteps{
			Nudge:      appConfig.NudgeStep,
			ShiftNudge: appConfig.ShiftNudgeStep,
			Scale:      appConfig.ScaleStep,
			Rotate:     appConfig.RotateStep,
		})

		p := tea.NewProgram(m, tea.WithAltScreen())
		if _, err := p.Run(); err != nil {
			return fmt.Errorf("error running editor: %w", err)
		}
		return nil
	})
}

// editSteps are the increments applied by single key presses
type editSteps struct {
	Nudge      int
	ShiftNudge int
	Scale      float64
	Rotate     int
}

type editMode int

const (
	editModeNormal editMode = iota
	editModeInput
	editModeHelp
	editModeConfirmReset
)

// inputKind is the value a text entry is collecting
type inputKind int

const (
	inputOpacity inputKind = iota
	inputRotation
	inputScale
	inputWidth
	inputHeight
	inputAdd
)

func (k inputKind) prompt() string {
	switch k {
	case inputOpacity:
		return "Opacity (0-100): "
	case inputRotation:
		return "Rotation (deg): "
	case inputScale:
		return "Scale: "
	case inputWidth:
		return "Width (px): "
	case inputHeight:
		return "Height (px): "
	default:
		return "Image path: "
	}
}

// decodedMsg carries the result of an asynchronous natural-size decode
type decodedMsg struct {
	id   string
	name string
	size domain.Size
	err  error
}

type editModel struct {
	ctx          context.Context
	engine       *services.Engine
	loader       ports.ImageLoader
	decoder      ports.ImageDecoder
	steps        editSteps
	mode         editMode
	inputKind    inputKind
	input        textinput.Model
	help         help.Model
	keys         editKeyMap
	width        int
	height       int
	message      string
	messageStyle lipgloss.Style
}

// Key bindings
type editKeyMap struct {
	Up          key.Binding
	Down        key.Binding
	Left        key.Binding
	Right       key.Binding
	ShiftUp     key.Binding
	ShiftDown   key.Binding
	ShiftLeft   key.Binding
	ShiftRight  key.Binding
	ScaleUp     key.Binding
	ScaleDown   key.Binding
	RotateCW    key.Binding
	RotateCCW   key.Binding
	FlipX       key.Binding
	FlipY       key.Binding
	OpacityDown key.Binding
	OpacityUp   key.Binding
	Lock        key.Binding
	Opacity     key.Binding
	Rotation    key.Binding
	Scale       key.Binding
	Width       key.Binding
	Height      key.Binding
	Next        key.Binding
	Prev        key.Binding
	Deselect    key.Binding
	Add         key.Binding
	Delete      key.Binding
	Reset       key.Binding
	Minimize    key.Binding
	Help        key.Binding
	Quit        key.Binding
	Confirm     key.Binding
	Cancel      key.Binding
}

func (k editKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.ShiftUp, k.ScaleUp, k.RotateCW, k.Next, k.Help, k.Quit}
}

func (k editKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Left, k.Right, k.ShiftUp, k.ShiftDown, k.ShiftLeft, k.ShiftRight},
		{k.ScaleUp, k.ScaleDown, k.RotateCW, k.RotateCCW, k.FlipX, k.FlipY, k.OpacityDown, k.OpacityUp, k.Lock},
		{k.Opacity, k.Rotation, k.Scale, k.Width, k.Height},
		{k.Next, k.Prev, k.Deselect, k.Add, k.Delete, k.Reset, k.Minimize, k.Help, k.Quit},
	}
}

var editKeys = editKeyMap{
	Up:          key.NewBinding(key.WithKeys("up"), key.WithHelp("↑", "nudge up")),
	Down:        key.NewBinding(key.WithKeys("down"), key.WithHelp("↓", "nudge down")),
	Left:        key.NewBinding(key.WithKeys("left"), key.WithHelp("←", "nudge left")),
	Right:       key.NewBinding(key.WithKeys("right"), key.WithHelp("→", "nudge right")),
	ShiftUp:     key.NewBinding(key.WithKeys("shift+up"), key.WithHelp("shift+↑", "jump up")),
	ShiftDown:   key.NewBinding(key.WithKeys("shift+down"), key.WithHelp("shift+↓", "jump down")),
	ShiftLeft:   key.NewBinding(key.WithKeys("shift+left"), key.WithHelp("shift+←", "jump left")),
	ShiftRight:  key.NewBinding(key.WithKeys("shift+right"), key.WithHelp("shift+→", "jump right")),
	ScaleUp:     key.NewBinding(key.WithKeys("+", "="), key.WithHelp("+", "scale up")),
	ScaleDown:   key.NewBinding(key.WithKeys("-", "_"), key.WithHelp("-", "scale down")),
	RotateCW:    key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "rotate")),
	RotateCCW:   key.NewBinding(key.WithKeys("R"), key.WithHelp("R", "rotate back")),
	FlipX:       key.NewBinding(key.WithKeys("h"), key.WithHelp("h", "flip horizontal")),
	FlipY:       key.NewBinding(key.WithKeys("v"), key.WithHelp("v", "flip vertical")),
	OpacityDown: key.NewBinding(key.WithKeys("["), key.WithHelp("[", "fainter")),
	OpacityUp:   key.NewBinding(key.WithKeys("]"), key.WithHelp("]", "stronger")),
	Lock:        key.NewBinding(key.WithKeys("l"), key.WithHelp("l", "aspect lock")),
	Opacity:     key.NewBinding(key.WithKeys("o"), key.WithHelp("o", "set opacity")),
	Rotation:    key.NewBinding(key.WithKeys("t"), key.WithHelp("t", "set rotation")),
	Scale:       key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "set scale")),
	Width:       key.NewBinding(key.WithKeys("w"), key.WithHelp("w", "set width")),
	Height:      key.NewBinding(key.WithKeys("W"), key.WithHelp("W", "set height")),
	Next:        key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next")),
	Prev:        key.NewBinding(key.WithKeys("shift+tab"), key.WithHelp("shift+tab", "previous")),
	Deselect:    key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "deselect")),
	Add:         key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "add image")),
	Delete:      key.NewBinding(key.WithKeys("d", "delete", "backspace"), key.WithHelp("d/del", "delete")),
	Reset:       key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "remove all")),
	Minimize:    key.NewBinding(key.WithKeys("m"), key.WithHelp("m", "minimize")),
	Help:        key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
	Quit:        key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	Confirm:     key.NewBinding(key.WithKeys("y", "Y"), key.WithHelp("y", "confirm")),
	Cancel:      key.NewBinding(key.WithKeys("n", "N", "esc"), key.WithHelp("n/esc", "cancel")),
}

func newEditModel(ctx context.Context, e *services.Engine, loader ports.ImageLoader, decoder ports.ImageDecoder, steps editSteps) editModel {
	ti := textinput.New()
	ti.CharLimit = 512
	ti.Width = 40

	return editModel{
		ctx:     ctx,
		engine:  e,
		loader:  loader,
		decoder: decoder,
		steps:   steps,
		mode:    editModeNormal,
		input:   ti,
		help:    help.New(),
		keys:    editKeys,
	}
}

func (m editModel) Init() tea.Cmd {
	return tea.Batch(m.pendingDecodes()...)
}

func (m editModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, nil

	case decodedMsg:
		if msg.err != nil {
			m.setStatus("Size unknown for "+msg.name, ui.StyleWarning)
			return m, nil
		}
		// The overlay may have been deleted while decoding
		if err := m.engine.ResolveNaturalSize(msg.id, msg.size); err != nil && !errors.Is(err, domain.ErrUnknownOverlay) {
			m.reportError(err)
		}
		return m, nil

	case tea.KeyMsg:
		switch m.mode {
		case editModeInput:
			return m.updateInput(msg)
		case editModeHelp:
			m.mode = editModeNormal
			return m, nil
		case editModeConfirmReset:
			return m.updateConfirmReset(msg)
		default:
			return m.updateNormal(msg)
		}
	}

	if m.mode == editModeInput {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m editModel) updateNormal(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.message = ""
	e := m.engine
	var err error

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Help):
		m.mode = editModeHelp

	case key.Matches(msg, m.keys.Up):
		err = e.Move(0, -m.steps.Nudge)
	case key.Matches(msg, m.keys.Down):
		err = e.Move(0, m.steps.Nudge)
	case key.Matches(msg, m.keys.Left):
		err = e.Move(-m.steps.Nudge, 0)
	case key.Matches(msg, m.keys.Right):
		err = e.Move(m.steps.Nudge, 0)
	case key.Matches(msg, m.keys.ShiftUp):
		err = e.Move(0, -m.steps.ShiftNudge)
	case key.Matches(msg, m.keys.ShiftDown):
		err = e.Move(0, m.steps.ShiftNudge)
	case key.Matches(msg, m.keys.ShiftLeft):
		err = e.Move(-m.steps.ShiftNudge, 0)
	case key.Matches(msg, m.keys.ShiftRight):
		err = e.Move(m.steps.ShiftNudge, 0)

	case key.Matches(msg, m.keys.ScaleUp):
		err = e.ScaleBy(m.steps.Scale)
	case key.Matches(msg, m.keys.ScaleDown):
		err = e.ScaleBy(-m.steps.Scale)
	case key.Matches(msg, m.keys.RotateCW):
		err = e.RotateBy(m.steps.Rotate)
	case key.Matches(msg, m.keys.RotateCCW):
		err = e.RotateBy(-m.steps.Rotate)
	case key.Matches(msg, m.keys.FlipX):
		err = e.Flip(domain.AxisX)
	case key.Matches(msg, m.keys.FlipY):
		err = e.Flip(domain.AxisY)
	case key.Matches(msg, m.keys.OpacityDown):
		err = m.adjustOpacity(-10)
	case key.Matches(msg, m.keys.OpacityUp):
		err = m.adjustOpacity(10)

	case key.Matches(msg, m.keys.Lock):
		m.setStatus("Aspect ratio "+ui.FormatLock(e.ToggleAspectLock()), ui.StyleInfo)

	case key.Matches(msg, m.keys.Minimize):
		if e.ToggleMinimize() {
			m.setStatus("Panel minimized", ui.StyleInfo)
		} else {
			m.setStatus("Panel expanded", ui.StyleInfo)
		}

	case key.Matches(msg, m.keys.Next):
		m.cycle(1)
	case key.Matches(msg, m.keys.Prev):
		m.cycle(-1)
	case key.Matches(msg, m.keys.Deselect):
		e.ClearSelection()

	case key.Matches(msg, m.keys.Delete):
		o, rerr := e.RemoveSelected()
		if rerr == nil {
			m.setStatus("Deleted "+o.DisplayName(), ui.StyleSuccess)
		}
		err = rerr

	case key.Matches(msg, m.keys.Reset):
		if e.Len() > 0 {
			m.mode = editModeConfirmReset
		}

	case key.Matches(msg, m.keys.Opacity):
		return m.startInput(inputOpacity)
	case key.Matches(msg, m.keys.Rotation):
		return m.startInput(inputRotation)
	case key.Matches(msg, m.keys.Scale):
		return m.startInput(inputScale)
	case key.Matches(msg, m.keys.Width):
		return m.startInput(inputWidth)
	case key.Matches(msg, m.keys.Height):
		return m.startInput(inputHeight)
	case key.Matches(msg, m.keys.Add):
		return m.startInput(inputAdd)
	}

	if err != nil {
		m.reportError(err)
	}
	return m, nil
}

func (m editModel) updateConfirmReset(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Confirm):
		count := m.engine.Len()
		m.engine.ResetAll()
		m.mode = editModeNormal
		m.setStatus(fmt.Sprintf("Removed %d overlays", count), ui.StyleSuccess)
	case key.Matches(msg, m.keys.Cancel):
		m.mode = editModeNormal
	}
	return m, nil
}

func (m editModel) startInput(kind inputKind) (tea.Model, tea.Cmd) {
	value := ""
	if kind != inputAdd {
		o, ok := m.engine.Selected()
		if !ok {
			m.reportError(domain.ErrNoSelection)
			return m, nil
		}
		if (kind == inputWidth || kind == inputHeight) && !o.NaturalSize().Known() {
			m.setStatus("Image size is still unknown", ui.StyleWarning)
			return m, nil
		}
		value = currentValue(kind, o)
	}

	m.inputKind = kind
	m.input.Prompt = kind.prompt()
	m.input.SetValue(value)
	m.input.CursorEnd()
	m.mode = editModeInput
	return m, m.input.Focus()
}

func (m editModel) updateInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.mode = editModeNormal
		m.input.Blur()
		return m, nil
	case tea.KeyEnter:
		m.mode = editModeNormal
		m.input.Blur()
		return m.applyInput(strings.TrimSpace(m.input.Value()))
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// applyInput commits a submitted text entry
func (m editModel) applyInput(value string) (tea.Model, tea.Cmd) {
	e := m.engine
	var err error

	switch m.inputKind {
	case inputOpacity:
		var v int
		if v, err = parseInt(value); err == nil {
			err = e.SetOpacity(v)
		}
	case inputRotation:
		var v int
		if v, err = parseInt(value); err == nil {
			err = e.SetRotation(v)
		}
	case inputScale:
		var v float64
		if v, err = parseFloat(value); err == nil {
			err = e.SetScale(v)
		}
	case inputWidth:
		var v int
		if v, err = parseInt(value); err == nil {
			err = e.SetWidth(v)
		}
	case inputHeight:
		var v int
		if v, err = parseInt(value); err == nil {
			err = e.SetHeight(v)
		}
	case inputAdd:
		return m.addImage(value)
	}

	if err != nil {
		m.reportError(err)
	}
	return m, nil
}

func (m editModel) addImage(path string) (tea.Model, tea.Cmd) {
	if path == "" || m.loader == nil {
		return m, nil
	}

	ref, name, err := m.loader.Load(m.ctx, path)
	if err != nil {
		m.reportError(err)
		return m, nil
	}
	o, err := m.engine.Add(ref, name)
	if err != nil {
		m.reportError(err)
		return m, nil
	}

	m.setStatus("Added "+name, ui.StyleSuccess)
	return m, m.decodeCmd(o.ID(), name, ref)
}

// adjustOpacity nudges the selected overlay's opacity by delta percent
func (m *editModel) adjustOpacity(delta int) error {
	o, ok := m.engine.Selected()
	if !ok {
		return domain.ErrNoSelection
	}
	return m.engine.SetOpacity(o.Opacity() + delta)
}

func (m *editModel) cycle(delta int) {
	cycleSelection(m.engine, delta)
}

func (m *editModel) setStatus(msg string, style lipgloss.Style) {
	m.message = msg
	m.messageStyle = style
}

func (m *editModel) reportError(err error) {
	switch {
	case errors.Is(err, domain.ErrNoSelection):
		m.setStatus(ui.IconWarning+" No overlay selected (tab selects one)", ui.StyleWarning)
	case errors.Is(err, domain.ErrInvalidNumber):
		m.setStatus(ui.IconError+" Value must be a finite number", ui.StyleError)
	default:
		m.setStatus(ui.IconError+" "+err.Error(), ui.StyleError)
	}
}

// pendingDecodes returns a decode command for every overlay whose natural
// size is still unknown
func (m editModel) pendingDecodes() []tea.Cmd {
	var cmds []tea.Cmd
	for _, o := range m.engine.List() {
		if o.NaturalSize().Known() {
			continue
		}
		cmds = append(cmds, m.decodeCmd(o.ID(), o.DisplayName(), o.ImageRef()))
	}
	return cmds
}

func (m editModel) decodeCmd(id, name, ref string) tea.Cmd {
	if m.decoder == nil {
		return nil
	}
	ctx, decoder := m.ctx, m.decoder
	return func() tea.Msg {
		size, err := decoder.DecodeSize(ctx, ref)
		return decodedMsg{id: id, name: name, size: size, err: err}
	}
}

// currentValue pre-fills a text entry with the overlay's present value
func currentValue(kind inputKind, o domain.Overlay) string {
	switch kind {
	case inputOpacity:
		return fmt.Sprintf("%d", o.Opacity())
	case inputRotation:
		return fmt.Sprintf("%d", o.Rotation())
	case inputScale:
		return formatScale(o.Scale())
	case inputWidth:
		return fmt.Sprintf("%d", o.RenderedSize().Width)
	case inputHeight:
		return fmt.Sprintf("%d", o.RenderedSize().Height)
	}
	return ""
}

func (m editModel) View() string {
	if m.mode == editModeHelp {
		return m.viewHelp()
	}

	var s strings.Builder
	s.WriteString(m.renderHeader())
	s.WriteString("\n\n")

	overlays := m.engine.List()
	if len(overlays) == 0 {
		s.WriteString(ui.FormatMuted("No overlays yet. Press a to add an image."))
		s.WriteString("\n")
	} else {
		s.WriteString(overlayTable(overlays, m.engine.SelectedID()).Render())
	}

	if o, ok := m.engine.Selected(); ok {
		detail := lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ui.ColorPrimary).
			Padding(0, 1).
			Render(describeOverlay(o, false))
		s.WriteString("\n")
		s.WriteString(detail)
		s.WriteString("\n")
	}

	switch m.mode {
	case editModeInput:
		s.WriteString("\n")
		s.WriteString(m.input.View())
		if preview := m.inputPreview(); preview != "" {
			s.WriteString("  " + ui.FormatMuted(preview))
		}
		s.WriteString("\n")
	case editModeConfirmReset:
		s.WriteString("\n")
		s.WriteString(ui.StyleWarning.Render(fmt.Sprintf("Remove all %d overlays? (y/n)", m.engine.Len())))
		s.WriteString("\n")
	}

	s.WriteString("\n")
	s.WriteString(m.renderFooter())
	return s.String()
}

func (m editModel) renderHeader() string {
	header := ui.StyleTitle.Render("PXO") + "  " +
		ui.FormatMuted(ui.IconPage+" "+m.engine.Key()) + "  " +
		ui.FormatLock(m.engine.AspectLocked())
	if m.engine.Chrome().Minimized {
		header += "  " + ui.FormatMuted("[panel minimized]")
	}
	return header
}

func (m editModel) renderFooter() string {
	statusLine := ui.StyleMuted.Render("Ready")
	if m.message != "" {
		statusLine = m.messageStyle.Render(m.message)
	}

	footerStyle := lipgloss.NewStyle().
		BorderTop(true).
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(ui.ColorMuted).
		Padding(0, 1)

	return footerStyle.Render(lipgloss.JoinVertical(
		lipgloss.Left,
		statusLine,
		m.help.View(m.keys),
	))
}

// inputPreview shows the size a dimension entry will produce
func (m editModel) inputPreview() string {
	if m.inputKind != inputWidth && m.inputKind != inputHeight {
		return ""
	}
	v, err := parseInt(m.input.Value())
	if err != nil {
		return ""
	}

	var (
		size domain.Size
		ok   bool
	)
	if m.inputKind == inputWidth {
		size, ok = m.engine.DisplaySizeForWidth(v)
	} else {
		size, ok = m.engine.DisplaySizeForHeight(v)
	}
	if !ok {
		return ""
	}
	return "→ " + size.String()
}

func (m editModel) viewHelp() string {
	var s strings.Builder
	s.WriteString(ui.StyleTitle.Render("Keyboard Shortcuts"))
	s.WriteString("\n\n")
	s.WriteString(m.help.FullHelpView(m.keys.FullHelp()))
	s.WriteString("\n\n")
	s.WriteString(ui.FormatMuted("Press any key to return"))
	return s.String()
}
