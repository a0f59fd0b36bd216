package cmd

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/kamal-hamza/pxo/internal/core/domain"
	"github.com/kamal-hamza/pxo/internal/core/ports/mocks"
	"github.com/kamal-hamza/pxo/internal/core/services"
	"github.com/kamal-hamza/pxo/pkg/config"
)

const testPage = "example.com/pricing"

// newTestEngine opens an engine over an in-memory store with ids "ov-1", "ov-2", ...
func newTestEngine(t *testing.T) (*services.Engine, *mocks.MockSnapshotStore) {
	t.Helper()
	store := mocks.NewMockSnapshotStore()
	e, err := services.OpenEngine(context.Background(), testPage, services.NewSnapshotService(store, nil), services.EngineOptions{})
	if err != nil {
		t.Fatalf("OpenEngine failed: %v", err)
	}
	n := 0
	e.SetIDGenerator(func() string {
		n++
		return fmt.Sprintf("ov-%d", n)
	})
	return e, store
}

// addSized adds an overlay and resolves its natural size
func addSized(t *testing.T, e *services.Engine, name string, size domain.Size) domain.Overlay {
	t.Helper()
	o, err := e.Add("data:image/png;base64,"+name, name)
	if err != nil {
		t.Fatalf("Add(%q) failed: %v", name, err)
	}
	if size.Known() {
		if err := e.ResolveNaturalSize(o.ID(), size); err != nil {
			t.Fatalf("ResolveNaturalSize failed: %v", err)
		}
	}
	got, _ := e.Get(o.ID())
	return got
}

// TestCommandStructure verifies that all commands are properly registered
func TestCommandStructure(t *testing.T) {
	commands := []string{
		"init", "add", "list", "select", "move", "opacity", "rotate", "flip",
		"scale", "resize", "lock", "delete", "reset", "panel", "show", "css",
		"edit", "layout", "watch", "report", "status", "close", "config",
		"alias", "version",
	}

	for _, cmdName := range commands {
		t.Run(cmdName, func(t *testing.T) {
			cmd, _, err := rootCmd.Find([]string{cmdName})
			if err != nil {
				t.Fatalf("Command '%s' not found: %v", cmdName, err)
			}
			if cmd == nil {
				t.Fatalf("Command '%s' is nil", cmdName)
			}
			if cmd.Use == "" {
				t.Errorf("Command '%s' has no Use field", cmdName)
			}
		})
	}
}

// TestRootCommandExists verifies the root command is properly configured
func TestRootCommandExists(t *testing.T) {
	if rootCmd == nil {
		t.Fatal("Root command is nil")
	}

	if rootCmd.Use != "pxo" {
		t.Errorf("Expected root command Use to be 'pxo', got '%s'", rootCmd.Use)
	}

	if rootCmd.Short == "" {
		t.Error("Root command Short description is empty")
	}

	if rootCmd.PersistentFlags().Lookup("page") == nil {
		t.Error("Root command has no --page flag")
	}
}

// TestCommandsHaveHelp verifies all commands have help text
func TestCommandsHaveHelp(t *testing.T) {
	commands := rootCmd.Commands()

	if len(commands) == 0 {
		t.Fatal("No commands registered")
	}

	for _, cmd := range commands {
		t.Run(cmd.Name(), func(t *testing.T) {
			if cmd.Short == "" {
				t.Errorf("Command '%s' has no Short description", cmd.Name())
			}
		})
	}
}

// TestSubcommands verifies specific subcommands exist
func TestSubcommands(t *testing.T) {
	tests := []struct {
		parent     string
		subcommand string
	}{
		{"alias", "list"},
		{"alias", "add"},
		{"alias", "remove"},
		{"alias", "show"},
	}

	for _, tt := range tests {
		t.Run(tt.parent+"_"+tt.subcommand, func(t *testing.T) {
			parentCmd, _, err := rootCmd.Find([]string{tt.parent})
			if err != nil {
				t.Fatalf("Parent command '%s' not found: %v", tt.parent, err)
			}

			found := false
			for _, cmd := range parentCmd.Commands() {
				if cmd.Name() == tt.subcommand {
					found = true
					break
				}
			}

			if !found {
				t.Errorf("Subcommand '%s' not found under '%s'", tt.subcommand, tt.parent)
			}
		})
	}
}

// TestFlagsExist verifies important flags are registered
func TestFlagsExist(t *testing.T) {
	tests := []struct {
		command  string
		flagName string
	}{
		{"list", "pages"},
		{"select", "none"},
		{"rotate", "by"},
		{"rotate", "to"},
		{"scale", "by"},
		{"scale", "to"},
		{"resize", "width"},
		{"resize", "height"},
		{"delete", "yes"},
		{"reset", "yes"},
		{"panel", "minimize"},
		{"panel", "left"},
		{"panel", "top"},
		{"show", "raw"},
		{"css", "no-copy"},
		{"report", "open"},
		{"report", "output"},
		{"watch", "quiet"},
		{"close", "yes"},
		{"config", "path"},
	}

	for _, tt := range tests {
		t.Run(tt.command+"_"+tt.flagName, func(t *testing.T) {
			cmd, _, err := rootCmd.Find([]string{tt.command})
			if err != nil {
				t.Fatalf("Command '%s' not found: %v", tt.command, err)
			}

			flag := cmd.Flags().Lookup(tt.flagName)
			if flag == nil {
				t.Errorf("Flag '--%s' not found on command '%s'", tt.flagName, tt.command)
			}
		})
	}
}

// TestCommandAliases verifies command aliases work
func TestCommandAliases(t *testing.T) {
	tests := []struct {
		alias   string
		command string
	}{
		{"ls", "list"},
		{"rm", "delete"},
		{"v", "version"},
	}

	for _, tt := range tests {
		t.Run(tt.alias, func(t *testing.T) {
			cmd, _, err := rootCmd.Find([]string{tt.alias})
			if err != nil {
				t.Fatalf("Alias '%s' not found: %v", tt.alias, err)
			}
			if cmd.Name() != tt.command {
				t.Errorf("Alias '%s' resolved to '%s', want '%s'", tt.alias, cmd.Name(), tt.command)
			}
		})
	}
}

// TestInitCommand verifies init command exists
func TestInitCommand(t *testing.T) {
	cmd, _, err := rootCmd.Find([]string{"init"})
	if err != nil {
		t.Fatalf("Init command not found: %v", err)
	}

	// Init should not require vault initialization
	if cmd.PersistentPreRunE != nil {
		t.Error("Init command should not have PersistentPreRunE")
	}
	if !skipsInit(cmd) {
		t.Error("Init command should skip app initialization")
	}
}

func TestResolvePage(t *testing.T) {
	oldFlag, oldConfig := pageFlag, appConfig
	t.Cleanup(func() { pageFlag, appConfig = oldFlag, oldConfig })

	tests := []struct {
		name    string
		flag    string
		env     string
		def     string
		want    string
		wantErr bool
	}{
		{name: "flag wins", flag: "https://example.com/a?x=1", env: "other.com", want: "example.com/a"},
		{name: "env used", env: "example.com/b", def: "other.com", want: "example.com/b"},
		{name: "config default", def: "example.com", want: "example.com/"},
		{name: "nothing set", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pageFlag = tt.flag
			t.Setenv(pageEnv, tt.env)
			appConfig = config.DefaultConfig()
			appConfig.DefaultPage = tt.def

			got, err := resolvePage()
			if tt.wantErr {
				if !errors.Is(err, domain.ErrInvalidPage) {
					t.Errorf("resolvePage() error = %v, want ErrInvalidPage", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("resolvePage() unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("resolvePage() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestParseNumbers(t *testing.T) {
	if v, err := parseInt(" 42 "); err != nil || v != 42 {
		t.Errorf("parseInt(42) = %d, %v", v, err)
	}
	if _, err := parseInt("4.2"); !errors.Is(err, domain.ErrInvalidNumber) {
		t.Errorf("parseInt(4.2) error = %v, want ErrInvalidNumber", err)
	}

	for _, in := range []string{"NaN", "Inf", "-Inf", "abc", ""} {
		if _, err := parseFloat(in); !errors.Is(err, domain.ErrInvalidNumber) {
			t.Errorf("parseFloat(%q) error = %v, want ErrInvalidNumber", in, err)
		}
	}
	if v, err := parseFloat("-0.25"); err != nil || v != -0.25 {
		t.Errorf("parseFloat(-0.25) = %v, %v", v, err)
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		in   string
		n    int
		want string
	}{
		{"hero.png", 10, "hero.png"},
		{"homepage-hero.png", 8, "homepag…"},
		{"ångström.png", 4, "ång…"},
		{"abc", 1, "a"},
	}

	for _, tt := range tests {
		if got := truncate(tt.in, tt.n); got != tt.want {
			t.Errorf("truncate(%q, %d) = %q, want %q", tt.in, tt.n, got, tt.want)
		}
	}
}

func TestFormatScale(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{1, "1"},
		{0.1 + 0.2, "0.3"},
		{1.2000000000000002, "1.2"},
		{0.5, "0.5"},
	}

	for _, tt := range tests {
		if got := formatScale(tt.in); got != tt.want {
			t.Errorf("formatScale(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestConfirm(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"y\n", true},
		{"Y\n", true},
		{" y \n", true},
		{"n\n", false},
		{"yes\n", false},
		{"", false},
	}

	for _, tt := range tests {
		if got := confirm(strings.NewReader(tt.input), "Continue?"); got != tt.want {
			t.Errorf("confirm(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestFlipLabel(t *testing.T) {
	e, _ := newTestEngine(t)
	o := addSized(t, e, "a.png", domain.Size{})
	if got := flipLabel(o); got != "-" {
		t.Errorf("flipLabel() = %q, want -", got)
	}

	e.Flip(domain.AxisX)
	e.Flip(domain.AxisY)
	o, _ = e.Selected()
	if got := flipLabel(o); got != "xy" {
		t.Errorf("flipLabel() = %q, want xy", got)
	}
}

func TestCycleSelection(t *testing.T) {
	e, _ := newTestEngine(t)
	addSized(t, e, "a.png", domain.Size{})
	addSized(t, e, "b.png", domain.Size{})
	addSized(t, e, "c.png", domain.Size{})

	// c is selected after adding
	cycleSelection(e, 1)
	if got := e.SelectedID(); got != "ov-1" {
		t.Errorf("next after last = %q, want ov-1", got)
	}
	cycleSelection(e, -1)
	if got := e.SelectedID(); got != "ov-3" {
		t.Errorf("previous before first = %q, want ov-3", got)
	}

	e.ClearSelection()
	cycleSelection(e, -1)
	if got := e.SelectedID(); got != "ov-3" {
		t.Errorf("previous with no selection = %q, want ov-3", got)
	}
	e.ClearSelection()
	cycleSelection(e, 1)
	if got := e.SelectedID(); got != "ov-1" {
		t.Errorf("next with no selection = %q, want ov-1", got)
	}
}

func TestOverlayCSS(t *testing.T) {
	e, _ := newTestEngine(t)
	addSized(t, e, "hero.png", domain.Size{Width: 1440, Height: 900})
	e.SetOpacity(50)
	e.SetScale(0.5)
	e.Flip(domain.AxisX)
	o, _ := e.Selected()

	css := overlayCSS(o)
	for _, want := range []string{
		"position: absolute;",
		"left: 100px;",
		"top: 100px;",
		"width: 720px;",
		"height: 450px;",
		"opacity: 0.5;",
		"transform: rotate(0deg) scale(-0.5, 0.5);",
		"pointer-events: none;",
	} {
		if !strings.Contains(css, want) {
			t.Errorf("overlayCSS() missing %q\n%s", want, css)
		}
	}
}

func TestOverlayCSS_UnknownSize(t *testing.T) {
	e, _ := newTestEngine(t)
	o := addSized(t, e, "logo.svg", domain.Size{})

	css := overlayCSS(o)
	if strings.Contains(css, "width:") || strings.Contains(css, "height:") {
		t.Errorf("overlayCSS() should omit dimensions when size is unknown\n%s", css)
	}
}

func TestAbbreviateSrc(t *testing.T) {
	short := "data:image/png;base64,AAAA"
	if got := abbreviateSrc(short); got != short {
		t.Errorf("abbreviateSrc(short) = %q", got)
	}

	long := "data:image/png;base64," + strings.Repeat("A", 100)
	got := abbreviateSrc(long)
	if !strings.HasPrefix(got, "data:image/png;base64,…") || !strings.Contains(got, "(100 bytes)") {
		t.Errorf("abbreviateSrc(long) = %q", got)
	}
}

func TestOverlayTable(t *testing.T) {
	e, _ := newTestEngine(t)
	addSized(t, e, "a.png", domain.Size{Width: 100, Height: 50})
	addSized(t, e, "b.png", domain.Size{})
	e.Select("ov-1")

	table := overlayTable(e.List(), e.SelectedID())
	if table.Highlight != 0 {
		t.Errorf("Highlight = %d, want 0", table.Highlight)
	}

	out := table.Render()
	for _, want := range []string{"a.png", "b.png", "100×50", "?×?"} {
		if !strings.Contains(out, want) {
			t.Errorf("table missing %q\n%s", want, out)
		}
	}
}

func TestRenderReport(t *testing.T) {
	e, _ := newTestEngine(t)
	addSized(t, e, "hero.png", domain.Size{Width: 100, Height: 100})

	summaries := []services.PageSummary{
		{Key: "example.com/pricing", Overlays: e.List()},
		{Key: "example.com/", Overlays: nil},
	}

	var buf bytes.Buffer
	if err := renderReport(&buf, "Overlay Report", summaries); err != nil {
		t.Fatalf("renderReport failed: %v", err)
	}

	out := buf.String()
	for _, want := range []string{"Overlay Report", "example.com/pricing", "hero.png"} {
		if !strings.Contains(out, want) {
			t.Errorf("report missing %q", want)
		}
	}
}
