package cmd

import (
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kamal-hamza/pxo/pkg/config"
	"github.com/kamal-hamza/pxo/pkg/ui"
	"github.com/kamal-hamza/pxo/pkg/vault"
)

var aliasCmd = &cobra.Command{
	Use:   "alias",
	Short: "Manage command aliases",
	Long: `Manage shortcuts for overlay commands.

An alias expands to a pxo command line. $1, $2, ... take the alias's
arguments in order and $@ takes all of them. Arguments no placeholder
consumed are appended.

Examples:
  pxo alias add half "scale --to 0.5"
  pxo alias add ghost "opacity 20"
  pxo alias add at "move -- $1 $2"
  pxo alias show at -5 12
  pxo alias remove half`,
}

var aliasListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all defined aliases",
	Args:  cobra.NoArgs,
	RunE:  runAliasList,
}

var aliasAddCmd = &cobra.Command{
	Use:   "add <name> <command>",
	Short: "Add an alias for a pxo command",
	Args:  cobra.ExactArgs(2),
	RunE:  runAliasAdd,
}

var aliasShowCmd = &cobra.Command{
	Use:   "show <name> [args...]",
	Short: "Print what an alias expands to without running it",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runAliasShow,
}

var aliasRemoveCmd = &cobra.Command{
	Use:     "remove <name>",
	Aliases: []string{"rm"},
	Short:   "Remove an alias",
	Args:    cobra.ExactArgs(1),
	RunE:    runAliasRemove,
}

func init() {
	aliasCmd.AddCommand(aliasListCmd)
	aliasCmd.AddCommand(aliasAddCmd)
	aliasCmd.AddCommand(aliasShowCmd)
	aliasCmd.AddCommand(aliasRemoveCmd)
}

var (
	aliasNamePattern   = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9_-]*$`)
	placeholderPattern = regexp.MustCompile(`\$(@|\d+)`)
)

func runAliasList(cmd *cobra.Command, args []string) error {
	if len(appConfig.Aliases) == 0 {
		fmt.Println(ui.FormatInfo("No aliases defined"))
		fmt.Println(ui.FormatMuted("Add one with: pxo alias add <name> <command>"))
		return nil
	}

	fmt.Print(aliasTable(appConfig.Aliases).Render())
	return nil
}

// aliasTable lists aliases by name with the command each one runs
func aliasTable(aliases map[string]string) *ui.Table {
	names := make([]string, 0, len(aliases))
	for name := range aliases {
		names = append(names, name)
	}
	sort.Strings(names)

	table := ui.NewTable([]ui.TableColumn{
		{Header: "Alias", Width: 16},
		{Header: "Expands to", Width: 32},
		{Header: "Runs"},
	})
	for _, name := range names {
		line := aliases[name]
		runs := "?"
		if target, err := aliasTarget(line); err == nil {
			runs = target.Short
		}
		table.AddRow([]string{name, truncate(line, 32), runs})
	}
	return table
}

func runAliasAdd(cmd *cobra.Command, args []string) error {
	name, line := args[0], strings.TrimSpace(args[1])

	if err := validateAlias(name, line, appConfig.Aliases); err != nil {
		fmt.Println(ui.FormatError(err.Error()))
		return err
	}

	if existing, ok := appConfig.Aliases[name]; ok {
		fmt.Println(ui.FormatWarning(fmt.Sprintf("Alias '%s' already runs: %s", name, existing)))
		if !confirm(stdin, "Overwrite?") {
			fmt.Println(ui.FormatInfo("Cancelled"))
			return nil
		}
	}

	appConfig.Aliases[name] = line
	if err := appConfig.Save(appVault.ConfigPath); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}

	fmt.Println(ui.FormatSuccess(fmt.Sprintf("Created alias: %s → %s", name, line)))
	return nil
}

func runAliasShow(cmd *cobra.Command, args []string) error {
	line, ok := appConfig.Aliases[args[0]]
	if !ok {
		return fmt.Errorf("alias '%s' not found", args[0])
	}

	expanded, err := expandAlias(line, args[1:])
	if err != nil {
		fmt.Println(ui.FormatError(err.Error()))
		return err
	}
	fmt.Println("pxo " + strings.Join(expanded, " "))
	return nil
}

func runAliasRemove(cmd *cobra.Command, args []string) error {
	name := args[0]
	line, ok := appConfig.Aliases[name]
	if !ok {
		return fmt.Errorf("alias '%s' not found", name)
	}

	delete(appConfig.Aliases, name)
	if err := appConfig.Save(appVault.ConfigPath); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}

	fmt.Println(ui.FormatSuccess(fmt.Sprintf("Removed alias: %s → %s", name, line)))
	return nil
}

// validateAlias checks that name is free and that line runs a real pxo
// command rather than another alias
func validateAlias(name, line string, existing map[string]string) error {
	if !aliasNamePattern.MatchString(name) {
		return fmt.Errorf("invalid alias name %q: use letters, digits, '-' and '_'", name)
	}
	if isReservedCommand(name) {
		return fmt.Errorf("cannot create alias '%s': conflicts with existing command", name)
	}

	fields := strings.Fields(line)
	if len(fields) == 0 {
		return errors.New("alias command cannot be empty")
	}
	if _, ok := existing[fields[0]]; ok && !isReservedCommand(fields[0]) {
		return fmt.Errorf("alias '%s' cannot expand to another alias (%s)", name, fields[0])
	}
	if _, err := aliasTarget(line); err != nil {
		return err
	}
	return nil
}

// aliasTarget resolves the pxo command an alias line runs
func aliasTarget(line string) (*cobra.Command, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return nil, errors.New("alias command cannot be empty")
	}

	target, _, err := rootCmd.Find(fields)
	if err != nil || target == rootCmd {
		return nil, fmt.Errorf("unknown pxo command %q", fields[0])
	}
	if target == aliasCmd || target.Parent() == aliasCmd {
		return nil, errors.New("aliases cannot manage aliases")
	}
	return target, nil
}

// isReservedCommand reports whether name is a registered command or one
// of its aliases
func isReservedCommand(name string) bool {
	switch name {
	case "help", "completion":
		return true
	}
	for _, c := range rootCmd.Commands() {
		if c.Name() == name || c.HasAlias(name) {
			return true
		}
	}
	return false
}

// expandAlias substitutes args into line token by token. $@ splices every
// argument in as its own word. Arguments beyond the highest $N are appended
// unless $@ is used.
func expandAlias(line string, args []string) ([]string, error) {
	highest, spread := 0, false
	var firstErr error

	var out []string
	for _, field := range strings.Fields(line) {
		if field == "$@" {
			out = append(out, args...)
			spread = true
			continue
		}

		out = append(out, placeholderPattern.ReplaceAllStringFunc(field, func(ph string) string {
			if ph == "$@" {
				spread = true
				return strings.Join(args, " ")
			}
			n, _ := strconv.Atoi(ph[1:])
			highest = max(highest, n)
			if n < 1 || n > len(args) {
				if firstErr == nil {
					firstErr = fmt.Errorf("alias needs argument %s, got %d argument(s)", ph, len(args))
				}
				return ""
			}
			return args[n-1]
		}))
	}
	if firstErr != nil {
		return nil, firstErr
	}

	if !spread && highest < len(args) {
		out = append(out, args[highest:]...)
	}
	return out, nil
}

// TryResolveAlias expands cmdName when it names an alias in cfg
func TryResolveAlias(cfg *config.Config, cmdName string, args []string) ([]string, bool, error) {
	if cfg == nil {
		return nil, false, nil
	}
	line, ok := cfg.Aliases[cmdName]
	if !ok {
		return nil, false, nil
	}

	expanded, err := expandAlias(line, args)
	if err != nil {
		return nil, true, fmt.Errorf("alias '%s': %w", cmdName, err)
	}
	return expanded, true, nil
}

// expandAliases rewrites the command line when its first word is an alias.
// Registered commands always win over aliases with the same name.
func expandAliases(args []string, cfg *config.Config) ([]string, error) {
	if len(args) == 0 || isReservedCommand(args[0]) {
		return args, nil
	}
	expanded, ok, err := TryResolveAlias(cfg, args[0], args[1:])
	if err != nil {
		return nil, err
	}
	if ok {
		return expanded, nil
	}
	return args, nil
}

// loadAliases reads the config before cobra parses flags. Any failure
// means no aliases.
func loadAliases() *config.Config {
	v, err := vault.New()
	if err != nil {
		return nil
	}
	cfg, err := config.Load(v.ConfigPath)
	if err != nil {
		return nil
	}
	return cfg
}
