package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/law-makers/storelens/internal/ui"
)

// customHelpFunc provides a colorized help output
func customHelpFunc(cmd *cobra.Command, args []string) {
	w := os.Stdout
	fmt.Fprintf(w, "\n%s\n", ui.Heading(strings.ToUpper(cmd.Name())))
	if cmd.Short != "" {
		fmt.Fprintln(w, cmd.Short)
	}
	if cmd.Long != "" && cmd.Long != cmd.Short {
		fmt.Fprintf(w, "\n%s\n", wrapText(cmd.Long, 80))
	}

	printUsage(w, cmd)

	if cmd.HasExample() {
		section(w, "Examples")
		lastWasCommand := false
		for _, line := range strings.Split(cmd.Example, "\n") {
			line = strings.TrimSpace(line)
			switch {
			case line == "":
			case strings.HasPrefix(line, "#"):
				if lastWasCommand {
					fmt.Fprintln(w)
				}
				fmt.Fprintf(w, "  %s%s%s\n", ui.ColorDim, line, ui.ColorReset)
				lastWasCommand = false
			default:
				fmt.Fprintf(w, "  %s$ %s%s\n", ui.ColorGreen, line, ui.ColorReset)
				lastWasCommand = true
			}
		}
	}

	printCommands(w, cmd)

	if cmd.HasAvailableLocalFlags() {
		section(w, "Flags")
		printFlagsTo(w, cmd.LocalFlags().FlagUsages())
	}
	if cmd.HasAvailableInheritedFlags() {
		section(w, "Global Flags")
		printFlagsTo(w, cmd.InheritedFlags().FlagUsages())
	}

	if cmd.HasAvailableSubCommands() {
		fmt.Fprintf(w, "\n%sUse \"%s%s%s %s<command>%s %s--help%s\" for more information about a command.%s\n",
			ui.ColorDim,
			ui.ColorCyan, cmd.CommandPath(), ui.ColorReset+ui.ColorDim,
			ui.ColorYellow, ui.ColorReset+ui.ColorDim,
			ui.ColorGreen, ui.ColorReset+ui.ColorDim,
			ui.ColorReset)
	}
	fmt.Fprintln(w)
}

// customUsageFunc prints the short usage shown after a flag or argument error
func customUsageFunc(cmd *cobra.Command) error {
	w := os.Stderr
	printUsage(w, cmd)
	printCommands(w, cmd)
	if cmd.HasAvailableLocalFlags() {
		section(w, "Flags")
		printFlagsTo(w, cmd.LocalFlags().FlagUsages())
	}
	fmt.Fprintf(w, "\n%sUse \"%s%s%s %s--help%s\" for more information.%s\n",
		ui.ColorDim,
		ui.ColorCyan, cmd.CommandPath(), ui.ColorReset+ui.ColorDim,
		ui.ColorGreen, ui.ColorReset+ui.ColorDim,
		ui.ColorReset)
	return nil
}

func section(w io.Writer, title string) {
	fmt.Fprintf(w, "\n%s%s%s\n", ui.ColorBold+ui.ColorWhite, title, ui.ColorReset)
}

func printUsage(w io.Writer, cmd *cobra.Command) {
	section(w, "Usage")
	if cmd.Runnable() {
		fmt.Fprintf(w, "  %s%s%s\n", ui.ColorCyan, cmd.UseLine(), ui.ColorReset)
	}
	if cmd.HasAvailableSubCommands() {
		fmt.Fprintf(w, "  %s%s%s %s<command>%s %s[flags]%s\n",
			ui.ColorCyan, cmd.CommandPath(), ui.ColorReset,
			ui.ColorYellow, ui.ColorReset,
			ui.ColorDim, ui.ColorReset)
	}
}

func printCommands(w io.Writer, cmd *cobra.Command) {
	if !cmd.HasAvailableSubCommands() {
		return
	}
	section(w, "Commands")

	var available []*cobra.Command
	width := 0
	for _, c := range cmd.Commands() {
		if c.IsAvailableCommand() && c.Name() != "help" {
			available = append(available, c)
			width = max(width, len(c.Name()))
		}
	}
	for _, c := range available {
		fmt.Fprintf(w, "  %s%-*s%s  %s%s%s\n",
			ui.ColorCyan, width, c.Name(), ui.ColorReset,
			ui.ColorDim, c.Short, ui.ColorReset)
	}
}

// printFlagsTo re-aligns pflag's usage block and colors flag names.
func printFlagsTo(w io.Writer, flagUsages string) {
	lines := strings.Split(flagUsages, "\n")

	width := 28
	for _, line := range lines {
		trimmed := strings.TrimLeft(line, " ")
		if strings.HasPrefix(trimmed, "-") {
			flag, _, _ := strings.Cut(trimmed, "  ")
			width = max(width, len(strings.TrimSpace(flag)))
		}
	}

	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		if !strings.HasPrefix(trimmed, "-") {
			fmt.Fprintf(w, "%s%s%s%s\n", strings.Repeat(" ", width+4), ui.ColorDim, trimmed, ui.ColorReset)
			continue
		}
		flag, desc, ok := strings.Cut(trimmed, "  ")
		if !ok {
			fmt.Fprintf(w, "  %s%s%s\n", ui.ColorGreen, trimmed, ui.ColorReset)
			continue
		}
		fmt.Fprintf(w, "  %s%-*s%s  %s%s%s\n",
			ui.ColorGreen, width, strings.TrimSpace(flag), ui.ColorReset,
			ui.ColorDim, strings.TrimSpace(desc), ui.ColorReset)
	}
}

// wrapText wraps text at width, keeping paragraphs and list items intact.
func wrapText(text string, width int) string {
	var paragraphs []string
	for _, para := range strings.Split(text, "\n\n") {
		var out []string
		for _, line := range strings.Split(para, "\n") {
			line = strings.TrimSpace(line)
			if line == "" {
				continue
			}
			if strings.HasPrefix(line, "-") || strings.HasPrefix(line, "*") {
				out = append(out, line)
				continue
			}
			var cur strings.Builder
			for _, word := range strings.Fields(line) {
				switch {
				case cur.Len() == 0:
				case cur.Len()+1+len(word) <= width:
					cur.WriteByte(' ')
				default:
					out = append(out, cur.String())
					cur.Reset()
				}
				cur.WriteString(word)
			}
			if cur.Len() > 0 {
				out = append(out, cur.String())
			}
		}
		if len(out) > 0 {
			paragraphs = append(paragraphs, strings.Join(out, "\n"))
		}
	}
	return strings.Join(paragraphs, "\n\n")
}

// errorLine formats a command error for the terminal.
func errorLine(err error) string {
	return ui.Error("✗ Error: ") + err.Error()
}
