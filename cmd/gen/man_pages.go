package gen

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/cobra/doc"

	"github.com/luma/racedirector/internal/meta"
)

var (
	manDir     string
	manSection string
)

var ManPagesCmd = &cobra.Command{
	Use:   "man",
	Short: "Generate man pages for racedirector",
	Long: `Writes a man page for every racedirector command, named after the
command path and the section (racedirector-start.1).`,
	Args: cobra.NoArgs,

	RunE: func(cmd *cobra.Command, args []string) error {
		return writeManPages(cmd.Root(), manDir, manSection, cmd.OutOrStdout())
	},
}

func init() {
	flags := ManPagesCmd.PersistentFlags()

	flags.StringVar(&manDir, "dir", "man", "the directory to write the man pages to, created when missing")
	flags.StringVar(&manSection, "section", "1", "the man section of the pages")

	// For bash-completion
	if err := flags.SetAnnotation("dir", cobra.BashCompSubdirsInDir, []string{}); err != nil {
		panic(err)
	}
}

// writeManPages renders the pages of root and all its available subcommands
// into dir.
func writeManPages(root *cobra.Command, dir, section string, out io.Writer) error {
	if err := os.MkdirAll(dir, 0750); err != nil {
		return fmt.Errorf("Failed to create man page directory '%s': %w", dir, err)
	}

	root.DisableAutoGenTag = true

	header := &doc.GenManHeader{
		Section: section,
		Manual:  "racedirector Manual",
		Source:  "racedirector " + meta.Version,
	}

	if err := doc.GenManTree(root, header, dir); err != nil {
		return fmt.Errorf("Failed to generate man pages: %w", err)
	}

	fmt.Fprintf(out, "Wrote section %s man pages to %s\n", section, dir)

	return nil
}
