package main

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/dshills/abbrmark/internal/app"
)

func newReplayCmd(st *state) *cobra.Command {
	return &cobra.Command{
		Use:   "replay SCRIPT",
		Short: "Replay a JSON editing script and print every step as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			script, err := app.ParseScript(data)
			if err != nil {
				return fmt.Errorf("%s: %w", args[0], err)
			}

			ed, err := st.editor()
			if err != nil {
				return err
			}
			defer ed.Close()

			frames, err := app.Replay(ed, script)
			if err != nil {
				return err
			}
			out, err := app.Report(script.Name, frames)
			if err != nil {
				return err
			}
			st.logger.Info("script replayed", zap.String("script", script.Name), zap.Int("steps", len(frames)))
			_, err = cmd.OutOrStdout().Write(out)
			return err
		},
	}
}

func newExpandCmd(st *state) *cobra.Command {
	var syntax string
	cmd := &cobra.Command{
		Use:   "expand ABBREVIATION",
		Short: "Print the expansion of an abbreviation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ed, err := st.editor()
			if err != nil {
				return err
			}
			defer ed.Close()

			text, err := ed.Expand(args[0], syntax)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), text)
			return nil
		},
	}
	cmd.Flags().StringVarP(&syntax, "syntax", "s", "html", "Syntax to expand for (html, xml, css, scss, less, sass)")
	return cmd
}

func newRemoveTagCmd(st *state) *cobra.Command {
	var (
		at    int64
		write bool
	)
	cmd := &cobra.Command{
		Use:   "remove-tag FILE",
		Short: "Remove the tag pair around an offset and keep its content",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			data, err := os.ReadFile(path)
			if err != nil {
				return err
			}
			if at < 0 || at > int64(len(data)) {
				return fmt.Errorf("%w: offset %d outside %s", app.ErrInvalidArgument, at, path)
			}

			ed, err := st.editor()
			if err != nil {
				return err
			}
			defer ed.Close()

			doc := ed.Open(string(data), app.WithName(path), app.WithSyntax(syntaxFor(path)), app.WithCaret(at))
			if err := ed.Execute(doc, app.NewCommand(app.CmdRemoveTag)); err != nil {
				return err
			}
			if !write {
				_, err := fmt.Fprint(cmd.OutOrStdout(), doc.Text())
				return err
			}
			info, err := os.Stat(path)
			if err != nil {
				return err
			}
			return os.WriteFile(path, []byte(doc.Text()), info.Mode().Perm())
		},
	}
	cmd.Flags().Int64Var(&at, "at", 0, "Byte offset inside the tag")
	cmd.Flags().BoolVarP(&write, "write", "w", false, "Write the result back to FILE instead of stdout")
	return cmd
}

func newConfigCmd(st *state) *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration as TOML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			enc := toml.NewEncoder(cmd.OutOrStdout())
			return enc.Encode(st.cfg)
		},
	}
}
