package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	tree_sitter "github.com/tree-sitter/go-tree-sitter"
	"gopkg.in/yaml.v3"

	"github.com/DeusData/javagraph/internal/extract"
	"github.com/DeusData/javagraph/internal/lang"
	"github.com/DeusData/javagraph/internal/parser"
)

type inspectOutput struct {
	Unit  *parser.Unit   `yaml:"unit"`
	Facts *extract.Facts `yaml:"facts"`
}

func newInspectCmd() *cobra.Command {
	var (
		showAST  bool
		tolerate bool
	)
	cmd := &cobra.Command{
		Use:   "inspect <file.java>",
		Short: "Print the parsed compilation unit and the facts derived from it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			source, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if showAST {
				tree, err := parser.Parse(lang.Java, source)
				if err != nil {
					return err
				}
				defer tree.Close()
				printAST(out, tree.RootNode(), source, 0)
				return nil
			}

			u, err := parser.ParseUnit(source, &parser.UnitOptions{TolerateSyntaxErrors: tolerate})
			if err != nil {
				return fmt.Errorf("%s: %w", args[0], err)
			}
			enc := yaml.NewEncoder(out)
			enc.SetIndent(2)
			if err := enc.Encode(&inspectOutput{Unit: u, Facts: extract.Extract(u)}); err != nil {
				return err
			}
			return enc.Close()
		},
	}
	cmd.Flags().BoolVar(&showAST, "ast", false, "print the raw tree-sitter syntax tree instead")
	cmd.Flags().BoolVar(&tolerate, "tolerate-syntax-errors", false, "extract even if the file has syntax errors")
	return cmd
}

func printAST(w io.Writer, node *tree_sitter.Node, source []byte, indent int) {
	if node == nil {
		return
	}
	text := parser.NodeText(node, source)
	if len(text) > 60 {
		text = text[:60] + "..."
	}
	parentKind := "nil"
	if node.Parent() != nil {
		parentKind = node.Parent().Kind()
	}
	fmt.Fprintf(w, "%s%s (parent=%s) [%d-%d] %q\n", strings.Repeat("  ", indent), node.Kind(), parentKind,
		node.StartPosition().Row+1, node.EndPosition().Row+1, text)
	for i := uint(0); i < node.ChildCount(); i++ {
		printAST(w, node.Child(i), source, indent+1)
	}
}
