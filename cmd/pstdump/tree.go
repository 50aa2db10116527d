package main

import (
	"fmt"

	"github.com/outlookvault/pstkit/msgstore"
	"github.com/spf13/cobra"
)

var treeDepth int

func init() {
	cmd := newTreeCmd()
	cmd.Flags().IntVar(&treeDepth, "depth", 0, "Maximum depth (0 = unlimited)")
	rootCmd.AddCommand(cmd)
}

func newTreeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tree <file.pst>",
		Short: "Print the folder hierarchy",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTree(args[0])
		},
	}
}

func runTree(path string) error {
	f, err := msgstore.Open(path, msgstore.OpenOptions{Password: password})
	if err != nil {
		return fmt.Errorf("open: %w", err)
	}
	defer f.Close()

	root, err := f.RootFolder()
	if err != nil {
		return fmt.Errorf("root folder: %w", err)
	}

	if jsonOut {
		type node struct {
			Name     string `json:"name"`
			Messages int64  `json:"messages"`
			Children []node `json:"children,omitempty"`
		}
		var build func(msgstore.Folder, int) (node, error)
		build = func(fo msgstore.Folder, depth int) (node, error) {
			n := node{Name: fo.DisplayName(), Messages: fo.ContentCount()}
			if treeDepth > 0 && depth >= treeDepth {
				return n, nil
			}
			subs, err := fo.Subfolders()
			if err != nil {
				return node{}, err
			}
			for _, sf := range subs {
				c, err := build(sf, depth+1)
				if err != nil {
					return node{}, err
				}
				n.Children = append(n.Children, c)
			}
			return n, nil
		}
		tree, err := build(root, 0)
		if err != nil {
			return err
		}
		return printJSON(tree)
	}

	var walk func(msgstore.Folder, string, int) error
	walk = func(fo msgstore.Folder, prefix string, depth int) error {
		fmt.Printf("%s%s (%d)\n", prefix, fo.DisplayName(), fo.ContentCount())
		if treeDepth > 0 && depth >= treeDepth {
			return nil
		}
		subs, err := fo.Subfolders()
		if err != nil {
			return err
		}
		for _, sf := range subs {
			if err := walk(sf, prefix+"  ", depth+1); err != nil {
				return err
			}
		}
		return nil
	}
	return walk(root, "", 0)
}
