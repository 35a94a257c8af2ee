package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/menta2k/pairgen/internal/utils"
	"github.com/menta2k/pairgen/internal/walker"
	"github.com/menta2k/pairgen/pkg/dirdiff"
)

var diffCmd = &cobra.Command{
	Use:   "diff folder_a folder_b",
	Short: "List files present in one folder but absent from the other",
	Long: `Diff compares the files directly inside two folders and lists the ones
present in folder A but missing from folder B. Useful for finding
training pairs whose counterpart was never generated. Orphans can be
deleted to bring the folders back in sync.`,
	Args: cobra.ExactArgs(2),
	RunE: runDiff,
}

func init() {
	rootCmd.AddCommand(diffCmd)

	diffCmd.Flags().BoolP("ignore-extension", "i", false, "Compare filenames without their extensions")
	diffCmd.Flags().BoolP("reverse", "r", false, "Reverse the comparison (files in B missing from A)")
	diffCmd.Flags().BoolP("delete", "d", false, "Delete the orphaned files from the source folder")
}

func runDiff(cmd *cobra.Command, args []string) error {
	for _, folder := range args {
		if !utils.DirExists(folder) {
			return fmt.Errorf("%w: %s", walker.ErrNotFound, folder)
		}
	}

	ignoreExt, _ := cmd.Flags().GetBool("ignore-extension")
	reverse, _ := cmd.Flags().GetBool("reverse")
	del, _ := cmd.Flags().GetBool("delete")

	res, err := dirdiff.Compare(args[0], args[1], dirdiff.Options{
		IgnoreExtension: ignoreExt,
		Reverse:         reverse,
	})
	if err != nil {
		return err
	}

	if len(res.Files) == 0 {
		fmt.Printf("All files in %s are available in %s.\n", res.Source, res.Target)
		return nil
	}

	fmt.Printf("Files in %s but not in %s:\n", res.Source, res.Target)
	for _, name := range res.Files {
		fmt.Println(name)
	}

	if del {
		deleted, err := dirdiff.Delete(res.Source, res.Files)
		for _, path := range deleted {
			fmt.Printf("Deleted %s\n", path)
		}
		if err != nil {
			return err
		}
	}
	return nil
}
