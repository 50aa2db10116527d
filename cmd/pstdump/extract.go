package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/outlookvault/pstkit/msgstore"
)

var (
	extractFolder string
	extractIndex  int
	extractOut    string
	extractCRC    bool
)

func init() {
	cmd := newExtractCmd()
	cmd.Flags().StringVar(&extractFolder, "folder", "", "Folder path containing the message")
	cmd.Flags().IntVar(&extractIndex, "index", 0, "Message index within the folder's contents table")
	cmd.Flags().StringVar(&extractOut, "out", ".", "Output directory")
	cmd.Flags().BoolVar(&extractCRC, "verify-rtf-crc", false, "Verify the RTF body's embedded CRC before writing it")
	rootCmd.AddCommand(cmd)
}

func newExtractCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "extract <file.pst>",
		Short: "Extract one message's body and attachments to disk",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExtract(args[0])
		},
	}
}

func runExtract(path string) error {
	f, err := msgstore.Open(path, msgstore.OpenOptions{Password: password})
	if err != nil {
		return fmt.Errorf("open: %w", err)
	}
	defer f.Close()

	fo, err := resolveFolder(f, extractFolder)
	if err != nil {
		return err
	}
	msgs, err := fo.Messages()
	if err != nil {
		return fmt.Errorf("messages: %w", err)
	}
	if extractIndex < 0 || extractIndex >= len(msgs) {
		return fmt.Errorf("index %d out of range (folder has %d messages)", extractIndex, len(msgs))
	}
	msg := msgs[extractIndex]

	if err := os.MkdirAll(extractOut, 0o755); err != nil {
		return fmt.Errorf("mkdir out dir: %w", err)
	}

	body, err := msg.Body(extractCRC)
	if err != nil {
		return fmt.Errorf("body: %w", err)
	}
	if body.PlainText != "" {
		if err := os.WriteFile(filepath.Join(extractOut, "body.txt"), []byte(body.PlainText), 0o644); err != nil {
			return err
		}
	}
	if body.HasHTML() {
		if err := os.WriteFile(filepath.Join(extractOut, "body.html"), []byte(body.HTML), 0o644); err != nil {
			return err
		}
	}
	if body.HasRTF() {
		if err := os.WriteFile(filepath.Join(extractOut, "body.rtf"), body.RTF, 0o644); err != nil {
			return err
		}
	}

	atts, err := msg.Attachments()
	if err != nil {
		return fmt.Errorf("attachments: %w", err)
	}
	for i, a := range atts {
		name := a.LongFilename()
		if name == "" {
			name = a.Filename()
		}
		if name == "" {
			name = fmt.Sprintf("attachment-%d.bin", i)
		}
		printVerbose("writing attachment %s (%d bytes)\n", name, a.Size())
		if err := os.WriteFile(filepath.Join(extractOut, name), a.Data(), 0o644); err != nil {
			return fmt.Errorf("write attachment %s: %w", name, err)
		}
	}
	return nil
}
