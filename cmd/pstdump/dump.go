package main

import (
	"fmt"

	"github.com/outlookvault/pstkit/msgstore"
	"github.com/spf13/cobra"
)

var dumpFolder string

func init() {
	cmd := newDumpCmd()
	cmd.Flags().StringVar(&dumpFolder, "folder", "", "Folder path to dump ('/'-separated display names, empty for root)")
	rootCmd.AddCommand(cmd)
}

func newDumpCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "dump <file.pst>",
		Short: "List messages in a folder",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDump(args[0])
		},
	}
}

type messageSummary struct {
	Subject         string `json:"subject"`
	SenderName      string `json:"sender_name"`
	DeliveryTime    string `json:"delivery_time"`
	HasAttachments  bool   `json:"has_attachments"`
	RecipientCount  int    `json:"recipient_count"`
	AttachmentCount int    `json:"attachment_count"`
}

func runDump(path string) error {
	f, err := msgstore.Open(path, msgstore.OpenOptions{Password: password})
	if err != nil {
		return fmt.Errorf("open: %w", err)
	}
	defer f.Close()

	fo, err := resolveFolder(f, dumpFolder)
	if err != nil {
		return err
	}
	msgs, err := fo.Messages()
	if err != nil {
		return fmt.Errorf("messages: %w", err)
	}

	summaries := make([]messageSummary, 0, len(msgs))
	for _, m := range msgs {
		recips, err := m.Recipients()
		if err != nil {
			return fmt.Errorf("recipients: %w", err)
		}
		atts, err := m.Attachments()
		if err != nil {
			return fmt.Errorf("attachments: %w", err)
		}
		summaries = append(summaries, messageSummary{
			Subject:         m.Subject(),
			SenderName:      m.SenderName(),
			DeliveryTime:    m.DeliveryTime().Format("2006-01-02T15:04:05Z07:00"),
			HasAttachments:  m.HasAttachments(),
			RecipientCount:  len(recips),
			AttachmentCount: len(atts),
		})
	}

	if jsonOut {
		return printJSON(summaries)
	}
	for _, s := range summaries {
		fmt.Printf("%-25s %-30s %-20s attachments=%d recipients=%d\n",
			s.DeliveryTime, s.SenderName, s.Subject, s.AttachmentCount, s.RecipientCount)
	}
	return nil
}
