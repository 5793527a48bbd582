package main

import (
	"fmt"
	"homecloud/domain"
	"io"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/olekukonko/tablewriter"
)

func printSummary(out io.Writer, result domain.SessionResult) {
	table := tablewriter.NewWriter(out)
	table.SetHeader([]string{"File", "Size", "MD5"})
	table.SetAutoWrapText(false)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetBorder(false)
	for _, f := range result.Sent {
		table.Append([]string{f.Name, humanize.IBytes(uint64(f.Size)), f.Digest})
	}
	table.SetFooter([]string{
		fmt.Sprintf("%d/%d sent", result.FilesSent, result.FilesTotal),
		result.EndedAt.Sub(result.StartedAt).Round(time.Millisecond).String(),
		outcome(result),
	})
	table.Render()
}

func outcome(result domain.SessionResult) string {
	if result.Success {
		return "ok"
	}
	return string(result.Reason)
}
