package notify

import (
	"context"
	"fmt"
	"strings"
)

const maxSheetsShown = 10

// NewSheets announces data sheets that received a default Setting row.
func (c *Client) NewSheets(ctx context.Context, spreadsheetID string, sheets []string) {
	if len(sheets) == 0 {
		return
	}
	c.SendAsync(ctx, "New dashboard sheets", formatNewSheets(spreadsheetID, sheets))
}

// SystemicFailure reports a pass that could not run at all.
func (c *Client) SystemicFailure(ctx context.Context, err error) {
	c.SendAsync(ctx, "Sheet checker failing", fmt.Sprintf("Reconciliation pass aborted: %v", err))
}

// Provisioned announces a newly created dashboard.
func (c *Client) Provisioned(ctx context.Context, name, spreadsheetID string) error {
	return c.Send(ctx, "Dashboard provisioned", fmt.Sprintf("%s: https://docs.google.com/spreadsheets/d/%s", name, spreadsheetID))
}

func formatNewSheets(spreadsheetID string, sheets []string) string {
	var sb strings.Builder
	if len(sheets) == 1 {
		sb.WriteString(fmt.Sprintf("1 new sheet in %s\n", spreadsheetID))
	} else {
		sb.WriteString(fmt.Sprintf("%d new sheets in %s\n", len(sheets), spreadsheetID))
	}

	shown := min(len(sheets), maxSheetsShown)
	for _, name := range sheets[:shown] {
		sb.WriteString(fmt.Sprintf("- %s\n", name))
	}
	if len(sheets) > shown {
		sb.WriteString(fmt.Sprintf("... and %d more\n", len(sheets)-shown))
	}
	return strings.TrimSuffix(sb.String(), "\n")
}
