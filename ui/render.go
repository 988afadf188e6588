package ui

import (
	"chat-dm/domain"
	"fmt"
	"io"
	"strconv"

	"github.com/olekukonko/tablewriter"
)

const timeLayout = "02/01 15:04"

func newTable(w io.Writer, header []string) *tablewriter.Table {
	table := tablewriter.NewWriter(w)
	table.SetHeader(header)
	table.SetAutoWrapText(false)
	table.SetAutoFormatHeaders(true)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetCenterSeparator("")
	table.SetColumnSeparator("")
	table.SetRowSeparator("")
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetTablePadding("\t")
	return table
}

// RenderConversation prints messages oldest first, as the service returns them.
func RenderConversation(w io.Writer, selfID string, messages []domain.Message) {
	table := newTable(w, []string{"At", "From", "Message", "Status"})
	for _, m := range messages {
		from := m.SenderID
		if m.SenderID == selfID {
			from = "me"
		} else if m.SenderUsername != nil {
			from = *m.SenderUsername
		}
		status := ""
		if m.SenderID == selfID {
			status = string(m.Status)
		}
		table.Append([]string{m.CreatedAt.Local().Format(timeLayout), from, body(m), status})
	}
	table.Render()
}

// RenderChatUsers prints the conversation list, most recent first.
func RenderChatUsers(w io.Writer, users []domain.ChatUser) {
	table := newTable(w, []string{"User", "Last message", "At", "Unread"})
	for _, u := range users {
		last, at := "", ""
		if u.LastMessage != nil {
			last = preview(u.LastMessage.Content, 40)
			at = u.LastMessage.CreatedAt.Local().Format(timeLayout)
		}
		unread := ""
		if u.UnreadCount > 0 {
			unread = strconv.Itoa(u.UnreadCount)
		}
		table.Append([]string{u.Profile.Username, last, at, unread})
	}
	table.Render()
}

func body(m domain.Message) string {
	if m.AttachmentURL == nil {
		return m.Content
	}
	name := *m.AttachmentURL
	if m.FileName != nil {
		name = *m.FileName
	}
	if m.Content == "" {
		return fmt.Sprintf("[%s] %s", m.Type, name)
	}
	return fmt.Sprintf("%s [%s] %s", m.Content, m.Type, name)
}

func preview(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-1]) + "…"
}
