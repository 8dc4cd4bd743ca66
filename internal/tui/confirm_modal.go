package tui

import (
	"strings"
)

func renderConfirmModal(width int, title string, body string, confirmLabel string, cancelLabel string, focus confirmModalFocus) string {
	controls := renderButtons(
		button{label: confirmLabel, focused: focus == confirmFocusConfirm},
		button{label: cancelLabel, focused: focus == confirmFocusCancel},
	)

	bodyW := modalBodyWidth(width)
	help := styleMuted().Width(bodyW).Render("y: delete   n/esc: cancel   tab: focus   enter: select")

	content := strings.Join([]string{
		body,
		"",
		controls,
		"",
		help,
	}, "\n")
	return renderModalBox(width, title, content)
}

func (m appModel) renderDeleteConfirm() string {
	c := m.st.Confirm
	if c == nil {
		return ""
	}
	return renderConfirmModal(m.width, "Delete Topic", c.Prompt(), "Delete", "Cancel", m.confirmFocus)
}
