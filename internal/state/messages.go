package state

// User-facing notice texts.
const (
	MsgFetchTopicsFailed   = "Failed to fetch research topics. Please try again later."
	MsgCreateTopicFailed   = "Failed to create topic. Please try again later."
	MsgUpdateTopicFailed   = "Failed to update topic. Please try again later."
	MsgDeleteTopicFailed   = "Failed to delete topic. Please try again later."
	MsgRunTopicFailed      = "Failed to run topic search. Please try again later."
	MsgFetchJournalFailed  = "Failed to fetch journal entries. Please try again later."
	MsgFetchStatusFailed   = "Failed to fetch application status. Please try again later."
	MsgFetchScheduleFailed = "Failed to fetch schedule settings. Please try again later."
	MsgSaveScheduleFailed  = "Failed to save schedule settings. Please try again later."
	MsgOpenDocumentFailed  = "Failed to open journal entry. Please try again later."
	MsgRequiredFields      = "Please fill out all required fields."
	MsgTopicNotFound       = "Topic not found."
	MsgScheduleUpdated     = "Schedule updated successfully."
	MsgTopicDeleted        = "Topic deleted successfully"
)

func msgTopicCreated(name string) string {
	return `Topic "` + name + `" created successfully.`
}

func msgTopicUpdated(name string) string {
	return `Topic "` + name + `" updated successfully.`
}
