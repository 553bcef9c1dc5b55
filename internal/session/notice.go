package session

// NoticeKind classifies a recovered, non-blocking failure.
type NoticeKind string

const (
	NoticeFeedbackFallback NoticeKind = "feedback_fallback"
	NoticeSummaryFallback  NoticeKind = "summary_fallback"
	NoticeResultNotSaved   NoticeKind = "result_not_saved"
)

// Notice is a transient message for the learner about a recovered error.
type Notice struct {
	Kind    NoticeKind
	Message string
	Err     error
}

// Notifier receives notices. It is called without the session lock held.
type Notifier func(Notice)
