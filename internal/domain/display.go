package domain

// SessionSource reports which payload a display list was taken from.
type SessionSource int

const (
	SourceNone SessionSource = iota
	SourceSummary
	SourceRaw
)

func (s SessionSource) String() string {
	switch s {
	case SourceSummary:
		return "summary"
	case SourceRaw:
		return "raw"
	default:
		return "none"
	}
}

// DisplaySessions picks the list of sessions to show. The summary list wins
// only when it is present and non-empty; an empty summary list falls through
// to the raw list.
func DisplaySessions(summary *MiningSummary, raw []MiningSession) ([]MiningSession, SessionSource) {
	if summary != nil && summary.ActiveSessions != nil && len(summary.ActiveSessions.Sessions) > 0 {
		return summary.ActiveSessions.Sessions, SourceSummary
	}
	if raw != nil {
		return raw, SourceRaw
	}
	return []MiningSession{}, SourceNone
}

// SummaryFallthrough reports whether a non-nil summary was passed over in
// favour of the raw list (or nothing).
func SummaryFallthrough(summary *MiningSummary, src SessionSource) bool {
	return summary != nil && src != SourceSummary
}
