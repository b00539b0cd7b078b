package moderation

import "time"

// ActionKind is what a warn count escalates to
type ActionKind int

const (
	ActionNotify ActionKind = iota
	ActionMute
	ActionKick
	ActionBan
)

func (k ActionKind) String() string {
	switch k {
	case ActionMute:
		return "mute"
	case ActionKick:
		return "kick"
	case ActionBan:
		return "ban"
	default:
		return "notify"
	}
}

// Action is the escalation step for a warn count
type Action struct {
	Kind         ActionKind
	Duration     time.Duration
	Reason       string
	// DM sent to the user after a mute
	DirectNotice string
}

// BanThreshold is the warn count from which every warn bans
const BanThreshold = 6

// ActionFor looks the count up in the escalation table
func ActionFor(count int64) Action {
	switch {
	case count == 3:
		return Action{Kind: ActionMute, Duration: time.Hour, Reason: "3rd warning - auto mute 1 hour",
			DirectNotice: "🔇 You have been muted for 1 hour due to 3 warnings."}
	case count == 4:
		return Action{Kind: ActionMute, Duration: 24 * time.Hour, Reason: "4th warning - auto mute 24 hours",
			DirectNotice: "🔇 You have been muted for 24 hours due to 4 warnings."}
	case count == 5:
		return Action{Kind: ActionKick, Reason: "5th warning - auto kick"}
	case count >= BanThreshold:
		return Action{Kind: ActionBan, Reason: "6th warning - auto ban"}
	default:
		return Action{Kind: ActionNotify}
	}
}
