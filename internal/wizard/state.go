package wizard

// State identifies a step of the conversation.
type State string

const (
	// StateIdle means no conversation is running for the user.
	StateIdle State = "idle"

	StateAwaitingSheetLink     State = "awaiting_sheet_link"
	StateAwaitingRelinkConfirm State = "awaiting_relink_confirm"

	StateConfigMenu            State = "config_menu"
	StateConfigConfirm         State = "config_confirm"
	StateConfigPickCategory    State = "config_pick_category"
	StateConfigPickSubcategory State = "config_pick_subcategory"
	StateConfigPickPayment     State = "config_pick_payment"
	StateConfigPickSubpayment  State = "config_pick_subpayment"

	StatePickEntryType        State = "pick_entry_type"
	StateAwaitingPrice        State = "awaiting_price"
	StateAwaitingRemarks      State = "awaiting_remarks"
	StatePickCategory         State = "pick_category"
	StatePickSubcategory      State = "pick_subcategory"
	StatePickPayment          State = "pick_payment"
	StatePickSubpayment       State = "pick_subpayment"
	StateAwaitingQuickAddLine State = "awaiting_quick_add_line"
)

// Input is one user turn: free text or a press of a rendered option.
type Input struct {
	Text string
	// Choice is the index of the pressed option within the keyboard rendered for State.
	Choice   int
	State    State
	IsChoice bool
}

// Text wraps a text message.
func Text(s string) Input {
	return Input{Text: s}
}

// Choice wraps a press of option index on a keyboard rendered in state st.
func Choice(st State, index int) Input {
	return Input{Choice: index, State: st, IsChoice: true}
}

// Reply is a message for the transport to deliver.
type Reply struct {
	Text    string
	Options []string
	// State is set when Options is not empty; pressing option i yields Choice(State, i).
	State State
	// Edit replaces the message whose button was pressed instead of sending a new one.
	// An Edit with empty Text only removes that message's keyboard.
	Edit bool
}
