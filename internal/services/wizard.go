package services

import (
	"fmt"
	"strconv"

	"traders/internal/models"
)

// WizardState is a step of the order wizard.
type WizardState int

const (
	AwaitingCustomer WizardState = iota
	SelectingProducts
	EnteringDetails
	Confirming
	Committed
	Cancelled
)

func (s WizardState) String() string {
	switch s {
	case AwaitingCustomer:
		return "awaiting_customer"
	case SelectingProducts:
		return "selecting_products"
	case EnteringDetails:
		return "entering_details"
	case Confirming:
		return "confirming"
	case Committed:
		return "committed"
	case Cancelled:
		return "cancelled"
	}
	return "unknown(" + strconv.Itoa(int(s)) + ")"
}

// Terminal reports whether no further events apply.
func (s WizardState) Terminal() bool {
	return s == Committed || s == Cancelled
}

// WizardEvent is a user action submitted to the wizard.
type WizardEvent int

const (
	ChooseCustomer WizardEvent = iota
	AddLine
	RemoveLine
	Proceed
	SubmitDetails
	Confirm
	Cancel
)

func (e WizardEvent) String() string {
	switch e {
	case ChooseCustomer:
		return "choose_customer"
	case AddLine:
		return "add_line"
	case RemoveLine:
		return "remove_line"
	case Proceed:
		return "proceed"
	case SubmitDetails:
		return "submit_details"
	case Confirm:
		return "confirm"
	case Cancel:
		return "cancel"
	}
	return "unknown(" + strconv.Itoa(int(e)) + ")"
}

var transitions = map[WizardState]map[WizardEvent]WizardState{
	AwaitingCustomer: {
		ChooseCustomer: SelectingProducts,
		Cancel:         Cancelled,
	},
	SelectingProducts: {
		ChooseCustomer: SelectingProducts,
		AddLine:        SelectingProducts,
		RemoveLine:     SelectingProducts,
		Proceed:        EnteringDetails,
		Cancel:         Cancelled,
	},
	EnteringDetails: {
		SubmitDetails: Confirming,
		Cancel:        Cancelled,
	},
	Confirming: {
		Confirm: Committed,
		Cancel:  Cancelled,
	},
}

// StateError reports a wizard step reached without its prerequisite, or an
// event that does not apply to the current step.
type StateError struct {
	State  WizardState
	Event  *WizardEvent
	Reason string
}

func (e *StateError) Error() string {
	if e.Event != nil {
		return fmt.Sprintf("wizard: %s not allowed in state %s", e.Event, e.State)
	}
	return fmt.Sprintf("wizard: cannot enter %s: %s", e.State, e.Reason)
}

// Next returns the state reached by applying event in state.
func Next(state WizardState, event WizardEvent) (WizardState, error) {
	if to, ok := transitions[state][event]; ok {
		return to, nil
	}
	return state, &StateError{State: state, Event: &event}
}

// Enter checks the entry guard of state against draft.
func Enter(state WizardState, draft *models.DraftOrder) error {
	switch state {
	case SelectingProducts:
		if !draft.HasCustomer() {
			return &StateError{State: state, Reason: "no customer selected"}
		}
	case EnteringDetails:
		if err := Enter(SelectingProducts, draft); err != nil {
			return err
		}
		if !draft.HasLines() {
			return &StateError{State: state, Reason: "cart is empty"}
		}
	case Confirming, Committed:
		if err := Enter(EnteringDetails, draft); err != nil {
			return err
		}
		if !draft.Details.Complete() {
			return &StateError{State: state, Reason: "order details incomplete"}
		}
	}
	return nil
}

// Resolve returns the furthest state at or before requested whose entry guard
// holds for draft. Out-of-order navigation lands on the earliest unmet step.
func Resolve(requested WizardState, draft *models.DraftOrder) WizardState {
	if requested == Cancelled {
		return Cancelled
	}
	if requested > Confirming {
		requested = Confirming
	}
	for state := requested; state > AwaitingCustomer; state-- {
		if Enter(state, draft) == nil {
			return state
		}
	}
	return AwaitingCustomer
}

// Furthest is the latest step the draft may currently be shown at
func Furthest(draft *models.DraftOrder) WizardState {
	return Resolve(Confirming, draft)
}

// StateForStep maps the step query parameter to a state. Unknown or missing
// values mean the first step.
func StateForStep(step string) WizardState {
	switch step {
	case "2":
		return SelectingProducts
	case "3":
		return EnteringDetails
	default:
		return AwaitingCustomer
	}
}

// Step returns the step query value of a form state, or 0 for states that
// are not a numbered form step.
func (s WizardState) Step() int {
	switch s {
	case AwaitingCustomer:
		return 1
	case SelectingProducts:
		return 2
	case EnteringDetails:
		return 3
	}
	return 0
}
