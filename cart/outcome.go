package cart

import "audiobook-storefront/models"

// OutcomeKind tells the cart page how to render a reconciliation result
type OutcomeKind string

const (
	// OutcomeOK carries authoritative server prices
	OutcomeOK OutcomeKind = "ok"
	// OutcomeDegraded carries locally computed prices and a notice
	OutcomeDegraded OutcomeKind = "degraded"
	// OutcomeFailed carries no data; the cart could not be read
	OutcomeFailed OutcomeKind = "failed"
)

// Outcome is the result of a cart reconciliation. View is unset for OutcomeFailed;
// Reason is unset for OutcomeOK.
type Outcome struct {
	Kind   OutcomeKind
	View   models.CartView
	Reason error
}

// Ok wraps server-priced data
func Ok(view models.CartView) Outcome {
	return Outcome{Kind: OutcomeOK, View: view}
}

// Degraded wraps locally priced data together with why the server was not used
func Degraded(view models.CartView, reason error) Outcome {
	view.Degraded = true
	if view.Notice == "" {
		view.Notice = NoticeDegraded
	}
	return Outcome{Kind: OutcomeDegraded, View: view, Reason: reason}
}

// Failed reports that nothing can be rendered
func Failed(reason error) Outcome {
	return Outcome{Kind: OutcomeFailed, Reason: reason}
}
