package broker

// FilterContext is the immutable per-subscriber snapshot captured at
// registration time. Filters see it on every delivery.
type FilterContext struct {
	ChatID string
	UserID string
}

// Filter decides per subscriber whether an event is delivered. Returning
// false drops the event for that subscriber only; it never affects others.
type Filter func(e *Event, fc FilterContext) bool

// ChatFilter is the default filter: deliver events of the subscribed chat.
// Membership is not re-checked here; publish-time already enforced write
// membership. Callers that need delivery-time revalidation pass their own
// Filter to SubscribeFunc.
func ChatFilter(e *Event, fc FilterContext) bool {
	return e.ChatID == fc.ChatID
}
