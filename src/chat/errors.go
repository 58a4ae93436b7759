package chat

import "errors"

var (
	// ErrEmptyMessage indicates blank input was submitted
	ErrEmptyMessage = errors.New("message is empty")

	// ErrExchangeInFlight indicates a submission while another exchange is open
	ErrExchangeInFlight = errors.New("an exchange is already in progress")

	// ErrSuggestionsHidden indicates a suggestion was picked while none are offered
	ErrSuggestionsHidden = errors.New("suggestions are not available")

	errStaleExchange = errors.New("exchange outlived its conversation")
)

const (
	// transportFailureText is shown when the exchange never produced a terminal event
	transportFailureText = "Sorry, I encountered an error. Please try again."

	streamErrorPrefix = "Sorry, I encountered an error: "
)
