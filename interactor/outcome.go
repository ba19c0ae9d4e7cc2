package interactor

import "fmt"

var outcomeKeyNames map[Outcome]string
var namedOutcomeKeys map[string]Outcome

func init() {
	outcomeKeyNames = map[Outcome]string{
		OutcomePending:   "pending",
		OutcomeSucceeded: "succeeded",
		OutcomeFailed:    "failed",
	}

	namedOutcomeKeys = make(map[string]Outcome, len(outcomeKeyNames))
	for k, v := range outcomeKeyNames {
		namedOutcomeKeys[v] = k
	}
}

// OutcomeFromString creates an outcome from a string
func OutcomeFromString(name string) (Outcome, error) {
	if v, ok := namedOutcomeKeys[name]; ok {
		return v, nil
	}
	return OutcomePending, fmt.Errorf("invalid outcome %q", name)
}

// Outcome of an invocation as recorded on the context
type Outcome uint8

const (
	// OutcomePending indicates nothing completed yet
	OutcomePending Outcome = iota
	// OutcomeSucceeded indicates the calls so far completed successfully
	OutcomeSucceeded
	// OutcomeFailed indicates a step failed explicitly, this is final
	OutcomeFailed
)

func (o Outcome) String() string {
	return outcomeKeyNames[o]
}

// MarshalText renders this outcome to text
func (o Outcome) MarshalText() (text []byte, err error) {
	return []byte(outcomeKeyNames[o]), nil
}

// UnmarshalText parses this outcome from text
func (o *Outcome) UnmarshalText(text []byte) error {
	v, err := OutcomeFromString(string(text))
	if err != nil {
		return err
	}
	*o = v
	return nil
}
