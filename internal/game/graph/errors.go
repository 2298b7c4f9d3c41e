package graph

import "fmt"

// ParseError reports a malformed graph definition. It is fatal at startup.
type ParseError struct {
	Source string
	Record int // 1-based position of the offending record, 0 if unknown
	ID     int
	Msg    string
	Err    error
}

func (e *ParseError) Error() string {
	s := "graph"
	if e.Source != "" {
		s += " " + e.Source
	}
	if e.Record > 0 {
		s += fmt.Sprintf(": record %d (id %d)", e.Record, e.ID)
	}
	s += ": " + e.Msg
	if e.Err != nil {
		s += ": " + e.Err.Error()
	}
	return s
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
