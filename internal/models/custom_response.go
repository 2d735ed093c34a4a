package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"wellnesstracker/internal/validation"
)

// NoResponses is the cell text stored when a check-in has no custom questions.
const NoResponses = "None"

// Binary answers are stored and shown as these words.
const (
	AnswerYes = "Yes"
	AnswerNo  = "No"
)

// ResponseKind selects which variant of a CustomResponse is set
type ResponseKind string

const (
	ResponseScale  ResponseKind = "scale"
	ResponseText   ResponseKind = "text"
	ResponseBinary ResponseKind = "binary"
)

// ResponseKinds lists the kinds in the order offered on the form.
var ResponseKinds = []ResponseKind{ResponseScale, ResponseText, ResponseBinary}

// Label returns the input type name shown on the form.
func (k ResponseKind) Label() string {
	switch k {
	case ResponseScale:
		return "Slider (1-10)"
	case ResponseText:
		return "Text Response"
	case ResponseBinary:
		return "Yes/No"
	}
	return string(k)
}

// ParseResponseKind maps a form or file value to a kind.
func ParseResponseKind(s string) (ResponseKind, bool) {
	for _, k := range ResponseKinds {
		if string(k) == s {
			return k, true
		}
	}
	return "", false
}

// CustomResponse is the answer to one custom question. Exactly one of Scale,
// Text or Binary is meaningful, selected by Kind.
type CustomResponse struct {
	Kind   ResponseKind
	Scale  int
	Text   string
	Binary bool
}

// ScaleResponse is a slider answer.
func ScaleResponse(v int) CustomResponse { return CustomResponse{Kind: ResponseScale, Scale: v} }
// TextResponse is a free-text answer.
func TextResponse(s string) CustomResponse { return CustomResponse{Kind: ResponseText, Text: s} }
// BinaryResponse is a Yes/No answer.
func BinaryResponse(b bool) CustomResponse { return CustomResponse{Kind: ResponseBinary, Binary: b} }

func (r CustomResponse) String() string {
	switch r.Kind {
	case ResponseScale:
		return strconv.Itoa(r.Scale)
	case ResponseText:
		return r.Text
	case ResponseBinary:
		if r.Binary {
			return AnswerYes
		}
		return AnswerNo
	}
	return ""
}

// Validate checks the kind and, for scale answers, the range.
func (r CustomResponse) Validate() error {
	switch r.Kind {
	case ResponseScale:
		return validation.ValidateRange("scale", r.Scale, MinScore, MaxScore)
	case ResponseText, ResponseBinary:
		return nil
	}
	return validation.ValidationError{Field: "kind", Message: fmt.Sprintf("unknown response kind %q", r.Kind)}
}

// CustomAnswer pairs a question label with its response
type CustomAnswer struct {
	Label    string
	Response CustomResponse
}

// CustomResponses is an ordered label → response mapping. Setting a label
// that is already present replaces its response and keeps its position.
type CustomResponses struct {
	Answers []CustomAnswer
	// Legacy holds a cell from an older file whose format is not parsed; it is
	// written back unchanged.
	Legacy string
}

// Set records the response for label.
func (c *CustomResponses) Set(label string, r CustomResponse) {
	c.Legacy = ""
	for i := range c.Answers {
		if c.Answers[i].Label == label {
			c.Answers[i].Response = r
			return
		}
	}
	c.Answers = append(c.Answers, CustomAnswer{Label: label, Response: r})
}

// Get returns the response recorded for label.
func (c CustomResponses) Get(label string) (CustomResponse, bool) {
	for _, a := range c.Answers {
		if a.Label == label {
			return a.Response, true
		}
	}
	return CustomResponse{}, false
}

// Len returns the number of answers.
func (c CustomResponses) Len() int { return len(c.Answers) }

// IsEmpty reports whether there is nothing to store beyond NoResponses.
func (c CustomResponses) IsEmpty() bool {
	return len(c.Answers) == 0 && c.Legacy == ""
}

// Clone returns a copy that shares no answers with c.
func (c CustomResponses) Clone() CustomResponses {
	if c.Answers != nil {
		c.Answers = append([]CustomAnswer(nil), c.Answers...)
	}
	return c
}

// Validate checks every answer.
func (c CustomResponses) Validate() error {
	for _, a := range c.Answers {
		if err := a.Response.Validate(); err != nil {
			return fmt.Errorf("custom question %q: %w", a.Label, err)
		}
	}
	return nil
}

// Display renders the answers for a table cell.
func (c CustomResponses) Display() string {
	if len(c.Answers) == 0 {
		return c.Legacy
	}
	parts := make([]string, 0, len(c.Answers))
	for _, a := range c.Answers {
		parts = append(parts, a.Label+": "+a.Response.String())
	}
	return strings.Join(parts, "; ")
}

type answerJSON struct {
	Label string          `json:"label"`
	Kind  ResponseKind    `json:"kind"`
	Value json.RawMessage `json:"value"`
}

// MarshalText encodes the responses for the backing file: NoResponses when
// empty, the legacy text when that is all there is, otherwise a JSON array.
func (c CustomResponses) MarshalText() ([]byte, error) {
	if len(c.Answers) == 0 {
		if c.Legacy != "" {
			return []byte(c.Legacy), nil
		}
		return []byte(NoResponses), nil
	}

	wire := make([]answerJSON, 0, len(c.Answers))
	for _, a := range c.Answers {
		var value any
		switch a.Response.Kind {
		case ResponseScale:
			value = a.Response.Scale
		case ResponseText:
			value = a.Response.Text
		case ResponseBinary:
			value = a.Response.String()
		default:
			return nil, fmt.Errorf("custom question %q: unknown response kind %q", a.Label, a.Response.Kind)
		}
		raw, err := json.Marshal(value)
		if err != nil {
			return nil, err
		}
		wire = append(wire, answerJSON{Label: a.Label, Kind: a.Response.Kind, Value: raw})
	}
	return json.Marshal(wire)
}

// UnmarshalText is the inverse of MarshalText. Text that is neither
// NoResponses nor a JSON array is kept as Legacy.
func (c *CustomResponses) UnmarshalText(text []byte) error {
	*c = CustomResponses{}

	trimmed := bytes.TrimSpace(text)
	if len(trimmed) == 0 || string(trimmed) == NoResponses {
		return nil
	}
	if trimmed[0] != '[' {
		c.Legacy = string(text)
		return nil
	}

	var wire []answerJSON
	if err := json.Unmarshal(trimmed, &wire); err != nil {
		return fmt.Errorf("decode custom responses: %w", err)
	}
	for _, w := range wire {
		r, err := decodeResponse(w)
		if err != nil {
			return fmt.Errorf("custom question %q: %w", w.Label, err)
		}
		c.Set(w.Label, r)
	}
	return nil
}

func decodeResponse(w answerJSON) (CustomResponse, error) {
	switch w.Kind {
	case ResponseScale:
		var v int
		if err := json.Unmarshal(w.Value, &v); err != nil {
			return CustomResponse{}, err
		}
		return ScaleResponse(v), nil
	case ResponseText:
		var s string
		if err := json.Unmarshal(w.Value, &s); err != nil {
			return CustomResponse{}, err
		}
		return TextResponse(s), nil
	case ResponseBinary:
		var s string
		if err := json.Unmarshal(w.Value, &s); err == nil {
			switch s {
			case AnswerYes:
				return BinaryResponse(true), nil
			case AnswerNo:
				return BinaryResponse(false), nil
			}
			return CustomResponse{}, fmt.Errorf("binary answer %q is not %s or %s", s, AnswerYes, AnswerNo)
		}
		var b bool
		if err := json.Unmarshal(w.Value, &b); err != nil {
			return CustomResponse{}, err
		}
		return BinaryResponse(b), nil
	}
	return CustomResponse{}, fmt.Errorf("unknown response kind %q", w.Kind)
}
