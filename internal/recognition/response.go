package recognition

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

var ErrMalformedResponse = errors.New("malformed recognition response")

// Response is the decoded body of a successful call. Some service versions
// answer with matched/person_name instead of recognized/name.
type Response struct {
	Recognized bool
	PersonName string
	Confidence float64
}

type wireResponse struct {
	Recognized *bool    `json:"recognized"`
	Matched    *bool    `json:"matched"`
	Name       *string  `json:"name"`
	PersonName *string  `json:"person_name"`
	Confidence *float64 `json:"confidence"`
}

func parseResponse(body []byte) (*Response, error) {
	var w wireResponse
	if err := json.Unmarshal(body, &w); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}

	flag := w.Recognized
	if flag == nil {
		flag = w.Matched
	}
	if flag == nil {
		return nil, fmt.Errorf("%w: missing recognized flag", ErrMalformedResponse)
	}

	name := ""
	if w.Name != nil {
		name = *w.Name
	} else if w.PersonName != nil {
		name = *w.PersonName
	}
	name = strings.TrimSpace(name)

	if w.Confidence != nil && (*w.Confidence < 0 || *w.Confidence > 1) {
		return nil, fmt.Errorf("%w: confidence %v outside [0,1]", ErrMalformedResponse, *w.Confidence)
	}

	if *flag {
		if name == "" {
			return nil, fmt.Errorf("%w: recognized without a name", ErrMalformedResponse)
		}
		if w.Confidence == nil {
			return nil, fmt.Errorf("%w: recognized without confidence", ErrMalformedResponse)
		}
	}

	res := &Response{Recognized: *flag, PersonName: name}
	if w.Confidence != nil {
		res.Confidence = *w.Confidence
	}
	return res, nil
}
