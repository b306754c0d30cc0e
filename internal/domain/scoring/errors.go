package scoring

import "errors"

// ErrMalformedRubric indicates the rubric output could not be parsed as a
// score/feedback JSON object.
var ErrMalformedRubric = errors.New("malformed rubric output")
