package sampling

import (
	"fmt"

	model "github.com/okian/quiniela/internal/domain/model"
)

// Encoder maps results to ordinal class indices and back. Classes are ordered by
// result code, so AwayWin=0, Draw=1, HomeWin=2.
type Encoder struct {
	classes []model.Result
	index   map[model.Result]int
}

// NewEncoder creates the fixed three-class encoder.
func NewEncoder() Encoder {
	e := Encoder{
		classes: model.Results[:],
		index:   make(map[model.Result]int, len(model.Results)),
	}
	for i, r := range e.classes {
		e.index[r] = i
	}
	return e
}

// Classes returns the number of classes.
func (e Encoder) Classes() int { return len(e.classes) }

// Encode returns the class index of r.
func (e Encoder) Encode(r model.Result) (int, error) {
	i, ok := e.index[r]
	if !ok {
		return 0, fmt.Errorf("%w: result %d", ErrUnknownClass, r)
	}
	return i, nil
}

// Decode returns the result for class index i.
func (e Encoder) Decode(i int) (model.Result, error) {
	if i < 0 || i >= len(e.classes) {
		return model.ResultUnknown, fmt.Errorf("%w: index %d", ErrUnknownClass, i)
	}
	return e.classes[i], nil
}

// Names returns outcome names in class index order.
func (e Encoder) Names() []string {
	names := make([]string, len(e.classes))
	for i, r := range e.classes {
		names[i] = r.String()
	}
	return names
}
