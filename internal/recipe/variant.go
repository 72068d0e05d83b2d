package recipe

import (
	"encoding/json"
)

// OneOrMany holds a schema field that may be given as a single value or a list.
// The zero value is an empty list.
type OneOrMany[T any] struct {
	one   T
	many  []T
	isOne bool
}

// One wraps a single value.
func One[T any](v T) OneOrMany[T] {
	return OneOrMany[T]{one: v, isOne: true}
}

// Many wraps a list of values.
func Many[T any](vs ...T) OneOrMany[T] {
	return OneOrMany[T]{many: vs}
}

// IsOne reports whether the source value was a single scalar/object.
func (o OneOrMany[T]) IsOne() bool {
	return o.isOne
}

// Slice returns the values as a fresh, non-nil slice: [v] for One, the list for Many.
func (o OneOrMany[T]) Slice() []T {
	if o.isOne {
		return []T{o.one}
	}
	return append([]T{}, o.many...)
}

func (o OneOrMany[T]) MarshalJSON() ([]byte, error) {
	if o.isOne {
		return json.Marshal(o.one)
	}
	return json.Marshal(o.Slice())
}

// UnmarshalJSON accepts a JSON array as Many and any other value as One.
// Errors are *DecodeError with paths relative to the value itself.
func (o *OneOrMany[T]) UnmarshalJSON(data []byte) error {
	v, err := decodeOneOrMany(data, nil, decodeJSON[T])
	if err != nil {
		return err
	}
	*o = v
	return nil
}

func decodeOneOrMany[T any](raw json.RawMessage, p fieldPath, elem func(json.RawMessage, fieldPath) (T, error)) (OneOrMany[T], error) {
	if shapeOf(raw) != shapeArray {
		v, err := elem(raw, p)
		if err != nil {
			return OneOrMany[T]{}, err
		}
		return One(v), nil
	}

	items, err := decodeArray(raw, p)
	if err != nil {
		return OneOrMany[T]{}, err
	}
	out := make([]T, 0, len(items))
	for i, item := range items {
		v, err := elem(item, p.index(i))
		if err != nil {
			return OneOrMany[T]{}, err
		}
		out = append(out, v)
	}
	return Many(out...), nil
}

// HowToStep is a single instruction step object; only its text is kept.
type HowToStep struct {
	Text string `json:"text"`
}

type instructionShape int

const (
	instructionList instructionShape = iota
	instructionSingle
	instructionSteps
)

// Instructions is the union of a single string, a list of strings and a list of
// HowToStep objects. The zero value is an empty list.
type Instructions struct {
	shape instructionShape
	one   string
	many  []string
	steps []HowToStep
}

// SingleInstruction wraps a single instruction string.
func SingleInstruction(text string) Instructions {
	return Instructions{shape: instructionSingle, one: text}
}

// InstructionList wraps a list of instruction strings.
func InstructionList(texts ...string) Instructions {
	return Instructions{shape: instructionList, many: texts}
}

// StepList wraps a list of step objects.
func StepList(steps ...HowToStep) Instructions {
	return Instructions{shape: instructionSteps, steps: steps}
}

// Slice flattens the instructions into step texts.
func (in Instructions) Slice() []string {
	switch in.shape {
	case instructionSingle:
		return []string{in.one}
	case instructionSteps:
		out := make([]string, 0, len(in.steps))
		for _, step := range in.steps {
			out = append(out, step.Text)
		}
		return out
	default:
		return append([]string{}, in.many...)
	}
}

func (in Instructions) MarshalJSON() ([]byte, error) {
	switch in.shape {
	case instructionSingle:
		return json.Marshal(in.one)
	case instructionSteps:
		return json.Marshal(append([]HowToStep{}, in.steps...))
	default:
		return json.Marshal(in.Slice())
	}
}

func (in *Instructions) UnmarshalJSON(data []byte) error {
	v, err := decodeInstructions(data, nil)
	if err != nil {
		return err
	}
	*in = v
	return nil
}

// decodeInstructions tries the shapes in a fixed order: a string, then for arrays
// the shape of the first element decides between strings and step objects.
// An empty array is the default empty list.
func decodeInstructions(raw json.RawMessage, p fieldPath) (Instructions, error) {
	switch shapeOf(raw) {
	case shapeString:
		s, err := decodeString(raw, p)
		if err != nil {
			return Instructions{}, err
		}
		return SingleInstruction(s), nil
	case shapeArray:
	default:
		return Instructions{}, typeError(p, "string or array", raw)
	}

	items, err := decodeArray(raw, p)
	if err != nil {
		return Instructions{}, err
	}
	if len(items) == 0 {
		return Instructions{}, nil
	}

	switch shapeOf(items[0]) {
	case shapeString:
		texts := make([]string, 0, len(items))
		for i, item := range items {
			s, err := decodeString(item, p.index(i))
			if err != nil {
				return Instructions{}, err
			}
			texts = append(texts, s)
		}
		return InstructionList(texts...), nil
	case shapeObject:
		steps := make([]HowToStep, 0, len(items))
		for i, item := range items {
			step, err := decodeStep(item, p.index(i))
			if err != nil {
				return Instructions{}, err
			}
			steps = append(steps, step)
		}
		return StepList(steps...), nil
	default:
		return Instructions{}, typeError(p.index(0), "string or step object", items[0])
	}
}

func decodeStep(raw json.RawMessage, p fieldPath) (HowToStep, error) {
	fields, err := decodeObject(raw, p)
	if err != nil {
		return HowToStep{}, err
	}
	textRaw, ok := present(fields, "text")
	if !ok {
		return HowToStep{}, missingError(p.key("text"))
	}
	text, err := decodeString(textRaw, p.key("text"))
	if err != nil {
		return HowToStep{}, err
	}
	return HowToStep{Text: text}, nil
}
