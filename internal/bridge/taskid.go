package bridge

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// TaskID identifies one in-flight request to the runtime.
type TaskID uint64

func (id TaskID) String() string {
	return strconv.FormatUint(uint64(id), 10)
}

// ParseTaskID accepts the forms a runtime may echo an id back in: unsigned or
// signed integers, integral floats (plain JSON decoding), json.Number and
// decimal text.
func ParseTaskID(v any) (TaskID, error) {
	switch id := v.(type) {
	case TaskID:
		return id, nil
	case uint64:
		return TaskID(id), nil
	case uint:
		return TaskID(id), nil
	case int:
		if id < 0 {
			return 0, fmt.Errorf("%w: %d", ErrInvalidTaskID, id)
		}
		return TaskID(id), nil
	case int64:
		if id < 0 {
			return 0, fmt.Errorf("%w: %d", ErrInvalidTaskID, id)
		}
		return TaskID(id), nil
	case float64:
		if id < 0 || id != math.Trunc(id) || id >= math.MaxUint64 {
			return 0, fmt.Errorf("%w: %v", ErrInvalidTaskID, id)
		}
		return TaskID(id), nil
	case json.Number:
		return parseTaskIDText(id.String())
	case string:
		return parseTaskIDText(id)
	default:
		return 0, fmt.Errorf("%w: unsupported type %T", ErrInvalidTaskID, v)
	}
}

func parseTaskIDText(s string) (TaskID, error) {
	n, err := strconv.ParseUint(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidTaskID, s)
	}
	return TaskID(n), nil
}
