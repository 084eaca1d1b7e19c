package memory

import (
	"fmt"
	"strconv"
)

// FlattenMetadata converts caller-supplied metadata to the flat string map
// the vector store requires. Scalars are rendered directly; one level of
// nesting is flattened as key_subkey; anything else is stringified.
func FlattenMetadata(meta map[string]any) map[string]string {
	if len(meta) == 0 {
		return nil
	}

	out := make(map[string]string, len(meta))
	for key, value := range meta {
		switch v := value.(type) {
		case map[string]any:
			for subkey, subvalue := range v {
				out[key+"_"+subkey] = scalarString(subvalue)
			}
		default:
			out[key] = scalarString(value)
		}
	}
	return out
}

func scalarString(v any) string {
	switch s := v.(type) {
	case string:
		return s
	case bool:
		return strconv.FormatBool(s)
	case int:
		return strconv.Itoa(s)
	case int64:
		return strconv.FormatInt(s, 10)
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(s), 'f', -1, 32)
	default:
		return fmt.Sprintf("%v", v)
	}
}
