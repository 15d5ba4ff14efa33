package audit

import "reflect"

// Changed projects old and new onto the keys whose values actually
// differ. Both return values are nil when nothing changed, which the
// recorder treats as "write no entry".
func Changed(old, new map[string]any) (map[string]any, map[string]any) {
	var oldOut, newOut map[string]any

	for key, newVal := range new {
		oldVal, existed := old[key]
		if existed && reflect.DeepEqual(oldVal, newVal) {
			continue
		}
		if oldOut == nil {
			oldOut = make(map[string]any)
			newOut = make(map[string]any)
		}
		if existed {
			oldOut[key] = oldVal
		}
		newOut[key] = newVal
	}

	for key, oldVal := range old {
		if _, stillThere := new[key]; stillThere {
			continue
		}
		if oldOut == nil {
			oldOut = make(map[string]any)
			newOut = make(map[string]any)
		}
		oldOut[key] = oldVal
	}

	return oldOut, newOut
}
