package site

// MergePatch applies patch to target following RFC 7386: a nil value
// deletes the key, an object merges recursively into an object and any
// other value replaces. target is not modified; the result shares no maps
// with either argument.
func MergePatch(target, patch map[string]interface{}) map[string]interface{} {
	out := cloneMap(target)
	for key, value := range patch {
		if value == nil {
			delete(out, key)
			continue
		}

		patchObj, ok := asObject(value)
		if !ok {
			out[key] = cloneValue(value)
			continue
		}

		current, _ := asObject(out[key])
		out[key] = MergePatch(current, patchObj)
	}
	return out
}

func asObject(v interface{}) (map[string]interface{}, bool) {
	switch t := v.(type) {
	case map[string]interface{}:
		return t, true
	case map[interface{}]interface{}:
		m := make(map[string]interface{}, len(t))
		for k, val := range t {
			if ks, ok := k.(string); ok {
				m[ks] = val
			}
		}
		return m, true
	}
	return nil, false
}

func cloneMap(m map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(m))
	for k, v := range m {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v interface{}) interface{} {
	if obj, ok := asObject(v); ok {
		return cloneMap(obj)
	}
	if list, ok := v.([]interface{}); ok {
		out := make([]interface{}, len(list))
		for i, item := range list {
			out[i] = cloneValue(item)
		}
		return out
	}
	return v
}

// prune drops nil members left inside replaced values, since a merge
// result never contains explicit nulls.
func prune(m map[string]interface{}) map[string]interface{} {
	for k, v := range m {
		if v == nil {
			delete(m, k)
			continue
		}
		if obj, ok := v.(map[string]interface{}); ok {
			m[k] = prune(obj)
		}
	}
	return m
}
