package endpoint

import "strings"

// ServiceURL derives a sibling service base from base by replacing the last
// occurrence of the from path segment with to. base is returned unchanged
// when it does not contain from.
//
//	ServiceURL("http://10.0.2.2:8000/account", "/account", "/crop-disease")
//	// "http://10.0.2.2:8000/crop-disease"
func ServiceURL(base, from, to string) string {
	i := strings.LastIndex(base, from)
	if from == "" || i < 0 {
		return base
	}
	return base[:i] + to + base[i+len(from):]
}
