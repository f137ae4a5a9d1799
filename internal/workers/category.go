package workers

import "sort"

// categoryAliases maps URL tokens to the category names stored by the backend.
// "Home Tution" is spelled the way existing records spell it.
var categoryAliases = map[string]string{
	"oldcare":         "Old Care",
	"housecleaning":   "House Cleaning",
	"cook":            "Cook",
	"babysitting":     "Baby Sitting",
	"hometution":      "Home Tution",
	"physiotherapist": "Physiotherapist",
}

// Alias pairs a URL token with its canonical category name.
type Alias struct {
	Token    string `json:"token"`
	Category string `json:"category"`
}

// ResolveCategory translates a URL token into the canonical category name.
// Lookup is exact and case-sensitive; unknown tokens are returned unchanged.
func ResolveCategory(token string) string {
	if name, ok := categoryAliases[token]; ok {
		return name
	}
	return token
}

// Aliases lists the alias table sorted by token.
func Aliases() []Alias {
	out := make([]Alias, 0, len(categoryAliases))
	for token, name := range categoryAliases {
		out = append(out, Alias{Token: token, Category: name})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Token < out[j].Token })
	return out
}

// FilterByCategory keeps workers whose Category equals name exactly, preserving
// input order. The result is never nil.
func FilterByCategory(list []Worker, name string) []Worker {
	out := make([]Worker, 0, len(list))
	for _, w := range list {
		if w.Category == name {
			out = append(out, w)
		}
	}
	return out
}
