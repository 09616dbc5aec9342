package inventory

import "strings"

// GroupPrefix starts every tag-derived group name
const GroupPrefix = "tag_"

// Tag is one key/value pair attached to an instance
type Tag struct {
	Key   string
	Value string
}

// TagMapping collapses duplicate keys. The last value wins and each key
// keeps the position of its first occurrence, so output is deterministic
// for a given input order
func TagMapping(tags []Tag) []Tag {
	index := make(map[string]int, len(tags))
	out := make([]Tag, 0, len(tags))
	for _, t := range tags {
		if i, ok := index[t.Key]; ok {
			out[i].Value = t.Value
			continue
		}
		index[t.Key] = len(out)
		out = append(out, t)
	}
	return out
}

// Sanitize replaces each of ": _ - . / space ( )" with an underscore
func Sanitize(s string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case ':', '_', '-', '.', '/', ' ', '(', ')':
			return '_'
		}
		return r
	}, s)
}

// GroupName derives the group of one tag pair. Distinct pairs may collide
// after sanitizing; their hosts then share a group
func GroupName(key, value string) string {
	return GroupPrefix + Sanitize(key) + "_" + Sanitize(value)
}

// GroupByTags adds dnsName to the group of every tag it carries and returns
// the group names in tag order
func GroupByTags(inv *Inventory, dnsName string, tags []Tag) []string {
	mapped := TagMapping(tags)
	groups := make([]string, 0, len(mapped))
	for _, t := range mapped {
		name := GroupName(t.Key, t.Value)
		inv.AddToGroup(name, dnsName)
		groups = append(groups, name)
	}
	return groups
}
