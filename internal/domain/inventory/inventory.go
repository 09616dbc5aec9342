package inventory

import (
	"encoding/json"
	"sort"
)

// Reserved keys of the inventory document
const (
	MetaKey     = "_meta"
	HostVarsKey = "hostvars"
)

// Inventory is the dynamic inventory document: per-host variables under
// _meta.hostvars plus one host list per group
type Inventory struct {
	hostVars map[string]*HostMetadata
	groups   map[string][]string
}

// New creates an empty inventory
func New() *Inventory {
	return &Inventory{
		hostVars: make(map[string]*HostMetadata),
		groups:   make(map[string][]string),
	}
}

// RecordHost inserts or overwrites the variables of dnsName
func (inv *Inventory) RecordHost(dnsName string, metadata *HostMetadata) {
	inv.hostVars[dnsName] = metadata
}

// AddToGroup appends dnsName to group, creating the group on first use.
// Appending the same host twice lists it twice
func (inv *Inventory) AddToGroup(group, dnsName string) {
	inv.groups[group] = append(inv.groups[group], dnsName)
}

// Host returns the variables recorded for dnsName
func (inv *Inventory) Host(dnsName string) (*HostMetadata, bool) {
	m, ok := inv.hostVars[dnsName]
	return m, ok
}

// Group returns the hosts of group in append order
func (inv *Inventory) Group(name string) []string {
	return inv.groups[name]
}

// Hosts returns the recorded host names, sorted
func (inv *Inventory) Hosts() []string {
	return sortedKeys(inv.hostVars)
}

// Groups returns the group names, sorted
func (inv *Inventory) Groups() []string {
	return sortedKeys(inv.groups)
}

// MarshalJSON writes the document with keys sorted at every level
func (inv *Inventory) MarshalJSON() ([]byte, error) {
	hostVars := make(map[string]map[string]interface{}, len(inv.hostVars))
	for name, m := range inv.hostVars {
		if m == nil {
			m = NewHostMetadata()
		}
		hostVars[name] = m.Map()
	}

	doc := make(map[string]interface{}, len(inv.groups)+1)
	for name, hosts := range inv.groups {
		doc[name] = hosts
	}
	doc[MetaKey] = map[string]interface{}{HostVarsKey: hostVars}

	return json.Marshal(doc)
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
