// Package usermap translates GitLab usernames into GitHub logins.
package usermap

// Entry is one row of the configured mapping table.
type Entry struct {
	GitLab string `mapstructure:"gitlab"`
	GitHub string `mapstructure:"github"`
}

// Mapper resolves source usernames through a static table. Unmapped names
// pass through unchanged.
type Mapper struct {
	mappings map[string]string
}

// New builds a Mapper from a plain map.
func New(mappings map[string]string) *Mapper {
	m := make(map[string]string, len(mappings))
	for k, v := range mappings {
		m[k] = v
	}
	return &Mapper{mappings: m}
}

// FromEntries builds a Mapper from configuration rows. Later rows win.
func FromEntries(entries []Entry) *Mapper {
	m := make(map[string]string, len(entries))
	for _, e := range entries {
		m[e.GitLab] = e.GitHub
	}
	return &Mapper{mappings: m}
}

// Resolve returns the GitHub login for username, or username itself when no
// mapping exists.
func (m *Mapper) Resolve(username string) string {
	if m == nil {
		return username
	}
	if mapped, ok := m.mappings[username]; ok {
		return mapped
	}
	return username
}

// ResolveAll resolves every name, keeping order.
func (m *Mapper) ResolveAll(usernames []string) []string {
	ret := make([]string, 0, len(usernames))
	for _, u := range usernames {
		ret = append(ret, m.Resolve(u))
	}
	return ret
}

// Len returns the number of configured mappings.
func (m *Mapper) Len() int {
	if m == nil {
		return 0
	}
	return len(m.mappings)
}
