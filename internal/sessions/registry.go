// Package sessions tracks the known measurement sessions and which one the
// operator is watching.
package sessions

import (
	"context"
)

// Lister fetches the session identifiers known to the backend.
type Lister interface {
	FetchSessions(ctx context.Context) ([]string, error)
}

// Registry holds the ordered session list and the selected identifier.
// The empty string means nothing is selected.
//
// Registry is not safe for concurrent use; the dashboard controller owns it.
type Registry struct {
	lister   Lister
	ids      []string
	selected string
	lastErr  error
}

// NewRegistry creates an empty registry. lister may be nil when the list is
// only ever supplied through Apply.
func NewRegistry(lister Lister) *Registry {
	return &Registry{lister: lister, ids: []string{}}
}

// Refresh fetches the list and applies it. On error the previous list and
// selection are kept and the error is returned.
func (r *Registry) Refresh(ctx context.Context) (changed bool, err error) {
	if r.lister == nil {
		return false, nil
	}
	ids, err := r.lister.FetchSessions(ctx)
	if err != nil {
		r.lastErr = err
		return false, err
	}
	r.lastErr = nil
	return r.Apply(ids), nil
}

// Apply replaces the list and re-evaluates the selection: the current id is
// kept if still listed, otherwise the first id is selected, otherwise none.
// It reports whether the selection changed.
func (r *Registry) Apply(ids []string) bool {
	r.ids = dedupe(ids)

	prev := r.selected
	switch {
	case r.selected != "" && r.contains(r.selected):
	case len(r.ids) > 0:
		r.selected = r.ids[0]
	default:
		r.selected = ""
	}
	return r.selected != prev
}

// Select makes id the selection if it is listed. It reports whether the
// selection changed.
func (r *Registry) Select(id string) bool {
	if id == r.selected || !r.contains(id) {
		return false
	}
	r.selected = id
	return true
}

// Next moves the selection forward, wrapping around.
func (r *Registry) Next() bool {
	return r.step(1)
}

// Prev moves the selection backward, wrapping around.
func (r *Registry) Prev() bool {
	return r.step(-1)
}

func (r *Registry) step(delta int) bool {
	if len(r.ids) < 2 {
		return false
	}
	i := r.index(r.selected)
	if i < 0 {
		i = 0
	} else {
		i = (i + delta + len(r.ids)) % len(r.ids)
	}
	return r.Select(r.ids[i])
}

// Selected returns the selected identifier or "".
func (r *Registry) Selected() string {
	return r.selected
}

// IDs returns a copy of the list in server order.
func (r *Registry) IDs() []string {
	return append([]string{}, r.ids...)
}

// LastError returns the error of the most recent Refresh, if it failed.
func (r *Registry) LastError() error {
	return r.lastErr
}

func (r *Registry) contains(id string) bool {
	return r.index(id) >= 0
}

func (r *Registry) index(id string) int {
	for i, v := range r.ids {
		if v == id {
			return i
		}
	}
	return -1
}

func dedupe(ids []string) []string {
	out := make([]string, 0, len(ids))
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}
