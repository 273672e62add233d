package reconcile

import (
	"github.com/kapu/hololive-member-sync/internal/domain"
)

// Registry is the in-memory member collection a reconciliation run mutates.
// Records keep their input order; the first record carrying a canonical name
// owns it. Records that cannot be indexed stay in the collection (they are
// serialized back untouched) but are excluded from every pass.
type Registry struct {
	members   []*domain.Member
	byName    map[string]*domain.Member
	malformed map[*domain.Member]string
	notes     []Note
}

func NewRegistry(members []*domain.Member) *Registry {
	r := &Registry{
		members:   members,
		byName:    make(map[string]*domain.Member, len(members)),
		malformed: make(map[*domain.Member]string),
	}

	for idx, member := range members {
		switch {
		case member == nil:
			r.notes = append(r.notes, Note{Kind: NoteMalformedRecord, Subject: indexSubject(idx), Detail: "null member record"})
		case member.Name == "":
			r.malformed[member] = "missing canonical name"
			r.notes = append(r.notes, Note{Kind: NoteMalformedRecord, Subject: indexSubject(idx), Detail: "missing canonical name"})
		case r.byName[member.Name] != nil:
			r.malformed[member] = "duplicate canonical name"
			r.notes = append(r.notes, Note{Kind: NoteMalformedRecord, Subject: member.Name, Detail: "duplicate canonical name"})
		default:
			r.byName[member.Name] = member
		}
	}

	return r
}

// Members returns a copy of the record slice, malformed records included.
// Passes iterate over such a copy, never over the registry's own slice.
func (r *Registry) Members() []*domain.Member {
	return append([]*domain.Member(nil), r.members...)
}

// Usable returns the records passes operate on, in registry order.
func (r *Registry) Usable() []*domain.Member {
	usable := make([]*domain.Member, 0, len(r.byName))
	for _, member := range r.members {
		if r.IsUsable(member) {
			usable = append(usable, member)
		}
	}
	return usable
}

func (r *Registry) IsUsable(member *domain.Member) bool {
	if member == nil {
		return false
	}
	_, bad := r.malformed[member]
	return !bad
}

func (r *Registry) FindByName(name string) *domain.Member {
	return r.byName[name]
}

func (r *Registry) Len() int {
	return len(r.members)
}

// Notes lists the records that were rejected while indexing.
func (r *Registry) Notes() []Note {
	return append([]Note(nil), r.notes...)
}

// SetNameJa overwrites the native-script name. It reports whether the value changed.
func (r *Registry) SetNameJa(member *domain.Member, nameJa string) bool {
	if member.NameJa == nameJa {
		return false
	}
	member.NameJa = nameJa
	return true
}

// SetNameKo writes the Korean name. Empty values are refused so a resolved
// name is never cleared.
func (r *Registry) SetNameKo(member *domain.Member, nameKo string) bool {
	if nameKo == "" || member.NameKo == nameKo {
		return false
	}
	member.NameKo = nameKo
	return true
}

// AddAlias merges candidate into the member's alias list for lang, using the
// member's primary name for lang as the canonical value.
func (r *Registry) AddAlias(member *domain.Member, lang, candidate string) bool {
	merged, added := MergeAlias(member.AliasList(lang), candidate, member.PrimaryName(lang))
	if added {
		member.SetAliasList(lang, merged)
	}
	return added
}
