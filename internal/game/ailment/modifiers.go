package ailment

import "github.com/cory-johannsen/turnbattle/internal/game/attribute"

// Buffs returns the summed temporary attribute modifiers of all active ailments.
// Unknown attribute names are ignored; Def validation at load time reports them.
func Buffs(s *ActiveSet) attribute.Set {
	var total attribute.Set
	for _, a := range s.active {
		for name, v := range a.Def.Buffs {
			attr, err := attribute.Parse(name)
			if err != nil {
				continue
			}
			total = total.With(attr, total.Get(attr)+v)
		}
	}
	return total
}
