package roster

import (
	"errors"
	"fmt"
)

// RoleNames are the bootstrap names used when a logical role has no configured id.
type RoleNames struct {
	Player  string
	Coach   string
	Captain string
}

// ResolveRoleIDs fills empty ids in ids by exact name lookup in roles. It runs
// once at startup; steady-state code only ever uses ids. The gating role is id-only.
func ResolveRoleIDs(ids RoleIDs, names RoleNames, roles map[string]Role) (RoleIDs, error) {
	byName := make(map[string]string, len(roles))
	for _, r := range roles {
		if _, dup := byName[r.Name]; !dup {
			byName[r.Name] = r.ID
		}
	}

	var errs []error
	resolve := func(logical, id, name string) string {
		if id != "" {
			if _, ok := roles[id]; !ok {
				errs = append(errs, fmt.Errorf("%s role id %s does not exist in the guild", logical, id))
			}
			return id
		}
		if found, ok := byName[name]; ok && name != "" {
			return found
		}
		errs = append(errs, fmt.Errorf("%s role has no id and no role named %q exists", logical, name))
		return ""
	}

	out := RoleIDs{
		Player:   resolve("player", ids.Player, names.Player),
		Coach:    resolve("coach", ids.Coach, names.Coach),
		Captain:  resolve("captain", ids.Captain, names.Captain),
		Eligible: ids.Eligible,
	}
	if err := errors.Join(errs...); err != nil {
		return RoleIDs{}, err
	}
	return out, nil
}
