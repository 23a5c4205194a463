package roster

import (
	"context"
	"errors"
)

// ErrMemberNotFound is returned by a MembershipSource when the member is not in the guild.
var ErrMemberNotFound = errors.New("member not found")

// MembershipSource reads and writes member role state for a single guild.
type MembershipSource interface {
	FetchGuild(ctx context.Context) (*Guild, error)
	FetchMember(ctx context.Context, memberID string) (*Member, error)
	AddRole(ctx context.Context, memberID, roleID string) error
	RemoveRole(ctx context.Context, memberID, roleID string) error
	RemoveRoles(ctx context.Context, memberID string, roleIDs []string) error
}
